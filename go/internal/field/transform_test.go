package field

import (
	"math"
	"testing"
)

func TestYardToScreenDeterministic(t *testing.T) {
	tr := NewTransform(900, 700, nil)

	inputs := []struct{ x, y float64 }{{0, 0}, {-12.5, 7.25}, {26.6, -4}, {3, 40}}
	for _, mode := range []ZoomMode{ZoomNormal, ZoomLOS} {
		for _, in := range inputs {
			px1, py1 := tr.YardToScreen(in.x, in.y, mode)
			// Interleave calls with other inputs and modes.
			tr.YardToScreen(in.y, in.x, ZoomLOS)
			tr.YardToScreen(-in.x, 0, ZoomNormal)
			px2, py2 := tr.YardToScreen(in.x, in.y, mode)
			if px1 != px2 || py1 != py2 {
				t.Fatalf("%v (%v,%v): (%v,%v) then (%v,%v)", mode, in.x, in.y, px1, py1, px2, py2)
			}
		}
	}
}

func TestYardToScreenPresets(t *testing.T) {
	tr := NewTransform(900, 700, nil)

	px, py := tr.YardToScreen(0, 0, ZoomNormal)
	if px != 450 || py != 525 {
		t.Errorf("normal LOS center: expected (450,525), got (%v,%v)", px, py)
	}

	px, py = tr.YardToScreen(1, 1, ZoomNormal)
	if px != 462 || py != 513 {
		t.Errorf("normal (1,1): expected (462,513), got (%v,%v)", px, py)
	}

	px, py = tr.YardToScreen(1, 1, ZoomLOS)
	if px != 474 || py != 396 {
		t.Errorf("zoomed (1,1): expected (474,396), got (%v,%v)", px, py)
	}

	if tr.Yards(1, ZoomLOS) != 2*tr.Yards(1, ZoomNormal) {
		t.Errorf("LOS preset should be 2x normal")
	}
}

func TestScreenToYardInverts(t *testing.T) {
	tr := NewTransform(1024, 768, map[ZoomMode]Preset{ZoomLOS: {Scale: 30, AnchorY: 0.5}})

	for _, mode := range []ZoomMode{ZoomNormal, ZoomLOS} {
		px, py := tr.YardToScreen(-8.5, 13.25, mode)
		x, y := tr.ScreenToYard(px, py, mode)
		if math.Abs(x+8.5) > 1e-9 || math.Abs(y-13.25) > 1e-9 {
			t.Errorf("%v: round trip gave (%v,%v)", mode, x, y)
		}
	}
}

func TestParseZoomMode(t *testing.T) {
	for _, mode := range []ZoomMode{ZoomNormal, ZoomLOS} {
		got, err := ParseZoomMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("parse %q: got %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseZoomMode("fisheye"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

func TestMarkingsIndependentOfCallOrder(t *testing.T) {
	tr := NewTransform(900, 700, nil)

	first := Markings(tr, ZoomNormal)
	Markings(tr, ZoomLOS)
	second := Markings(tr, ZoomNormal)

	if len(first) != len(second) {
		t.Fatalf("marking count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("marking %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}

	var los int
	for _, m := range first {
		if m.Kind == MarkingScrimmage {
			los++
			if m.Y1 != 525 {
				t.Errorf("line of scrimmage at %v, expected 525", m.Y1)
			}
		}
	}
	if los != 1 {
		t.Errorf("expected one line of scrimmage, got %d", los)
	}
}
