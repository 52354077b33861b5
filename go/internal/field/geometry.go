package field

import (
	"fmt"
	"math"
)

// MarkingKind identifies the kind of static field marking
type MarkingKind string

const (
	MarkingSideline   MarkingKind = "sideline"
	MarkingYardLine   MarkingKind = "yard_line"
	MarkingHash       MarkingKind = "hash"
	MarkingScrimmage  MarkingKind = "line_of_scrimmage"
	MarkingYardNumber MarkingKind = "yard_number"
)

// hashOffsetYards is the lateral distance of the hash marks from the field center
const hashOffsetYards = 3.083

// Marking is one static field element in screen space
type Marking struct {
	Kind   MarkingKind
	X1, Y1 float64
	X2, Y2 float64
	Label  string
}

// Markings returns the static field geometry for mode: sidelines, a yard line
// every 5 yards, hash marks every yard and the line of scrimmage. It depends
// only on the transform and zoom mode, never on simulation state.
func Markings(t Transform, mode ZoomMode) []Marking {
	width, height := t.Size()
	minY, maxY := t.VisibleYards(mode)
	left, _ := t.YardToScreen(-FieldWidthYards/2, 0, mode)
	right, _ := t.YardToScreen(FieldWidthYards/2, 0, mode)
	left = math.Max(left, 0)
	right = math.Min(right, width)

	out := []Marking{
		{Kind: MarkingSideline, X1: left, Y1: 0, X2: left, Y2: height},
		{Kind: MarkingSideline, X1: right, Y1: 0, X2: right, Y2: height},
	}

	hashLen := t.Yards(0.5, mode)
	for yd := math.Ceil(minY); yd <= math.Floor(maxY); yd++ {
		_, py := t.YardToScreen(0, yd, mode)
		if int(yd)%5 == 0 {
			m := Marking{Kind: MarkingYardLine, X1: left, Y1: py, X2: right, Y2: py}
			if yd != 0 && int(yd)%10 == 0 {
				m.Label = fmt.Sprintf("%+d", int(yd))
			}
			out = append(out, m)
			continue
		}
		for _, hx := range []float64{-hashOffsetYards, hashOffsetYards} {
			px, _ := t.YardToScreen(hx, yd, mode)
			out = append(out, Marking{Kind: MarkingHash, X1: px - hashLen/2, Y1: py, X2: px + hashLen/2, Y2: py})
		}
	}

	_, los := t.YardToScreen(0, 0, mode)
	out = append(out, Marking{Kind: MarkingScrimmage, X1: left, Y1: los, X2: right, Y2: los})
	return out
}
