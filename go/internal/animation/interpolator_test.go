package animation

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/simviewer/go/internal/models"
)

func players(xs map[string]float64) []models.PlayerState {
	var out []models.PlayerState
	for id, x := range xs {
		out = append(out, models.PlayerState{ID: id, X: x})
	}
	return out
}

func TestInterpolatorStep(t *testing.T) {
	in := NewInterpolator(clockwork.NewFakeClock(), 0, 0.5)

	in.SetTargets(players(map[string]float64{"wr": 0}))
	if got := in.Positions()["wr"]; got != (models.Point{}) {
		t.Fatalf("new player should appear at its target, got %+v", got)
	}

	in.SetTargets(players(map[string]float64{"wr": 8}))
	in.Step()
	if got := in.Positions()["wr"].X; got != 4 {
		t.Fatalf("expected half way at 4, got %v", got)
	}
	in.Step()
	if got := in.Positions()["wr"].X; got != 6 {
		t.Fatalf("expected 6, got %v", got)
	}

	for n := 0; n < 20; n++ {
		in.Step()
	}
	if got := in.Positions()["wr"].X; got != 8 {
		t.Errorf("expected position to settle on the target, got %v", got)
	}

	in.SetTargets(players(map[string]float64{"cb": 3}))
	pos := in.Positions()
	if _, ok := pos["wr"]; ok {
		t.Errorf("departed player should be dropped")
	}
	if pos["cb"].X != 3 {
		t.Errorf("expected cb at 3, got %+v", pos["cb"])
	}
}

func TestInterpolatorLoopFollowsClock(t *testing.T) {
	fc := clockwork.NewFakeClock()
	in := NewInterpolator(fc, 10*time.Millisecond, 0.5)
	in.SetTargets(players(map[string]float64{"wr": 0}))
	in.SetTargets(players(map[string]float64{"wr": 8}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in.Start(ctx)
	in.Start(ctx)
	if !in.Running() {
		t.Fatalf("expected running interpolator")
	}

	if got := in.Positions()["wr"].X; got != 0 {
		t.Fatalf("no frame should run before the clock advances, got %v", got)
	}

	fc.Advance(10 * time.Millisecond)
	deadline := time.After(2 * time.Second)
	for in.Positions()["wr"].X == 0 {
		select {
		case <-deadline:
			t.Fatalf("frame did not run after advancing the clock")
		case <-time.After(time.Millisecond):
		}
	}

	in.Stop()
	if in.Running() {
		t.Fatalf("expected stopped interpolator")
	}
	stopped := in.Positions()["wr"].X
	fc.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	if got := in.Positions()["wr"].X; got != stopped {
		t.Errorf("no frames should run after Stop, moved from %v to %v", stopped, got)
	}

	in.Stop()
}

func TestInterpolatorStopsOnContextCancel(t *testing.T) {
	in := NewInterpolator(clockwork.NewFakeClock(), 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	in.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		in.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
