package playback

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/simviewer/go/internal/models"
)

func intPtr(v int) *int { return &v }

func tickPatch(tick int, events ...models.SimEvent) models.TickPatch {
	x := float64(tick)
	return models.TickPatch{
		Tick:    intPtr(tick),
		Players: &[]models.PlayerState{{ID: "wr1", Role: models.RoleReceiver, X: x, Y: x}},
		Events:  events,
	}
}

// syncedWithTicks reproduces a state_sync at tick 0 followed by ticks 1..n.
func syncedWithTicks(n int) State {
	s := NewState(DefaultBufferCapacity)
	s, _ = Reduce(s, StateSynced{Snapshot: models.SimSnapshot{Tick: 0, Phase: "pre_snap"}})
	for tick := 1; tick <= n; tick++ {
		s, _ = Reduce(s, TickReceived{Patch: tickPatch(tick)})
	}
	return s
}

func TestReduceSyncThenTicks(t *testing.T) {
	s := syncedWithTicks(3)

	latest, ok := s.Buffer.Latest()
	if !ok || latest.Tick != 3 {
		t.Fatalf("expected latest tick 3, got %+v", latest)
	}
	if s.Buffer.Len() != 4 {
		t.Fatalf("expected 4 buffered snapshots, got %d", s.Buffer.Len())
	}
	if s.Live == nil || s.Live.Tick != 3 {
		t.Fatalf("expected live tick 3")
	}
	if s.Live.Phase != "pre_snap" {
		t.Errorf("phase from state sync should carry through ticks, got %q", s.Live.Phase)
	}
}

func TestReduceSharesBufferWithPreviousState(t *testing.T) {
	prev := syncedWithTicks(2)
	next, _ := Reduce(prev, TickReceived{Patch: tickPatch(3)})

	if next.Buffer != prev.Buffer {
		t.Fatalf("expected the buffer to be carried over, not copied")
	}
	if !prev.Buffer.Has(3) {
		t.Errorf("expected the previous state to see the appended tick")
	}
	if prev.Live.Tick != 2 || next.Live.Tick != 3 {
		t.Errorf("live snapshot is per state, got prev %d next %d", prev.Live.Tick, next.Live.Tick)
	}
}

func TestReduceJumpToTickPinsDisplay(t *testing.T) {
	s := syncedWithTicks(3)

	s, cmds := Reduce(s, JumpToTick{Tick: 1})

	if s.ViewingTick == nil || *s.ViewingTick != 1 {
		t.Fatalf("expected viewing tick 1, got %v", s.ViewingTick)
	}
	if s.Mode() != ModeScrubbing {
		t.Errorf("expected scrubbing mode")
	}
	if diff := cmp.Diff([]models.CommandType{models.CommandPause}, cmds); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	display, ok := s.DisplayState()
	if !ok {
		t.Fatalf("expected a display state")
	}
	want, _ := s.Buffer.Get(1)
	if diff := cmp.Diff(want, display); diff != "" {
		t.Errorf("display should be the tick 1 snapshot (-want +got):\n%s", diff)
	}
	if display.Players[0].X != 1 {
		t.Errorf("expected tick 1 positions, got x=%v", display.Players[0].X)
	}
}

func TestReduceJumpToUnknownTickIsNoop(t *testing.T) {
	for _, start := range []struct {
		name    string
		viewing *int
	}{
		{name: "from live"},
		{name: "from scrub", viewing: intPtr(2)},
	} {
		t.Run(start.name, func(t *testing.T) {
			s := syncedWithTicks(3)
			s.ViewingTick = start.viewing
			before := s

			s, cmds := Reduce(s, JumpToTick{Tick: 42})

			if len(cmds) != 0 {
				t.Errorf("expected no commands, got %v", cmds)
			}
			if diff := cmp.Diff(before.ViewingTick, s.ViewingTick); diff != "" {
				t.Errorf("viewing tick changed (-want +got):\n%s", diff)
			}
			if s.Buffer.Len() != 4 || s.Live.Tick != 3 {
				t.Errorf("state changed by unknown jump")
			}
		})
	}
}

func TestReduceGoLiveAlwaysClearsViewingTick(t *testing.T) {
	for _, viewing := range []*int{nil, intPtr(0), intPtr(2), intPtr(99)} {
		s := syncedWithTicks(3)
		s.ViewingTick = viewing

		s, cmds := Reduce(s, GoLive{})
		if s.ViewingTick != nil {
			t.Fatalf("expected live after GoLive from %v", viewing)
		}
		if len(cmds) != 0 {
			t.Errorf("GoLive must not command the engine, got %v", cmds)
		}
	}
}

func TestReduceTransportForcesLiveBeforeCommand(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		want   models.CommandType
	}{
		{name: "start", action: StartRequested{}, want: models.CommandStart},
		{name: "resume", action: ResumeRequested{}, want: models.CommandResume},
		{name: "step", action: StepRequested{}, want: models.CommandStep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := syncedWithTicks(3)
			s, _ = Reduce(s, JumpToTick{Tick: 2})

			s, cmds := Reduce(s, tc.action)
			if s.ViewingTick != nil {
				t.Errorf("expected live mode")
			}
			if diff := cmp.Diff([]models.CommandType{tc.want}, cmds); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReducePauseKeepsMode(t *testing.T) {
	s := syncedWithTicks(3)
	s, _ = Reduce(s, JumpToTick{Tick: 2})

	s, cmds := Reduce(s, PauseRequested{})
	if s.ViewingTick == nil || *s.ViewingTick != 2 {
		t.Errorf("pause should not leave scrub mode")
	}
	if diff := cmp.Diff([]models.CommandType{models.CommandPause}, cmds); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceReset(t *testing.T) {
	s := syncedWithTicks(3)
	s, _ = Reduce(s, JumpToTick{Tick: 1})

	s, cmds := Reduce(s, ResetRequested{})

	if s.Buffer.Len() != 0 {
		t.Errorf("expected empty buffer, got %d", s.Buffer.Len())
	}
	if s.ViewingTick != nil {
		t.Errorf("expected viewing tick cleared")
	}
	if diff := cmp.Diff([]models.CommandType{models.CommandReset}, cmds); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceStateSyncReplacesHistory(t *testing.T) {
	s := syncedWithTicks(3)
	s, _ = Reduce(s, JumpToTick{Tick: 2})

	s, _ = Reduce(s, StateSynced{Snapshot: models.SimSnapshot{Tick: 10, Phase: "pre_snap"}})

	if diff := cmp.Diff([]int{10}, s.Buffer.Ticks()); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}
	if s.ViewingTick != nil {
		t.Errorf("state sync should return to live")
	}
	if len(s.Live.Players) != 0 {
		t.Errorf("state sync should replace live wholesale, got %+v", s.Live.Players)
	}
}

func TestReduceTickEventsAccumulate(t *testing.T) {
	s := NewState(DefaultBufferCapacity)
	s, _ = Reduce(s, StateSynced{Snapshot: models.SimSnapshot{Tick: 0}})
	s, _ = Reduce(s, TickReceived{Patch: tickPatch(1, models.SimEvent{Type: "snap"})})
	s, _ = Reduce(s, TickReceived{Patch: tickPatch(2, models.SimEvent{Type: "sack"})})

	if len(s.Live.Events) != 2 {
		t.Fatalf("expected 2 accumulated events, got %d", len(s.Live.Events))
	}
	first, _ := s.Buffer.Get(1)
	if len(first.Events) != 1 {
		t.Errorf("buffered tick 1 should keep its own event history, got %d", len(first.Events))
	}
}

func TestReduceCompleteDoesNotBuffer(t *testing.T) {
	s := syncedWithTicks(3)
	s, _ = Reduce(s, Completed{Snapshot: models.SimSnapshot{Tick: 3, IsComplete: true, PlayOutcome: "tackle"}})

	if s.Buffer.Len() != 4 {
		t.Errorf("complete should not add a buffer entry, len %d", s.Buffer.Len())
	}
	if !s.Live.IsComplete || s.Live.PlayOutcome != "tackle" {
		t.Errorf("complete should replace the live snapshot")
	}
}

func TestReduceDisplayFallsBackToLiveAfterEviction(t *testing.T) {
	s := NewState(3)
	s, _ = Reduce(s, StateSynced{Snapshot: models.SimSnapshot{Tick: 0}})
	s, _ = Reduce(s, TickReceived{Patch: tickPatch(1)})
	s, _ = Reduce(s, JumpToTick{Tick: 0})
	for tick := 2; tick <= 5; tick++ {
		s, _ = Reduce(s, TickReceived{Patch: tickPatch(tick)})
	}

	display, ok := s.DisplayState()
	if !ok || display.Tick != 5 {
		t.Fatalf("expected fallback to live tick 5, got %d", display.Tick)
	}
}

func TestReduceErrors(t *testing.T) {
	s := syncedWithTicks(2)
	s, _ = Reduce(s, JumpToTick{Tick: 1})

	s, _ = Reduce(s, ServerError{Message: "invalid command"})
	if s.Err == nil || s.Err.Kind != ErrorKindProtocol || s.Err.Message != "invalid command" {
		t.Fatalf("expected protocol error, got %+v", s.Err)
	}
	if s.ViewingTick == nil || *s.ViewingTick != 1 {
		t.Errorf("protocol errors must not alter playback state")
	}

	s, _ = Reduce(s, Disconnected{Reason: "connection lost"})
	if s.Connected || s.Err.Kind != ErrorKindConnection {
		t.Fatalf("expected connection error, got %+v", s.Err)
	}

	s, _ = Reduce(s, DismissError{})
	if s.Err != nil {
		t.Errorf("expected error dismissed")
	}
}
