package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/simviewer/go/internal/gateway"
	"github.com/mcdev12/simviewer/go/internal/models"
)

type recordingCommander struct {
	open bool
	sent []models.CommandType
}

func (r *recordingCommander) SendCommand(cmd models.CommandType) bool {
	if !r.open {
		return false
	}
	r.sent = append(r.sent, cmd)
	return true
}

type recordingObserver struct {
	buffered  []int
	completed []models.SimSnapshot
	histories [][]models.SimSnapshot
}

func (r *recordingObserver) SnapshotBuffered(snapshot models.SimSnapshot) {
	r.buffered = append(r.buffered, snapshot.Tick)
}

func (r *recordingObserver) PlayCompleted(final models.SimSnapshot, history []models.SimSnapshot) {
	r.completed = append(r.completed, final)
	r.histories = append(r.histories, history)
}

// gatedCommander holds every pause until release is closed
type gatedCommander struct {
	mu      sync.Mutex
	sent    []models.CommandType
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCommander) SendCommand(cmd models.CommandType) bool {
	if cmd == models.CommandPause {
		close(g.entered)
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, cmd)
	return true
}

func feed(c *Controller, msgs ...gateway.Message) {
	for _, msg := range msgs {
		c.HandleMessage(msg)
	}
}

func syncMsg(tick int) gateway.Message {
	return gateway.Message{Type: gateway.MessageTypeStateSync, Snapshot: &models.SimSnapshot{Tick: tick}}
}

func tickMsg(tick int) gateway.Message {
	p := tickPatch(tick)
	return gateway.Message{Type: gateway.MessageTypeTick, Patch: &p}
}

func TestControllerScrubPausesEngine(t *testing.T) {
	cmdr := &recordingCommander{open: true}
	c := NewController(cmdr, DefaultBufferCapacity)
	feed(c, syncMsg(0), tickMsg(1), tickMsg(2), tickMsg(3))

	c.JumpToTick(1)

	v := c.View()
	if v.Mode != ModeScrubbing || v.ViewingTick == nil || *v.ViewingTick != 1 {
		t.Fatalf("expected scrubbing at tick 1, got %+v", v)
	}
	if v.Display.Tick != 1 {
		t.Errorf("expected display tick 1, got %d", v.Display.Tick)
	}
	if diff := cmp.Diff([]models.CommandType{models.CommandPause}, cmdr.sent); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	c.JumpToTick(77)
	if v := c.View(); *v.ViewingTick != 1 {
		t.Errorf("unknown tick should not move the view")
	}
	if len(cmdr.sent) != 1 {
		t.Errorf("unknown tick should not send commands, got %v", cmdr.sent)
	}
}

func TestControllerCommandsDroppedWhenClosed(t *testing.T) {
	cmdr := &recordingCommander{open: false}
	c := NewController(cmdr, DefaultBufferCapacity)
	feed(c, syncMsg(0), tickMsg(1))

	c.JumpToTick(0)
	if v := c.View(); v.Mode != ModeScrubbing {
		t.Fatalf("local scrub should still apply when the socket is closed")
	}
	if len(cmdr.sent) != 0 {
		t.Errorf("no command should be sent on a closed socket")
	}
}

func TestControllerTogglePlayPause(t *testing.T) {
	cases := []struct {
		name     string
		live     *models.SimSnapshot
		scrubTo  *int
		wantCmds []models.CommandType
	}{
		{name: "idle starts", wantCmds: []models.CommandType{models.CommandStart}},
		{
			name:     "running pauses",
			live:     &models.SimSnapshot{Tick: 0, IsRunning: true},
			wantCmds: []models.CommandType{models.CommandPause},
		},
		{
			name:     "paused resumes",
			live:     &models.SimSnapshot{Tick: 0, IsRunning: true, IsPaused: true},
			wantCmds: []models.CommandType{models.CommandResume},
		},
		{
			name:     "scrubbed resumes",
			live:     &models.SimSnapshot{Tick: 0, IsRunning: true},
			scrubTo:  intPtr(0),
			wantCmds: []models.CommandType{models.CommandPause, models.CommandResume},
		},
		{
			name: "complete ignored",
			live: &models.SimSnapshot{Tick: 0, IsComplete: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmdr := &recordingCommander{open: true}
			c := NewController(cmdr, DefaultBufferCapacity)
			if tc.live != nil {
				c.Dispatch(StateSynced{Snapshot: *tc.live})
			}
			if tc.scrubTo != nil {
				c.JumpToTick(*tc.scrubTo)
			}

			c.TogglePlayPause()

			if diff := cmp.Diff(tc.wantCmds, cmdr.sent); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
			if tc.scrubTo != nil && c.View().Mode != ModeLive {
				t.Errorf("resume should return to live")
			}
		})
	}
}

func TestControllerScrubBy(t *testing.T) {
	cmdr := &recordingCommander{open: true}
	c := NewController(cmdr, DefaultBufferCapacity)
	feed(c, syncMsg(0), tickMsg(1), tickMsg(2), tickMsg(3))

	c.ScrubBy(-1)
	if v := c.View(); v.ViewingTick == nil || *v.ViewingTick != 2 {
		t.Fatalf("expected tick 2 after scrubbing back from live, got %v", v.ViewingTick)
	}
	c.ScrubBy(-5)
	if v := c.View(); *v.ViewingTick != 0 {
		t.Fatalf("expected clamp at oldest tick 0, got %d", *v.ViewingTick)
	}
	c.ScrubBy(1)
	if v := c.View(); *v.ViewingTick != 1 {
		t.Fatalf("expected tick 1, got %d", *v.ViewingTick)
	}

	c.GoLive()
	if v := c.View(); v.Mode != ModeLive || v.Display.Tick != 3 {
		t.Fatalf("expected live at tick 3, got %+v", v)
	}
}

func TestControllerNotifiesObservers(t *testing.T) {
	obs := &recordingObserver{}
	c := NewController(&recordingCommander{open: true}, DefaultBufferCapacity, obs)

	final := models.SimSnapshot{Tick: 2, IsComplete: true, PlayOutcome: "incomplete"}
	feed(c,
		syncMsg(0),
		tickMsg(1),
		tickMsg(1), // duplicate, rejected by the buffer
		tickMsg(2),
		gateway.Message{Type: gateway.MessageTypeComplete, Snapshot: &final},
	)

	if diff := cmp.Diff([]int{0, 1, 2}, obs.buffered); diff != "" {
		t.Errorf("buffered ticks mismatch (-want +got):\n%s", diff)
	}
	if len(obs.completed) != 1 || obs.completed[0].PlayOutcome != "incomplete" {
		t.Fatalf("expected one completion, got %+v", obs.completed)
	}
	if len(obs.histories[0]) != 3 {
		t.Errorf("expected 3 snapshots of history, got %d", len(obs.histories[0]))
	}
}

func TestControllerConnectionLifecycle(t *testing.T) {
	c := NewController(&recordingCommander{}, DefaultBufferCapacity)
	fc := clockwork.NewFakeClockAt(time.Date(2024, 9, 8, 13, 0, 0, 0, time.UTC))
	c.SetClock(fc)

	feed(c, gateway.Message{Type: gateway.MessageTypeConnected})
	if v := c.View(); !v.Connected || v.Err != nil {
		t.Fatalf("expected connected without error, got %+v", v)
	}

	fc.Advance(time.Second)
	feed(c, gateway.Message{Type: gateway.MessageTypeDisconnected, Error: "connection lost: EOF"})
	v := c.View()
	if v.Connected {
		t.Fatalf("expected disconnected")
	}
	if v.Err == nil || v.Err.Kind != ErrorKindConnection || v.Err.Message != "connection lost: EOF" {
		t.Fatalf("unexpected error %+v", v.Err)
	}
	if !v.UpdatedAt.Equal(fc.Now()) {
		t.Errorf("expected update stamped at %v, got %v", fc.Now(), v.UpdatedAt)
	}

	c.DismissError()
	if c.View().Err != nil {
		t.Errorf("expected error dismissed")
	}
}

func TestControllerLoadHistory(t *testing.T) {
	cmdr := &recordingCommander{open: true}
	c := NewController(cmdr, DefaultBufferCapacity)

	if err := c.LoadHistory(nil); err != ErrEmptySnapshot {
		t.Fatalf("expected ErrEmptySnapshot, got %v", err)
	}

	history := []models.SimSnapshot{{Tick: 0}, {Tick: 1}, {Tick: 2, IsComplete: true}}
	if err := c.LoadHistory(history); err != nil {
		t.Fatalf("load history: %v", err)
	}

	if diff := cmp.Diff([]int{0, 1, 2}, c.Ticks()); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}
	if v := c.View(); v.Display.Tick != 2 || v.Mode != ModeLive {
		t.Errorf("expected live at last archived tick, got %+v", v)
	}
	if len(cmdr.sent) != 0 {
		t.Errorf("loading history must not command the engine")
	}
	if trail := c.Trail(2, 2); len(trail) != 2 || trail[0].Tick != 1 {
		t.Errorf("unexpected trail %+v", trail)
	}
}

func TestControllerSendsCommandsInTransitionOrder(t *testing.T) {
	cmdr := &gatedCommander{entered: make(chan struct{}), release: make(chan struct{})}
	c := NewController(cmdr, DefaultBufferCapacity)
	feed(c, syncMsg(0), tickMsg(1), tickMsg(2))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.JumpToTick(1)
	}()
	<-cmdr.entered

	go func() {
		defer wg.Done()
		c.Resume()
	}()

	// let resume reach Dispatch while pause is still in flight
	time.Sleep(50 * time.Millisecond)
	close(cmdr.release)
	wg.Wait()

	want := []models.CommandType{models.CommandPause, models.CommandResume}
	if diff := cmp.Diff(want, cmdr.sent); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if mode := c.View().Mode; mode != ModeLive {
		t.Errorf("expected live, got %s", mode)
	}
}
