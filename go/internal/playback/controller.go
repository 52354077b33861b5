package playback

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/gateway"
	"github.com/mcdev12/simviewer/go/internal/models"
)

// Commander sends control commands to the engine. *gateway.ConnectionManager
// satisfies it. SendCommand is called with the controller locked, so it must
// not block or call back into the controller.
type Commander interface {
	SendCommand(cmd models.CommandType) bool
}

// Observer is told about snapshots as they enter the history
type Observer interface {
	SnapshotBuffered(snapshot models.SimSnapshot)
	PlayCompleted(final models.SimSnapshot, history []models.SimSnapshot)
}

// Controller serializes every playback transition through Reduce and sends
// the resulting commands. It is safe for concurrent use; the UI loop and the
// inspection API share one instance.
type Controller struct {
	mu        sync.RWMutex
	sendMu    sync.Mutex // taken before mu is released, so commands go out in transition order
	state     State
	commander Commander
	observers []Observer
	clock     clockwork.Clock
	updatedAt time.Time
}

// View is a consistent copy of what the viewer should show right now
type View struct {
	Mode        Mode               `json:"mode"`
	ViewingTick *int               `json:"viewing_tick"`
	Display     models.SimSnapshot `json:"display"`
	HasDisplay  bool               `json:"has_display"`
	LiveTick    *int               `json:"live_tick"`
	OldestTick  *int               `json:"oldest_tick"`
	LatestTick  *int               `json:"latest_tick"`
	Buffered    int                `json:"buffered"`
	Connected   bool               `json:"connected"`
	Err         *ViewerError       `json:"error,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewController creates a controller with an empty history
func NewController(commander Commander, capacity int, observers ...Observer) *Controller {
	return &Controller{
		state:     NewState(capacity),
		commander: commander,
		observers: observers,
		clock:     clockwork.NewRealClock(),
	}
}

// SetClock replaces the clock used to stamp updates
func (c *Controller) SetClock(clock clockwork.Clock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
}

// Dispatch applies action and sends any resulting engine commands
func (c *Controller) Dispatch(action Action) {
	c.mu.Lock()
	before, hadBefore := c.state.Buffer.Latest()
	next, commands := Reduce(c.state, action)
	c.state = next
	c.updatedAt = c.clock.Now()

	var buffered *models.SimSnapshot
	if after, ok := c.state.Buffer.Latest(); ok {
		switch action.(type) {
		case StateSynced:
			buffered = &after
		case TickReceived:
			if !hadBefore || after.Tick != before.Tick {
				buffered = &after
			}
		}
	}
	var history []models.SimSnapshot
	_, completed := action.(Completed)
	if completed {
		history = c.state.Buffer.Snapshots()
	}
	c.sendMu.Lock()
	c.mu.Unlock()

	for _, cmd := range commands {
		if !c.commander.SendCommand(cmd) {
			log.Debug().Str("command", string(cmd)).Msg("engine command not sent")
		}
	}
	c.sendMu.Unlock()

	if buffered != nil {
		for _, o := range c.observers {
			o.SnapshotBuffered(*buffered)
		}
	}
	if completed {
		final := action.(Completed).Snapshot
		for _, o := range c.observers {
			o.PlayCompleted(final, history)
		}
	}
}

// HandleMessage translates an engine socket message into a playback action
func (c *Controller) HandleMessage(msg gateway.Message) {
	switch msg.Type {
	case gateway.MessageTypeStateSync:
		if msg.Snapshot == nil {
			return
		}
		log.Info().Str("session_id", msg.SessionID).Int("tick", msg.Snapshot.Tick).Msg("state sync received")
		c.Dispatch(StateSynced{Snapshot: *msg.Snapshot})
	case gateway.MessageTypeTick:
		if msg.Patch == nil {
			return
		}
		c.Dispatch(TickReceived{Patch: *msg.Patch})
	case gateway.MessageTypeComplete:
		if msg.Snapshot == nil {
			return
		}
		log.Info().
			Str("session_id", msg.SessionID).
			Int("tick", msg.Snapshot.Tick).
			Str("outcome", msg.Snapshot.PlayOutcome).
			Msg("play complete")
		c.Dispatch(Completed{Snapshot: *msg.Snapshot})
	case gateway.MessageTypeError:
		log.Warn().Str("session_id", msg.SessionID).Str("error", msg.Error).Msg("engine reported error")
		c.Dispatch(ServerError{Message: msg.Error})
	case gateway.MessageTypeConnected:
		c.Dispatch(Connected{})
	case gateway.MessageTypeDisconnected:
		c.Dispatch(Disconnected{Reason: msg.Error})
	}
}

// Start clears any pinned tick and starts the engine
func (c *Controller) Start() { c.Dispatch(StartRequested{}) }

// Pause pauses the engine without changing the viewing mode
func (c *Controller) Pause() { c.Dispatch(PauseRequested{}) }

// Resume returns to live and resumes the engine
func (c *Controller) Resume() { c.Dispatch(ResumeRequested{}) }

// Step returns to live and advances the engine one tick
func (c *Controller) Step() { c.Dispatch(StepRequested{}) }

// Reset clears history and resets the engine
func (c *Controller) Reset() { c.Dispatch(ResetRequested{}) }

// JumpToTick pins the display to tick and pauses the engine.
// Ticks that are not buffered are ignored.
func (c *Controller) JumpToTick(tick int) { c.Dispatch(JumpToTick{Tick: tick}) }

// GoLive returns the display to the live snapshot. It does not resume the engine.
func (c *Controller) GoLive() { c.Dispatch(GoLive{}) }

// DismissError clears the error banner
func (c *Controller) DismissError() { c.Dispatch(DismissError{}) }

// LoadHistory replaces the history with snapshots, for offline review of an archived play
func (c *Controller) LoadHistory(snapshots []models.SimSnapshot) error {
	if len(snapshots) == 0 {
		return ErrEmptySnapshot
	}
	c.Dispatch(HistoryLoaded{Snapshots: snapshots})
	return nil
}

// TogglePlayPause is the play/pause key: a running engine is paused, a
// paused one (or a scrubbed view) is resumed, an idle one is started.
func (c *Controller) TogglePlayPause() {
	c.mu.RLock()
	live := c.state.Live
	scrubbing := c.state.Mode() == ModeScrubbing
	c.mu.RUnlock()

	switch {
	case live == nil:
		c.Start()
	case live.IsComplete:
		log.Debug().Msg("play complete, ignoring play/pause")
	case scrubbing || live.IsPaused:
		c.Resume()
	case live.IsRunning:
		c.Pause()
	default:
		c.Start()
	}
}

// ScrubBy moves the pinned tick delta entries through the history, starting
// from the newest tick when live.
func (c *Controller) ScrubBy(delta int) {
	c.mu.RLock()
	var anchor int
	if c.state.ViewingTick != nil {
		anchor = *c.state.ViewingTick
	} else if latest, ok := c.state.Buffer.Latest(); ok {
		anchor = latest.Tick
	} else {
		c.mu.RUnlock()
		return
	}
	target, ok := c.state.Buffer.Neighbor(anchor, delta)
	c.mu.RUnlock()

	if ok {
		c.JumpToTick(target)
	}
}

// View returns the current display state and playback status
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Mode:      c.state.Mode(),
		Buffered:  c.state.Buffer.Len(),
		Connected: c.state.Connected,
		UpdatedAt: c.updatedAt,
	}
	if c.state.ViewingTick != nil {
		t := *c.state.ViewingTick
		v.ViewingTick = &t
	}
	if c.state.Live != nil {
		t := c.state.Live.Tick
		v.LiveTick = &t
	}
	if oldest, ok := c.state.Buffer.Oldest(); ok {
		t := oldest.Tick
		v.OldestTick = &t
	}
	if latest, ok := c.state.Buffer.Latest(); ok {
		t := latest.Tick
		v.LatestTick = &t
	}
	if c.state.Err != nil {
		e := *c.state.Err
		v.Err = &e
	}
	v.Display, v.HasDisplay = c.state.DisplayState()
	return v
}

// Snapshot returns the buffered snapshot for tick
func (c *Controller) Snapshot(tick int) (models.SimSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Buffer.Get(tick)
}

// Ticks returns every buffered tick, oldest first
func (c *Controller) Ticks() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Buffer.Ticks()
}

// Trail returns up to n buffered snapshots ending at tick
func (c *Controller) Trail(tick, n int) []models.SimSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Buffer.Window(tick, n)
}
