package playback

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/models"
)

// ErrEmptySnapshot is returned when loading history with no snapshots
var ErrEmptySnapshot = errors.New("no snapshots")

// Mode is the temporal viewing mode. It is derived from ViewingTick, never stored.
type Mode string

const (
	ModeLive      Mode = "LIVE"
	ModeScrubbing Mode = "SCRUBBING"
)

// ErrorKind separates errors the operator can act on differently
type ErrorKind string

const (
	ErrorKindConnection ErrorKind = "connection"
	ErrorKindProtocol   ErrorKind = "protocol"
)

// ViewerError is a user-visible, dismissible error
type ViewerError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// State is the complete playback state of a viewer session. The buffer is
// owned by the state and Reduce writes it in place, so copies of a State
// share one buffer.
type State struct {
	Live        *models.SimSnapshot
	Buffer      *TickBuffer
	ViewingTick *int
	Connected   bool
	Err         *ViewerError
}

// NewState returns an empty live-mode state with a buffer of the given capacity
func NewState(capacity int) State {
	return State{Buffer: NewTickBuffer(capacity)}
}

// Mode reports LIVE when no tick is pinned, SCRUBBING otherwise
func (s State) Mode() Mode {
	if s.ViewingTick == nil {
		return ModeLive
	}
	return ModeScrubbing
}

// DisplayState resolves the snapshot to render: the pinned tick when
// scrubbing, falling back to the live snapshot when the tick is no longer
// buffered.
func (s State) DisplayState() (models.SimSnapshot, bool) {
	if s.ViewingTick != nil {
		if snapshot, ok := s.Buffer.Get(*s.ViewingTick); ok {
			return snapshot, true
		}
	}
	if s.Live == nil {
		return models.SimSnapshot{}, false
	}
	return *s.Live, true
}

// Action is a state transition input, either from the engine socket or the operator
type Action interface {
	isAction()
}

// Engine-originated actions
type (
	StateSynced   struct{ Snapshot models.SimSnapshot }
	TickReceived  struct{ Patch models.TickPatch }
	Completed     struct{ Snapshot models.SimSnapshot }
	ServerError   struct{ Message string }
	Connected     struct{}
	Disconnected  struct{ Reason string }
	HistoryLoaded struct{ Snapshots []models.SimSnapshot }
)

// Operator-originated actions
type (
	StartRequested  struct{}
	PauseRequested  struct{}
	ResumeRequested struct{}
	StepRequested   struct{}
	ResetRequested  struct{}
	JumpToTick      struct{ Tick int }
	GoLive          struct{}
	DismissError    struct{}
)

func (StateSynced) isAction()     {}
func (TickReceived) isAction()    {}
func (Completed) isAction()       {}
func (ServerError) isAction()     {}
func (Connected) isAction()       {}
func (Disconnected) isAction()    {}
func (HistoryLoaded) isAction()   {}
func (StartRequested) isAction()  {}
func (PauseRequested) isAction()  {}
func (ResumeRequested) isAction() {}
func (StepRequested) isAction()   {}
func (ResetRequested) isAction()  {}
func (JumpToTick) isAction()      {}
func (GoLive) isAction()          {}
func (DismissError) isAction()    {}

// Reduce applies action to s and returns the next state together with the
// commands that must be sent to the engine, in order. Local state changes
// always happen before any command is sent.
//
// The returned state shares s.Buffer, which Reduce mutates in place. Callers
// hand s over and must not read or reduce it again afterwards.
func Reduce(s State, action Action) (State, []models.CommandType) {
	switch a := action.(type) {
	case StateSynced:
		snapshot := a.Snapshot
		s.Live = &snapshot
		if err := s.Buffer.Reset(snapshot); err != nil {
			log.Warn().Err(err).Int("tick", snapshot.Tick).Msg("state sync snapshot not buffered")
		}
		s.ViewingTick = nil
		return s, nil

	case TickReceived:
		var prev models.SimSnapshot
		if s.Live != nil {
			prev = *s.Live
		}
		next := models.ApplyTickPatch(prev, a.Patch)
		s.Live = &next
		if err := s.Buffer.Append(next); err != nil {
			log.Warn().Err(err).Int("tick", next.Tick).Msg("tick not buffered")
		}
		return s, nil

	case Completed:
		snapshot := a.Snapshot
		s.Live = &snapshot
		return s, nil

	case ServerError:
		s.Err = &ViewerError{Kind: ErrorKindProtocol, Message: a.Message}
		return s, nil

	case Connected:
		s.Connected = true
		if s.Err != nil && s.Err.Kind == ErrorKindConnection {
			s.Err = nil
		}
		return s, nil

	case Disconnected:
		s.Connected = false
		s.Err = &ViewerError{Kind: ErrorKindConnection, Message: a.Reason}
		return s, nil

	case HistoryLoaded:
		if len(a.Snapshots) == 0 {
			return s, nil
		}
		s.Buffer.Clear()
		for _, snapshot := range a.Snapshots {
			if err := s.Buffer.Append(snapshot); err != nil {
				log.Warn().Err(err).Int("tick", snapshot.Tick).Msg("archived snapshot not buffered")
			}
		}
		last := a.Snapshots[len(a.Snapshots)-1]
		s.Live = &last
		s.ViewingTick = nil
		return s, nil

	case StartRequested:
		s.ViewingTick = nil
		return s, []models.CommandType{models.CommandStart}

	case ResumeRequested:
		s.ViewingTick = nil
		return s, []models.CommandType{models.CommandResume}

	case StepRequested:
		s.ViewingTick = nil
		return s, []models.CommandType{models.CommandStep}

	case PauseRequested:
		return s, []models.CommandType{models.CommandPause}

	case JumpToTick:
		return enterScrubMode(s, a.Tick)

	case GoLive:
		s.ViewingTick = nil
		return s, nil

	case ResetRequested:
		s.Buffer.Clear()
		s.ViewingTick = nil
		return s, []models.CommandType{models.CommandReset}

	case DismissError:
		s.Err = nil
		return s, nil
	}

	log.Warn().Msgf("unhandled playback action %T", action)
	return s, nil
}

// enterScrubMode pins the display to tick. Scrubbing always pauses the
// engine: playing back locally while the source keeps running would desync.
// Unknown ticks leave the state untouched.
func enterScrubMode(s State, tick int) (State, []models.CommandType) {
	if !s.Buffer.Has(tick) {
		return s, nil
	}
	t := tick
	s.ViewingTick = &t
	return s, []models.CommandType{models.CommandPause}
}
