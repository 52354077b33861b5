package models

// TickPatch is the payload of a tick message. Every field is optional;
// a nil field means the engine did not send it and the previous value is kept.
type TickPatch struct {
	Tick        *int           `json:"tick,omitempty"`
	Time        *float64       `json:"time,omitempty"`
	Phase       *string        `json:"phase,omitempty"`
	Players     *[]PlayerState `json:"players,omitempty"`
	Ball        *BallState     `json:"ball,omitempty"`
	Events      []SimEvent     `json:"events,omitempty"`
	PlayOutcome *string        `json:"play_outcome,omitempty"`
	IsRunning   *bool          `json:"is_running,omitempty"`
	IsPaused    *bool          `json:"is_paused,omitempty"`
	IsComplete  *bool          `json:"is_complete,omitempty"`

	IsRunPlay     *bool   `json:"is_run_play,omitempty"`
	RunConcept    *string `json:"run_concept,omitempty"`
	DesignedGap   *string `json:"designed_gap,omitempty"`
	BallCarrierID *string `json:"ball_carrier_id,omitempty"`
	CoverageShell *string `json:"coverage_shell,omitempty"`
}

// ApplyTickPatch returns the snapshot produced by applying patch on top of prev.
// Fields present in the patch overwrite; events are appended to the previous
// events so the history accumulates for the life of the session.
// prev is never modified and the result shares no mutable slice with it.
func ApplyTickPatch(prev SimSnapshot, patch TickPatch) SimSnapshot {
	next := prev

	if patch.Tick != nil {
		next.Tick = *patch.Tick
	}
	if patch.Time != nil {
		next.Time = *patch.Time
	}
	if patch.Phase != nil {
		next.Phase = *patch.Phase
	}
	if patch.Players != nil {
		next.Players = append([]PlayerState(nil), (*patch.Players)...)
	}
	if patch.Ball != nil {
		next.Ball = *patch.Ball
	}
	if patch.PlayOutcome != nil {
		next.PlayOutcome = *patch.PlayOutcome
	}
	if patch.IsRunning != nil {
		next.IsRunning = *patch.IsRunning
	}
	if patch.IsPaused != nil {
		next.IsPaused = *patch.IsPaused
	}
	if patch.IsComplete != nil {
		next.IsComplete = *patch.IsComplete
	}
	if patch.IsRunPlay != nil {
		next.IsRunPlay = *patch.IsRunPlay
	}
	if patch.RunConcept != nil {
		next.RunConcept = *patch.RunConcept
	}
	if patch.DesignedGap != nil {
		next.DesignedGap = *patch.DesignedGap
	}
	if patch.BallCarrierID != nil {
		next.BallCarrierID = *patch.BallCarrierID
	}
	if patch.CoverageShell != nil {
		next.CoverageShell = *patch.CoverageShell
	}

	if len(patch.Events) > 0 {
		events := make([]SimEvent, 0, len(prev.Events)+len(patch.Events))
		events = append(events, prev.Events...)
		next.Events = append(events, patch.Events...)
	}

	return next
}
