package models

// SimSnapshot is the full state of the simulation at one tick.
// Snapshots are treated as immutable once buffered; a later tick always
// produces a new snapshot rather than mutating an earlier one.
type SimSnapshot struct {
	Tick        int           `json:"tick"`
	Time        float64       `json:"time"`
	Phase       string        `json:"phase"`
	Players     []PlayerState `json:"players"`
	Ball        BallState     `json:"ball"`
	Events      []SimEvent    `json:"events"`
	PlayOutcome string        `json:"play_outcome"`
	IsRunning   bool          `json:"is_running"`
	IsPaused    bool          `json:"is_paused"`
	IsComplete  bool          `json:"is_complete"`

	// Run game
	IsRunPlay     bool   `json:"is_run_play"`
	RunConcept    string `json:"run_concept,omitempty"`
	DesignedGap   string `json:"designed_gap,omitempty"`
	BallCarrierID string `json:"ball_carrier_id,omitempty"`

	// Engine-reported defensive alignment, used for labels only
	CoverageShell string `json:"coverage_shell,omitempty"`
}

// Player returns the player with the given id.
func (s SimSnapshot) Player(id string) (PlayerState, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerState{}, false
}

// PlayersByRole returns every player whose role matches one of roles, in snapshot order.
func (s SimSnapshot) PlayersByRole(roles ...PlayerRole) []PlayerState {
	var out []PlayerState
	for _, p := range s.Players {
		for _, r := range roles {
			if p.Role == r {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// SimEvent is a discrete occurrence reported by the engine (snap, catch, sack...).
type SimEvent struct {
	Type        string  `json:"type"`
	Time        float64 `json:"time"`
	Description string  `json:"description,omitempty"`
	PlayerID    string  `json:"player_id,omitempty"`
}

// Point is a position in yards relative to the line of scrimmage.
// X is lateral, Y is downfield.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
