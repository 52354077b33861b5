// Package overlay derives the analysis overlays drawn on top of a snapshot.
//
// Every function here is a pure function of its snapshot argument: nothing
// is cached between calls and no input is modified, so the same overlays can
// be recomputed for any buffered historical tick while scrubbing.
package overlay

import (
	"math"
	"sort"
	"strings"

	"github.com/mcdev12/simviewer/go/internal/models"
)

const (
	// OpenGapWidth is the gap width in yards a run lane must exceed to be open
	OpenGapWidth = 1.5
	// ShedThreshold splits blocker-favored from rusher-favored engagements
	ShedThreshold = 0.5
)

// LineStyle is how a separation line is stroked
type LineStyle string

const (
	LineSolid  LineStyle = "solid"  // in phase
	LineDashed LineStyle = "dashed" // trailing
)

// Favor says which side an engagement currently favors
type Favor string

const (
	FavorBlocker Favor = "blocker"
	FavorRusher  Favor = "rusher"
)

// Overlays is everything derived from one snapshot
type Overlays struct {
	Tick          int           `json:"tick"`
	Separations   []Separation  `json:"separations"`
	Gaps          []Gap         `json:"gaps"`
	Engagements   []Engagement  `json:"engagements"`
	Recognition   []Recognition `json:"recognition"`
	Pursuits      []Pursuit     `json:"pursuits"`
	BallFlight    *BallFlight   `json:"ball_flight,omitempty"`
	CoverageShell string        `json:"coverage_shell,omitempty"`
}

// Separation is the distance between a man defender and the receiver he covers
type Separation struct {
	DefenderID string       `json:"defender_id"`
	TargetID   string       `json:"target_id"`
	From       models.Point `json:"from"`
	To         models.Point `json:"to"`
	Distance   float64      `json:"distance"`
	Trailing   bool         `json:"trailing"`
	Style      LineStyle    `json:"style"`
}

// Gap is the lane between two adjacent offensive linemen
type Gap struct {
	Label    string       `json:"label"`
	LeftID   string       `json:"left_id"`
	RightID  string       `json:"right_id"`
	Midpoint models.Point `json:"midpoint"`
	Width    float64      `json:"width"`
	Open     bool         `json:"open"`
	Designed bool         `json:"designed"`
}

// Engagement is a blocker/defender pair and the defender's shed progress
type Engagement struct {
	BlockerID  string       `json:"blocker_id"`
	DefenderID string       `json:"defender_id"`
	Anchor     models.Point `json:"anchor"`
	Progress   float64      `json:"progress"`
	Favor      Favor        `json:"favor"`
}

// Recognition is a defender's progress toward reading a receiver's break.
// Once the break is recognized the sweep is replaced by a marker.
type Recognition struct {
	DefenderID string       `json:"defender_id"`
	Position   models.Point `json:"position"`
	Progress   float64      `json:"progress"`
	Recognized bool         `json:"recognized"`
}

// Pursuit is the straight line from a player to his engine-reported pursuit target
type Pursuit struct {
	PlayerID string       `json:"player_id"`
	From     models.Point `json:"from"`
	To       models.Point `json:"to"`
}

// BallFlight is the trajectory of a ball in the air
type BallFlight struct {
	Origin   models.Point `json:"origin"`
	Target   models.Point `json:"target"`
	Current  models.Point `json:"current"`
	Progress float64      `json:"progress"`
	Height   float64      `json:"height"`
}

// Compute derives every overlay for snapshot
func Compute(snapshot models.SimSnapshot) Overlays {
	return Overlays{
		Tick:          snapshot.Tick,
		Separations:   Separations(snapshot),
		Gaps:          Gaps(snapshot),
		Engagements:   Engagements(snapshot),
		Recognition:   RecognitionProgress(snapshot),
		Pursuits:      Pursuits(snapshot),
		BallFlight:    Flight(snapshot.Ball),
		CoverageShell: snapshot.CoverageShell,
	}
}

// Separations measures every man-coverage defender against his assignment.
// The coverage phase only picks the line style; the distance is always the
// plain Euclidean distance.
func Separations(snapshot models.SimSnapshot) []Separation {
	var out []Separation
	for _, d := range snapshot.Players {
		if d.Team != models.TeamDefense || d.CoverageAssignment == "" {
			continue
		}
		if d.CoverageType != "" && !strings.EqualFold(d.CoverageType, "man") {
			continue
		}
		target, ok := snapshot.Player(d.CoverageAssignment)
		if !ok {
			continue
		}

		trailing := isTrailing(d.CoveragePhase)
		style := LineSolid
		if trailing {
			style = LineDashed
		}
		out = append(out, Separation{
			DefenderID: d.ID,
			TargetID:   target.ID,
			From:       d.Pos(),
			To:         target.Pos(),
			Distance:   models.Distance(d.Pos(), target.Pos()),
			Trailing:   trailing,
			Style:      style,
		})
	}
	return out
}

func isTrailing(phase string) bool {
	switch strings.ToLower(phase) {
	case models.CoveragePhaseTrail, "trailing":
		return true
	}
	return false
}

// Gaps measures the lanes between adjacent offensive linemen on run plays.
// Linemen are ordered left to right by x; a lane is open only when strictly
// wider than OpenGapWidth. The engine's designed gap is flagged whether
// open or not.
func Gaps(snapshot models.SimSnapshot) []Gap {
	if !snapshot.IsRunPlay {
		return nil
	}
	line := snapshot.PlayersByRole(models.RoleOL)
	if len(line) < 2 {
		return nil
	}
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	gaps := make([]Gap, 0, len(line)-1)
	for i := 0; i < len(line)-1; i++ {
		left, right := line[i], line[i+1]
		width := math.Abs(right.X - left.X)
		label := GapLabel(i, len(line)-1)
		gaps = append(gaps, Gap{
			Label:   label,
			LeftID:  left.ID,
			RightID: right.ID,
			Midpoint: models.Point{
				X: (left.X + right.X) / 2,
				Y: (left.Y + right.Y) / 2,
			},
			Width:    width,
			Open:     width > OpenGapWidth,
			Designed: sameGap(label, snapshot.DesignedGap),
		})
	}
	return gaps
}

// GapLabel names gap i of count interior gaps from the center outward:
// A is next to the center, then B, C... on each side, e.g. "B_left". An odd
// count has one middle gap labelled plain "A", so its neighbours are B.
func GapLabel(i, count int) string {
	half := count / 2
	odd := count%2 == 1
	if odd && i == half {
		return "A"
	}
	var side string
	var depth int
	if i < half {
		side = "left"
		depth = half - 1 - i
		if odd {
			depth++
		}
	} else {
		side = "right"
		depth = i - half
	}
	return string(rune('A'+depth)) + "_" + side
}

func sameGap(label, designed string) bool {
	if designed == "" {
		return false
	}
	normalize := func(s string) string {
		return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(s))
	}
	return normalize(label) == normalize(designed)
}

// Engagements lists every engaged DL/OL pair with a reported shed progress. The
// bar fill is the reported progress clamped to [0,1]; exactly ShedThreshold
// still favors the blocker.
func Engagements(snapshot models.SimSnapshot) []Engagement {
	var out []Engagement
	for _, d := range snapshot.Players {
		if d.Role != models.RoleDL || !d.IsEngaged || d.EngagedWith == "" || d.BlockShedProgress == nil {
			continue
		}
		blocker, ok := snapshot.Player(d.EngagedWith)
		if !ok || blocker.Role != models.RoleOL {
			continue
		}
		progress := clamp01(*d.BlockShedProgress)
		out = append(out, Engagement{
			BlockerID:  blocker.ID,
			DefenderID: d.ID,
			Anchor: models.Point{
				X: (blocker.X + d.X) / 2,
				Y: (blocker.Y + d.Y) / 2,
			},
			Progress: progress,
			Favor:    ShedFavor(progress),
		})
	}
	return out
}

// ShedFavor maps shed progress to the side it favors
func ShedFavor(progress float64) Favor {
	if progress > ShedThreshold {
		return FavorRusher
	}
	return FavorBlocker
}

// RecognitionProgress reports how far each covering defender is through his
// recognition delay. Defenders that already recognized the break report a
// marker instead of a sweep for the rest of the play.
func RecognitionProgress(snapshot models.SimSnapshot) []Recognition {
	var out []Recognition
	for _, d := range snapshot.Players {
		if d.HasRecognizedBreak {
			out = append(out, Recognition{DefenderID: d.ID, Position: d.Pos(), Progress: 1, Recognized: true})
			continue
		}
		if d.RecognitionDelay <= 0 {
			continue
		}
		out = append(out, Recognition{
			DefenderID: d.ID,
			Position:   d.Pos(),
			Progress:   clamp01(d.RecognitionTimer / d.RecognitionDelay),
		})
	}
	return out
}

// Pursuits draws the engine's pursuit targets as-is
func Pursuits(snapshot models.SimSnapshot) []Pursuit {
	var out []Pursuit
	for _, p := range snapshot.Players {
		if p.PursuitTarget == nil {
			continue
		}
		out = append(out, Pursuit{PlayerID: p.ID, From: p.Pos(), To: *p.PursuitTarget})
	}
	return out
}

// Flight returns the trajectory of a ball in the air, or nil
func Flight(ball models.BallState) *BallFlight {
	if ball.State != models.BallInFlight || ball.FlightOrigin == nil || ball.FlightTarget == nil {
		return nil
	}
	progress := 0.0
	if ball.FlightProgress != nil {
		progress = clamp01(*ball.FlightProgress)
	}
	return &BallFlight{
		Origin:   *ball.FlightOrigin,
		Target:   *ball.FlightTarget,
		Current:  models.Point{X: ball.X, Y: ball.Y},
		Progress: progress,
		Height:   ball.Height,
	}
}

// Trails collects each player's positions across history, oldest first.
// Positions come straight from the historical snapshots on every call.
func Trails(history []models.SimSnapshot) map[string][]models.Point {
	trails := make(map[string][]models.Point)
	for _, snapshot := range history {
		for _, p := range snapshot.Players {
			trails[p.ID] = append(trails[p.ID], p.Pos())
		}
	}
	return trails
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
