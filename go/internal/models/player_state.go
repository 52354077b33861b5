package models

import "math"

// PlayerRole enumerates the roles the engine assigns
type PlayerRole string

const (
	RoleQB       PlayerRole = "qb"
	RoleReceiver PlayerRole = "receiver"
	RoleDefender PlayerRole = "defender"
	RoleOL       PlayerRole = "ol"
	RoleDL       PlayerRole = "dl"
	RoleRB       PlayerRole = "rb"
	RoleFB       PlayerRole = "fb"
)

// TeamSide is which side of the ball a player is on
type TeamSide string

const (
	TeamOffense TeamSide = "offense"
	TeamDefense TeamSide = "defense"
)

// Coverage phases reported by the engine for man defenders
const (
	CoveragePhaseTrail   = "trail"
	CoveragePhaseInPhase = "in_phase"
)

// PlayerState is one player's position and AI state at a tick.
type PlayerState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Number   int        `json:"number,omitempty"`
	Team     TeamSide   `json:"team"`
	Role     PlayerRole `json:"role"`
	Position string     `json:"position,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	HasBall  bool       `json:"has_ball,omitempty"`

	// Receivers
	RouteName     string   `json:"route_name,omitempty"`
	RouteProgress *float64 `json:"route_progress,omitempty"`

	// Coverage
	CoverageType       string  `json:"coverage_type,omitempty"`
	CoverageAssignment string  `json:"coverage_assignment,omitempty"`
	CoveragePhase      string  `json:"coverage_phase,omitempty"`
	ZoneName           string  `json:"zone_name,omitempty"`
	HasRecognizedBreak bool    `json:"has_recognized_break,omitempty"`
	RecognitionTimer   float64 `json:"recognition_timer,omitempty"`
	RecognitionDelay   float64 `json:"recognition_delay,omitempty"`

	// Blocking
	IsEngaged         bool     `json:"is_engaged,omitempty"`
	EngagedWith       string   `json:"engaged_with,omitempty"`
	BlockShedProgress *float64 `json:"block_shed_progress,omitempty"`

	// Pursuit and tackling
	PursuitTarget  *Point `json:"pursuit_target,omitempty"`
	TackleLeverage string `json:"tackle_leverage,omitempty"`
}

// Pos returns the player's position as a Point.
func (p PlayerState) Pos() Point {
	return Point{X: p.X, Y: p.Y}
}

// Distance returns the Euclidean distance between two points in yards.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
