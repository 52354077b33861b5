package models

// BallMode is the ball's state as reported by the engine
type BallMode string

const (
	BallDead     BallMode = "dead"
	BallHeld     BallMode = "held"
	BallInFlight BallMode = "in_flight"
	BallLoose    BallMode = "loose"
)

// BallState is the ball's position and flight data at a tick.
type BallState struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Height    float64  `json:"height"`
	State     BallMode `json:"state"`
	CarrierID string   `json:"carrier_id,omitempty"`

	// Only populated while in flight
	FlightOrigin   *Point   `json:"flight_origin,omitempty"`
	FlightTarget   *Point   `json:"flight_target,omitempty"`
	FlightProgress *float64 `json:"flight_progress,omitempty"`
}
