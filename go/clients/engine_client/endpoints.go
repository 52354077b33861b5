package engine_client

const (
	// Base URL
	DefaultBaseURL = "http://localhost:8000"

	// API Endpoints
	HealthEndpoint      = "/health"
	SimulationsEndpoint = "/api/simulations"
)
