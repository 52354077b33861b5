package engine_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/clients"
)

// CreateSessionRequest selects the play the engine should simulate
type CreateSessionRequest struct {
	OffensePlay string `json:"offense_play,omitempty"`
	DefensePlay string `json:"defense_play,omitempty"`
	Seed        *int64 `json:"seed,omitempty"`
	TickRateHz  int    `json:"tick_rate_hz,omitempty"`
}

// Session is the engine's answer to a session request
type Session struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status,omitempty"`
}

// EngineClient talks to the simulation engine's REST API
type EngineClient struct {
	*clients.BaseClient
}

func NewEngineClient(baseURL string) *EngineClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &EngineClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

// CreateSession asks the engine for a new simulation session. The returned
// id is what the viewer socket connects with.
func (c *EngineClient) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Session{}, fmt.Errorf("failed to marshal session request: %w", err)
	}

	resp, err := c.Post(ctx, SimulationsEndpoint, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(resp, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session response: %w", err)
	}
	if _, err := uuid.Parse(session.SessionID); err != nil {
		return Session{}, fmt.Errorf("engine returned invalid session id %q: %w", session.SessionID, err)
	}

	log.Info().Str("session_id", session.SessionID).Str("offense_play", req.OffensePlay).Msg("simulation session created")
	return session, nil
}

// Health checks that the engine is reachable
func (c *EngineClient) Health(ctx context.Context) error {
	if _, err := c.Get(ctx, HealthEndpoint); err != nil {
		return fmt.Errorf("engine health check failed: %w", err)
	}
	return nil
}
