// Package archive persists completed plays to Postgres so they can be
// replayed offline with the same scrubbing controls as a live session.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/simviewer/go/internal/archive/db"
	"github.com/mcdev12/simviewer/go/internal/models"
	"github.com/mcdev12/simviewer/go/internal/playback"
	"github.com/mcdev12/simviewer/go/internal/sqlutil"
)

// ErrPlayNotFound is returned when a play id has no archived play
var ErrPlayNotFound = errors.New("play not found")

// Play is an archived play's header
type Play struct {
	ID          uuid.UUID    `json:"id"`
	SessionID   string       `json:"session_id"`
	Outcome     string       `json:"outcome,omitempty"`
	FirstTick   int          `json:"first_tick"`
	FinalTick   int          `json:"final_tick"`
	TickCount   int          `json:"tick_count"`
	Metadata    PlayMetadata `json:"metadata"`
	CompletedAt time.Time    `json:"completed_at"`
}

// PlayMetadata is the play-level context kept next to the ticks
type PlayMetadata struct {
	IsRunPlay     bool   `json:"is_run_play,omitempty"`
	RunConcept    string `json:"run_concept,omitempty"`
	DesignedGap   string `json:"designed_gap,omitempty"`
	CoverageShell string `json:"coverage_shell,omitempty"`
}

// Store reads and writes archived plays
type Store struct {
	db      *sql.DB
	queries *db.Queries
}

// NewStore creates a store on an open database
func NewStore(database *sql.DB) *Store {
	return &Store{
		db:      database,
		queries: db.New(database),
	}
}

// SavePlay archives history, closed off by final, in one transaction
func (s *Store) SavePlay(ctx context.Context, sessionID string, final models.SimSnapshot, history []models.SimSnapshot) (Play, error) {
	ticks := PlayTicks(final, history)
	if len(ticks) == 0 {
		return Play{}, playback.ErrEmptySnapshot
	}

	metadata, err := sqlutil.ToNullJSON(MetadataOf(final))
	if err != nil {
		return Play{}, err
	}

	var saved db.Play
	err = sqlutil.Run(ctx, s.db, s.queries.WithTx, func(q *db.Queries) error {
		saved, err = q.CreatePlay(ctx, db.CreatePlayParams{
			ID:        uuid.New(),
			SessionID: sessionID,
			Outcome:   sqlutil.ToNullString(final.PlayOutcome),
			FirstTick: int32(ticks[0].Tick),
			FinalTick: int32(ticks[len(ticks)-1].Tick),
			TickCount: int32(len(ticks)),
			Metadata:  metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to create play: %w", err)
		}

		for _, snapshot := range ticks {
			body, err := json.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("failed to marshal tick %d: %w", snapshot.Tick, err)
			}
			if err := q.InsertPlayTick(ctx, db.InsertPlayTickParams{
				PlayID:   saved.ID,
				Tick:     int32(snapshot.Tick),
				Snapshot: body,
			}); err != nil {
				return fmt.Errorf("failed to insert tick %d: %w", snapshot.Tick, err)
			}
		}
		return nil
	})
	if err != nil {
		return Play{}, err
	}
	return toPlay(saved)
}

// LoadPlay returns an archived play and its snapshots, oldest first
func (s *Store) LoadPlay(ctx context.Context, id uuid.UUID) (Play, []models.SimSnapshot, error) {
	row, err := s.queries.GetPlay(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Play{}, nil, ErrPlayNotFound
	}
	if err != nil {
		return Play{}, nil, fmt.Errorf("failed to get play: %w", err)
	}
	play, err := toPlay(row)
	if err != nil {
		return Play{}, nil, err
	}

	rows, err := s.queries.ListPlayTicks(ctx, id)
	if err != nil {
		return Play{}, nil, fmt.Errorf("failed to list play ticks: %w", err)
	}
	snapshots := make([]models.SimSnapshot, 0, len(rows))
	for _, r := range rows {
		var snapshot models.SimSnapshot
		if err := json.Unmarshal(r.Snapshot, &snapshot); err != nil {
			return Play{}, nil, fmt.Errorf("failed to decode tick %d: %w", r.Tick, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return play, snapshots, nil
}

// ListPlays returns the most recently completed plays
func (s *Store) ListPlays(ctx context.Context, limit int) ([]Play, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.queries.ListPlays(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	plays := make([]Play, 0, len(rows))
	for _, r := range rows {
		p, err := toPlay(r)
		if err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}
	return plays, nil
}

// DeletePlay removes a play and its ticks
func (s *Store) DeletePlay(ctx context.Context, id uuid.UUID) error {
	if err := s.queries.DeletePlay(ctx, id); err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}
	return nil
}

// PlayTicks orders the snapshots to archive: the buffered history followed
// by final when it is newer than the last buffered tick.
func PlayTicks(final models.SimSnapshot, history []models.SimSnapshot) []models.SimSnapshot {
	out := make([]models.SimSnapshot, 0, len(history)+1)
	for _, snapshot := range history {
		if n := len(out); n > 0 && snapshot.Tick <= out[n-1].Tick {
			continue
		}
		out = append(out, snapshot)
	}
	if n := len(out); n == 0 || final.Tick > out[n-1].Tick {
		out = append(out, final)
	} else if final.Tick == out[n-1].Tick {
		out[n-1] = final
	}
	return out
}

// MetadataOf extracts the play-level context from the terminal snapshot
func MetadataOf(final models.SimSnapshot) PlayMetadata {
	return PlayMetadata{
		IsRunPlay:     final.IsRunPlay,
		RunConcept:    final.RunConcept,
		DesignedGap:   final.DesignedGap,
		CoverageShell: final.CoverageShell,
	}
}

func toPlay(row db.Play) (Play, error) {
	p := Play{
		ID:          row.ID,
		SessionID:   row.SessionID,
		Outcome:     sqlutil.FromNullString(row.Outcome),
		FirstTick:   int(row.FirstTick),
		FinalTick:   int(row.FinalTick),
		TickCount:   int(row.TickCount),
		CompletedAt: row.CompletedAt,
	}
	if err := sqlutil.FromNullJSON(row.Metadata, &p.Metadata); err != nil {
		return Play{}, err
	}
	return p, nil
}
