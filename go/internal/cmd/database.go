package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/archive"
	"github.com/mcdev12/simviewer/go/internal/dbconfig"
	"github.com/mcdev12/simviewer/go/internal/models"
)

func setupDatabase(ctx context.Context) (*sql.DB, *archive.Store, error) {
	database, err := dbconfig.NewConfigFromEnv().Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	return database, archive.NewStore(database), nil
}

func loadReplay(ctx context.Context, store *archive.Store, rawID string) ([]models.SimSnapshot, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid play id %q: %w", rawID, err)
	}
	play, snapshots, err := store.LoadPlay(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load play %s: %w", id, err)
	}
	log.Info().
		Str("play_id", play.ID.String()).
		Str("session_id", play.SessionID).
		Int("ticks", len(snapshots)).
		Str("outcome", play.Outcome).
		Msg("replaying archived play")
	return snapshots, nil
}
