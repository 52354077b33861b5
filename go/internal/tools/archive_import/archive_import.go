package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/simviewer/go/internal/archive"
	"github.com/mcdev12/simviewer/go/internal/dbconfig"
	"github.com/mcdev12/simviewer/go/internal/models"
)

// readRecording loads a JSON array of snapshots and orders it the way the
// archive stores plays: strictly increasing ticks, last snapshot terminal.
func readRecording(data []byte) ([]models.SimSnapshot, error) {
	var snapshots []models.SimSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("recording has no snapshots")
	}
	final := snapshots[len(snapshots)-1]
	return archive.PlayTicks(final, snapshots[:len(snapshots)-1]), nil
}

func importPlay(ctx context.Context, pool *pgxpool.Pool, sessionID string, ticks []models.SimSnapshot) (uuid.UUID, error) {
	final := ticks[len(ticks)-1]
	metadata, err := json.Marshal(archive.MetadataOf(final))
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal metadata: %w", err)
	}

	var outcome *string
	if final.PlayOutcome != "" {
		outcome = &final.PlayOutcome
	}

	id := uuid.New()
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO plays (
              id, session_id, outcome, first_tick, final_tick, tick_count, metadata
            ) VALUES (
              $1,$2,$3,$4,$5,$6,$7
            )
        `,
			id, sessionID, outcome, ticks[0].Tick, final.Tick, len(ticks), metadata,
		); err != nil {
			return fmt.Errorf("insert play: %w", err)
		}

		batch := &pgx.Batch{}
		for _, snapshot := range ticks {
			body, err := json.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("marshal tick %d: %w", snapshot.Tick, err)
			}
			batch.Queue(`INSERT INTO play_ticks (play_id, tick, snapshot) VALUES ($1,$2,$3)`, id, snapshot.Tick, body)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert ticks: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func main() {
	file := flag.String("file", "", "JSON recording: an array of snapshots, oldest first")
	sessionID := flag.String("session", "imported", "session id recorded with the play")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: archive_import -file recording.json [-session id]")
		os.Exit(2)
	}

	// 1) Load the recording
	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	ticks, err := readRecording(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert play and ticks in one transaction
	id, err := importPlay(ctx, pool, *sessionID, ticks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		pool.Close()
		os.Exit(1)
	}

	// 4) Print summary
	fmt.Printf(
		"Archive import complete: play %s, %d ticks (%d-%d), outcome %q\n",
		id, len(ticks), ticks[0].Tick, ticks[len(ticks)-1].Tick, ticks[len(ticks)-1].PlayOutcome,
	)
}
