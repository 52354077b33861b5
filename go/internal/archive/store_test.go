package archive

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/simviewer/go/internal/archive/db"
	"github.com/mcdev12/simviewer/go/internal/dbconfig"
	"github.com/mcdev12/simviewer/go/internal/models"
	"github.com/mcdev12/simviewer/go/internal/sqlutil"
)

func ticksOf(snaps []models.SimSnapshot) []int {
	out := make([]int, len(snaps))
	for i, s := range snaps {
		out[i] = s.Tick
	}
	return out
}

func TestPlayTicks(t *testing.T) {
	history := []models.SimSnapshot{{Tick: 0}, {Tick: 1}, {Tick: 2}}

	cases := []struct {
		name    string
		final   models.SimSnapshot
		history []models.SimSnapshot
		want    []int
	}{
		{name: "final after history", final: models.SimSnapshot{Tick: 3}, history: history, want: []int{0, 1, 2, 3}},
		{name: "final replaces same tick", final: models.SimSnapshot{Tick: 2, IsComplete: true}, history: history, want: []int{0, 1, 2}},
		{name: "stale final ignored", final: models.SimSnapshot{Tick: 1}, history: history, want: []int{0, 1, 2}},
		{name: "no history", final: models.SimSnapshot{Tick: 5}, want: []int{5}},
		{
			name:    "out of order history skipped",
			final:   models.SimSnapshot{Tick: 9},
			history: []models.SimSnapshot{{Tick: 4}, {Tick: 3}, {Tick: 6}},
			want:    []int{4, 6, 9},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PlayTicks(tc.final, tc.history)
			if diff := cmp.Diff(tc.want, ticksOf(got)); diff != "" {
				t.Errorf("ticks mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got := PlayTicks(models.SimSnapshot{Tick: 2, IsComplete: true}, history)
	if !got[2].IsComplete {
		t.Errorf("final snapshot should replace the buffered tick")
	}
}

func TestToPlay(t *testing.T) {
	meta, err := sqlutil.ToNullJSON(PlayMetadata{IsRunPlay: true, DesignedGap: "A_right"})
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.New()
	p, err := toPlay(db.Play{
		ID:        id,
		SessionID: "session-1",
		Outcome:   sqlutil.ToNullString("touchdown"),
		FirstTick: 0,
		FinalTick: 41,
		TickCount: 42,
		Metadata:  meta,
	})
	if err != nil {
		t.Fatalf("toPlay: %v", err)
	}
	want := Play{
		ID:        id,
		SessionID: "session-1",
		Outcome:   "touchdown",
		FinalTick: 41,
		TickCount: 42,
		Metadata:  PlayMetadata{IsRunPlay: true, DesignedGap: "A_right"},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("play mismatch (-want +got):\n%s", diff)
	}
}

type fakeSaver struct {
	mu       sync.Mutex
	sessions []string
	ticks    [][]int
	err      error
}

func (f *fakeSaver) SavePlay(_ context.Context, sessionID string, final models.SimSnapshot, history []models.SimSnapshot) (Play, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Play{}, f.err
	}
	f.sessions = append(f.sessions, sessionID)
	ticks := PlayTicks(final, history)
	f.ticks = append(f.ticks, ticksOf(ticks))
	return Play{ID: uuid.New(), SessionID: sessionID, TickCount: len(ticks), Outcome: final.PlayOutcome}, nil
}

func TestRecorderSavesCompletedPlays(t *testing.T) {
	saver := &fakeSaver{}
	r := NewRecorder(saver, 0)
	r.SetSession("session-7")

	r.SnapshotBuffered(models.SimSnapshot{Tick: 0})
	r.PlayCompleted(models.SimSnapshot{Tick: 2, PlayOutcome: "sack"}, []models.SimSnapshot{{Tick: 0}, {Tick: 1}})
	r.Close()

	if diff := cmp.Diff([]string{"session-7"}, saver.sessions); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{0, 1, 2}}, saver.ticks); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}
	saved := r.Saved()
	if len(saved) != 1 || saved[0].Outcome != "sack" || saved[0].TickCount != 3 {
		t.Errorf("unexpected saved plays %+v", saved)
	}
}

func TestRecorderLogsFailures(t *testing.T) {
	r := NewRecorder(&fakeSaver{err: errors.New("connection refused")}, 0)
	r.PlayCompleted(models.SimSnapshot{Tick: 1}, nil)
	r.Close()
	if len(r.Saved()) != 0 {
		t.Errorf("failed saves should not be recorded")
	}
}

func TestRecorderDropsPlaysAfterClose(t *testing.T) {
	saver := &fakeSaver{}
	r := NewRecorder(saver, 0)
	r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(tick int) {
			defer wg.Done()
			r.PlayCompleted(models.SimSnapshot{Tick: tick}, nil)
		}(i)
	}
	wg.Wait()
	r.Close()

	if len(saver.sessions) != 0 || len(r.Saved()) != 0 {
		t.Errorf("plays completed after close should not be archived, got %d", len(saver.sessions))
	}
}

// TestStoreRoundTrip runs against a real database when SIMVIEWER_TEST_DB is set.
func TestStoreRoundTrip(t *testing.T) {
	if os.Getenv("SIMVIEWER_TEST_DB") == "" {
		t.Skip("SIMVIEWER_TEST_DB not set")
	}
	ctx := context.Background()
	database, err := dbconfig.NewConfigFromEnv().Open(ctx)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer database.Close()

	store := NewStore(database)
	final := models.SimSnapshot{Tick: 2, IsComplete: true, PlayOutcome: "incomplete", CoverageShell: "cover_1"}
	play, err := store.SavePlay(ctx, "session-it", final, []models.SimSnapshot{{Tick: 0}, {Tick: 1}})
	if err != nil {
		t.Fatalf("save play: %v", err)
	}
	defer store.DeletePlay(ctx, play.ID)

	loaded, snapshots, err := store.LoadPlay(ctx, play.ID)
	if err != nil {
		t.Fatalf("load play: %v", err)
	}
	if loaded.Metadata.CoverageShell != "cover_1" || loaded.TickCount != 3 {
		t.Errorf("unexpected play %+v", loaded)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, ticksOf(snapshots)); diff != "" {
		t.Errorf("ticks mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := store.LoadPlay(ctx, uuid.New()); !errors.Is(err, ErrPlayNotFound) {
		t.Errorf("expected ErrPlayNotFound, got %v", err)
	}
}
