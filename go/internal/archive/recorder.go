package archive

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/models"
)

// Saver persists a completed play
type Saver interface {
	SavePlay(ctx context.Context, sessionID string, final models.SimSnapshot, history []models.SimSnapshot) (Play, error)
}

// Recorder archives every play the viewer sees complete. Saves run in the
// background so the UI loop never waits on the database.
type Recorder struct {
	saver   Saver
	timeout time.Duration

	mu        sync.Mutex
	sessionID string
	saved     []Play
	closed    bool
	wg        sync.WaitGroup
}

// NewRecorder creates a recorder saving through saver
func NewRecorder(saver Saver, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Recorder{saver: saver, timeout: timeout}
}

// SetSession sets the session id recorded with subsequent plays
func (r *Recorder) SetSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = sessionID
}

// SnapshotBuffered is a no-op; plays are archived whole on completion
func (r *Recorder) SnapshotBuffered(models.SimSnapshot) {}

// PlayCompleted saves the play in the background
func (r *Recorder) PlayCompleted(final models.SimSnapshot, history []models.SimSnapshot) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Debug().Int("tick", final.Tick).Msg("recorder closed, play not archived")
		return
	}
	sessionID := r.sessionID
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		play, err := r.saver.SavePlay(ctx, sessionID, final, history)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Int("tick", final.Tick).Msg("failed to archive play")
			return
		}

		r.mu.Lock()
		r.saved = append(r.saved, play)
		r.mu.Unlock()
		log.Info().
			Str("play_id", play.ID.String()).
			Str("session_id", sessionID).
			Int("ticks", play.TickCount).
			Str("outcome", play.Outcome).
			Msg("play archived")
	}()
}

// Saved returns the plays archived so far
func (r *Recorder) Saved() []Play {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Play(nil), r.saved...)
}

// Close waits for pending saves. Plays completed after Close are dropped.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
