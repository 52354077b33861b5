// Package animation smooths player motion between engine ticks.
package animation

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/models"
)

const (
	// DefaultFrameInterval is roughly one display refresh
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultRate is the fraction of the remaining distance covered per frame
	DefaultRate = 0.25
	snapEpsilon = 0.01
)

// Interpolator moves displayed positions a fixed fraction of the way toward
// the latest target positions on every frame. It runs on its own clock,
// independent of tick arrival, and must be stopped when the view goes away.
type Interpolator struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	interval time.Duration
	rate     float64
	current  map[string]models.Point
	targets  map[string]models.Point

	cancel context.CancelFunc
	done   chan struct{}
}

// NewInterpolator creates a stopped interpolator. Zero values use the defaults.
func NewInterpolator(clock clockwork.Clock, interval time.Duration, rate float64) *Interpolator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if rate <= 0 || rate > 1 {
		rate = DefaultRate
	}
	return &Interpolator{
		clock:    clock,
		interval: interval,
		rate:     rate,
		current:  make(map[string]models.Point),
		targets:  make(map[string]models.Point),
	}
}

// SetTargets replaces the target positions. Players seen for the first time
// appear at their target; players no longer present are dropped.
func (i *Interpolator) SetTargets(players []models.PlayerState) {
	i.mu.Lock()
	defer i.mu.Unlock()

	targets := make(map[string]models.Point, len(players))
	for _, p := range players {
		targets[p.ID] = p.Pos()
		if _, ok := i.current[p.ID]; !ok {
			i.current[p.ID] = p.Pos()
		}
	}
	for id := range i.current {
		if _, ok := targets[id]; !ok {
			delete(i.current, id)
		}
	}
	i.targets = targets
}

// Step advances every position one frame toward its target
func (i *Interpolator) Step() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for id, target := range i.targets {
		cur := i.current[id]
		next := models.Point{
			X: cur.X + (target.X-cur.X)*i.rate,
			Y: cur.Y + (target.Y-cur.Y)*i.rate,
		}
		if models.Distance(next, target) < snapEpsilon {
			next = target
		}
		i.current[id] = next
	}
}

// Positions returns a copy of the displayed positions
func (i *Interpolator) Positions() map[string]models.Point {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make(map[string]models.Point, len(i.current))
	for id, p := range i.current {
		out[id] = p
	}
	return out
}

// Start runs the frame loop until ctx is cancelled or Stop is called.
// Starting a running interpolator is a no-op.
func (i *Interpolator) Start(ctx context.Context) {
	i.mu.Lock()
	if i.cancel != nil {
		i.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	i.cancel = cancel
	i.done = done
	i.mu.Unlock()

	ticker := i.clock.NewTicker(i.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				i.Step()
			}
		}
	}()
	log.Debug().Dur("interval", i.interval).Msg("animation loop started")
}

// Stop cancels the frame loop and waits for it to exit
func (i *Interpolator) Stop() {
	i.mu.Lock()
	cancel, done := i.cancel, i.done
	i.cancel, i.done = nil, nil
	i.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debug().Msg("animation loop stopped")
}

// Running reports whether the frame loop is active
func (i *Interpolator) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cancel != nil
}
