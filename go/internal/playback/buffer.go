package playback

import (
	"errors"
	"fmt"

	"github.com/mcdev12/simviewer/go/internal/models"
)

// DefaultBufferCapacity is how many ticks of history the viewer keeps.
// At ~20 Hz this is roughly 25 seconds of play.
const DefaultBufferCapacity = 500

// ErrTickOutOfOrder is returned when a snapshot does not advance the latest tick
var ErrTickOutOfOrder = errors.New("tick out of order")

// TickBuffer is a bounded, tick-ordered history of snapshots. Appends are
// O(1); once full, the oldest snapshot is evicted. Lookups by tick go
// through an index so they stay O(1) regardless of how full the buffer is.
type TickBuffer struct {
	capacity int
	ring     []models.SimSnapshot
	head     int // slot of the oldest entry
	size     int
	index    map[int]int // tick -> slot
}

// NewTickBuffer creates an empty buffer. A non-positive capacity uses the default.
func NewTickBuffer(capacity int) *TickBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &TickBuffer{
		capacity: capacity,
		ring:     make([]models.SimSnapshot, capacity),
		index:    make(map[int]int, capacity),
	}
}

// Capacity returns the maximum number of snapshots held
func (b *TickBuffer) Capacity() int {
	return b.capacity
}

// Len returns the number of snapshots held
func (b *TickBuffer) Len() int {
	return b.size
}

// Append adds snapshot as the newest entry, evicting the oldest when full.
// The snapshot's tick must be greater than the latest buffered tick.
func (b *TickBuffer) Append(snapshot models.SimSnapshot) error {
	if snapshot.Tick < 0 {
		return fmt.Errorf("%w: negative tick %d", ErrTickOutOfOrder, snapshot.Tick)
	}
	if latest, ok := b.Latest(); ok && snapshot.Tick <= latest.Tick {
		return fmt.Errorf("%w: tick %d after %d", ErrTickOutOfOrder, snapshot.Tick, latest.Tick)
	}

	if b.size == b.capacity {
		evicted := b.ring[b.head]
		delete(b.index, evicted.Tick)
		b.ring[b.head] = models.SimSnapshot{}
		b.head = (b.head + 1) % b.capacity
		b.size--
	}

	slot := (b.head + b.size) % b.capacity
	b.ring[slot] = snapshot
	b.index[snapshot.Tick] = slot
	b.size++
	return nil
}

// Get returns the snapshot stored for tick
func (b *TickBuffer) Get(tick int) (models.SimSnapshot, bool) {
	slot, ok := b.index[tick]
	if !ok {
		return models.SimSnapshot{}, false
	}
	return b.ring[slot], true
}

// Has reports whether tick is buffered
func (b *TickBuffer) Has(tick int) bool {
	_, ok := b.index[tick]
	return ok
}

// Latest returns the newest snapshot
func (b *TickBuffer) Latest() (models.SimSnapshot, bool) {
	if b.size == 0 {
		return models.SimSnapshot{}, false
	}
	return b.at(b.size - 1), true
}

// Oldest returns the oldest snapshot still held
func (b *TickBuffer) Oldest() (models.SimSnapshot, bool) {
	if b.size == 0 {
		return models.SimSnapshot{}, false
	}
	return b.at(0), true
}

// Clear empties the buffer
func (b *TickBuffer) Clear() {
	for i := range b.ring {
		b.ring[i] = models.SimSnapshot{}
	}
	b.head = 0
	b.size = 0
	clear(b.index)
}

// Reset empties the buffer and seeds it with snapshot
func (b *TickBuffer) Reset(snapshot models.SimSnapshot) error {
	b.Clear()
	return b.Append(snapshot)
}

// Ticks returns every buffered tick, oldest first
func (b *TickBuffer) Ticks() []int {
	ticks := make([]int, b.size)
	for i := 0; i < b.size; i++ {
		ticks[i] = b.at(i).Tick
	}
	return ticks
}

// Neighbor returns the tick delta positions away from tick in buffer order.
// The result is clamped to the oldest and newest entries.
func (b *TickBuffer) Neighbor(tick, delta int) (int, bool) {
	slot, ok := b.index[tick]
	if !ok {
		return 0, false
	}
	pos := (slot - b.head + b.capacity) % b.capacity
	pos += delta
	if pos < 0 {
		pos = 0
	}
	if pos > b.size-1 {
		pos = b.size - 1
	}
	return b.at(pos).Tick, true
}

// Window returns up to n snapshots ending at tick (inclusive), oldest first.
// It returns nil when tick is not buffered.
func (b *TickBuffer) Window(tick, n int) []models.SimSnapshot {
	slot, ok := b.index[tick]
	if !ok || n <= 0 {
		return nil
	}
	end := (slot - b.head + b.capacity) % b.capacity
	start := end - n + 1
	if start < 0 {
		start = 0
	}
	out := make([]models.SimSnapshot, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, b.at(i))
	}
	return out
}

// Snapshots returns a copy of every buffered snapshot, oldest first
func (b *TickBuffer) Snapshots() []models.SimSnapshot {
	out := make([]models.SimSnapshot, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.at(i)
	}
	return out
}

// at returns the i-th entry counting from the oldest
func (b *TickBuffer) at(i int) models.SimSnapshot {
	return b.ring[(b.head+i)%b.capacity]
}
