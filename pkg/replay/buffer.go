// Package replay records recent full snapshots for scrub/playback.
//
// A Buffer is a fixed-capacity FIFO ring that is independent of live state:
// it passively records city_update messages (never incremental updates) and
// feeds a read cursor for the dashboard's history scrubber. It never
// reconstructs authoritative current state.
package replay

import (
	"sync"
	"time"

	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

const (
	// DefaultCapacity is the number of snapshots retained when no capacity
	// is configured.
	DefaultCapacity = 300

	// DefaultTickInterval is the playback cursor advance interval.
	DefaultTickInterval = time.Second
)

// Buffer is a bounded ring of received snapshots plus a playback cursor.
//
// Once full, each new append evicts the oldest entry. The cursor addresses
// entries from oldest (0) to newest (Len()-1); eviction shifts it so it
// keeps pointing at the same snapshot while that snapshot survives.
type Buffer struct {
	mu sync.Mutex

	entries  []*protocol.CityUpdate
	head     int // next write position (circular)
	count    int
	capacity int

	recording bool
	cursor    int

	playing bool
	tick    time.Duration
	stop    chan struct{}
}

// NewBuffer creates a recording buffer with the given capacity.
// Non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:   make([]*protocol.CityUpdate, capacity),
		capacity:  capacity,
		recording: true,
		tick:      DefaultTickInterval,
	}
}

// SetTickInterval sets the playback advance interval. It takes effect on the
// next Play call.
func (b *Buffer) SetTickInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick = d
}

// Record appends a snapshot, evicting the oldest entry when full.
// It is a no-op while recording is off or for a nil snapshot.
func (b *Buffer) Record(msg *protocol.CityUpdate) {
	if msg == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.recording {
		return
	}

	evicting := b.count == b.capacity
	b.entries[b.head] = msg
	b.head = (b.head + 1) % b.capacity
	if evicting {
		// Oldest entry just dropped; keep the cursor on the same snapshot.
		if b.cursor > 0 {
			b.cursor--
		}
	} else {
		b.count++
	}
}

// SetRecording toggles whether Record appends new snapshots.
func (b *Buffer) SetRecording(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recording = on
}

// Recording reports whether new snapshots are being appended.
func (b *Buffer) Recording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// Len returns the number of buffered snapshots.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// At returns the snapshot at index i, oldest first.
func (b *Buffer) At(i int) (*protocol.CityUpdate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.at(i)
}

// at requires b.mu held.
func (b *Buffer) at(i int) (*protocol.CityUpdate, bool) {
	if i < 0 || i >= b.count {
		return nil, false
	}
	idx := (b.head - b.count + i + b.capacity) % b.capacity
	return b.entries[idx], true
}

// Clear removes all entries and resets the cursor, stopping any playback.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.stopLocked()
	for i := range b.entries {
		b.entries[i] = nil
	}
	b.head = 0
	b.count = 0
	b.cursor = 0
	b.mu.Unlock()
}
