package replay

import (
	"time"

	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

// Play starts advancing the cursor one entry per tick interval. Playback
// stops automatically at the last index; it never loops. Play on an empty
// buffer or during active playback is a no-op.
func (b *Buffer) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playing || b.count == 0 {
		return
	}

	b.playing = true
	b.stop = make(chan struct{})
	go b.playLoop(b.stop, b.tick)
}

// Stop pauses playback, leaving the cursor where it is.
func (b *Buffer) Stop() {
	b.mu.Lock()
	b.stopLocked()
	b.mu.Unlock()
}

// stopLocked requires b.mu held.
func (b *Buffer) stopLocked() {
	if !b.playing {
		return
	}
	b.playing = false
	close(b.stop)
	b.stop = nil
}

// Seek jumps the cursor to index i (clamped to the buffered range) and
// implicitly pauses playback.
func (b *Buffer) Seek(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	if b.count == 0 {
		b.cursor = 0
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= b.count {
		i = b.count - 1
	}
	b.cursor = i
}

// Cursor returns the current cursor index.
func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Playing reports whether playback is active.
func (b *Buffer) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// Current returns the snapshot at the cursor, or false when empty.
func (b *Buffer) Current() (*protocol.CityUpdate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.at(b.cursor)
}

// playLoop advances the cursor until the end of the buffer or Stop.
func (b *Buffer) playLoop(stop chan struct{}, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !b.step() {
				return
			}
		case <-stop:
			return
		}
	}
}

// step advances the cursor by one, stopping playback at the last index.
// It reports whether playback should continue.
func (b *Buffer) step() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.playing {
		return false
	}
	if b.cursor >= b.count-1 {
		b.stopLocked()
		return false
	}
	b.cursor++
	return true
}
