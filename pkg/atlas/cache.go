package atlas

import (
	"image"
	"sync"

	"github.com/qdm12/reprint"
)

// CachedFrame bundles everything the cache keeps per slot: the raw pixel
// data tap processing works from, the prepared display image, and the
// rendered header text. The three move through slot rotation in lockstep.
type CachedFrame struct {
	Raw        *Frame
	Display    image.Image
	HeaderText string
	Path       string
}

// FrameCache holds the two most recently displayed frames. Slot 0 is the
// older frame in paired mode and the only populated slot in single mode.
// All slot mutations happen under one lock so readers never observe a
// half-rotated pair.
type FrameCache struct {
	mu    sync.Mutex
	slots [2]*CachedFrame
}

// NewFrameCache creates an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{}
}

// Put inserts a frame following the rotation policy. In single mode the
// frame replaces slot 0 and slot 1 is cleared. In paired mode empty slots
// fill in order; once both are full the pair shifts left and the new
// frame becomes slot 1. The raw frame is deep-copied so the caller may
// reuse its buffers.
func (c *FrameCache) Put(f *CachedFrame, mode Mode) {
	stored := *f
	stored.Raw = reprint.This(f.Raw).(*Frame)

	c.mu.Lock()
	defer c.mu.Unlock()
	if mode != ModePaired {
		c.slots[0] = &stored
		c.slots[1] = nil
		return
	}
	switch {
	case c.slots[0] == nil:
		c.slots[0] = &stored
	case c.slots[1] == nil:
		c.slots[1] = &stored
	default:
		c.slots[0] = c.slots[1]
		c.slots[1] = &stored
	}
}

// Slot returns the frame in slot i, or nil.
func (c *FrameCache) Slot(i int) *CachedFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[i]
}

// Pair returns both slots atomically.
func (c *FrameCache) Pair() (*CachedFrame, *CachedFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[0], c.slots[1]
}

// Full reports whether both slots hold a frame, the precondition for
// differencing.
func (c *FrameCache) Full() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[0] != nil && c.slots[1] != nil
}

// Reset clears both slots. Mode changes never clear the cache; only an
// explicit reset does.
func (c *FrameCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[0] = nil
	c.slots[1] = nil
}
