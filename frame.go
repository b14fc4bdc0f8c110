// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// BatchSource yields the drawables a pass iterates for its batch tag.
// The scene/batch system implements this; framegraph never inspects
// drawables. A tag with no drawables is legal: the pass executes with
// zero draw calls but its clear policy still applies.
type BatchSource interface {
	Drawables(tag BatchTag) []Drawable
}

// Frame is a simple BatchSource: per-tag drawable queues filled by the
// host between frames and reset after execution.
//
// Frame is not internally synchronized; fill it from one goroutine or
// synchronize externally.
type Frame struct {
	batches map[BatchTag][]Drawable
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{batches: make(map[BatchTag][]Drawable)}
}

// Enqueue appends drawables to a batch tag's queue.
func (f *Frame) Enqueue(tag BatchTag, drawables ...Drawable) {
	f.batches[tag] = append(f.batches[tag], drawables...)
}

// Drawables returns the queue for a tag in enqueue order.
func (f *Frame) Drawables(tag BatchTag) []Drawable {
	return f.batches[tag]
}

// Reset clears every queue, keeping capacity for the next frame.
func (f *Frame) Reset() {
	for tag, q := range f.batches {
		f.batches[tag] = q[:0]
	}
}

var _ BatchSource = (*Frame)(nil)

// emptyBatch is used when Execute is called with a nil source; every
// pass then runs with zero drawables.
type emptyBatch struct{}

func (emptyBatch) Drawables(BatchTag) []Drawable { return nil }
