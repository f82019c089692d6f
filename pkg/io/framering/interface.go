// Package framering buffers provider audio frames on their way to a client
// connection. The ring is bounded; when a slow client falls behind, the
// oldest frames are dropped rather than blocking the session event pump.
package framering

import "time"

// Frame is one chunk of synthesized speech audio.
type Frame struct {
	Seq       uint32
	Data      []byte
	Timestamp time.Time
}

type FrameRing interface {
	// Enqueue appends a frame, evicting the oldest frames if space is needed.
	Enqueue(f Frame) error
	// Dequeue removes and returns the oldest frame.
	Dequeue() (Frame, bool)
	// Len returns the buffered byte count.
	Len() int
	// Capacity returns the ring size in bytes.
	Capacity() int
	// Reset discards all buffered frames.
	Reset()
}
