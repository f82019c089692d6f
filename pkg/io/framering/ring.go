package framering

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/smallnest/ringbuffer"
)

// Wire layout per frame: 4-byte sequence, 8-byte unix-nano timestamp,
// 4-byte payload length, payload bytes.
const headerSize = 16

// ring serializes frame operations with its own mutex: a frame is two buffer
// writes (header, payload), and a concurrent reader must never observe the
// gap between them.
type ring struct {
	size int

	mu sync.Mutex
	rb *ringbuffer.RingBuffer
}

func New(size int) FrameRing {
	return &ring{
		size: size,
		rb:   ringbuffer.New(size).SetBlocking(false),
	}
}

// Capacity implements FrameRing.
func (r *ring) Capacity() int {
	return r.size
}

// Len implements FrameRing.
func (r *ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rb.Length()
}

// Reset implements FrameRing.
func (r *ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rb.Reset()
}

// Enqueue implements FrameRing.
func (r *ring) Enqueue(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	required := headerSize + len(f.Data)
	if required > r.rb.Capacity() {
		return errors.New("framering: frame larger than ring")
	}

	// Evict oldest frames until the new one fits.
	for r.rb.Free() < required {
		if !r.skipOldest() {
			r.rb.Reset()
			break
		}
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], f.Seq)
	binary.LittleEndian.PutUint64(header[4:12], uint64(f.Timestamp.UnixNano()))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(f.Data)))

	if _, err := r.rb.Write(header); err != nil {
		return err
	}
	_, err := r.rb.Write(f.Data)
	return err
}

// Dequeue implements FrameRing.
func (r *ring) Dequeue() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rb.IsEmpty() {
		return Frame{}, false
	}

	header := make([]byte, headerSize)
	if n, err := r.rb.Read(header); err != nil || n != headerSize {
		return Frame{}, false
	}

	seq := binary.LittleEndian.Uint32(header[0:4])
	ts := int64(binary.LittleEndian.Uint64(header[4:12]))
	size := int(binary.LittleEndian.Uint32(header[12:16]))

	data := make([]byte, size)
	if size > 0 {
		if n, err := r.rb.Read(data); err != nil || n != size {
			return Frame{}, false
		}
	}

	return Frame{
		Seq:       seq,
		Data:      data,
		Timestamp: time.Unix(0, ts),
	}, true
}

// skipOldest discards one complete frame from the front.
func (r *ring) skipOldest() bool {
	if r.rb.IsEmpty() {
		return false
	}

	header := make([]byte, headerSize)
	if n, err := r.rb.Read(header); err != nil || n != headerSize {
		return false
	}

	size := int(binary.LittleEndian.Uint32(header[12:16]))
	if size > 0 {
		skip := make([]byte, size)
		if n, err := r.rb.Read(skip); err != nil || n != size {
			return false
		}
	}
	return true
}
