package voice

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Priority determines relative dequeue order, not absolute timing.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// ParsePriority maps a wire value to a Priority, defaulting to normal.
func ParsePriority(s string) Priority {
	switch s {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// VoiceRequest is immutable once enqueued and consumed exactly once.
type VoiceRequest struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Priority   Priority  `json:"priority"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// DefaultQueueCapacity bounds the number of pending utterances.
const DefaultQueueCapacity = 10

// QueueStatus is a point-in-time snapshot, not a live reference.
type QueueStatus struct {
	Size         int            `json:"size"`
	IsProcessing bool           `json:"isProcessing"`
	Requests     []VoiceRequest `json:"requests"`
}

// RequestQueue holds pending outbound utterances. All high requests precede
// all normal, which precede all low; FIFO within a tier.
type RequestQueue struct {
	mu       sync.Mutex
	items    []VoiceRequest
	capacity int
}

func NewRequestQueue(capacity int) *RequestQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &RequestQueue{
		items:    make([]VoiceRequest, 0, capacity),
		capacity: capacity,
	}
}

// Enqueue inserts a request respecting priority ordering. A full queue
// rejects with ErrQueueFull without mutating the held requests.
func (q *RequestQueue) Enqueue(text string, priority Priority) (VoiceRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return VoiceRequest{}, ErrEmptyText
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return VoiceRequest{}, ErrQueueFull
	}

	req := VoiceRequest{
		ID:         uuid.New(),
		Text:       text,
		Priority:   priority,
		EnqueuedAt: time.Now(),
	}

	// Insert before the first lower-priority entry; equal priorities stay FIFO.
	pos := len(q.items)
	for i, existing := range q.items {
		if existing.Priority < priority {
			pos = i
			break
		}
	}

	q.items = append(q.items, VoiceRequest{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = req

	return req, nil
}

// Dequeue removes and returns the head of the queue.
func (q *RequestQueue) Dequeue() (VoiceRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return VoiceRequest{}, false
	}

	req := q.items[0]
	q.items = q.items[1:]
	return req, true
}

// Clear drops all pending requests and returns how many were dropped. An
// already in-flight delivery is not affected.
func (q *RequestQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := len(q.items)
	q.items = q.items[:0]
	return dropped
}

func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *RequestQueue) Capacity() int {
	return q.capacity
}

// Pending returns a copy of the queued requests in dequeue order.
func (q *RequestQueue) Pending() []VoiceRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]VoiceRequest, len(q.items))
	copy(snapshot, q.items)
	return snapshot
}
