package voice

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestQueueEnqueueDequeue(t *testing.T) {
	q := NewRequestQueue(10)

	if q.Capacity() != 10 {
		t.Errorf("Expected capacity 10, got %d", q.Capacity())
	}

	req, err := q.Enqueue("I burned my hand", PriorityNormal)
	if err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if req.Text != "I burned my hand" {
		t.Errorf("Expected request text to be kept, got %q", req.Text)
	}
	if req.ID.String() == "" {
		t.Error("Expected a generated request id")
	}

	got, ok := q.Dequeue()
	if !ok {
		t.Fatal("Expected a request to dequeue")
	}
	if got.ID != req.ID {
		t.Errorf("Expected request %s, got %s", req.ID, got.ID)
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Expected empty queue after dequeue")
	}
}

func TestQueueRejectsEmptyText(t *testing.T) {
	q := NewRequestQueue(10)

	if _, err := q.Enqueue("   ", PriorityNormal); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Len())
	}
}

func TestQueueCapacityBound(t *testing.T) {
	q := NewRequestQueue(10)

	for i := 0; i < 10; i++ {
		if _, err := q.Enqueue("message", PriorityNormal); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	// The 11th request must be rejected without touching the queue.
	if _, err := q.Enqueue("overflow", PriorityHigh); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if q.Len() != 10 {
		t.Errorf("Expected queue length 10 after rejection, got %d", q.Len())
	}
}

func TestQueuePriorityOrdering(t *testing.T) {
	q := NewRequestQueue(10)

	a, _ := q.Enqueue("A", PriorityLow)
	b, _ := q.Enqueue("B", PriorityHigh)
	c, _ := q.Enqueue("C", PriorityLow)

	want := []struct {
		name string
		id   uuid.UUID
	}{
		{"B", b.ID},
		{"A", a.ID},
		{"C", c.ID},
	}
	for _, w := range want {
		got, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Expected %s to dequeue", w.name)
		}
		if got.ID != w.id {
			t.Errorf("Expected %s next, got %q", w.name, got.Text)
		}
	}
}

func TestQueueFIFOWithinTier(t *testing.T) {
	q := NewRequestQueue(10)

	first, _ := q.Enqueue("first", PriorityNormal)
	second, _ := q.Enqueue("second", PriorityNormal)
	third, _ := q.Enqueue("third", PriorityNormal)

	for i, want := range []VoiceRequest{first, second, third} {
		got, _ := q.Dequeue()
		if got.ID != want.ID {
			t.Errorf("Position %d: expected %q, got %q", i, want.Text, got.Text)
		}
	}
}

func TestQueueClear(t *testing.T) {
	q := NewRequestQueue(10)

	q.Enqueue("one", PriorityNormal)
	q.Enqueue("two", PriorityHigh)

	if n := q.Clear(); n != 2 {
		t.Errorf("Expected 2 cleared requests, got %d", n)
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue after clear, got %d", q.Len())
	}
}

func TestParsePriority(t *testing.T) {
	if ParsePriority("high") != PriorityHigh {
		t.Error("Expected high to parse as PriorityHigh")
	}
	if ParsePriority("low") != PriorityLow {
		t.Error("Expected low to parse as PriorityLow")
	}
	// Unknown strings default to normal.
	if ParsePriority("urgent") != PriorityNormal {
		t.Error("Expected unknown priority to default to PriorityNormal")
	}
	if ParsePriority("") != PriorityNormal {
		t.Error("Expected empty priority to default to PriorityNormal")
	}
}
