package voice

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned synchronously by Enqueue when the queue is at
	// capacity. Non-retryable; the caller must drop or defer the request.
	ErrQueueFull = errors.New("voice: request queue is full")

	// ErrEmptyText rejects requests whose text is empty after trimming.
	ErrEmptyText = errors.New("voice: request text is empty")

	// ErrNotConnected is reported when a delivery is attempted without a
	// ready dialogue connection.
	ErrNotConnected = errors.New("voice: dialogue connection not ready")

	// ErrReconnectExhausted is terminal within one monitoring episode. Only
	// an external online signal resumes probing.
	ErrReconnectExhausted = errors.New("voice: reconnection attempts exhausted")
)

// ConnectionError wraps a provider session open/close failure.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("voice: connection %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
