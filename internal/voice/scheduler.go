package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// Scheduler drains the request queue with at most one request in flight.
// Delivery failures are reported through the error funnel and never stop the
// loop; failed requests are not re-enqueued.
type Scheduler struct {
	queue   *RequestQueue
	conn    *ConnectionManager
	tracker *SessionTracker
	logger  *Logger.Logger
	errFn   func(error)

	mu         sync.Mutex
	processing bool

	wake chan struct{}
}

func NewScheduler(
	queue *RequestQueue,
	conn *ConnectionManager,
	tracker *SessionTracker,
	logger *Logger.Logger,
	errFn func(error),
) *Scheduler {
	if errFn == nil {
		errFn = func(error) {}
	}
	return &Scheduler{
		queue:   queue,
		conn:    conn,
		tracker: tracker,
		logger:  logger,
		errFn:   errFn,
		wake:    make(chan struct{}, 1),
	}
}

// Run is the single logical worker. It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.drain(ctx)
		}
	}
}

// Kick wakes the worker after an enqueue. Non-blocking; a pending wake-up
// already covers the new request.
func (s *Scheduler) Kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// IsProcessing reports whether a request is currently in flight.
func (s *Scheduler) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

func (s *Scheduler) setProcessing(v bool) {
	s.mu.Lock()
	s.processing = v
	s.mu.Unlock()
}

func (s *Scheduler) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		req, ok := s.queue.Dequeue()
		if !ok {
			return
		}

		s.setProcessing(true)
		s.deliver(ctx, req)
		s.setProcessing(false)
	}
}

func (s *Scheduler) deliver(ctx context.Context, req VoiceRequest) {
	sess := s.conn.Session()
	if sess == nil {
		s.errFn(fmt.Errorf("%w: dropping request %s", ErrNotConnected, req.ID))
		return
	}

	if err := sess.SendMessage(ctx, req.Text); err != nil {
		s.errFn(fmt.Errorf("voice: delivery of request %s failed: %w", req.ID, err))
		return
	}

	// All requests within one active window share one voice session. It is
	// created lazily on the first successful delivery, so a failed send never
	// opens one.
	vs := s.tracker.Ensure()

	s.logger.Debugf("delivered request %s (priority %s, session %s)",
		req.ID, req.Priority, vs.ID)
}
