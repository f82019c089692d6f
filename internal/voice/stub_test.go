package voice

import (
	"context"
	"sync"
	"testing"
	"time"
)

// stubSession is an in-memory dialogue session. Tests feed synthetic events
// through the same channel the real provider uses.
type stubSession struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
	ended   bool
	events  chan SessionEvent
}

func newStubSession() *stubSession {
	return &stubSession{events: make(chan SessionEvent, 16)}
}

func (s *stubSession) SendMessage(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *stubSession) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.ended = true
		close(s.events)
	}
	return nil
}

func (s *stubSession) Events() <-chan SessionEvent {
	return s.events
}

func (s *stubSession) sentMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *stubSession) emit(ev SessionEvent) {
	s.events <- ev
}

// stubProvider hands out stub sessions and records how often it was asked.
type stubProvider struct {
	mu      sync.Mutex
	opens   int
	openErr error
	last    *stubSession
}

func (p *stubProvider) OpenSession(ctx context.Context) (DialogueSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.last = &stubSession{events: make(chan SessionEvent, 16)}
	return p.last, nil
}

func (p *stubProvider) openCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

func (p *stubProvider) lastSession() *stubSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// stubProber returns scripted probe results.
type stubProber struct {
	mu      sync.Mutex
	latency time.Duration
	err     error
	probes  int
}

func (p *stubProber) Probe(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	return p.latency, p.err
}

func (p *stubProber) set(latency time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = latency
	p.err = err
}

func (p *stubProber) probeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.probes
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for condition: %s", msg)
}
