package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aidra-health/aidra/pkg/Logger"
)

const idleTimeout = 10 * time.Minute

// Registry tracks live client sessions so the server can report counts and
// reap connections that went quiet without a close frame.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ClientSession
	logger   *Logger.Logger
	stop     chan struct{}
	once     sync.Once
}

func NewRegistry(logger *Logger.Logger) *Registry {
	r := &Registry{
		sessions: make(map[uuid.UUID]*ClientSession),
		logger:   logger,
		stop:     make(chan struct{}),
	}
	go r.reapLoop()
	return r
}

func (r *Registry) Register(s *ClientSession) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.logger.Infof("client session %s registered (user %s)", s.ID, s.UserID)
}

func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown closes every live session and stops the reaper.
func (r *Registry) Shutdown() {
	r.once.Do(func() { close(r.stop) })

	r.mu.Lock()
	sessions := make([]*ClientSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[uuid.UUID]*ClientSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.reapIdle()
		}
	}
}

func (r *Registry) reapIdle() {
	cutoff := time.Now().Add(-idleTimeout)

	r.mu.Lock()
	var stale []*ClientSession
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		r.logger.Infof("reaping idle client session %s", s.ID)
		s.Close()
	}
}
