package voice

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// SessionState marks whether a voice session is still serving requests.
type SessionState string

const (
	SessionActive SessionState = "active"
	SessionEnded  SessionState = "ended"
)

// VoiceSession spans a sequence of queued requests. One live session serves
// all requests within an active window.
type VoiceSession struct {
	ID        uuid.UUID    `json:"id"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SessionTracker exclusively owns the current voice session. Other
// components only read it.
type SessionTracker struct {
	logger *Logger.Logger

	mu      sync.Mutex
	current *VoiceSession
}

func NewSessionTracker(logger *Logger.Logger) *SessionTracker {
	return &SessionTracker{logger: logger}
}

// Ensure returns the active session, creating one lazily on first use.
func (t *SessionTracker) Ensure() VoiceSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		t.current = &VoiceSession{
			ID:        uuid.New(),
			State:     SessionActive,
			CreatedAt: time.Now(),
		}
		t.logger.Infof("voice session %s created", t.current.ID)
	}
	return *t.current
}

// Current reports the active session without creating one.
func (t *SessionTracker) Current() (VoiceSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return VoiceSession{}, false
	}
	return *t.current, true
}

// Invalidate ends the current session, if any. Called on explicit force-end
// and whenever the connection drops.
func (t *SessionTracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return
	}
	t.current.State = SessionEnded
	t.logger.Infof("voice session %s ended", t.current.ID)
	t.current = nil
}
