package voice

import (
	"context"
	"time"
)

// SessionEventType identifies lifecycle and content events emitted by a
// dialogue session.
type SessionEventType string

const (
	EventConnected    SessionEventType = "connected"
	EventDisconnected SessionEventType = "disconnected"
	EventStatusChange SessionEventType = "status_change"
	EventMessage      SessionEventType = "message"
	EventError        SessionEventType = "error"
)

// SessionMessage is a single utterance received from the provider.
type SessionMessage struct {
	Role     string            `json:"role"` // "user" (echoed transcript) or "assistant"
	Content  string            `json:"content"`
	Audio    []byte            `json:"audio,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SessionEvent is the unit of communication from a dialogue session back to
// the orchestrator. Tests inject synthetic events through the same channel
// the real provider uses.
type SessionEvent struct {
	Type      SessionEventType
	Status    string
	Message   *SessionMessage
	Err       error
	Timestamp time.Time
}

// DialogueSession is a live connection to the speech-dialogue provider.
// Start has already been performed by the provider when the session is
// handed out; End is safe to call more than once.
type DialogueSession interface {
	SendMessage(ctx context.Context, text string) error
	End() error
	Events() <-chan SessionEvent
}

// DialogueProvider opens managed dialogue sessions.
type DialogueProvider interface {
	OpenSession(ctx context.Context) (DialogueSession, error)
}
