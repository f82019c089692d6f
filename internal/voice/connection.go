package voice

import (
	"context"
	"sync"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// ConnectionStatus is the connection lifecycle state. It transitions only
// via provider events or an explicit disconnect.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

// ConnectionManager owns the single managed dialogue session. No other
// component touches the provider session directly.
type ConnectionManager struct {
	provider DialogueProvider
	logger   *Logger.Logger

	mu      sync.RWMutex
	status  ConnectionStatus
	session DialogueSession

	onConnect func()
	onDrop    []func()
	onMessage func(SessionMessage)
	onError   func(error)
}

func NewConnectionManager(provider DialogueProvider, logger *Logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		provider: provider,
		logger:   logger,
		status:   StatusDisconnected,
	}
}

// OnConnect registers a callback fired once per successful transition to
// connected.
func (cm *ConnectionManager) OnConnect(fn func()) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onConnect = fn
}

// OnDrop registers a callback fired whenever the connection is lost or torn
// down, whether by the provider or by an explicit disconnect.
func (cm *ConnectionManager) OnDrop(fn func()) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onDrop = append(cm.onDrop, fn)
}

// OnMessage registers the consumer of provider utterances.
func (cm *ConnectionManager) OnMessage(fn func(SessionMessage)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onMessage = fn
}

// OnError registers the error funnel for asynchronous session errors.
func (cm *ConnectionManager) OnError(fn func(error)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onError = fn
}

// Connect opens a provider session. Idempotent: when already connected (or a
// connect is in progress) it returns immediately without side effects. A
// provider rejection reverts the status to disconnected and is returned as a
// ConnectionError.
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	cm.mu.Lock()
	if cm.status == StatusConnected || cm.status == StatusConnecting {
		cm.mu.Unlock()
		return nil
	}
	cm.status = StatusConnecting
	cm.mu.Unlock()

	sess, err := cm.provider.OpenSession(ctx)
	if err != nil {
		cm.mu.Lock()
		cm.status = StatusDisconnected
		cm.mu.Unlock()
		return &ConnectionError{Op: "open", Err: err}
	}

	cm.mu.Lock()
	cm.status = StatusConnected
	cm.session = sess
	onConnect := cm.onConnect
	cm.mu.Unlock()

	go cm.pump(sess)

	cm.logger.Info("dialogue connection established")
	if onConnect != nil {
		onConnect()
	}
	return nil
}

// Disconnect tears down the session and clears derived state. Safe to call
// when already disconnected.
func (cm *ConnectionManager) Disconnect() {
	cm.mu.Lock()
	if cm.status == StatusDisconnected && cm.session == nil {
		cm.mu.Unlock()
		return
	}
	sess := cm.session
	cm.status = StatusDisconnected
	cm.session = nil
	drops := append([]func(){}, cm.onDrop...)
	cm.mu.Unlock()

	if sess != nil {
		if err := sess.End(); err != nil {
			cm.logger.Errorf("error ending dialogue session: %v", err)
		}
	}

	cm.logger.Info("dialogue connection closed")
	for _, fn := range drops {
		fn()
	}
}

// Status is a pure read of the current connection status.
func (cm *ConnectionManager) Status() ConnectionStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.status
}

// IsReady reports whether messages can be delivered right now.
func (cm *ConnectionManager) IsReady() bool {
	return cm.Status() == StatusConnected
}

// Session returns the active dialogue session for delivery, or nil.
func (cm *ConnectionManager) Session() DialogueSession {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.session
}

// pump forwards session events until the provider closes the stream. A
// disconnect event may arrive at any time, independent of caller action.
func (cm *ConnectionManager) pump(sess DialogueSession) {
	for ev := range sess.Events() {
		switch ev.Type {
		case EventDisconnected:
			cm.handleDrop(sess)
		case EventMessage:
			cm.mu.RLock()
			onMessage := cm.onMessage
			cm.mu.RUnlock()
			if onMessage != nil && ev.Message != nil {
				onMessage(*ev.Message)
			}
		case EventError:
			cm.mu.RLock()
			onError := cm.onError
			cm.mu.RUnlock()
			if onError != nil && ev.Err != nil {
				onError(ev.Err)
			}
		case EventStatusChange:
			cm.logger.Debugf("provider status: %s", ev.Status)
		}
	}
	// Stream closed without an explicit disconnect event.
	cm.handleDrop(sess)
}

// handleDrop force-sets disconnected state if sess is still the session the
// manager owns. Stale sessions that were already replaced are ignored.
func (cm *ConnectionManager) handleDrop(sess DialogueSession) {
	cm.mu.Lock()
	if cm.session != sess {
		cm.mu.Unlock()
		return
	}
	cm.status = StatusDisconnected
	cm.session = nil
	drops := append([]func(){}, cm.onDrop...)
	cm.mu.Unlock()

	cm.logger.Warn("dialogue connection dropped by provider")
	for _, fn := range drops {
		fn()
	}
}
