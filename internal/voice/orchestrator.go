package voice

import (
	"context"
	"sync"
	"time"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// OrchestratorConfig tunes the facade-owned pieces. The monitor carries its
// own config and is injected fully constructed.
type OrchestratorConfig struct {
	QueueCapacity  int
	NotifyThrottle time.Duration
}

func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		QueueCapacity:  DefaultQueueCapacity,
		NotifyThrottle: 5 * time.Second,
	}
}

// OrchestratorStatus is the combined read surface for the presentation layer.
type OrchestratorStatus struct {
	Active     bool             `json:"active"`
	Connection ConnectionStatus `json:"connection"`
	Queue      QueueStatus      `json:"queue"`
	Session    *VoiceSession    `json:"session,omitempty"`
	Network    QualitySnapshot  `json:"network"`
}

// Orchestrator is the public surface of the voice subsystem: activate and
// deactivate the spoken-dialogue connection, send prioritized messages, and
// read combined status. Internal component errors funnel through a single
// registered callback; the UI only ever sees throttled notifications.
type Orchestrator struct {
	conn    *ConnectionManager
	queue   *RequestQueue
	tracker *SessionTracker
	sched   *Scheduler
	monitor *ConnectionMonitor
	logger  *Logger.Logger
	cfg     OrchestratorConfig

	mu         sync.Mutex
	active     bool
	cancel     context.CancelFunc
	lastNotice map[string]time.Time

	onError   func(error)
	onNotify  func(message string)
	onMessage func(SessionMessage)
}

// NewOrchestrator composes the voice subsystem around an injected monitor
// and provider. The monitor's reconnect target is wired here.
func NewOrchestrator(
	provider DialogueProvider,
	monitor *ConnectionMonitor,
	cfg OrchestratorConfig,
	logger *Logger.Logger,
) *Orchestrator {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	if cfg.NotifyThrottle <= 0 {
		cfg.NotifyThrottle = 5 * time.Second
	}

	o := &Orchestrator{
		conn:       NewConnectionManager(provider, logger),
		queue:      NewRequestQueue(cfg.QueueCapacity),
		tracker:    NewSessionTracker(logger),
		monitor:    monitor,
		logger:     logger,
		cfg:        cfg,
		lastNotice: make(map[string]time.Time),
	}
	o.sched = NewScheduler(o.queue, o.conn, o.tracker, logger, o.funnel)

	// Connection drop invalidates the session so in-flight state never goes
	// silently inconsistent.
	o.conn.OnDrop(o.tracker.Invalidate)
	o.conn.OnError(o.funnel)
	o.conn.OnMessage(o.handleMessage)

	if monitor != nil {
		monitor.SetReconnect(o.reconnect)
		monitor.OnError(o.funnel)
		monitor.OnDisconnect(func() {
			o.notifyThrottled("voice connection degraded, retrying")
		})
		monitor.OnReconnect(func() {
			o.notifyThrottled("voice connection restored")
		})
	}

	return o
}

// OnError registers the single error funnel for asynchronous failures.
func (o *Orchestrator) OnError(fn func(error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onError = fn
}

// OnNotify registers the user-facing notification sink.
func (o *Orchestrator) OnNotify(fn func(message string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onNotify = fn
}

// OnMessage registers the consumer of provider utterances (transcript
// tracking and UI relay).
func (o *Orchestrator) OnMessage(fn func(SessionMessage)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onMessage = fn
}

// Activate connects to the provider and starts the scheduler and monitor
// loops. Idempotent while active.
func (o *Orchestrator) Activate(ctx context.Context) error {
	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	o.active = true
	o.cancel = cancel
	o.mu.Unlock()

	if err := o.conn.Connect(ctx); err != nil {
		o.mu.Lock()
		o.active = false
		o.cancel = nil
		o.mu.Unlock()
		cancel()
		o.funnel(err)
		return err
	}

	go o.sched.Run(runCtx)
	if o.monitor != nil {
		o.monitor.Start(runCtx)
	}
	return nil
}

// Deactivate tears everything down: pending reconnection attempts are
// cancelled implicitly with the target they would reconnect.
func (o *Orchestrator) Deactivate() {
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	o.active = false
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if o.monitor != nil {
		o.monitor.Stop()
	}
	cancel()
	o.conn.Disconnect()
	o.queue.Clear()
}

// SendMessage enqueues an utterance for delivery. Precondition failures
// (empty text, full queue) are returned synchronously; everything else is
// asynchronous.
func (o *Orchestrator) SendMessage(text string, priority Priority) (VoiceRequest, error) {
	req, err := o.queue.Enqueue(text, priority)
	if err != nil {
		return VoiceRequest{}, err
	}
	o.sched.Kick()
	return req, nil
}

// ForceEndSession invalidates the session and clears pending requests
// together. An already dispatched delivery completes or fails on its own.
func (o *Orchestrator) ForceEndSession() {
	o.tracker.Invalidate()
	dropped := o.queue.Clear()
	if dropped > 0 {
		o.logger.Infof("force-end dropped %d pending requests", dropped)
	}
}

// ClearQueue drops pending requests only, reporting the new size (always 0).
func (o *Orchestrator) ClearQueue() int {
	o.queue.Clear()
	return 0
}

// CurrentSession exposes the tracked voice session for readers.
func (o *Orchestrator) CurrentSession() (VoiceSession, bool) {
	return o.tracker.Current()
}

// IsReady reports whether utterances can be delivered right now.
func (o *Orchestrator) IsReady() bool {
	return o.conn.IsReady()
}

// Status assembles a consistent snapshot across components.
func (o *Orchestrator) Status() OrchestratorStatus {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()

	st := OrchestratorStatus{
		Active:     active,
		Connection: o.conn.Status(),
		Queue: QueueStatus{
			Size:         o.queue.Len(),
			IsProcessing: o.sched.IsProcessing(),
			Requests:     o.queue.Pending(),
		},
	}
	if sess, ok := o.tracker.Current(); ok {
		st.Session = &sess
	}
	if o.monitor != nil {
		st.Network = o.monitor.Snapshot()
	}
	return st
}

// NotifyOnline forwards a device-level online signal to the monitor.
func (o *Orchestrator) NotifyOnline() {
	if o.monitor != nil {
		o.monitor.NotifyOnline()
	}
}

// NotifyOffline forwards a device-level offline signal to the monitor.
func (o *Orchestrator) NotifyOffline() {
	if o.monitor != nil {
		o.monitor.NotifyOffline()
	}
}

// reconnect is the monitor's reconnection target. It only acts while the
// orchestrator is active.
func (o *Orchestrator) reconnect(ctx context.Context) error {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()
	if !active {
		return ErrNotConnected
	}
	return o.conn.Connect(ctx)
}

func (o *Orchestrator) handleMessage(msg SessionMessage) {
	o.mu.Lock()
	fn := o.onMessage
	o.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// funnel is the single error callback all components report through.
func (o *Orchestrator) funnel(err error) {
	if err == nil {
		return
	}
	o.logger.Errorf("voice orchestrator: %v", err)

	o.mu.Lock()
	fn := o.onError
	o.mu.Unlock()
	if fn != nil {
		fn(err)
	}
	o.notifyThrottled(err.Error())
}

// notifyThrottled suppresses repeated identical notifications inside the
// configured window to avoid spamming the user.
func (o *Orchestrator) notifyThrottled(message string) {
	o.mu.Lock()
	last, seen := o.lastNotice[message]
	now := time.Now()
	if seen && now.Sub(last) < o.cfg.NotifyThrottle {
		o.mu.Unlock()
		return
	}
	o.lastNotice[message] = now
	fn := o.onNotify
	o.mu.Unlock()

	if fn != nil {
		fn(message)
	}
}
