package voice

import (
	"context"
	"sync"
	"time"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// Quality is derived purely from the online flag and latency thresholds.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityPoor      Quality = "poor"
	QualityOffline   Quality = "offline"
)

const (
	excellentLatency = 100 * time.Millisecond
	goodLatency      = 300 * time.Millisecond
)

func qualityFor(latency time.Duration) Quality {
	switch {
	case latency < excellentLatency:
		return QualityExcellent
	case latency < goodLatency:
		return QualityGood
	default:
		return QualityPoor
	}
}

// QualitySnapshot is recomputed on every health-check tick.
type QualitySnapshot struct {
	IsOnline    bool          `json:"isOnline"`
	LastChecked time.Time     `json:"lastChecked"`
	Latency     time.Duration `json:"latency"`
	Quality     Quality       `json:"quality"`
}

// MonitorConfig bounds the probe schedule and the reconnection episode.
type MonitorConfig struct {
	CheckInterval time.Duration
	ProbeTimeout  time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxReconnects int
	ReconnectBase time.Duration
	ReconnectCap  time.Duration
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckInterval: 30 * time.Second,
		ProbeTimeout:  5 * time.Second,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MaxReconnects: 5,
		ReconnectBase: time.Second,
		ReconnectCap:  30 * time.Second,
	}
}

// ConnectionMonitor runs an independent periodic health-check loop. It is an
// explicitly constructed, owned instance with a start/stop lifecycle; it
// never runs as an import-time side effect.
type ConnectionMonitor struct {
	prober      Prober
	cfg         MonitorConfig
	logger      *Logger.Logger
	reconnectFn func(ctx context.Context) error

	onReconnect  func()
	onDisconnect func()
	errFn        func(error)

	mu          sync.Mutex
	snapshot    QualitySnapshot
	initialized bool
	exhausted   bool
	running     bool
	paused      bool

	stop  chan struct{}
	force chan struct{}
}

func NewConnectionMonitor(
	prober Prober,
	cfg MonitorConfig,
	reconnectFn func(ctx context.Context) error,
	logger *Logger.Logger,
) *ConnectionMonitor {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &ConnectionMonitor{
		prober:      prober,
		cfg:         cfg,
		logger:      logger,
		reconnectFn: reconnectFn,
		force:       make(chan struct{}, 1),
	}
}

// SetReconnect wires the reconnection target. The composing facade owns the
// connection, so it injects this after construction.
func (m *ConnectionMonitor) SetReconnect(fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnectFn = fn
}

// OnReconnect registers the offline-to-online transition callback.
func (m *ConnectionMonitor) OnReconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = fn
}

// OnDisconnect registers the online-to-offline transition callback.
func (m *ConnectionMonitor) OnDisconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnect = fn
}

// OnError registers the terminal-error funnel.
func (m *ConnectionMonitor) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errFn = fn
}

// Start begins ticking. Idempotent while running.
func (m *ConnectionMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	go m.run(ctx, stop)
}

// Stop returns the monitor to idle. Safe to call when not running.
func (m *ConnectionMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stop)
}

// Pause suspends ticks while the consumer is backgrounded. Resource economy
// only; correctness does not depend on it.
func (m *ConnectionMonitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *ConnectionMonitor) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	m.forceCheck()
}

// NotifyOnline is the external online trigger. It clears a terminal
// reconnection episode and short-circuits the probe schedule.
func (m *ConnectionMonitor) NotifyOnline() {
	m.mu.Lock()
	m.exhausted = false
	m.mu.Unlock()
	m.forceCheck()
}

// NotifyOffline short-circuits the probe schedule on a device offline signal.
func (m *ConnectionMonitor) NotifyOffline() {
	m.forceCheck()
}

// Snapshot returns the latest connection quality reading.
func (m *ConnectionMonitor) Snapshot() QualitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

func (m *ConnectionMonitor) forceCheck() {
	select {
	case m.force <- struct{}{}:
	default:
	}
}

func (m *ConnectionMonitor) isPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *ConnectionMonitor) run(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	m.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-m.force:
			m.check(ctx)
		case <-ticker.C:
			if !m.isPaused() {
				m.check(ctx)
			}
		}
	}
}

// check probes the target, retrying transient failures with linear backoff
// before downgrading the status to offline. A single flaky probe never flaps
// the status.
func (m *ConnectionMonitor) check(ctx context.Context) {
	latency, err := m.probeOnce(ctx)
	for attempt := 1; err != nil && attempt < m.cfg.MaxRetries; attempt++ {
		if !sleepCtx(ctx, time.Duration(attempt)*m.cfg.RetryDelay) {
			return
		}
		latency, err = m.probeOnce(ctx)
	}

	if err == nil {
		m.markOnline(latency)
		return
	}
	m.markOffline(ctx, err)
}

func (m *ConnectionMonitor) probeOnce(ctx context.Context) (time.Duration, error) {
	pctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()
	return m.prober.Probe(pctx)
}

func (m *ConnectionMonitor) markOnline(latency time.Duration) {
	m.mu.Lock()
	wasOffline := m.initialized && !m.snapshot.IsOnline
	m.initialized = true
	m.exhausted = false
	m.snapshot = QualitySnapshot{
		IsOnline:    true,
		LastChecked: time.Now(),
		Latency:     latency,
		Quality:     qualityFor(latency),
	}
	onReconnect := m.onReconnect
	m.mu.Unlock()

	if wasOffline {
		m.logger.Infof("connection restored (latency %s)", latency)
		if onReconnect != nil {
			onReconnect()
		}
	}
}

func (m *ConnectionMonitor) markOffline(ctx context.Context, cause error) {
	m.mu.Lock()
	wasOnline := !m.initialized || m.snapshot.IsOnline
	m.initialized = true
	m.snapshot = QualitySnapshot{
		IsOnline:    false,
		LastChecked: time.Now(),
		Quality:     QualityOffline,
	}
	exhausted := m.exhausted
	onDisconnect := m.onDisconnect
	m.mu.Unlock()

	if wasOnline {
		m.logger.Warnf("connection lost: %v", cause)
		if onDisconnect != nil {
			onDisconnect()
		}
	}

	if !exhausted {
		m.attemptReconnection(ctx)
	}
}

// attemptReconnection retries with exponential backoff, bounded by
// MaxReconnects. Exceeding the bound is terminal for this episode.
func (m *ConnectionMonitor) attemptReconnection(ctx context.Context) {
	m.mu.Lock()
	reconnect := m.reconnectFn
	m.mu.Unlock()
	if reconnect == nil {
		return
	}

	for attempt := 1; attempt <= m.cfg.MaxReconnects; attempt++ {
		delay := m.backoff(attempt)
		m.logger.Infof("reconnection attempt %d/%d in %s",
			attempt, m.cfg.MaxReconnects, delay)

		if !sleepCtx(ctx, delay) {
			return
		}

		if err := reconnect(ctx); err != nil {
			m.logger.Warnf("reconnection attempt %d failed: %v", attempt, err)
			continue
		}

		m.markOnline(0)
		m.logger.Infof("reconnected after %d attempt(s)", attempt)
		return
	}

	m.mu.Lock()
	m.exhausted = true
	errFn := m.errFn
	m.mu.Unlock()

	m.logger.Errorf("reconnection abandoned after %d attempts", m.cfg.MaxReconnects)
	if errFn != nil {
		errFn(ErrReconnectExhausted)
	}
}

func (m *ConnectionMonitor) backoff(attempt int) time.Duration {
	delay := m.cfg.ReconnectBase << (attempt - 1)
	if delay > m.cfg.ReconnectCap {
		delay = m.cfg.ReconnectCap
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
