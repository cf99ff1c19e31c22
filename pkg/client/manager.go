package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotConnected is returned by Send while the transport is not open.
// There is no queueing: the caller decides what to do with a dropped send.
var ErrNotConnected = errors.New("client: not connected")

// Config holds connection manager settings.
type Config struct {
	// URL is the feed endpoint, e.g. "ws://localhost:8001/ws/city".
	URL string

	// BaseRetryDelay is the delay before the first reconnect attempt.
	// Subsequent attempts double it, capped at MaxRetryDelay.
	// Default: 1 second.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the reconnect delay. Default: 30 seconds.
	MaxRetryDelay time.Duration

	// MaxRetries is the number of reconnect attempts before the manager
	// enters the terminal error state. Default: 10.
	MaxRetries int

	// HeartbeatInterval is the time between heartbeat pings while
	// connected. Default: 10 seconds.
	HeartbeatInterval time.Duration

	// HandshakeTimeout bounds the websocket dial. Default: 10 seconds.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound write. Default: 10 seconds.
	WriteTimeout time.Duration

	// Dialer opens the transport. Default: WebSocketDialer with the
	// timeouts above. Tests inject fakes here.
	Dialer Dialer

	// Logger is used for lifecycle diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Metrics receives connection instrumentation. Optional.
	Metrics *Metrics
}

// withDefaults returns a copy of the config with unset fields filled in.
func (c *Config) withDefaults() *Config {
	out := &Config{}
	if c != nil {
		*out = *c
	}
	if out.BaseRetryDelay <= 0 {
		out.BaseRetryDelay = time.Second
	}
	if out.MaxRetryDelay <= 0 {
		out.MaxRetryDelay = 30 * time.Second
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = 10
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = 10 * time.Second
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = 10 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 10 * time.Second
	}
	if out.Dialer == nil {
		out.Dialer = WebSocketDialer(out.HandshakeTimeout, out.WriteTimeout)
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Manager owns the transport and its lifecycle.
//
// The transport handle is exclusively owned here; everything else sees only
// the OnMessage/OnStatus callbacks and Send. Every dial carries a generation
// number, and events from a superseded generation are discarded, so a stale
// read loop or timer can never mutate state after a teardown.
type Manager struct {
	cfg     *Config
	logger  *slog.Logger
	metrics *Metrics

	mu         sync.Mutex
	status     Status
	lastErr    string
	attempts   int
	conn       Transport
	gen        uint64
	retryTimer *time.Timer
	hbStop     chan struct{}
	lastPingAt time.Time
	closed     bool

	onMessage func([]byte)
	onStatus  func(Status, string)
}

// NewManager creates a Manager in the disconnected state.
func NewManager(cfg *Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "client"),
		metrics: cfg.Metrics,
		status:  StatusDisconnected,
	}
}

// OnMessage registers the inbound frame callback. Register before Connect.
func (m *Manager) OnMessage(fn func(data []byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMessage = fn
}

// OnStatus registers the status change callback. It fires on every
// transition with the current status and the last error message, if any.
func (m *Manager) OnStatus(fn func(status Status, lastErr string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = fn
}

// Status returns the current lifecycle state and last error message.
func (m *Manager) Status() (Status, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.lastErr
}

// Connect establishes or re-establishes the transport. It resets the
// reconnect budget, so it is also the manual escape from the terminal error
// state. Calling it while connecting or connected is a no-op.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.status == StatusConnecting || m.status == StatusConnected {
		m.mu.Unlock()
		return
	}
	m.closed = false
	m.attempts = 0
	m.cancelRetryLocked()
	notify := m.transitionLocked(StatusConnecting, "")
	gen := m.nextGenLocked()
	m.mu.Unlock()

	notify()
	go m.dialAndRun(gen)
}

// Disconnect is an intentional, terminal close: it cancels pending reconnect
// and heartbeat timers, closes the transport, and suppresses all further
// automatic reconnection until the next Connect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closed = true
	m.nextGenLocked()
	m.cancelRetryLocked()
	m.teardownConnLocked()
	notify := m.transitionLocked(StatusDisconnected, "")
	m.mu.Unlock()

	notify()
}

// Send transmits one frame, failing synchronously while not connected.
// A write failure tears the connection down and triggers reconnection.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	if m.status != StatusConnected || m.conn == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	conn := m.conn
	gen := m.gen
	m.mu.Unlock()

	if err := conn.WriteMessage(data); err != nil {
		m.logger.Error("write failed", "error", err)
		m.handleTransportError(gen, err)
		return err
	}
	return nil
}

// ObservePong records a heartbeat response. Advisory only: it feeds the
// round-trip metric and never resets the reconnect counter.
func (m *Manager) ObservePong() {
	m.mu.Lock()
	sentAt := m.lastPingAt
	m.lastPingAt = time.Time{}
	m.mu.Unlock()

	if sentAt.IsZero() {
		return
	}
	m.metrics.observeHeartbeat(time.Since(sentAt))
}

// dialAndRun performs one dial attempt for the given generation and, on
// success, runs the read pump until the connection dies.
func (m *Manager) dialAndRun(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	conn, err := m.cfg.Dialer(ctx, m.cfg.URL)
	cancel()

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		m.logger.Warn("dial failed", "url", m.cfg.URL, "error", err)
		notify := m.scheduleReconnectLocked(err.Error())
		m.mu.Unlock()
		notify()
		return
	}

	m.conn = conn
	m.attempts = 0
	hbStop := make(chan struct{})
	m.hbStop = hbStop
	notify := m.transitionLocked(StatusConnected, "")
	m.mu.Unlock()

	notify()
	m.logger.Info("connected", "url", m.cfg.URL)

	go m.heartbeatLoop(gen, hbStop)
	m.readLoop(gen, conn)
}

// readLoop pumps inbound frames to the message callback until the transport
// errors or the generation is superseded.
func (m *Manager) readLoop(gen uint64, conn Transport) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleTransportError(gen, err)
			return
		}

		m.mu.Lock()
		live := !m.closed && gen == m.gen
		cb := m.onMessage
		m.mu.Unlock()

		if !live {
			return
		}
		if cb != nil {
			cb(data)
		}
	}
}

// heartbeatLoop sends a ping at a fixed interval, independent of message
// traffic, to detect silently-dead connections.
func (m *Manager) heartbeatLoop(gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			live := !m.closed && gen == m.gen
			if live {
				m.lastPingAt = time.Now()
			}
			m.mu.Unlock()
			if !live {
				return
			}
			if err := m.Send(heartbeatFrame); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// handleTransportError reacts to a dead connection: unless the close was
// intentional or belongs to a superseded generation, it tears down and
// schedules a reconnect.
func (m *Manager) handleTransportError(gen uint64, err error) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.logger.Warn("connection lost", "error", err)
	m.nextGenLocked()
	m.teardownConnLocked()
	notify := m.scheduleReconnectLocked(err.Error())
	m.mu.Unlock()

	notify()
}

// scheduleReconnectLocked arms the backoff timer for the next attempt, or
// enters the terminal error state once the budget is exhausted.
// Requires m.mu held; returns the status notification to run after unlock.
func (m *Manager) scheduleReconnectLocked(cause string) func() {
	m.attempts++
	if m.attempts > m.cfg.MaxRetries {
		m.logger.Error("reconnect attempts exhausted", "attempts", m.attempts-1, "cause", cause)
		return m.transitionLocked(StatusError, "connection failed: "+cause)
	}

	delay := m.retryDelay(m.attempts)
	m.metrics.reconnectScheduled()
	m.logger.Info("reconnect scheduled", "attempt", m.attempts, "delay", delay)

	m.cancelRetryLocked()
	m.retryTimer = time.AfterFunc(delay, m.retryNow)
	return m.transitionLocked(StatusDisconnected, cause)
}

// retryNow runs on the backoff timer and starts the next dial attempt.
func (m *Manager) retryNow() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	notify := m.transitionLocked(StatusConnecting, m.lastErr)
	gen := m.nextGenLocked()
	m.mu.Unlock()

	notify()
	m.dialAndRun(gen)
}

// retryDelay returns the backoff delay for the given attempt (1-based).
// Exponential in the attempt count, capped at MaxRetryDelay.
func (m *Manager) retryDelay(attempt int) time.Duration {
	delay := m.cfg.BaseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= m.cfg.MaxRetryDelay {
			return m.cfg.MaxRetryDelay
		}
	}
	if delay > m.cfg.MaxRetryDelay {
		return m.cfg.MaxRetryDelay
	}
	return delay
}

// nextGenLocked invalidates all in-flight dials, read loops, and heartbeat
// ticks. Requires m.mu held.
func (m *Manager) nextGenLocked() uint64 {
	m.gen++
	return m.gen
}

// teardownConnLocked closes the transport and stops the heartbeat.
// Requires m.mu held.
func (m *Manager) teardownConnLocked() {
	if m.hbStop != nil {
		close(m.hbStop)
		m.hbStop = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.lastPingAt = time.Time{}
}

// cancelRetryLocked stops a pending backoff timer. Requires m.mu held.
func (m *Manager) cancelRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// transitionLocked updates the lifecycle state and returns the callback to
// invoke once m.mu is released. Requires m.mu held.
func (m *Manager) transitionLocked(status Status, lastErr string) func() {
	if m.status == status && m.lastErr == lastErr {
		return func() {}
	}
	m.status = status
	m.lastErr = lastErr
	m.metrics.statusChanged(status)

	cb := m.onStatus
	if cb == nil {
		return func() {}
	}
	return func() { cb(status, lastErr) }
}
