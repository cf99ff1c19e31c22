// Package cityflow is the real-time synchronization client for a city
// traffic feed.
//
// A Client owns one connection to the feed, merges full city snapshots and
// incremental incident/ambulance updates into a queryable state store,
// records snapshots into a bounded replay buffer for scrubbing, and exposes
// an outbound command API. Connection loss is handled with bounded-backoff
// reconnection; malformed or unrecognized frames are dropped without ever
// taking the pipeline down.
//
//	client := cityflow.New(&cityflow.Config{URL: "ws://localhost:8001/ws/city"})
//	client.OnStatus(func(s client.Status, lastErr string) { ... })
//	if err := client.Start(); err != nil { ... }
//	defer client.Stop()
//
//	nodes := client.Store().Nodes()
//	client.Commands().DispatchAmbulance("INT_A", "INT_D", 45)
package cityflow

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/cityflow-dev/cityflow/pkg/client"
	"github.com/cityflow-dev/cityflow/pkg/protocol"
	"github.com/cityflow-dev/cityflow/pkg/replay"
	"github.com/cityflow-dev/cityflow/pkg/state"
)

// ErrMissingURL is returned by Start when no feed endpoint is configured.
var ErrMissingURL = errors.New("cityflow: no feed URL configured")

// Client is one synchronization client instance.
//
// A Client is an explicit resource with a Start/Stop lifecycle; multiple
// independent instances can coexist, each owning its own connection, store,
// and replay buffer. Stop releases the socket and every timer on all paths.
type Client struct {
	cfg     *Config
	logger  *slog.Logger
	metrics *client.Metrics

	manager  *client.Manager
	store    *state.Store
	history  *replay.Buffer
	commands *client.Commands

	mu            sync.Mutex
	started       bool
	lastServerErr string
}

// New assembles a Client from the given configuration. The connection is
// not opened until Start.
func New(cfg *Config) *Client {
	cfg = cfg.withDefaults()
	logger := cfg.Logger.With("component", "cityflow")
	metrics := client.NewMetrics(cfg.MetricsRegisterer)

	manager := client.NewManager(&client.Config{
		URL:               cfg.URL,
		BaseRetryDelay:    cfg.ReconnectBaseDelay,
		MaxRetryDelay:     cfg.ReconnectMaxDelay,
		MaxRetries:        cfg.MaxReconnectAttempts,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		Logger:            cfg.Logger,
		Metrics:           metrics,
	})

	history := replay.NewBuffer(cfg.ReplayCapacity)
	history.SetTickInterval(cfg.ReplayTickInterval)

	c := &Client{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		manager: manager,
		store: state.New(&state.Options{
			EventLogLimit: cfg.EventLogLimit,
			Logger:        cfg.Logger,
		}),
		history:  history,
		commands: client.NewCommands(manager),
	}

	manager.OnMessage(c.handleFrame)
	return c
}

// Start opens the connection. It returns immediately; progress is reported
// through the status callback.
func (c *Client) Start() error {
	if c.cfg.URL == "" {
		return ErrMissingURL
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.manager.Connect()
	return nil
}

// Stop tears the client down: it closes the transport, cancels reconnect
// and heartbeat timers, and stops replay playback. The store keeps its last
// merged state for inspection. Stop is idempotent.
func (c *Client) Stop() {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	c.manager.Disconnect()
	c.history.Stop()
}

// Store returns the live state view.
func (c *Client) Store() *state.Store { return c.store }

// Replay returns the snapshot history buffer.
func (c *Client) Replay() *replay.Buffer { return c.history }

// Commands returns the outbound command API.
func (c *Client) Commands() *client.Commands { return c.commands }

// Status returns the connection state and last error message, if any.
func (c *Client) Status() (client.Status, string) { return c.manager.Status() }

// OnStatus registers a callback fired on every connection state transition.
// Register before Start.
func (c *Client) OnStatus(fn func(status client.Status, lastErr string)) {
	c.manager.OnStatus(fn)
}

// LastServerError returns the message of the most recent server error
// notice, or "".
func (c *Client) LastServerError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastServerErr
}

// handleFrame is the single inbound pipeline: classify, then merge.
// Frames from one connection arrive here in the exact order received.
func (c *Client) handleFrame(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.metrics.FrameDropped()
		c.logger.Debug("dropping frame", "error", err)
		return
	}

	c.metrics.MessageReceived(string(msg.Kind()))

	switch m := msg.(type) {
	case *protocol.CityUpdate:
		c.store.Apply(m)
		c.history.Record(m)
	case *protocol.Pong:
		c.manager.ObservePong()
	case *protocol.ServerError:
		c.logger.Warn("server error notice", "message", m.Message)
		c.mu.Lock()
		c.lastServerErr = m.Message
		c.mu.Unlock()
	default:
		c.store.Apply(msg)
	}
}
