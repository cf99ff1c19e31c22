package client

import (
	"fmt"
	"log/slog"

	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

// heartbeatFrame is the pre-encoded ping the heartbeat loop sends.
var heartbeatFrame, _ = protocol.EncodeCommand(protocol.NewPing())

// Commands is the outbound command API.
//
// Every method serializes its payload and hands it to the Manager. Commands
// are fire-and-forget: a send while disconnected returns an error wrapping
// ErrNotConnected and nothing is queued or retried. Local state is never
// mutated optimistically; effects appear only once the server echoes them
// back through the feed.
type Commands struct {
	manager *Manager
	logger  *slog.Logger
	metrics *Metrics
}

// NewCommands creates the command channel on top of a Manager.
func NewCommands(m *Manager) *Commands {
	return &Commands{
		manager: m,
		logger:  m.logger.With("component", "commands"),
		metrics: m.metrics,
	}
}

// DispatchAmbulance requests a priority corridor between two intersections.
func (c *Commands) DispatchAmbulance(from, to string, etaSeconds int) error {
	return c.send(protocol.NewDispatchAmbulance(from, to, etaSeconds))
}

// CreateIncident reports a disruption at an intersection approach.
func (c *Commands) CreateIncident(intersectionID, direction, incidentType string, severity int) error {
	return c.send(protocol.NewIncidentCreate(intersectionID, direction, incidentType, severity))
}

// ClearIncident asks the server to clear an incident by id.
func (c *Commands) ClearIncident(incidentID string) error {
	return c.send(protocol.NewIncidentClear(incidentID))
}

// ClearRoute asks the server to clear an ambulance corridor by id.
func (c *Commands) ClearRoute(routeID string) error {
	return c.send(protocol.NewClearAmbulanceRoute(routeID))
}

// Ping sends a heartbeat probe outside the fixed heartbeat schedule.
func (c *Commands) Ping() error {
	return c.send(protocol.NewPing())
}

func (c *Commands) send(cmd protocol.Command) error {
	kind := string(cmd.CmdKind())

	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", kind, err)
	}

	if err := c.manager.Send(data); err != nil {
		c.metrics.commandFailed(kind)
		c.logger.Debug("command dropped", "kind", kind, "error", err)
		return fmt.Errorf("client: send %s: %w", kind, err)
	}

	c.metrics.commandSent(kind)
	return nil
}
