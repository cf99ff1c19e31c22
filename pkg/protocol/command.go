package protocol

import "encoding/json"

// CmdType identifies an outbound command kind.
type CmdType string

// The outbound command kinds.
const (
	CmdDispatchAmbulance   CmdType = "dispatch_ambulance"
	CmdIncidentCreate      CmdType = "incident_create"
	CmdIncidentClear       CmdType = "incident_clear"
	CmdClearAmbulanceRoute CmdType = "clear_ambulance_route"
	CmdPing                CmdType = "ping"
)

// Command is implemented by every outbound command.
type Command interface {
	CmdKind() CmdType
}

// DispatchAmbulance requests a priority corridor between two intersections.
type DispatchAmbulance struct {
	Type             CmdType `json:"type"`
	FromIntersection string  `json:"from_intersection"`
	ToIntersection   string  `json:"to_intersection"`
	ETASeconds       int     `json:"eta_seconds"`
}

// CmdKind implements Command.
func (*DispatchAmbulance) CmdKind() CmdType { return CmdDispatchAmbulance }

// NewDispatchAmbulance builds a dispatch_ambulance command.
func NewDispatchAmbulance(from, to string, etaSeconds int) *DispatchAmbulance {
	return &DispatchAmbulance{
		Type:             CmdDispatchAmbulance,
		FromIntersection: from,
		ToIntersection:   to,
		ETASeconds:       etaSeconds,
	}
}

// IncidentCreate reports a new disruption at an intersection approach.
type IncidentCreate struct {
	Type           CmdType `json:"type"`
	IntersectionID string  `json:"intersection_id"`
	Direction      string  `json:"direction"`
	IncidentType   string  `json:"incident_type"`
	Severity       int     `json:"severity"`
}

// CmdKind implements Command.
func (*IncidentCreate) CmdKind() CmdType { return CmdIncidentCreate }

// NewIncidentCreate builds an incident_create command.
func NewIncidentCreate(intersectionID, direction, incidentType string, severity int) *IncidentCreate {
	return &IncidentCreate{
		Type:           CmdIncidentCreate,
		IntersectionID: intersectionID,
		Direction:      direction,
		IncidentType:   incidentType,
		Severity:       severity,
	}
}

// IncidentClear asks the server to clear an incident by id.
type IncidentClear struct {
	Type       CmdType `json:"type"`
	IncidentID string  `json:"incident_id"`
}

// CmdKind implements Command.
func (*IncidentClear) CmdKind() CmdType { return CmdIncidentClear }

// NewIncidentClear builds an incident_clear command.
func NewIncidentClear(incidentID string) *IncidentClear {
	return &IncidentClear{Type: CmdIncidentClear, IncidentID: incidentID}
}

// ClearAmbulanceRoute asks the server to clear a corridor by id.
type ClearAmbulanceRoute struct {
	Type    CmdType `json:"type"`
	RouteID string  `json:"route_id"`
}

// CmdKind implements Command.
func (*ClearAmbulanceRoute) CmdKind() CmdType { return CmdClearAmbulanceRoute }

// NewClearAmbulanceRoute builds a clear_ambulance_route command.
func NewClearAmbulanceRoute(routeID string) *ClearAmbulanceRoute {
	return &ClearAmbulanceRoute{Type: CmdClearAmbulanceRoute, RouteID: routeID}
}

// Ping is the client heartbeat probe.
type Ping struct {
	Type CmdType `json:"type"`
}

// CmdKind implements Command.
func (*Ping) CmdKind() CmdType { return CmdPing }

// NewPing builds a ping command.
func NewPing() *Ping {
	return &Ping{Type: CmdPing}
}

// EncodeCommand serializes a command to a JSON text frame.
func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}
