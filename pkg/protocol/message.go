package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MsgType identifies an inbound message kind.
type MsgType string

// The closed set of recognized inbound message kinds.
const (
	MsgCityUpdate           MsgType = "city_update"
	MsgIncidentUpdate       MsgType = "incident_update"
	MsgAmbulanceRouteUpdate MsgType = "ambulance_route_update"
	MsgPong                 MsgType = "pong"
	MsgError                MsgType = "error"
)

// Decoding errors.
var (
	// ErrMissingType is returned for payloads that parse as JSON but carry
	// no string "type" discriminator.
	ErrMissingType = errors.New("protocol: missing type discriminator")

	// ErrUnknownType is returned for discriminators outside the recognized
	// set. Callers drop these silently: unknown kinds are not a protocol
	// violation.
	ErrUnknownType = errors.New("protocol: unrecognized message type")
)

// Message is implemented by every inbound message kind.
type Message interface {
	Kind() MsgType
}

// CityUpdate is a full snapshot message. Its collections are authoritative
// as of its timestamp and replace the client's view wholesale.
type CityUpdate struct {
	Type            MsgType          `json:"type"`
	Timestamp       string           `json:"timestamp"`
	City            CitySnapshot     `json:"city"`
	Incidents       []Incident       `json:"incidents"`
	AmbulanceRoutes []AmbulanceRoute `json:"ambulance_routes"`
	EventLogTail    []Event          `json:"event_log_tail"`
}

// Kind implements Message.
func (*CityUpdate) Kind() MsgType { return MsgCityUpdate }

// IncidentUpdate carries one created or changed incident.
type IncidentUpdate struct {
	Type      MsgType  `json:"type"`
	Timestamp string   `json:"timestamp"`
	Incident  Incident `json:"incident"`
}

// Kind implements Message.
func (*IncidentUpdate) Kind() MsgType { return MsgIncidentUpdate }

// AmbulanceRouteUpdate carries one created or changed corridor.
type AmbulanceRouteUpdate struct {
	Type      MsgType        `json:"type"`
	Timestamp string         `json:"timestamp"`
	Route     AmbulanceRoute `json:"route"`
}

// Kind implements Message.
func (*AmbulanceRouteUpdate) Kind() MsgType { return MsgAmbulanceRouteUpdate }

// Pong is the server's heartbeat response. Advisory only.
type Pong struct {
	Type      MsgType `json:"type"`
	Timestamp string  `json:"timestamp"`
}

// Kind implements Message.
func (*Pong) Kind() MsgType { return MsgPong }

// ServerError is an advisory error notice from the server.
type ServerError struct {
	Type      MsgType `json:"type"`
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message"`
}

// Kind implements Message.
func (*ServerError) Kind() MsgType { return MsgError }

// Decode classifies a raw inbound frame into a typed message.
//
// It returns ErrMissingType for JSON without a string discriminator and
// ErrUnknownType for discriminators outside the recognized set; both are
// expected conditions the pipeline drops without escalating. Decode never
// panics on hostile input.
func Decode(raw []byte) (Message, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("protocol: malformed payload: %w", err)
	}
	if probe.Type == "" {
		return nil, ErrMissingType
	}

	var msg Message
	switch MsgType(probe.Type) {
	case MsgCityUpdate:
		msg = &CityUpdate{}
	case MsgIncidentUpdate:
		msg = &IncidentUpdate{}
	case MsgAmbulanceRouteUpdate:
		msg = &AmbulanceRouteUpdate{}
	case MsgPong:
		msg = &Pong{}
	case MsgError:
		msg = &ServerError{}
	default:
		return nil, ErrUnknownType
	}

	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("protocol: malformed %s: %w", probe.Type, err)
	}
	return msg, nil
}
