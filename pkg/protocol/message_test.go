package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_CityUpdate(t *testing.T) {
	raw := []byte(`{
		"type": "city_update",
		"timestamp": "2025-01-10T12:00:00Z",
		"city": {
			"city_id": "CITY_DEMO",
			"center": {"lat": 28.6139, "lng": 77.2090},
			"nodes": [
				{
					"intersection_id": "INT_A",
					"name": "Node A",
					"lat": 28.6169,
					"lng": 77.2120,
					"neighbors": ["INT_B", "INT_C"],
					"current_phase": {
						"phase_id": 1,
						"active_directions": ["north", "south"],
						"status": "GREEN",
						"remaining_time": 18
					},
					"overall_metrics": {
						"total_vehicles_passed": 120,
						"avg_wait_time_all_sides": 22.5,
						"throughput": 1.5,
						"avg_speed": 24.3,
						"cycle_time": 60
					},
					"direction_metrics": {
						"north": {
							"vehicle_counts": {"car": 6, "bus": 1, "truck": 0, "bike": 2},
							"queue_length": 9,
							"vehicles_crossed": 3,
							"avg_wait_time": 19.0,
							"emergency_vehicle_present": false
						}
					},
					"explainability": {
						"policy": "max_pressure",
						"reason": "max_pressure_selection",
						"phase_scores": {"EW": 4.0, "NS": 9.0},
						"chosen_phase": "NS",
						"emergency_preemption": false,
						"notes": "Selected busiest phase"
					}
				}
			]
		},
		"incidents": [
			{
				"incident_id": "INC_1",
				"intersection_id": "INT_A",
				"direction": "east",
				"incident_type": "accident",
				"severity": 2,
				"created_at": "2025-01-10T11:58:00Z",
				"status": "active"
			}
		],
		"ambulance_routes": [],
		"event_log_tail": [
			{"type": "incident_created", "timestamp": "2025-01-10T11:58:00Z", "data": {"incident_id": "INC_1"}}
		]
	}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	cu, ok := msg.(*CityUpdate)
	if !ok {
		t.Fatalf("expected *CityUpdate, got %T", msg)
	}
	if cu.Kind() != MsgCityUpdate {
		t.Errorf("expected kind %q, got %q", MsgCityUpdate, cu.Kind())
	}
	if cu.City.CityID != "CITY_DEMO" {
		t.Errorf("expected city CITY_DEMO, got %q", cu.City.CityID)
	}
	if len(cu.City.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(cu.City.Nodes))
	}

	node := cu.City.Nodes[0]
	if node.IntersectionID != "INT_A" {
		t.Errorf("expected node INT_A, got %q", node.IntersectionID)
	}
	if node.CurrentPhase.Status != "GREEN" || node.CurrentPhase.RemainingTime != 18 {
		t.Errorf("unexpected phase: %+v", node.CurrentPhase)
	}
	if got := node.DirectionMetrics["north"].QueueLength; got != 9 {
		t.Errorf("expected north queue 9, got %d", got)
	}
	if node.Explainability == nil || node.Explainability.ChosenPhase != "NS" {
		t.Errorf("unexpected explainability: %+v", node.Explainability)
	}

	if len(cu.Incidents) != 1 || cu.Incidents[0].IncidentID != "INC_1" {
		t.Errorf("unexpected incidents: %+v", cu.Incidents)
	}
	if len(cu.AmbulanceRoutes) != 0 {
		t.Errorf("expected no routes, got %d", len(cu.AmbulanceRoutes))
	}
	if len(cu.EventLogTail) != 1 || cu.EventLogTail[0].Type != "incident_created" {
		t.Errorf("unexpected event tail: %+v", cu.EventLogTail)
	}
}

func TestDecode_IncidentUpdate(t *testing.T) {
	raw := []byte(`{
		"type": "incident_update",
		"timestamp": "2025-01-10T12:00:02Z",
		"incident": {
			"incident_id": "INC_2",
			"intersection_id": "INT_B",
			"direction": "west",
			"incident_type": "roadblock",
			"severity": 3,
			"created_at": "2025-01-10T12:00:02Z",
			"status": "active"
		}
	}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	iu, ok := msg.(*IncidentUpdate)
	if !ok {
		t.Fatalf("expected *IncidentUpdate, got %T", msg)
	}
	if iu.Incident.IncidentID != "INC_2" || iu.Incident.Status != IncidentActive {
		t.Errorf("unexpected incident: %+v", iu.Incident)
	}
}

func TestDecode_AmbulanceRouteUpdate(t *testing.T) {
	raw := []byte(`{
		"type": "ambulance_route_update",
		"timestamp": "2025-01-10T12:00:04Z",
		"route": {
			"route_id": "AMB_1",
			"from_intersection": "INT_A",
			"to_intersection": "INT_D",
			"created_at": "2025-01-10T12:00:04Z",
			"eta_seconds": 45,
			"status": "enroute"
		}
	}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ru, ok := msg.(*AmbulanceRouteUpdate)
	if !ok {
		t.Fatalf("expected *AmbulanceRouteUpdate, got %T", msg)
	}
	if ru.Route.RouteID != "AMB_1" || ru.Route.ETASeconds != 45 || ru.Route.Status != RouteEnroute {
		t.Errorf("unexpected route: %+v", ru.Route)
	}
}

func TestDecode_ControlMessages(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "pong", "timestamp": "2025-01-10T12:00:00Z"}`))
	if err != nil {
		t.Fatalf("Decode pong failed: %v", err)
	}
	if _, ok := msg.(*Pong); !ok {
		t.Errorf("expected *Pong, got %T", msg)
	}

	msg, err = Decode([]byte(`{"type": "error", "timestamp": "2025-01-10T12:00:00Z", "message": "overloaded"}`))
	if err != nil {
		t.Fatalf("Decode error notice failed: %v", err)
	}
	se, ok := msg.(*ServerError)
	if !ok {
		t.Fatalf("expected *ServerError, got %T", msg)
	}
	if se.Message != "overloaded" {
		t.Errorf("expected message %q, got %q", "overloaded", se.Message)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "unrecognized_kind", "payload": 42}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if msg != nil {
		t.Errorf("expected nil message, got %T", msg)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `not json at all`},
		{"truncated", `{"type": "city_update"`},
		{"empty", ``},
		{"array", `[1, 2, 3]`},
		{"numeric type", `{"type": 7}`},
		{"wrong body shape", `{"type": "incident_update", "incident": "not-an-object"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Decode([]byte(tc.raw))
			if err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			if msg != nil {
				t.Errorf("expected nil message, got %T", msg)
			}
		})
	}
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"timestamp": "2025-01-10T12:00:00Z"}`))
	if !errors.Is(err, ErrMissingType) {
		t.Errorf("expected ErrMissingType, got %v", err)
	}
}

func TestEncodeCommand(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want []string
	}{
		{
			"dispatch",
			NewDispatchAmbulance("INT_A", "INT_B", 30),
			[]string{`"type":"dispatch_ambulance"`, `"from_intersection":"INT_A"`, `"to_intersection":"INT_B"`, `"eta_seconds":30`},
		},
		{
			"incident create",
			NewIncidentCreate("INT_C", "east", "accident", 2),
			[]string{`"type":"incident_create"`, `"intersection_id":"INT_C"`, `"direction":"east"`, `"incident_type":"accident"`, `"severity":2`},
		},
		{
			"incident clear",
			NewIncidentClear("INC_9"),
			[]string{`"type":"incident_clear"`, `"incident_id":"INC_9"`},
		},
		{
			"route clear",
			NewClearAmbulanceRoute("AMB_3"),
			[]string{`"type":"clear_ambulance_route"`, `"route_id":"AMB_3"`},
		},
		{
			"ping",
			NewPing(),
			[]string{`"type":"ping"`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := EncodeCommand(tc.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand failed: %v", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(string(raw), want) {
					t.Errorf("encoded command missing %s: %s", want, raw)
				}
			}
		})
	}
}

func TestCommandRoundTrip(t *testing.T) {
	// A command encoded by the client must classify as unknown on the client
	// side: command kinds are not inbound message kinds.
	raw, err := EncodeCommand(NewPing())
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}
	if _, err := Decode(raw); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType for outbound kind, got %v", err)
	}
}
