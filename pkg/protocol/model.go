package protocol

import "encoding/json"

// Incident status values.
const (
	IncidentActive  = "active"
	IncidentCleared = "cleared"
)

// Ambulance route status values.
const (
	RouteEnroute = "enroute"
	RouteArrived = "arrived"
	RouteCleared = "cleared"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CitySnapshot is a complete description of the city at one point in time.
// It is produced wholesale by the server and never partially patched.
type CitySnapshot struct {
	CityID string  `json:"city_id"`
	Center LatLng  `json:"center"`
	Nodes  []Node  `json:"nodes"`
}

// Node is one signalized intersection as of the snapshot that carried it.
type Node struct {
	IntersectionID   string                      `json:"intersection_id"`
	Name             string                      `json:"name"`
	Lat              float64                     `json:"lat"`
	Lng              float64                     `json:"lng"`
	Neighbors        []string                    `json:"neighbors"`
	CurrentPhase     Phase                       `json:"current_phase"`
	OverallMetrics   OverallMetrics              `json:"overall_metrics"`
	DirectionMetrics map[string]DirectionMetrics `json:"direction_metrics"`
	Explainability   *Explainability             `json:"explainability,omitempty"`
}

// Phase is the signal state of an intersection.
type Phase struct {
	PhaseID          int      `json:"phase_id"`
	ActiveDirections []string `json:"active_directions"`
	Status           string   `json:"status"`
	RemainingTime    int      `json:"remaining_time"`
}

// OverallMetrics aggregates an intersection across all approaches.
type OverallMetrics struct {
	TotalVehiclesPassed int     `json:"total_vehicles_passed"`
	AvgWaitTimeAllSides float64 `json:"avg_wait_time_all_sides"`
	Throughput          float64 `json:"throughput"`
	AvgSpeed            float64 `json:"avg_speed"`
	CycleTime           int     `json:"cycle_time"`
}

// DirectionMetrics describes one approach of an intersection.
type DirectionMetrics struct {
	VehicleCounts           map[string]int `json:"vehicle_counts"`
	QueueLength             int            `json:"queue_length"`
	VehiclesCrossed         int            `json:"vehicles_crossed"`
	AvgWaitTime             float64        `json:"avg_wait_time"`
	EmergencyVehiclePresent bool           `json:"emergency_vehicle_present"`
}

// Explainability is the controller's stated rationale for its phase choice.
type Explainability struct {
	Policy              string             `json:"policy"`
	Reason              string             `json:"reason"`
	PhaseScores         map[string]float64 `json:"phase_scores"`
	ChosenPhase         string             `json:"chosen_phase"`
	EmergencyPreemption bool               `json:"emergency_preemption"`
	Notes               string             `json:"notes"`
}

// Incident is a reported disruption at a specific intersection approach.
// It can arrive inside a snapshot (baseline) or as a standalone update.
type Incident struct {
	IncidentID     string `json:"incident_id"`
	IntersectionID string `json:"intersection_id"`
	Direction      string `json:"direction"`
	IncidentType   string `json:"incident_type"`
	Severity       int    `json:"severity"`
	CreatedAt      string `json:"created_at"`
	Status         string `json:"status"`
}

// AmbulanceRoute is a requested priority corridor between two intersections.
type AmbulanceRoute struct {
	RouteID          string `json:"route_id"`
	FromIntersection string `json:"from_intersection"`
	ToIntersection   string `json:"to_intersection"`
	CreatedAt        string `json:"created_at"`
	ETASeconds       int    `json:"eta_seconds"`
	Status           string `json:"status"`
}

// Event is one append-only server event-log entry. The payload is opaque to
// the client and only retained for timeline display.
type Event struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
