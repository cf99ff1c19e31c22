package state

import (
	"log/slog"
	"sync"

	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

// DefaultEventLogLimit caps the retained event-log tail.
// Matches the server's own bounded log.
const DefaultEventLogLimit = 500

// Options configures a Store.
type Options struct {
	// EventLogLimit is the maximum number of retained event-log entries.
	// Oldest entries are dropped first. Default: DefaultEventLogLimit.
	EventLogLimit int

	// Logger is used for merge diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// Store is the single mutable view of current city state.
//
// All writes go through Apply and SelectNode. Collection replacement is
// copy-then-swap: readers holding a previously returned slice never observe
// a partial merge.
type Store struct {
	mu sync.RWMutex

	city        protocol.CitySnapshot
	hasSnapshot bool
	lastStamp   string

	// Most-recently-updated entries first.
	incidents []protocol.Incident
	routes    []protocol.AmbulanceRoute

	events     []protocol.Event
	eventLimit int

	selected string

	nodes  *nodeIndex
	logger *slog.Logger
}

// New creates an empty Store.
func New(opts *Options) *Store {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.EventLogLimit
	if limit <= 0 {
		limit = DefaultEventLogLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		eventLimit: limit,
		nodes:      newNodeIndex(nil),
		logger:     logger.With("component", "state"),
	}
}

// Apply merges one decoded feed message into the store.
//
// Heartbeat responses and server error notices carry no state and are
// ignored here; unknown concrete types are dropped the same way malformed
// frames are dropped by the codec.
func (s *Store) Apply(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.CityUpdate:
		s.applySnapshot(m)
	case *protocol.IncidentUpdate:
		s.upsertIncident(m.Incident)
	case *protocol.AmbulanceRouteUpdate:
		s.upsertRoute(m.Route)
	case *protocol.Pong, *protocol.ServerError:
		// No state carried.
	default:
		s.logger.Debug("ignoring message with no merge rule", "kind", msg.Kind())
	}
}

// applySnapshot replaces every collection with the snapshot's contents and
// appends its event-log tail to the retained log.
func (s *Store) applySnapshot(m *protocol.CityUpdate) {
	nodes := make([]protocol.Node, len(m.City.Nodes))
	copy(nodes, m.City.Nodes)
	incidents := make([]protocol.Incident, len(m.Incidents))
	copy(incidents, m.Incidents)
	routes := make([]protocol.AmbulanceRoute, len(m.AmbulanceRoutes))
	copy(routes, m.AmbulanceRoutes)
	index := newNodeIndex(nodes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.city = protocol.CitySnapshot{
		CityID: m.City.CityID,
		Center: m.City.Center,
		Nodes:  nodes,
	}
	s.hasSnapshot = true
	s.lastStamp = m.Timestamp
	s.incidents = incidents
	s.routes = routes
	s.nodes = index

	s.events = appendBounded(s.events, m.EventLogTail, s.eventLimit)

	if s.selected == "" && len(nodes) > 0 {
		s.selected = nodes[0].IntersectionID
	}
}

// upsertIncident replaces the incident with the same id, or inserts it as
// the newest entry. Updated entries surface first. Incidents referencing an
// intersection the current snapshot does not contain are still accepted.
func (s *Store) upsertIncident(inc protocol.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]protocol.Incident, 0, len(s.incidents)+1)
	next = append(next, inc)
	for _, existing := range s.incidents {
		if existing.IncidentID != inc.IncidentID {
			next = append(next, existing)
		}
	}
	s.incidents = next
}

// upsertRoute has the same semantics as upsertIncident, keyed by route id.
func (s *Store) upsertRoute(route protocol.AmbulanceRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]protocol.AmbulanceRoute, 0, len(s.routes)+1)
	next = append(next, route)
	for _, existing := range s.routes {
		if existing.RouteID != route.RouteID {
			next = append(next, existing)
		}
	}
	s.routes = next
}

// appendBounded appends tail to log, dropping oldest entries past limit.
func appendBounded(log, tail []protocol.Event, limit int) []protocol.Event {
	merged := make([]protocol.Event, 0, len(log)+len(tail))
	merged = append(merged, log...)
	merged = append(merged, tail...)
	if len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	return merged
}

// SelectNode sets the currently selected intersection. Selection is an
// explicit UI action; incoming data never changes it except the
// first-snapshot default.
func (s *Store) SelectNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// SelectedID returns the currently selected intersection id, or "".
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedNode returns the selected node, if the current snapshot has it.
func (s *Store) SelectedNode() (protocol.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return protocol.Node{}, false
	}
	for _, n := range s.city.Nodes {
		if n.IntersectionID == s.selected {
			return n, true
		}
	}
	return protocol.Node{}, false
}

// Snapshot returns the current city snapshot. ok is false before the first
// city_update arrives.
func (s *Store) Snapshot() (snap protocol.CitySnapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city, s.hasSnapshot
}

// LastTimestamp returns the timestamp of the last applied snapshot.
func (s *Store) LastTimestamp() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStamp
}

// Nodes returns the current node list.
func (s *Store) Nodes() []protocol.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city.Nodes
}

// Incidents returns the current incident collection, most recent first.
func (s *Store) Incidents() []protocol.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incidents
}

// Routes returns the current ambulance route collection, most recent first.
func (s *Store) Routes() []protocol.AmbulanceRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

// Events returns the retained event-log tail, oldest first.
func (s *Store) Events() []protocol.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

// NearestNode returns the intersection closest to the given coordinate,
// using the spatial index built from the current snapshot.
func (s *Store) NearestNode(lat, lng float64) (protocol.Node, bool) {
	s.mu.RLock()
	index := s.nodes
	s.mu.RUnlock()
	return index.nearest(lat, lng)
}
