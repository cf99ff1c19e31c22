// Package state holds the authoritative current view of the city feed.
//
// A Store merges decoded feed messages into three keyed collections (nodes,
// incidents, ambulance routes) plus a bounded event-log tail, and tracks the
// currently selected intersection. Full snapshots replace collections
// wholesale; incremental updates upsert by id. Apply is the only write path,
// so merge behavior is testable without any connection.
package state
