// Package protocol defines the wire protocol spoken by the city traffic feed.
//
// The feed is a single WebSocket connection carrying JSON text frames in both
// directions. Every frame is an object discriminated by a string "type" field.
//
// # Inbound messages (server → client)
//
//   - city_update: a complete, authoritative snapshot of every intersection,
//     the active incident set, the ambulance corridor set, and a short tail
//     of the server's event log
//   - incident_update: one incident created or changed
//   - ambulance_route_update: one corridor created or changed
//   - pong: heartbeat response
//   - error: advisory server error notice
//
// Any other "type" value is ignored: the client must tolerate message kinds
// introduced by newer servers. Malformed payloads are dropped, never fatal.
//
// # Outbound commands (client → server)
//
//   - dispatch_ambulance, incident_create, incident_clear,
//     clear_ambulance_route, ping
//
// Commands are fire-and-forget. The server does not acknowledge them; their
// effect only becomes visible when it is echoed back as an incident_update,
// ambulance_route_update, or a later city_update.
//
// Timestamps are RFC 3339 strings exactly as produced by the server.
package protocol
