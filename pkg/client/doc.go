// Package client owns the connection to the city traffic feed.
//
// A Manager wraps one Transport with lifecycle state (connecting, connected,
// disconnected, terminal error), bounded-backoff reconnection, and a
// heartbeat. It has no knowledge of message semantics: inbound frames are
// handed to an OnMessage callback as raw bytes and outbound sends are raw
// bytes, so the protocol codec and state merge stay independently testable.
//
// Commands is the thin outbound serializer layered on a Manager: one method
// per command kind, fire-and-forget, failing synchronously while not
// connected.
package client
