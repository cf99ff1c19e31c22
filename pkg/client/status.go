package client

// Status is the connection lifecycle state visible to consumers.
type Status int

const (
	// StatusDisconnected is the initial state, the state after an
	// unintentional close while a reconnect is pending, and the terminal
	// state after an intentional Disconnect.
	StatusDisconnected Status = iota

	// StatusConnecting means a dial is in flight.
	StatusConnecting

	// StatusConnected means the transport is open.
	StatusConnected

	// StatusError is the terminal state after exhausting reconnect
	// attempts. Only an explicit Connect leaves it.
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
