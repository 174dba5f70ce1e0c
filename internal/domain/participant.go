package domain

// ConnectionID identifies one live transport connection.
// It is assigned by the transport adapter and never reused.
type ConnectionID string

// Participant is the chat identity bound to a live connection.
type Participant struct {
	ConnectionID ConnectionID `json:"id"`
	DisplayName  string       `json:"name"`
}

// PresenceSnapshot maps every joined connection to its display name.
// Values returned by the registry are copies and may be kept by the caller.
type PresenceSnapshot map[ConnectionID]string
