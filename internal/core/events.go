package core

import "github.com/dkeye/Chat/internal/domain"

// InboundEvent is anything a client can send over its channel.
// The set is closed: only types in this file implement it.
type InboundEvent interface {
	inbound()
}

type (
	Connect struct {
		Signal SignalConnection
	}

	Join struct {
		DisplayName string
	}

	BroadcastMessage struct {
		Body string
	}

	PrivateMessage struct {
		To   domain.ConnectionID
		Body string
	}

	// Leave drops the chat identity but keeps the connection open.
	Leave struct{}

	Disconnect struct{}

	Ping struct{}

	WhoAmI struct{}
)

func (Connect) inbound()          {}
func (Join) inbound()             {}
func (BroadcastMessage) inbound() {}
func (PrivateMessage) inbound()   {}
func (Leave) inbound()            {}
func (Disconnect) inbound()       {}
func (Ping) inbound()             {}
func (WhoAmI) inbound()           {}

// OutboundEvent is anything the server pushes to a client.
type OutboundEvent interface {
	Kind() string
}

type (
	// Welcome tells a fresh connection its own id.
	Welcome struct {
		ConnectionID domain.ConnectionID
	}

	PresenceSnapshot struct {
		Participants domain.PresenceSnapshot
	}

	MessageReceived struct {
		ID         string
		SenderName string
		Body       string
		From       domain.ConnectionID
		Private    bool
	}

	UserLeft struct {
		DisplayName string
	}

	// Undelivered is sent back to the author of a private message
	// whose target is not online.
	Undelivered struct {
		To domain.ConnectionID
	}

	IdentityInfo struct {
		ConnectionID domain.ConnectionID
		DisplayName  string
		State        ConnState
	}

	Pong struct{}

	Error struct {
		Code    string
		Message string
	}
)

func (Welcome) Kind() string          { return "welcome" }
func (PresenceSnapshot) Kind() string { return "user-list" }
func (MessageReceived) Kind() string  { return "receive" }
func (UserLeft) Kind() string         { return "user-left" }
func (Undelivered) Kind() string      { return "undelivered" }
func (IdentityInfo) Kind() string     { return "identity" }
func (Pong) Kind() string             { return "pong" }
func (Error) Kind() string            { return "error" }
