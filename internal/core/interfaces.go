package core

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"errors"

	"github.com/dkeye/Chat/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks: a full buffer yields ErrBackpressure.
	TrySend(OutboundEvent) error
	Close()
}

// Delivery is one outbound event addressed to one connection.
type Delivery struct {
	To    domain.ConnectionID
	Event OutboundEvent
}

// Identity is what the identity service vouches for.
type Identity struct {
	UserID domain.UserID `json:"user_id"`
	Name   string        `json:"name"`
}

// IdentityVerifier turns an opaque credential token into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Directory lists every user known to the account store,
// online or not.
type Directory interface {
	ListKnownUsers(ctx context.Context) ([]string, error)
}
