package app

import (
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a connection whose outbound send failed.
type Policy interface {
	OnBackPressure(sid domain.ConnectionID, err error) BackpressureAction
}

// SimplePolicy only ever kicks a slow reader, and only when KickSlow is set.
type SimplePolicy struct {
	KickSlow bool
}

func (p SimplePolicy) OnBackPressure(_ domain.ConnectionID, err error) BackpressureAction {
	if p.KickSlow && errors.Is(err, core.ErrBackpressure) {
		return KickMember
	}
	return NoAction
}
