package orch

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) OnBroadcastMessage(sid domain.ConnectionID, body string) {
	if !o.joined(sid) {
		return
	}
	o.deliver(o.Router.RouteBroadcast(sid, body, o.Registry))
}

func (o *Orchestrator) OnPrivateMessage(sid, to domain.ConnectionID, body string) {
	if !o.joined(sid) {
		return
	}
	ds := o.Router.RoutePrivate(sid, to, body, o.Registry)
	if len(ds) == 0 && o.NotifyUndelivered {
		o.sendTo(sid, core.Undelivered{To: to})
		return
	}
	o.deliver(ds)
}

func (o *Orchestrator) joined(sid domain.ConnectionID) bool {
	if state := o.Registry.State(sid); state != core.Joined {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Stringer("state", state).Msg("unregistered sender, message dropped")
		return false
	}
	return true
}
