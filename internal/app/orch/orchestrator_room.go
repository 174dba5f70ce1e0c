package orch

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) OnConnect(sid domain.ConnectionID, sig core.SignalConnection) {
	if sig == nil {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("connect without signal")
		return
	}
	o.Registry.BindSignal(sid, sig)
	o.sendTo(sid, core.Welcome{ConnectionID: sid})
}

// OnJoin registers sid under name, or renames it when already joined,
// then pushes the new presence snapshot to everyone joined.
func (o *Orchestrator) OnJoin(sid domain.ConnectionID, name string) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("rejected join")
		if o.Registry.State(sid) != core.Closed {
			o.sendTo(sid, core.Error{Code: "invalid_name", Message: err.Error()})
		}
		return
	}
	rejoin, ok := o.Registry.Join(sid, name)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("join on closed connection dropped")
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("name", name).Bool("rejoin", rejoin).Msg("joined")
	o.deliver(o.Router.RoutePresence(o.Registry))
}

// OnLeave drops the chat identity of sid while keeping its channel open.
func (o *Orchestrator) OnLeave(sid domain.ConnectionID) {
	p, ok := o.Registry.Leave(sid)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("name", p.DisplayName).Msg("left")
	o.announceDeparture(p)
	o.sendTo(sid, core.IdentityInfo{ConnectionID: sid, State: core.Connected})
}

// OnDisconnect is valid from any state and idempotent.
func (o *Orchestrator) OnDisconnect(sid domain.ConnectionID) {
	p, ok := o.Registry.Unbind(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("disconnect without participant")
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("name", p.DisplayName).Msg("disconnected")
	o.announceDeparture(p)
}

func (o *Orchestrator) announceDeparture(p domain.Participant) {
	o.deliver(o.Router.RouteUserLeft(p.DisplayName, o.Registry))
	o.deliver(o.Router.RoutePresence(o.Registry))
}
