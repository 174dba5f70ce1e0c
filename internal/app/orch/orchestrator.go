// Package orch is the session controller: it owns every mutation of
// presence state and turns inbound channel events into outbound fan-out.
package orch

import (
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Router   *app.Router
	Policy   app.Policy

	// NotifyUndelivered answers a private message to an offline target
	// with core.Undelivered instead of dropping it silently.
	NotifyUndelivered bool
}

func New(reg *app.Registry, router *app.Router, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Router:   router,
		Policy:   policy,
	}
}

// Dispatch feeds one inbound event of sid into the state machine.
// Events of a single connection must be dispatched in order.
func (o *Orchestrator) Dispatch(sid domain.ConnectionID, ev core.InboundEvent) {
	switch e := ev.(type) {
	case core.Connect:
		o.OnConnect(sid, e.Signal)
	case core.Join:
		o.OnJoin(sid, e.DisplayName)
	case core.BroadcastMessage:
		o.OnBroadcastMessage(sid, e.Body)
	case core.PrivateMessage:
		o.OnPrivateMessage(sid, e.To, e.Body)
	case core.Leave:
		o.OnLeave(sid)
	case core.Disconnect:
		o.OnDisconnect(sid)
	case core.Ping:
		o.OnPing(sid)
	case core.WhoAmI:
		o.OnWhoAmI(sid)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Type("event", ev).Msg("unknown inbound event")
	}
}

func (o *Orchestrator) OnPing(sid domain.ConnectionID) {
	if o.Registry.State(sid) == core.Closed {
		return
	}
	o.sendTo(sid, core.Pong{})
}

func (o *Orchestrator) OnWhoAmI(sid domain.ConnectionID) {
	state := o.Registry.State(sid)
	if state == core.Closed {
		return
	}
	info := core.IdentityInfo{ConnectionID: sid, State: state}
	if p, ok := o.Registry.Get(sid); ok {
		info.DisplayName = p.DisplayName
	}
	o.sendTo(sid, info)
}

func (o *Orchestrator) sendTo(sid domain.ConnectionID, ev core.OutboundEvent) {
	o.deliver([]core.Delivery{{To: sid, Event: ev}})
}

// deliver is best effort: a failed send is logged and handed to the
// policy, the remaining recipients are still served.
func (o *Orchestrator) deliver(ds []core.Delivery) {
	for _, d := range ds {
		sig, ok := o.Registry.Signal(d.To)
		if !ok {
			log.Debug().Str("module", "orch").Str("sid", string(d.To)).Str("event", d.Event.Kind()).Msg("recipient gone, skipped")
			continue
		}
		err := sig.TrySend(d.Event)
		if err == nil {
			continue
		}
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(d.To)).Str("event", d.Event.Kind()).Msg("transport send failure")
		if o.Policy == nil {
			continue
		}
		switch o.Policy.OnBackPressure(d.To, err) {
		case app.KickMember:
			log.Info().Str("module", "orch").Str("sid", string(d.To)).Msg("kicking slow connection")
			sig.Close()
		case app.NoAction:
		}
	}
}
