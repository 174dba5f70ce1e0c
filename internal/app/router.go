package app

import (
	"slices"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// PresenceReader is the read-only view of the registry the router needs.
type PresenceReader interface {
	Get(sid domain.ConnectionID) (domain.Participant, bool)
	Snapshot() domain.PresenceSnapshot
}

// Router computes fan-out for chat events. It never mutates presence
// and never fails: a missing target simply yields no delivery.
type Router struct {
	NewID func() string
}

func NewRouter() *Router {
	return &Router{NewID: func() string { return ulid.Make().String() }}
}

// RouteBroadcast addresses body to every joined connection except the sender.
func (rt *Router) RouteBroadcast(from domain.ConnectionID, body string, reg PresenceReader) []core.Delivery {
	msg := core.MessageReceived{
		ID:         rt.NewID(),
		SenderName: rt.senderName(from, reg),
		Body:       body,
		From:       from,
	}
	targets := lo.Filter(sortedIDs(reg.Snapshot()), func(sid domain.ConnectionID, _ int) bool {
		return sid != from
	})
	log.Debug().Str("module", "app.router").Str("from", string(from)).Int("targets", len(targets)).Msg("broadcast")
	return addressTo(targets, msg)
}

// RoutePrivate addresses body to target only. An offline target drops the message.
func (rt *Router) RoutePrivate(from, to domain.ConnectionID, body string, reg PresenceReader) []core.Delivery {
	if _, ok := reg.Get(to); !ok {
		log.Debug().Str("module", "app.router").Str("from", string(from)).Str("to", string(to)).Msg("private target offline, dropped")
		return nil
	}
	msg := core.MessageReceived{
		ID:         rt.NewID(),
		SenderName: rt.senderName(from, reg),
		Body:       body,
		From:       from,
		Private:    true,
	}
	return []core.Delivery{{To: to, Event: msg}}
}

// RoutePresence sends the current snapshot to every joined connection.
func (rt *Router) RoutePresence(reg PresenceReader) []core.Delivery {
	snap := reg.Snapshot()
	return addressTo(sortedIDs(snap), core.PresenceSnapshot{Participants: snap})
}

// RouteUserLeft tells every remaining participant that name is gone.
func (rt *Router) RouteUserLeft(name string, reg PresenceReader) []core.Delivery {
	return addressTo(sortedIDs(reg.Snapshot()), core.UserLeft{DisplayName: name})
}

func (rt *Router) senderName(from domain.ConnectionID, reg PresenceReader) string {
	p, ok := reg.Get(from)
	if !ok {
		log.Warn().Str("module", "app.router").Str("sid", string(from)).Msg("sender not registered, using empty name")
		return ""
	}
	return p.DisplayName
}

func sortedIDs(snap domain.PresenceSnapshot) []domain.ConnectionID {
	ids := lo.Keys(snap)
	slices.Sort(ids)
	return ids
}

func addressTo(ids []domain.ConnectionID, ev core.OutboundEvent) []core.Delivery {
	return lo.Map(ids, func(sid domain.ConnectionID, _ int) core.Delivery {
		return core.Delivery{To: sid, Event: ev}
	})
}
