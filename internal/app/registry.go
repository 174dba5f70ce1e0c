package app

import (
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	State  core.ConnState
	Signal core.SignalConnection
}

// Registry is the presence registry: which connections are open and
// which of them have joined the chat under what name.
// A single RWMutex guards both tables so that join and disconnect
// for the same connection are serialized.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[domain.ConnectionID]*sessionEntry
	participants map[domain.ConnectionID]domain.Participant
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[domain.ConnectionID]*sessionEntry),
		participants: make(map[domain.ConnectionID]domain.Participant),
	}
}

// Add inserts or overwrites the participant for sid and marks it Joined.
// An id without a bound channel gets a channel-less entry, so State and
// Len stay in agreement.
func (r *Registry) Add(sid domain.ConnectionID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		e = &sessionEntry{}
		r.sessions[sid] = e
	}
	e.State = core.Joined
	r.participants[sid] = domain.Participant{ConnectionID: sid, DisplayName: name}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Msg("participant added")
}

// Remove deletes the participant for sid. Unknown ids are not an error.
// A bound connection falls back to Connected, a channel-less one is forgotten.
func (r *Registry) Remove(sid domain.ConnectionID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		if e.Signal == nil {
			delete(r.sessions, sid)
		} else if e.State == core.Joined {
			e.State = core.Connected
		}
	}
	return r.removeLocked(sid)
}

func (r *Registry) removeLocked(sid domain.ConnectionID) (domain.Participant, bool) {
	p, ok := r.participants[sid]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.participants, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", p.DisplayName).Msg("participant removed")
	return p, true
}

func (r *Registry) Get(sid domain.ConnectionID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[sid]
	return p, ok
}

// Snapshot returns a copy of the current presence map.
func (r *Registry) Snapshot() domain.PresenceSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(domain.PresenceSnapshot, len(r.participants))
	for sid, p := range r.participants {
		out[sid] = p.DisplayName
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// BindSignal registers a freshly opened connection in the Connected state.
// A participant already added under sid keeps its Joined state.
func (r *Registry) BindSignal(sid domain.ConnectionID, sig core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.Signal = sig
	} else {
		r.sessions[sid] = &sessionEntry{State: core.Connected, Signal: sig}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) Signal(sid domain.ConnectionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok && e.Signal != nil {
		return e.Signal, true
	}
	return nil, false
}

func (r *Registry) State(sid domain.ConnectionID) core.ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.State
	}
	return core.Closed
}

// Join registers sid under name if its connection is still open.
// rejoin reports whether sid already had a participant.
func (r *Registry) Join(sid domain.ConnectionID, name string) (rejoin, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, exists := r.sessions[sid]
	if !exists || e.State == core.Closed {
		return false, false
	}
	_, rejoin = r.participants[sid]
	r.participants[sid] = domain.Participant{ConnectionID: sid, DisplayName: name}
	e.State = core.Joined
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Bool("rejoin", rejoin).Msg("joined")
	return rejoin, true
}

// Leave drops the participant of sid and returns the connection to Connected.
func (r *Registry) Leave(sid domain.ConnectionID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok && e.State == core.Joined {
		e.State = core.Connected
	}
	return r.removeLocked(sid)
}

// Unbind closes sid for good, releasing its channel and participant.
// Calling it twice is harmless.
func (r *Registry) Unbind(sid domain.ConnectionID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.State = core.Closed
		delete(r.sessions, sid)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	}
	return r.removeLocked(sid)
}

// Connections reports how many channels are currently bound.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.sessions {
		if e.Signal != nil {
			n++
		}
	}
	return n
}
