package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.OutboundEvent) error { return nil }
func (nopSignal) Close()                           {}

func TestRegistry_Add_Overwrites(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	reg.Add("c1", "Alice")
	reg.Add("c1", "Alicia")

	req.Equal(1, reg.Len())
	p, ok := reg.Get("c1")
	req.True(ok)
	req.Equal("Alicia", p.DisplayName)
}

func TestRegistry_Remove_Unknown_Is_Noop(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	reg.Add("c1", "Alice")

	_, ok := reg.Remove("ghost")
	req.False(ok)
	req.Equal(1, reg.Len())

	p, ok := reg.Remove("c1")
	req.True(ok)
	req.Equal("Alice", p.DisplayName)

	_, ok = reg.Remove("c1")
	req.False(ok)
	req.Zero(reg.Len())
}

func TestRegistry_Add_Remove_Keep_State_In_Step(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	// Given a joined connection
	reg.BindSignal("c1", nopSignal{})
	_, ok := reg.Join("c1", "Alice")
	req.True(ok)

	// When it is removed directly
	_, ok = reg.Remove("c1")
	req.True(ok)

	// Then it is no longer Joined but its channel stays bound
	req.Zero(reg.Len())
	req.Equal(core.Connected, reg.State("c1"))
	_, bound := reg.Signal("c1")
	req.True(bound)

	// And adding it back makes it Joined again
	reg.Add("c1", "Alice")
	req.Equal(1, reg.Len())
	req.Equal(core.Joined, reg.State("c1"))
}

func TestRegistry_Add_Without_Channel(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	reg.Add("ghost", "Bob")
	req.Equal(1, reg.Len())
	req.Equal(core.Joined, reg.State("ghost"))
	_, bound := reg.Signal("ghost")
	req.False(bound)
	req.Zero(reg.Connections())

	_, ok := reg.Remove("ghost")
	req.True(ok)
	req.Zero(reg.Len())
	req.Equal(core.Closed, reg.State("ghost"))
	req.Empty(reg.Snapshot())
}

func TestRegistry_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	reg.Add("c1", "Alice")

	snap := reg.Snapshot()
	snap["c2"] = "Mallory"
	delete(snap, "c1")

	req.Equal(domain.PresenceSnapshot{"c1": "Alice"}, reg.Snapshot())
}

func TestRegistry_Lifecycle(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	// Given an unknown connection
	req.Equal(core.Closed, reg.State("c1"))
	_, ok := reg.Join("c1", "Alice")
	req.False(ok)

	// When it connects then joins
	reg.BindSignal("c1", nopSignal{})
	req.Equal(core.Connected, reg.State("c1"))
	rejoin, ok := reg.Join("c1", "Alice")
	req.True(ok)
	req.False(rejoin)
	req.Equal(core.Joined, reg.State("c1"))

	// And joins again under another name
	rejoin, ok = reg.Join("c1", "Alicia")
	req.True(ok)
	req.True(rejoin)
	req.Equal(1, reg.Len())

	// Then leaving keeps the channel open
	p, ok := reg.Leave("c1")
	req.True(ok)
	req.Equal("Alicia", p.DisplayName)
	req.Equal(core.Connected, reg.State("c1"))
	_, bound := reg.Signal("c1")
	req.True(bound)

	// And unbinding closes it for good
	_, removed := reg.Unbind("c1")
	req.False(removed)
	req.Equal(core.Closed, reg.State("c1"))
	_, ok = reg.Join("c1", "Alice")
	req.False(ok)
	req.Zero(reg.Len())
	req.Zero(reg.Connections())
}

func TestRegistry_Unbind_Twice(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	reg.BindSignal("c1", nopSignal{})
	_, _ = reg.Join("c1", "Alice")

	p, removed := reg.Unbind("c1")
	req.True(removed)
	req.Equal("Alice", p.DisplayName)

	_, removed = reg.Unbind("c1")
	req.False(removed)
}

func TestRegistry_Concurrent_Join_And_Unbind_Leaves_No_Stale_Entry(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		sid := domain.ConnectionID(fmt.Sprintf("c%d", i))
		reg.BindSignal(sid, nopSignal{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = reg.Join(sid, "user")
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Unbind(sid)
		}()
	}
	wg.Wait()

	req.Zero(reg.Len())
	req.Zero(reg.Connections())
}
