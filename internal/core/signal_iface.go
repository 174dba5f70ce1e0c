package core

// ConnState is the lifecycle state of one connection.
type ConnState int

const (
	// Closed is also what unknown connection ids read as.
	Closed ConnState = iota
	Connected
	Joined
)

func (s ConnState) String() string {
	switch s {
	case Connected:
		return "connected"
	case Joined:
		return "joined"
	default:
		return "closed"
	}
}
