package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Window(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(2, time.Second)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	// other connections have their own budget
	req.True(rl.Allow("c2"))

	now = now.Add(1100 * time.Millisecond)
	req.True(rl.Allow("c1"))
}

func TestRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(1, time.Minute)

	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))
	req.Equal(1, rl.tracked())

	rl.Forget("c1")
	req.Zero(rl.tracked())
	req.True(rl.Allow("c1"))
}
