package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLimiter(sink *mockReplySink, perMinute float64, burst int) *RateLimiter {
	return &RateLimiter{
		callers:  make(map[string]*callerLimit),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		idleTime: PruneInterval,
		mutex:    &sync.Mutex{},
		sender:   sink,
	}
}

func TestCheckLimit(t *testing.T) {
	sink := &mockReplySink{}
	rl := newTestLimiter(sink, 1, 2)

	assert.True(t, rl.CheckLimit(t.Context(), "room", "alice"))
	assert.True(t, rl.CheckLimit(t.Context(), "room", "alice"))
	assert.False(t, rl.CheckLimit(t.Context(), "room", "alice"))

	require.Equal(t, 1, sink.callCount)
	assert.Contains(t, sink.sendReplies[0], "You are sending commands too quickly.")

	// other callers have their own bucket
	assert.True(t, rl.CheckLimit(t.Context(), "room", "bob"))
}

func TestCheckLimitSendError(t *testing.T) {
	sink := &mockReplySink{sendError: assert.AnError}
	rl := newTestLimiter(sink, 1, 1)

	assert.True(t, rl.CheckLimit(t.Context(), "room", "alice"))
	assert.False(t, rl.CheckLimit(t.Context(), "room", "alice"))
	assert.Equal(t, 1, sink.callCount)
}

func TestPrune(t *testing.T) {
	rl := newTestLimiter(&mockReplySink{}, 60, 1)
	rl.CheckLimit(t.Context(), "room", "alice")
	rl.CheckLimit(t.Context(), "room", "bob")

	rl.callers["alice"].lastSeen = time.Now().Add(-2 * PruneInterval)

	assert.Equal(t, 1, rl.prune(time.Now()))
	assert.NotContains(t, rl.callers, "alice")
	assert.Contains(t, rl.callers, "bob")
}

func TestNewRateLimiter(t *testing.T) {
	t.Cleanup(viper.Reset)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	viper.Set("limits.per_minute", 0)
	assert.Nil(t, NewRateLimiter(ctx, &mockReplySink{}))

	viper.Set("limits.per_minute", 30)
	viper.Set("limits.burst", 0)
	rl := NewRateLimiter(ctx, &mockReplySink{})

	require.NotNil(t, rl)
	assert.Equal(t, rate.Limit(0.5), rl.limit)
	assert.Equal(t, 1, rl.burst)
}
