package service

import (
	"context"
	"fmt"
	"sparkbot/internal/core/port"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Limiter interface {
	CheckLimit(ctx context.Context, roomID, callerID string) bool
}

// RateLimiter throttles each caller with its own token bucket.
type RateLimiter struct {
	callers  map[string]*callerLimit
	limit    rate.Limit
	burst    int
	idleTime time.Duration
	mutex    *sync.Mutex
	sender   port.ReplySink
}

type callerLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter reads limits.per_minute and limits.burst. It returns nil when
// no rate is configured, which CommandWorker treats as unlimited.
func NewRateLimiter(ctx context.Context, sender port.ReplySink) *RateLimiter {
	perMinute := viper.GetFloat64("limits.per_minute")
	if perMinute <= 0 {
		return nil
	}

	burst := viper.GetInt("limits.burst")
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		callers:  make(map[string]*callerLimit),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		idleTime: PruneInterval,
		mutex:    &sync.Mutex{},
		sender:   sender,
	}

	go rl.PruneIdle(ctx)

	return rl
}

const overLimit = "You are sending commands too quickly. Please wait %s and try again."

func (r *RateLimiter) CheckLimit(ctx context.Context, roomID, callerID string) bool {
	r.mutex.Lock()
	cl, ok := r.callers[callerID]
	if !ok {
		cl = &callerLimit{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.callers[callerID] = cl
	}
	cl.lastSeen = time.Now()
	reservation := cl.limiter.Reserve()
	r.mutex.Unlock()

	delay := reservation.Delay()
	if delay == 0 {
		return true
	}
	reservation.Cancel()

	log.Info().Str("caller", callerID).Dur("retryIn", delay).Msg("caller is rate limited")

	err := r.sender.SendMessage(ctx, roomID, fmt.Sprintf(overLimit, delay.Round(time.Second)))
	if err != nil {
		log.Warn().Err(err).Msg("failed to send rate limit warning")
	}

	return false
}

const PruneInterval = 10 * time.Minute

// PruneIdle drops limiters of callers that have been quiet for a while.
func (r *RateLimiter) PruneIdle(ctx context.Context) {
	ticker := time.NewTicker(PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := r.prune(time.Now())
			log.Debug().Int("removed", removed).Msg("pruned idle rate limiters")
		case <-ctx.Done():
			log.Debug().Msg("stopping rate limiter pruning")
			return
		}
	}
}

func (r *RateLimiter) prune(now time.Time) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, cl := range r.callers {
		if now.Sub(cl.lastSeen) > r.idleTime {
			delete(r.callers, id)
			removed++
		}
	}

	return removed
}
