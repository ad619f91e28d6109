package llm

import (
	"context"
	"fmt"

	"github.com/aretw0/aacflow/pkg/ports"
	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped provider with a token bucket.
type RateLimited struct {
	next    ports.ChatProvider
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with the given burst.
func NewRateLimited(next ports.ChatProvider, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Chat waits for a token, then delegates.
func (r *RateLimited) Chat(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Chat(ctx, prompt)
}
