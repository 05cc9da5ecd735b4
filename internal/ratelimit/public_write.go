package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/obtain/internal/config"
	"go.uber.org/zap"
)

const keyPublicWriteClient = "public:write:client:%s"

// PublicWriteLimiter throttles the anonymous write endpoints (submit, remove,
// contact) per client address. A nil limiter allows everything.
type PublicWriteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicWriteLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *PublicWriteLimiter {
	if client == nil {
		log.Info("public write rate limit disabled: redis not configured")
		return nil
	}
	perMinute := cfg.Submission.RateLimitPerMinute
	burst := cfg.Submission.RateLimitBurst
	if perMinute <= 0 || burst <= 0 {
		log.Info("public write rate limit disabled by configuration")
		return nil
	}
	return &PublicWriteLimiter{
		bucket: NewTokenBucket(client),
		rate:   float64(perMinute) / 60,
		burst:  burst,
	}
}

func (l *PublicWriteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PublicWriteLimiter) Allow(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPublicWriteClient, clientKey), l.rate, l.burst)
}
