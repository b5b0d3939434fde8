package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter throttles attempts with a fixed window counter, keyed per user
// for redemption and per client address for validation. Codes are guessable
// strings, so the limit is the only brake on brute-forcing the code space.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

func RedeemAttemptKey(userID string) string {
	return fmt.Sprintf("rate_limit:redeem:%s", userID)
}

func ValidateAttemptKey(addr string) string {
	return fmt.Sprintf("rate_limit:validate:%s", addr)
}
