package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/usecase"
)

var _ usecase.IdempotencyCache = (*IdempotencyCache)(nil)

// IdempotencyCache stores finished redemption results keyed by (code, user)
// so a retried request replays the original outcome instead of re-running the
// saga. Entries expire; after that the saga's own replay detection takes over.
type IdempotencyCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewIdempotencyCache(client RedisClient, ttl time.Duration) *IdempotencyCache {
	return &IdempotencyCache{client: client, ttl: ttl}
}

func idemKey(code, userID string) string {
	return fmt.Sprintf("redeem:%s:%s", code, userID)
}

func (c *IdempotencyCache) Get(ctx context.Context, code, userID string) (*model.RedemptionResult, bool, error) {
	raw, err := c.client.Get(ctx, idemKey(code, userID))
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var res model.RedemptionResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		// A corrupt entry is treated as a miss; the saga is safe without it.
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *IdempotencyCache) Put(ctx context.Context, code, userID string, res *model.RedemptionResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, idemKey(code, userID), raw, c.ttl)
}
