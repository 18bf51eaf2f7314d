package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/pkg/log"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTransactionTTL = 5 * time.Minute

	// NoGeneration is returned when the generation could not be read; Set ignores it.
	NoGeneration int64 = -1

	generationTTL = 24 * time.Hour
)

var errGenerationMoved = errors.New("history generation moved")

// TransactionCache stores recent-history pages per user in one redis hash keyed by limit,
// so a single DEL drops every page after an append. Each user also has a generation counter
// bumped on invalidation; a page read before the bump is never written back.
type TransactionCache struct {
	Redis redis.UniversalClient
	TTL   time.Duration
	Log   log.Log
}

func NewTransactionCache(client redis.UniversalClient, ttl time.Duration, logger log.Log) *TransactionCache {
	if ttl <= 0 {
		ttl = DefaultTransactionTTL
	}
	return &TransactionCache{Redis: client, TTL: ttl, Log: logger}
}

// keys share a hash tag so the page and its generation live in one cluster slot
func key(userID string) string {
	return fmt.Sprintf("WALLET:TRANSACTIONS:{%s}", userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("WALLET:TRANSACTIONS:GEN:{%s}", userID)
}

// Get returns the cached page and the generation observed with it. On a miss the generation
// must be handed back to Set together with the freshly loaded page.
func (c *TransactionCache) Get(ctx context.Context, userID string, limit int) ([]entity.Transaction, int64, bool) {
	pipe := c.Redis.Pipeline()
	page := pipe.HGet(ctx, key(userID), strconv.Itoa(limit))
	gen := pipe.Get(ctx, generationKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		c.Log.Error("transaction-cache", err.Error(), "Get", userID)
		return nil, NoGeneration, false
	}

	generation, err := gen.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.Log.Error("transaction-cache", fmt.Sprintf("corrupt generation: %v", err), "Get", userID)
		return nil, NoGeneration, false
	}

	raw, err := page.Result()
	if err != nil {
		return nil, generation, false
	}

	var transactions []entity.Transaction
	if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
		c.Log.Error("transaction-cache", fmt.Sprintf("corrupt cache entry: %v", err), "Get", userID)
		return nil, generation, false
	}
	return transactions, generation, true
}

// Set writes the page only while the user's generation still equals generation.
func (c *TransactionCache) Set(ctx context.Context, userID string, limit int, generation int64, transactions []entity.Transaction) {
	if generation == NoGeneration {
		return
	}
	raw, err := json.Marshal(transactions)
	if err != nil {
		c.Log.Error("transaction-cache", err.Error(), "Set", userID)
		return
	}

	err = c.Redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey(userID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key(userID), strconv.Itoa(limit), raw)
			pipe.Expire(ctx, key(userID), c.TTL)
			return nil
		})
		return err
	}, generationKey(userID))

	switch {
	case err == nil:
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		c.Log.Info("transaction-cache", "page superseded by a newer append", "Set", userID)
	default:
		c.Log.Error("transaction-cache", err.Error(), "Set", userID)
	}
}

// Invalidate bumps each user's generation and drops their cached pages.
func (c *TransactionCache) Invalidate(ctx context.Context, userIDs ...string) error {
	pipe := c.Redis.Pipeline()
	queued := 0
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		pipe.Del(ctx, key(id))
		queued++
	}
	if queued == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}
