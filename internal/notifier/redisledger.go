package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisLedger implements ConnectionLedger over go-redis, grounded on
// pkg/cache/redis.go's IncrementRateLimit pipeline idiom, repurposed from
// rate-limit counters to live-connection counters shared across Notifier
// replicas.
type redisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger wraps an existing client. ttl bounds how long a stale
// counter (from a replica that crashed without decrementing) lingers.
func NewRedisLedger(client *redis.Client, ttl time.Duration) ConnectionLedger {
	return &redisLedger{client: client, ttl: ttl}
}

func (l *redisLedger) key(ownerID uuid.UUID) string {
	return fmt.Sprintf("notifier:conns:%s", ownerID)
}

func (l *redisLedger) Increment(ownerID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := l.key(ownerID)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("notifier: redis ledger increment: %w", err)
	}
	return incr.Val(), nil
}

func (l *redisLedger) Decrement(ownerID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := l.key(ownerID)
	n, err := l.client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("notifier: redis ledger decrement: %w", err)
	}
	if n <= 0 {
		l.client.Del(ctx, key)
	}
	return nil
}
