package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InvalidationChannel carries key prefixes dropped by any server process.
const InvalidationChannel = "shelfwise:cache:invalidate"

const publishTimeout = 2 * time.Second

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("addr", addr))
	return rdb, nil
}

// Attach shares invalidations with every other process attached to the same
// redis. Entries stay local; only the prefixes travel. Call it once, before
// the cache is used, and Close the cache to stop listening.
func (c *Cache) Attach(ctx context.Context, rdb *redis.Client, log *zap.Logger) error {
	sub := rdb.Subscribe(ctx, InvalidationChannel)
	// wait for the subscription so no invalidation published after Attach is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", InvalidationChannel, err)
	}

	c.publish = func(prefix string) {
		pctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := rdb.Publish(pctx, InvalidationChannel, prefix).Err(); err != nil {
			// the TTL bounds how stale the other processes can get
			log.Warn("cache invalidation not published", zap.String("prefix", prefix), zap.Error(err))
		}
	}

	go func() {
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				c.invalidateLocal(msg.Payload)
			case <-c.stop:
				return
			}
		}
	}()
	return nil
}
