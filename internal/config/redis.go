package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client backing rate limiting and the
// availability cache. REDIS_URL takes precedence (redis:// or rediss://
// with password and database number in the URL); otherwise REDIS_ADDR
// or REDIS_HOST/REDIS_PORT plus REDIS_PASSWORD and REDIS_DB are used.
//
// Redis is an accelerator here, never a dependency of the booking
// engine itself. If the server cannot be reached at startup this
// returns nil and the callers run with limiting and caching disabled.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if url := envStr("REDIS_URL", ""); url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Printf("invalid REDIS_URL: %v", err)
			return nil
		}
		opts = parsed
	} else {
		addr := envStr("REDIS_ADDR", "")
		if addr == "" {
			addr = envStr("REDIS_HOST", "localhost") + ":" + envStr("REDIS_PORT", "6379")
		}
		opts = &redis.Options{
			Addr:     addr,
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
