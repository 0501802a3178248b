package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "campusgate:dedup:"
)

type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// ConnectRedis opens a client and validates connectivity with a ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisGuard shares claims across server replicas. Each claim is a key set
// with NX and a TTL of one window, so Redis does the expiry.
type RedisGuard struct {
	client *redis.Client
	window time.Duration
}

func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return &RedisGuard{client: client, window: window}
}

func (g *RedisGuard) Claim(ctx context.Context, code string, at time.Time) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+code, at.UTC().UnixMilli(), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, code string) error {
	if err := g.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}
