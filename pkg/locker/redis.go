// Package locker provides short-lived distributed locks on Redis.
package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotAcquired is returned when the lock is still held by someone else
// after the wait budget.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Client is the part of a Redis client the locker uses.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type RedisLocker struct {
	rdb      Client
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
	prefix   string
	log      *zap.Logger
}

func NewRedisLocker(rdb Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{
		rdb:      rdb,
		ttl:      ttl,
		wait:     ttl,
		interval: 50 * time.Millisecond,
		prefix:   "lock:vehicle:",
		log:      log.With(zap.String("component", "locker")),
	}
}

func (l *RedisLocker) key(vehicleID uuid.UUID) string {
	return l.prefix + vehicleID.String()
}

// Lock takes the vehicle lock, polling until it is free or the wait budget
// runs out.
func (l *RedisLocker) Lock(ctx context.Context, vehicleID uuid.UUID) (func(), error) {
	key := l.key(vehicleID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotAcquired)
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
		l.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
	}
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
