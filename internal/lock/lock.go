// Package lock provides run locks for configuration synchronization.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Local is an in-process lock table. The ttl is ignored: locks live until released.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal creates an empty lock table
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// TryLock takes key when it is free
func (l *Local) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Redis shares locks between processes. A lock expires after its ttl
// so a crashed holder cannot block a configuration forever.
type Redis struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedis connects to Redis and checks the connection
func NewRedis(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, log: logger}, nil
}

// TryLock sets key with a fresh token when it does not exist
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.release(key, token) })
	}, true, nil
}

// release drops key if it still holds token. A failure leaves the key
// locked until its ttl expires, so it is logged.
func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := releaseScript.Run(ctx, r.client, []string{key}, token).Err()
	if err != nil && err != redis.Nil {
		r.log.Warn("⚠️  Failed to release run lock, held until ttl",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
