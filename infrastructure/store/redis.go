package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

var _ ports.SnapshotStore = (*RedisStore)(nil)

// redisKeyPrefix namespaces snapshot keys in a shared redis instance.
const redisKeyPrefix = "feud:snapshot:"

// RedisStore persists snapshots in redis, letting several display
// processes hydrate from one shared snapshot. Each Save is a single SET,
// so readers always see a complete snapshot.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis server at addr and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Save implements SnapshotStore.
func (s *RedisStore) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load implements SnapshotStore.
func (s *RedisStore) Load(ctx context.Context, key string) (domain.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete implements SnapshotStore.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
