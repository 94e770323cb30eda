// internal/storage/redis.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient 建立連線並 Ping 確認可用。
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisStore 將每個快照以 JSON 字串存於 <prefix><label>，
// 並把標籤記錄在 <prefix>labels 集合中。快照不設 TTL。
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisStore prefix 為空時使用 "acctregistry:"。
func NewRedisStore(client *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "acctregistry:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(label string) string {
	return s.prefix + "registry:" + label
}

func (s *RedisStore) labelsKey() string {
	return s.prefix + "labels"
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	snap.Meta.Storage = "redis_snapshot"
	snap.Meta.Timestamp = time.Now().UTC()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.key(snap.Label), data, 0)
		p.SAdd(ctx, s.labelsKey(), snap.Label)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.Label, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, label string) (Snapshot, error) {
	var snap Snapshot
	data, err := s.client.Get(ctx, s.key(label)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return snap, fmt.Errorf("%w: %s", ErrNotFound, label)
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal snapshot %s: %w", label, err)
	}
	return snap, nil
}

func (s *RedisStore) Labels(ctx context.Context) ([]string, error) {
	labels, err := s.client.SMembers(ctx, s.labelsKey()).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(labels)
	return labels, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
