// internal/storage/store.go
//
// Store 為所有快照後端的共同介面：以登錄簿標籤 (label) 為鍵保存與讀取 Snapshot。
// 後端：FileStore（JSON / YAML / zstd 壓縮 JSON）、SQLStore（bun：sqlite / postgres / mysql）、
// RedisStore 與 MemStore（預設，僅存在於行程內）。
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNotFound 代表指定標籤沒有任何快照。
var ErrNotFound = errors.New("snapshot not found")

// Store 保存與讀取登錄簿快照。
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, label string) (Snapshot, error)
	Labels(ctx context.Context) ([]string, error)
	Close() error
}

// Options 描述要開啟的後端；欄位依 Type 取用。
type Options struct {
	Type      string // memory | file | sqlite | postgres | mysql | redis
	Path      string // file：目錄
	Format    string // file：json | yaml | zst
	DSN       string // sqlite / postgres / mysql
	RedisAddr string
	RedisPass string
	RedisDB   int
}

// Open 依 Options 建立 Store。
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", "memory":
		return NewMemStore(), nil
	case "file":
		return NewFileStore(opts.Path, opts.Format)
	case "sqlite", "postgres", "mysql":
		return OpenSQLStore(ctx, opts.Type, opts.DSN)
	case "redis":
		client, err := NewRedisClient(ctx, opts.RedisAddr, opts.RedisPass, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, ""), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", opts.Type)
	}
}

// MemStore 將快照保存在記憶體中，存入與讀出皆為深拷貝。
type MemStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{snaps: make(map[string]Snapshot)}
}

func (m *MemStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Label] = cloneSnapshot(snap)
	return nil
}

func (m *MemStore) Load(_ context.Context, label string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[label]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, label)
	}
	return cloneSnapshot(s), nil
}

func (m *MemStore) Labels(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.snaps))
	for l := range m.snaps {
		out = append(out, l)
	}
	slices.Sort(out)
	return out, nil
}

func (m *MemStore) Close() error { return nil }

func cloneSnapshot(s Snapshot) Snapshot {
	s.FreedIDs = slices.Clone(s.FreedIDs)
	s.Accounts = slices.Clone(s.Accounts)
	return s
}
