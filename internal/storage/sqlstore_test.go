package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	st, err := OpenSQLStore(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLStoreRoundTripKeepsChainOrder(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)

	orig := sampleSnapshot("Bank of Southern California")
	orig.Meta.ID = "snap-1"
	require.NoError(t, st.Save(ctx, orig))

	got, err := st.Load(ctx, orig.Label)
	require.NoError(t, err)
	assert.Equal(t, orig.Accounts, got.Accounts)
	assert.Equal(t, []int{2}, got.FreedIDs)
	assert.Equal(t, 4, got.NextID)
	assert.Equal(t, "snap-1", got.Meta.ID)
	assert.Equal(t, "sql_snapshot", got.Meta.Storage)
}

func TestSQLStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)

	require.NoError(t, st.Save(ctx, sampleSnapshot("x")))
	empty := Snapshot{Label: "x", NextID: 1}
	require.NoError(t, st.Save(ctx, empty))

	got, err := st.Load(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, got.Accounts)
	assert.Empty(t, got.FreedIDs)
	assert.Equal(t, 1, got.NextID)
}

func TestSQLStoreLabelsAndMissing(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)

	labels, err := st.Labels(ctx)
	require.NoError(t, err)
	assert.Empty(t, labels)

	require.NoError(t, st.Save(ctx, sampleSnapshot("b")))
	require.NoError(t, st.Save(ctx, sampleSnapshot("a")))
	labels, err = st.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labels)

	_, err = st.Load(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpenSQLStoreUnsupported(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), "oracle", "")
	assert.Error(t, err)
}

// TestNewSQLStoreWrapsExistingDB 以呼叫端自行開啟的 bun.DB 建立 Store；
// 對同一個資料庫重複 migrate 不會出錯，也能讀到先前寫入的資料。
func TestNewSQLStoreWrapsExistingDB(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	first, err := NewSQLStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, sampleSnapshot("shared")))

	second, err := NewSQLStore(ctx, db)
	require.NoError(t, err)
	got, err := second.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot("shared").Accounts, got.Accounts)

	labels, err := second.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, labels)
}
