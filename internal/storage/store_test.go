package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreCopiesSnapshots(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()

	snap := sampleSnapshot("x")
	require.NoError(t, st.Save(ctx, snap))
	snap.Accounts[0].Funds = 0

	got, err := st.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.Accounts[0].Funds, "saved copy must not alias caller slice")

	_, err = st.Load(ctx, "y")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, st.Save(ctx, sampleSnapshot("a")))
	labels, err := st.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x"}, labels)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, st)

	st, err = Open(ctx, Options{Type: "file", Path: t.TempDir(), Format: "yaml"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	st, err = Open(ctx, Options{Type: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Options{Type: "cassandra"})
	assert.Error(t, err)
}
