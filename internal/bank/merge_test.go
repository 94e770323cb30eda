package bank

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBanks(t *testing.T) (*Registry, *Registry) {
	t.Helper()
	oc := NewRegistry("Bank of Orange County")
	for _, u := range []struct {
		id   int
		name string
	}{{4, "Makki"}, {2, "John"}, {1, "Neal"}} {
		_, err := oc.AddUserWithID(u.id, u.name, "addr", "ssn", 1000)
		require.NoError(t, err)
	}
	la := NewRegistry("Bank of Los Angeles")
	for _, u := range []struct {
		id   int
		name string
	}{{2, "Jimmy"}, {6, "Ben"}, {1, "Sara"}} {
		_, err := la.AddUserWithID(u.id, u.name, "addr", "ssn", 1000)
		require.NoError(t, err)
	}
	return oc, la
}

func TestMergeResolvesCollisionsByRestartScan(t *testing.T) {
	oc, la := newBanks(t)
	merged := Merge("Bank of Southern California", oc, la)

	// Sara 1 -> 2 (John) -> 3; Jimmy 2 -> 3 (Sara) -> 4 (Makki) -> 5
	assert.Equal(t, []int{1, 2, 4, 3, 5, 6}, ids(merged.Accounts()), "chain order is kept, not re-sorted")
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(merged.SortedAccounts()))
	assert.Equal(t, oc.Len()+la.Len(), merged.Len())

	// sources keep their own chains
	assert.Equal(t, []int{1, 2, 4}, ids(oc.Accounts()))
	assert.Equal(t, []int{1, 2, 6}, ids(la.Accounts()))
}

func TestMergeSortedOutputGolden(t *testing.T) {
	oc, la := newBanks(t)
	merged := Merge("Bank of Southern California", oc, la)

	var buf bytes.Buffer
	require.NoError(t, merged.PrintUsersInSortedOrder(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "merge_banks", buf.Bytes())
}

func TestMergeSingleCollision(t *testing.T) {
	a := NewRegistry("a")
	b := NewRegistry("b")
	_, _ = a.AddUserWithID(2, "A2", "", "", 0)
	_, _ = a.AddUserWithID(3, "A3", "", "", 0)
	_, _ = b.AddUserWithID(2, "B2", "", "", 0)

	merged := Merge("m", a, b)
	accts := merged.Accounts()
	require.Len(t, accts, 3)
	assert.Equal(t, "A2", accts[0].Name)
	assert.Equal(t, 2, accts[0].ID)
	assert.Equal(t, "B2", accts[2].Name)
	assert.Equal(t, 4, accts[2].ID, "smallest id above 2 not used by an earlier node")
}

func TestMergeEmptyInputs(t *testing.T) {
	a := NewRegistry("a")
	b := NewRegistry("b")
	_, _ = b.AddUserWithID(1, "B1", "", "", 0)

	assert.Equal(t, 1, Merge("m", a, b).Len())
	assert.Equal(t, 1, Merge("m", b, a).Len())
	assert.True(t, Merge("m", a, a).IsEmpty())
}

func TestMergeLeavesAllocatorUntouched(t *testing.T) {
	oc, la := newBanks(t)
	merged := Merge("m", oc, la)

	assert.Equal(t, 1, merged.NextFreshID())
	assert.Empty(t, merged.FreedIDs())

	_, err := merged.AddUser("X", "", "", 0)
	assert.True(t, errors.Is(err, ErrDuplicateID), "stale allocator collides with id 1")

	merged.RebuildAllocator()
	assert.Equal(t, 7, merged.NextFreshID())
	a, err := merged.AddUser("Y", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, a.ID)
}

func TestMergedMedianSortsFirst(t *testing.T) {
	a := NewRegistry("a")
	b := NewRegistry("b")
	_, _ = a.AddUserWithID(10, "A", "", "", 0)
	_, _ = b.AddUserWithID(1, "B", "", "", 0)
	_, _ = b.AddUserWithID(2, "C", "", "", 0)

	m, ok := Merge("m", a, b).MedianID()
	require.True(t, ok)
	assert.Equal(t, 2.0, m)
}
