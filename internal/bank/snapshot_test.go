package bank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acctregistry/internal/storage"
)

func TestRestoreRejectsInvalidSnapshots(t *testing.T) {
	base := func() storage.Snapshot {
		return storage.Snapshot{
			Label:  "x",
			NextID: 3,
			Accounts: []storage.PersistAccount{
				{ID: 1, Name: "A", Funds: 10},
				{ID: 2, Name: "B", Funds: 20},
			},
		}
	}

	cases := map[string]func(*storage.Snapshot){
		"missing label":  func(s *storage.Snapshot) { s.Label = "" },
		"zero id":        func(s *storage.Snapshot) { s.Accounts[0].ID = 0 },
		"negative funds": func(s *storage.Snapshot) { s.Accounts[1].Funds = -1 },
		"duplicate id":   func(s *storage.Snapshot) { s.Accounts[1].ID = 1 },
		"zero next id":   func(s *storage.Snapshot) { s.NextID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewRegistry("keep")
			_, _ = r.AddUser("Old", "", "", 1)

			s := base()
			mutate(&s)
			err := r.Restore(s)
			assert.True(t, errors.Is(err, ErrInvalidSnapshot), "got %v", err)
			assert.Equal(t, "keep", r.Label(), "state untouched on error")
			assert.Equal(t, 1, r.Len())
		})
	}
}

func TestRestoreKeepsChainOrderAndDropsLiveFreedIDs(t *testing.T) {
	s := storage.Snapshot{
		Label:    "merged",
		NextID:   5,
		FreedIDs: []int{2, 3},
		Accounts: []storage.PersistAccount{{ID: 4, Name: "D"}, {ID: 1, Name: "A"}, {ID: 3, Name: "C"}},
	}
	r, err := FromSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 3}, ids(r.Accounts()))
	assert.Equal(t, []int{2}, r.FreedIDs())
}
