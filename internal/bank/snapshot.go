// internal/bank/snapshot.go

package bank

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"acctregistry/internal/list"
	"acctregistry/internal/storage"
)

const snapshotVersion = 2

var validate = validator.New()

// Snapshot 匯出登錄簿狀態：帳戶依串列目前順序保存，連同分配器狀態。
func (r *Registry) Snapshot() storage.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := storage.Snapshot{
		Meta: storage.Meta{
			ID:        uuid.NewString(),
			Version:   snapshotVersion,
			Timestamp: time.Now().UTC(),
		},
		Label:    r.label,
		NextID:   r.ids.NextFresh(),
		FreedIDs: r.ids.Freed(),
		Accounts: make([]storage.PersistAccount, 0),
	}
	for a := range r.accounts.All() {
		s.Accounts = append(s.Accounts, storage.PersistAccount{
			ID: a.ID, Name: a.Name, Address: a.Address, SSN: a.SSN, Funds: a.Funds,
		})
	}
	return s
}

// Restore 由快照重建登錄簿。快照先經 validator 檢查，再檢查 ID 唯一；
// 任何錯誤皆回傳 ErrInvalidSnapshot 且不改變目前狀態。
func (r *Registry) Restore(s storage.Snapshot) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidSnapshot, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	accounts := list.New[*Account]()
	seen := make(map[int]bool, len(s.Accounts))
	for _, pa := range s.Accounts {
		if seen[pa.ID] {
			return fmt.Errorf("%w: duplicate account id %d", ErrInvalidSnapshot, pa.ID)
		}
		seen[pa.ID] = true
		accounts.Append(&Account{ID: pa.ID, Name: pa.Name, Address: pa.Address, SSN: pa.SSN, Funds: pa.Funds})
	}

	freed := make([]int, 0, len(s.FreedIDs))
	for _, id := range s.FreedIDs {
		if !seen[id] {
			freed = append(freed, id)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = s.Label
	r.accounts = accounts
	r.ids.Reset(s.NextID, freed)
	return nil
}

// FromSnapshot 以快照建立新的登錄簿。
func FromSnapshot(s storage.Snapshot) (*Registry, error) {
	r := NewRegistry(s.Label)
	if err := r.Restore(s); err != nil {
		return nil, err
	}
	return r, nil
}
