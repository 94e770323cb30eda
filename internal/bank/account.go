// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account，不含任何 HTTP 或儲存細節。

package bank

// Account represents one record in a registry.
// ID is fixed once the account is inserted; Funds changes through payments and merges.
type Account struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	SSN     string  `json:"ssn"`
	Funds   float64 `json:"funds"`
}

// Key 讓 *Account 可放入 list.List，以 ID 排序。
func (a *Account) Key() int {
	return a.ID
}

func (a *Account) clone() *Account {
	cp := *a
	return &cp
}

// sameIdentity 比對姓名、地址與 SSN（大小寫敏感的完全相等）。
func (a *Account) sameIdentity(b *Account) bool {
	return a.Name == b.Name && a.Address == b.Address && a.SSN == b.SSN
}
