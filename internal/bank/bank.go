// internal/bank/bank.go

// Package bank 實作有序帳戶登錄簿 (Registry)：
// 以 ID 遞增排序的單向鏈結串列保存帳戶，搭配 IDAllocator 重用已刪除的 ID。
// 每個 Registry 以單一互斥鎖序列化所有操作；跨帳戶操作（付款、合併帳戶）在同一臨界區內完成。
// 兩家「銀行」只是標籤 (Label) 不同，並非不同型別。
package bank

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"acctregistry/internal/list"
)

// Registry 為聚合根 (Aggregate Root)：
// - accounts：依 ID 遞增的鏈結串列，節點唯一擁有其 *Account。
// - ids：ID 分配器，與 accounts 一起演進。
type Registry struct {
	mu       sync.Mutex
	label    string
	accounts *list.List[*Account]
	ids      *IDAllocator
}

// NewRegistry 建立空白登錄簿。
func NewRegistry(label string) *Registry {
	return &Registry{
		label:    label,
		accounts: list.New[*Account](),
		ids:      NewIDAllocator(),
	}
}

// Label 回傳登錄簿名稱，例如 "Bank of Orange County"。
func (r *Registry) Label() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.label
}

// validAmount 只接受有限且 >= 0 的金額；NaN 與 ±Inf 一律視為非法。
func validAmount(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

// AddUser 以自動配發的 ID 新增帳戶。
func (r *Registry) AddUser(name, address, ssn string, funds float64) (Account, error) {
	return r.add(0, name, address, ssn, funds)
}

// AddUserWithID 以指定 ID 新增帳戶；ID 已存在時回傳 ErrDuplicateID。
func (r *Registry) AddUserWithID(id int, name, address, ssn string, funds float64) (Account, error) {
	if id < 1 {
		return Account{}, fmt.Errorf("%w: id must be >= 1, got %d", ErrBadAmount, id)
	}
	return r.add(id, name, address, ssn, funds)
}

func (r *Registry) add(requested int, name, address, ssn string, funds float64) (Account, error) {
	if !validAmount(funds) {
		return Account{}, fmt.Errorf("%w: funds %v", ErrBadAmount, funds)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if requested > 0 && r.findLocked(requested) != nil {
		return Account{}, fmt.Errorf("%w: %d", ErrDuplicateID, requested)
	}
	id := r.ids.Allocate(requested)
	if requested > 0 {
		r.ids.Reserve(id)
	} else if r.findLocked(id) != nil {
		// 合併後尚未重建分配器時可能發生
		return Account{}, fmt.Errorf("%w: %d (allocator out of date)", ErrDuplicateID, id)
	}
	a := &Account{ID: id, Name: name, Address: address, SSN: ssn, Funds: funds}
	r.accounts.InsertSorted(a)
	return *a, nil
}

// DeleteUser 移除帳戶並把 ID 交還分配器；回傳是否找到並移除。
func (r *Registry) DeleteUser(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id)
}

func (r *Registry) deleteLocked(id int) bool {
	if !r.accounts.Remove(id) {
		return false
	}
	r.ids.Release(id)
	return true
}

// FindUserByID 回傳帳戶的值拷貝，避免外部改寫內部節點。
func (r *Registry) FindUserByID(id int) (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.findLocked(id)
	if a == nil {
		return Account{}, false
	}
	return *a, true
}

func (r *Registry) findLocked(id int) *Account {
	a, ok := r.accounts.Find(func(a *Account) bool { return a.ID == id })
	if !ok {
		return nil
	}
	return a
}

// Pay 自 payer 轉 amount 給 payee。
// 1) 兩個帳戶皆須存在 → 2) 金額須為有限且 >= 0 → 3) 資金足夠 → 4) 同步扣款與入帳。
// 任一步驟失敗皆不改變任何帳戶。
func (r *Registry) Pay(payerID, payeeID int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payer := r.findLocked(payerID)
	payee := r.findLocked(payeeID)
	if payer == nil || payee == nil {
		return fmt.Errorf("%w: payer %d or payee %d", ErrNotFound, payerID, payeeID)
	}
	if !validAmount(amount) {
		return fmt.Errorf("%w: amount %v", ErrBadAmount, amount)
	}
	if payer.Funds < amount {
		return fmt.Errorf("%w: account %d", ErrInsufficient, payerID)
	}
	payer.Funds -= amount
	payee.Funds += amount
	return nil
}

// PayUserToUser 為 Pay 的布林版本。
func (r *Registry) PayUserToUser(payerID, payeeID int, amount float64) bool {
	return r.Pay(payerID, payeeID, amount) == nil
}

// MedianID 回傳 ID 的中位數；空登錄簿回傳 false。
// 先以 ID 穩定排序（合併後的串列不保證有序），偶數筆時取中間兩筆的平均。
func (r *Registry) MedianID() (float64, bool) {
	r.mu.Lock()
	accts := r.accounts.Values()
	r.mu.Unlock()

	n := len(accts)
	if n == 0 {
		return 0, false
	}
	ids := make([]int, n)
	for i, a := range accts {
		ids[i] = a.ID
	}
	slices.SortStableFunc(ids, cmp.Compare[int])
	if n%2 == 1 {
		return float64(ids[n/2]), true
	}
	return float64(ids[n/2-1]+ids[n/2]) / 2, true
}

// MergeAccounts 合併兩筆重複建立的帳戶：
// id2 的資金併入 id1，刪除 id2（ID 交還分配器），回傳 id1。
// 任一 ID 不存在回傳 ErrNotFound；身分欄位不一致回傳 ErrNotDuplicate，且不改變任何帳戶。
func (r *Registry) MergeAccounts(id1, id2 int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a1 := r.findLocked(id1)
	if a1 == nil {
		return 0, fmt.Errorf("%w: account with ID %d could not be located", ErrNotFound, id1)
	}
	a2 := r.findLocked(id2)
	if a2 == nil {
		return 0, fmt.Errorf("%w: account with ID %d could not be located", ErrNotFound, id2)
	}
	if id1 == id2 {
		return 0, fmt.Errorf("%w: %d", ErrSameAccount, id1)
	}
	if !a1.sameIdentity(a2) {
		return 0, fmt.Errorf("%w: %d and %d", ErrNotDuplicate, id1, id2)
	}
	a1.Funds += a2.Funds
	r.deleteLocked(a2.ID)
	return a1.ID, nil
}

// Accounts 依串列目前順序回傳所有帳戶的值拷貝。
func (r *Registry) Accounts() []Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyOut(r.accounts)
}

// SortedAccounts 以深拷貝重新逐筆 InsertSorted 建立第二條串列後輸出。
// 原串列在合併登錄簿之後可能無序，因此不直接沿用。
func (r *Registry) SortedAccounts() []Account {
	r.mu.Lock()
	sorted := list.New[*Account]()
	for a := range r.accounts.All() {
		sorted.InsertSorted(a.clone())
	}
	r.mu.Unlock()
	return copyOut(sorted)
}

func copyOut(l *list.List[*Account]) []Account {
	out := make([]Account, 0)
	for a := range l.All() {
		out = append(out, *a)
	}
	return out
}

// Len 回傳帳戶數。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts.Len()
}

// IsEmpty 回傳登錄簿是否為空。
func (r *Registry) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts.IsEmpty()
}

// NextFreshID 與 FreedIDs 暴露分配器狀態，供查詢與測試。
func (r *Registry) NextFreshID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids.NextFresh()
}

func (r *Registry) FreedIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids.Freed()
}

// RebuildAllocator 由現存帳戶重算分配器：nextFresh = 最大 ID + 1，
// freed = 1..最大 ID 之間未被使用的 ID。
// Merge 不會自動呼叫；需要在合併後的登錄簿上自動配發 ID 時由呼叫端明確呼叫。
func (r *Registry) RebuildAllocator() {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := make(map[int]bool)
	maxID := 0
	for a := range r.accounts.All() {
		used[a.ID] = true
		maxID = max(maxID, a.ID)
	}
	var freed []int
	for id := 1; id < maxID; id++ {
		if !used[id] {
			freed = append(freed, id)
		}
	}
	r.ids.Reset(maxID+1, freed)
}

var printer = message.NewPrinter(language.English)

// PrintUsers 依串列目前順序輸出 (ID, Name, Funds)。
func (r *Registry) PrintUsers(w io.Writer) error {
	accts := r.Accounts()
	if _, err := fmt.Fprintln(w, "User details (ID, Name, Funds):"); err != nil {
		return err
	}
	for _, a := range accts {
		if _, err := printer.Fprintf(w, "(%d, %s, $%.2f)\n", a.ID, a.Name, a.Funds); err != nil {
			return err
		}
	}
	return nil
}

// PrintUsersInSortedOrder 輸出依 ID 排序後的 (ID, Name)。
func (r *Registry) PrintUsersInSortedOrder(w io.Writer) error {
	header := "User details (ID, Name):"
	if label := r.Label(); label != "" {
		header = label + " user details (ID, Name):"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, a := range r.SortedAccounts() {
		if _, err := fmt.Fprintf(w, "(%d, %s)\n", a.ID, a.Name); err != nil {
			return err
		}
	}
	return nil
}
