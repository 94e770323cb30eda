// internal/bank/merge.go

package bank

import "acctregistry/internal/list"

// Merge 將 a 與 b 合併成新的登錄簿 label：
//  1. 依序複製 a、b 目前的串列（a 在前，不重新排序），來源登錄簿不受影響。
//  2. 逐節點解決 ID 衝突：與前面任一節點相同就 +1，並從頭重新比對，直到唯一為止。
//  3. 結果串列不排序；有序輸出請用 SortedAccounts / PrintUsersInSortedOrder。
//
// 合併後的分配器維持初始狀態（nextFresh=1、freed 為空），不會依合併結果重算；
// 需要自動配發 ID 前請呼叫 RebuildAllocator。
func Merge(label string, a, b *Registry) *Registry {
	merged := NewRegistry(label)
	for _, src := range []*Registry{a, b} {
		for _, acct := range src.Accounts() {
			merged.accounts.Append(&acct)
		}
	}
	resolveCollisions(merged.accounts)
	return merged
}

// resolveCollisions 保留「遞增後從頭重掃」的行為：
// 先收集已用 ID 再一次重編號會讓部分帳戶拿到不同的 ID。
func resolveCollisions(l *list.List[*Account]) {
	for cur := l.Front(); cur != nil; cur = cur.Next() {
		ref := l.Front()
		for ref != cur {
			if ref.Value.ID == cur.Value.ID {
				cur.Value.ID++
				ref = l.Front()
				continue
			}
			ref = ref.Next()
		}
	}
}
