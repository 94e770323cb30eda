// internal/bank/idalloc.go

package bank

import "acctregistry/internal/list"

type freedID int

func (f freedID) Key() int { return int(f) }

// IDAllocator 決定新帳戶的 ID：優先重用最小的已釋放 ID，否則配發 nextFresh。
// 不變量：freed 內不含 >= nextFresh 的 ID，也不含現存帳戶的 ID。
// 零值不可直接使用，請以 NewIDAllocator 建立。
type IDAllocator struct {
	nextFresh int
	freed     *list.List[freedID] // 由小到大
}

// NewIDAllocator 建立從 1 開始配發的分配器。
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextFresh: 1, freed: list.New[freedID]()}
}

// Allocate 回傳新帳戶應使用的 ID。
// requested > 0 時原樣回傳（是否已被使用由呼叫端檢查）；
// 否則取出最小的已釋放 ID，若無則回傳 nextFresh 並遞增。
func (g *IDAllocator) Allocate(requested int) int {
	if requested > 0 {
		return requested
	}
	if n := g.freed.Front(); n != nil {
		id := n.Value.Key()
		g.freed.Remove(id)
		return id
	}
	id := g.nextFresh
	g.nextFresh++
	return id
}

// Reserve 在明確指定 ID 插入後呼叫：把 id 自 freed 移除，
// 並讓 nextFresh 越過 id，使自動配發永遠不會撞到它。
// 因此比明確 ID 小、且從未使用過的 ID 不會被自動配發
// （空登錄簿先加入 ID 3，下一個自動 ID 是 4，不是 1）。
func (g *IDAllocator) Reserve(id int) {
	g.freed.Remove(id)
	if id >= g.nextFresh {
		g.nextFresh = id + 1
	}
}

// Release 將 id 放回 freed；重複釋放會被忽略。
func (g *IDAllocator) Release(id int) {
	if _, ok := g.freed.Find(func(f freedID) bool { return int(f) == id }); ok {
		return
	}
	g.freed.InsertSorted(freedID(id))
}

// NextFresh 回傳下一個從未使用過的 ID。
func (g *IDAllocator) NextFresh() int {
	return g.nextFresh
}

// Freed 回傳目前可重用的 ID（由小到大）。
func (g *IDAllocator) Freed() []int {
	out := make([]int, 0)
	for f := range g.freed.All() {
		out = append(out, int(f))
	}
	return out
}

// Reset 以指定狀態覆寫分配器，供快照還原與 RebuildAllocator 使用。
func (g *IDAllocator) Reset(next int, freed []int) {
	if next < 1 {
		next = 1
	}
	g.nextFresh = next
	g.freed = list.New[freedID]()
	for _, id := range freed {
		if id >= 1 && id < next {
			g.Release(id)
		}
	}
}
