// internal/list/list.go

// Package list 提供依鍵值 (Key) 由小到大排序的單向鏈結串列。
// 串列本身不做任何鎖定；呼叫端（例如 bank.Registry）負責序列化存取。
package list

import "iter"

// Keyed 為可放入串列的元素：Key() 決定排序位置與查找依據。
type Keyed interface {
	Key() int
}

// Node 為串列節點；每個節點唯一擁有其後繼節點。
type Node[T Keyed] struct {
	Value T
	next  *Node[T]
}

// Next 回傳下一個節點，串列尾端回傳 nil。
func (n *Node[T]) Next() *Node[T] {
	return n.next
}

// List 為單向鏈結串列。零值即為可用的空串列。
// 長度不做快取，每次 Len() 皆重新走訪。
type List[T Keyed] struct {
	head *Node[T]
}

// New 建立空串列。
func New[T Keyed]() *List[T] {
	return &List[T]{}
}

// Front 回傳首節點；空串列回傳 nil。
func (l *List[T]) Front() *Node[T] {
	return l.head
}

// IsEmpty O(1)。
func (l *List[T]) IsEmpty() bool {
	return l.head == nil
}

// Len 走訪整條串列計算長度，O(n)。
func (l *List[T]) Len() int {
	n := 0
	for cur := l.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// InsertSorted 自首節點線性掃描，將 v 插在第一個鍵值大於 v.Key() 的節點之前；
// 若不存在則接到尾端。鍵值唯一性由呼叫端保證。
func (l *List[T]) InsertSorted(v T) {
	node := &Node[T]{Value: v}
	if l.head == nil || l.head.Value.Key() > v.Key() {
		node.next = l.head
		l.head = node
		return
	}
	cur := l.head
	for cur.next != nil && cur.next.Value.Key() < v.Key() {
		cur = cur.next
	}
	node.next = cur.next
	cur.next = node
}

// Append 不考慮排序，直接將 v 接到尾端。
func (l *List[T]) Append(v T) {
	node := &Node[T]{Value: v}
	if l.head == nil {
		l.head = node
		return
	}
	cur := l.head
	for cur.next != nil {
		cur = cur.next
	}
	cur.next = node
}

// Remove 移除第一個鍵值等於 key 的節點，回傳是否有節點被移除。
func (l *List[T]) Remove(key int) bool {
	var prev *Node[T]
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.Value.Key() != key {
			prev = cur
			continue
		}
		if prev == nil {
			l.head = cur.next
		} else {
			prev.next = cur.next
		}
		cur.next = nil
		return true
	}
	return false
}

// Find 回傳第一個滿足 match 的元素。
func (l *List[T]) Find(match func(T) bool) (T, bool) {
	for cur := l.head; cur != nil; cur = cur.next {
		if match(cur.Value) {
			return cur.Value, true
		}
	}
	var zero T
	return zero, false
}

// At 回傳第 i 個（0 起算）元素。
func (l *List[T]) At(i int) (T, bool) {
	if i >= 0 {
		idx := 0
		for cur := l.head; cur != nil; cur = cur.next {
			if idx == i {
				return cur.Value, true
			}
			idx++
		}
	}
	var zero T
	return zero, false
}

// All 依串列順序迭代所有元素。
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for cur := l.head; cur != nil; cur = cur.next {
			if !yield(cur.Value) {
				return
			}
		}
	}
}

// Values 依串列順序回傳所有元素組成的切片。
func (l *List[T]) Values() []T {
	out := make([]T, 0)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}
