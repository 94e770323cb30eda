package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id   int
	name string
}

func (i item) Key() int { return i.id }

func keys[T Keyed](l *List[T]) []int {
	out := []int{}
	for v := range l.All() {
		out = append(out, v.Key())
	}
	return out
}

func TestInsertSortedKeepsAscendingOrder(t *testing.T) {
	l := New[item]()
	for _, id := range []int{3, 2, 1, 5, 4} {
		l.InsertSorted(item{id: id})
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, keys(l))
	assert.Equal(t, 5, l.Len())
}

func TestInsertSortedHeadMiddleTail(t *testing.T) {
	l := New[item]()
	l.InsertSorted(item{id: 10})
	l.InsertSorted(item{id: 30})
	l.InsertSorted(item{id: 5})
	l.InsertSorted(item{id: 20})
	assert.Equal(t, []int{5, 10, 20, 30}, keys(l))
}

func TestAppendIgnoresOrder(t *testing.T) {
	l := New[item]()
	l.Append(item{id: 4})
	l.Append(item{id: 1})
	l.Append(item{id: 4})
	assert.Equal(t, []int{4, 1, 4}, keys(l))
}

func TestRemove(t *testing.T) {
	l := New[item]()
	for _, id := range []int{1, 2, 3} {
		l.InsertSorted(item{id: id})
	}

	assert.True(t, l.Remove(1), "remove head")
	assert.Equal(t, []int{2, 3}, keys(l))
	assert.True(t, l.Remove(3), "remove tail")
	assert.Equal(t, []int{2}, keys(l))
	assert.False(t, l.Remove(9))
	assert.True(t, l.Remove(2))
	assert.True(t, l.IsEmpty())
	assert.False(t, l.Remove(2), "remove from empty list")
}

func TestRemoveOnlyFirstMatch(t *testing.T) {
	l := New[item]()
	l.Append(item{id: 7, name: "a"})
	l.Append(item{id: 7, name: "b"})

	require.True(t, l.Remove(7))
	v, ok := l.At(0)
	require.True(t, ok)
	assert.Equal(t, "b", v.name)
}

func TestFindAndAt(t *testing.T) {
	l := New[item]()
	l.InsertSorted(item{id: 2, name: "John"})
	l.InsertSorted(item{id: 1, name: "Neal"})

	v, ok := l.Find(func(i item) bool { return i.name == "John" })
	require.True(t, ok)
	assert.Equal(t, 2, v.id)

	_, ok = l.Find(func(i item) bool { return i.id == 99 })
	assert.False(t, ok)

	v, ok = l.At(0)
	require.True(t, ok)
	assert.Equal(t, "Neal", v.name)
	_, ok = l.At(2)
	assert.False(t, ok)
	_, ok = l.At(-1)
	assert.False(t, ok)
}

func TestEmptyList(t *testing.T) {
	var l List[item]
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Front())
	assert.Empty(t, l.Values())
}

func TestNodeWalk(t *testing.T) {
	l := New[item]()
	for _, id := range []int{1, 2, 3} {
		l.Append(item{id: id})
	}
	sum := 0
	for n := l.Front(); n != nil; n = n.Next() {
		sum += n.Value.id
	}
	assert.Equal(t, 6, sum)
}
