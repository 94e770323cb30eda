package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateFreshSequence(t *testing.T) {
	g := NewIDAllocator()
	assert.Equal(t, 1, g.Allocate(0))
	assert.Equal(t, 2, g.Allocate(0))
	assert.Equal(t, 3, g.NextFresh())
}

func TestAllocateRequestedPassesThrough(t *testing.T) {
	g := NewIDAllocator()
	assert.Equal(t, 42, g.Allocate(42))
	assert.Equal(t, 1, g.NextFresh(), "Allocate alone does not reserve")
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := NewIDAllocator()
	for i := 0; i < 5; i++ {
		g.Allocate(0)
	}
	g.Release(4)
	g.Release(2)
	g.Release(4)
	assert.Equal(t, []int{2, 4}, g.Freed())

	assert.Equal(t, 2, g.Allocate(0))
	assert.Equal(t, 4, g.Allocate(0))
	assert.Equal(t, 6, g.Allocate(0))
	assert.Empty(t, g.Freed())
}

func TestReserve(t *testing.T) {
	g := NewIDAllocator()
	g.Allocate(0)
	g.Allocate(0)
	g.Release(1)

	g.Reserve(1)
	assert.Empty(t, g.Freed(), "reserved id leaves the freed set")

	g.Reserve(10)
	assert.Equal(t, 11, g.NextFresh())
	g.Reserve(5)
	assert.Equal(t, 11, g.NextFresh(), "reserving below next fresh does not move it")
}

func TestReset(t *testing.T) {
	g := NewIDAllocator()
	g.Reset(6, []int{5, 2, 9, 0, 2})
	assert.Equal(t, 6, g.NextFresh())
	assert.Equal(t, []int{2, 5}, g.Freed(), "ids >= next or < 1 are dropped")

	g.Reset(0, nil)
	assert.Equal(t, 1, g.NextFresh())
}
