package tableutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPagerWindows(t *testing.T) {
	p := NewPager(makeItems(23), 10)

	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, 23, p.TotalItems())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, p.Page())

	p.SetPage(3)
	assert.Equal(t, []int{21, 22, 23}, p.Page())
	assert.False(t, p.CanNext())
	assert.True(t, p.CanPrevious())
}

func TestPagerClampsOutOfRange(t *testing.T) {
	p := NewPager(makeItems(23), 10)

	p.SetPage(99)
	assert.Equal(t, 3, p.CurrentPage())

	p.SetPage(-5)
	assert.Equal(t, 1, p.CurrentPage())

	p.SetPage(0)
	assert.Equal(t, 1, p.CurrentPage())
}

func TestPagerReconstructsFullSlice(t *testing.T) {
	items := makeItems(23)
	p := NewPager(items, 10)

	var rebuilt []int
	p.First()
	for {
		rebuilt = append(rebuilt, p.Page()...)
		if !p.CanNext() {
			break
		}
		p.Next()
	}
	assert.Equal(t, items, rebuilt)
}

func TestPagerEmpty(t *testing.T) {
	p := NewPager([]int{}, 10)

	assert.Equal(t, 0, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())
	assert.Empty(t, p.Page())
	assert.False(t, p.CanNext())
	assert.False(t, p.CanPrevious())

	p.SetPage(5)
	assert.Equal(t, 1, p.CurrentPage())
}

func TestPagerResizePullsPageBack(t *testing.T) {
	p := NewPager(makeItems(23), 10)
	p.SetPage(3)

	p.SetPageSize(25)
	assert.Equal(t, 1, p.CurrentPage())
	assert.Len(t, p.Page(), 23)
}

func TestPagerDefaultsPageSize(t *testing.T) {
	p := NewPager(makeItems(15), 0)
	assert.Equal(t, DefaultPageSize, p.PageSize())
	assert.Equal(t, 2, p.TotalPages())

	p.SetPageSize(-3)
	assert.Equal(t, DefaultPageSize, p.PageSize())
}

func TestPagerNavigation(t *testing.T) {
	p := NewPager(makeItems(23), 10)

	p.Next()
	assert.Equal(t, 2, p.CurrentPage())
	p.Previous()
	assert.Equal(t, 1, p.CurrentPage())
	p.Previous()
	assert.Equal(t, 1, p.CurrentPage())
	p.Last()
	assert.Equal(t, 3, p.CurrentPage())
	p.Next()
	assert.Equal(t, 3, p.CurrentPage())
	p.First()
	assert.Equal(t, 1, p.CurrentPage())
}
