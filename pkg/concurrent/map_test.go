package concurrent

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_LoadStoreDelete(t *testing.T) {
	t.Parallel()

	m := NewMap[string, int]()
	m.Store("a", 1)

	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	m.Delete("a")
	_, ok = m.Load("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Length())
}

func TestMap_UpdateIsAtomic(t *testing.T) {
	t.Parallel()

	m := NewMap[string, []int]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			m.Update("list", func(current []int, _ bool) []int {
				return append(current, i)
			})
		})
	}
	wg.Wait()

	v, _ := m.Load("list")
	assert.Len(t, v, 50)
}

func TestMap_KeysSorted(t *testing.T) {
	t.Parallel()

	m := NewMap[string, bool]()
	m.Store("c", true)
	m.Store("a", true)
	m.Store("b", true)

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys(strings.Compare))
}
