package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPutAndGet(t *testing.T) {
	m := NewMap[string, int]()

	m.Put("one", 1)
	m.Put("two", 2)

	v, ok := m.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestMapDelete(t *testing.T) {
	m := NewMap[string, int]()
	m.Put("key", 42)

	assert.True(t, m.Delete("key"))
	assert.False(t, m.Has("key"))
	assert.False(t, m.Delete("key"))
	assert.Equal(t, 0, m.Len())
}

func TestMapKeysSorted(t *testing.T) {
	m := NewMap[string, int]()
	m.Put("c", 3)
	m.Put("a", 1)
	m.Put("b", 2)

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestMapRangeEarlyStop(t *testing.T) {
	m := NewMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	var visited []string
	m.Range(func(k string, _ int) bool {
		visited = append(visited, k)
		return len(visited) < 2
	})

	assert.Equal(t, []string{"a", "b"}, visited)
}
