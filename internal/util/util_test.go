package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekable(t *testing.T) {
	p := NewPeekable([]rune("abc"))

	assert.Equal(t, 0, p.Index())
	v, ok := p.Peek()
	require.True(t, ok)
	assert.Equal(t, 'a', v)
	assert.Equal(t, 0, p.Index())

	v, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, 'a', v)
	assert.Equal(t, 1, p.Index())

	v, ok = p.Peek()
	require.True(t, ok)
	assert.Equal(t, 'b', v)

	_, _ = p.Next()
	v, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, 'c', v)
	assert.Equal(t, 3, p.Index())

	_, ok = p.Next()
	assert.False(t, ok)
	_, ok = p.Peek()
	assert.False(t, ok)
}

func TestGroupContinuous(t *testing.T) {
	identity := func(x int) int { return x }

	assert.Nil(t, GroupContinuous([]int{}, identity))
	assert.Equal(t, [][]int{{1, 2}, {4, 5}, {7, 8}, {10}}, GroupContinuous([]int{1, 2, 4, 5, 7, 8, 10}, identity))
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, GroupContinuous([]int{0, 1, 2, 3, 4}, identity))
}

func TestTopoSort(t *testing.T) {
	// a <- b <- c  (c must precede b, b must precede a)
	parents := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	}
	order, err := TopoSort([]string{"a", "b", "c"}, func(v string) []string { return parents[v] })
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := map[string]int{}
	for i, v := range order {
		pos[v] = i
	}
	assert.Less(t, pos["c"], pos["b"])
	assert.Less(t, pos["b"], pos["a"])
}

func TestTopoSortDetectsCycle(t *testing.T) {
	parents := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	_, err := TopoSort([]string{"a", "b"}, func(v string) []string { return parents[v] })
	require.Error(t, err)
}
