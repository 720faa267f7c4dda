package onlinedawg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func child(t *testing.T, g *Graph, n nodeIndex, c rune) nodeIndex {
	t.Helper()
	pos, found := g.findEdge(n, c)
	require.True(t, found, "no edge %q out of node %d", c, n)
	return g.edgeRun(n)[pos].node
}

func TestMatches(t *testing.T) {
	g := New()
	for _, word := range []string{"xab", "yab", "yac"} {
		g.Add(word)
	}
	require.NoError(t, g.Verify())

	x := child(t, g, g.starting, 'x') // accepts "ab"
	y := child(t, g, g.starting, 'y') // accepts "ab" and "ac"
	require.NotEqual(t, x, y)

	assert.True(t, g.matchesOnly(x, []rune("xab"), 1))
	assert.False(t, g.matchesOnly(x, []rune("xa"), 1))
	assert.False(t, g.matchesOnly(y, []rune("yab"), 1))
	assert.True(t, g.matchesOnly(g.ending, []rune("xab"), 3))

	assert.True(t, g.matchesSame(x, x))
	assert.False(t, g.matchesSame(x, y))

	assert.True(t, g.matchesSameWithAdd(x, []rune("xac"), 1, y))
	assert.False(t, g.matchesSameWithAdd(x, []rune("xad"), 1, y))
	assert.False(t, g.matchesSameWithAdd(x, []rune("xab"), 1, y))
	assert.False(t, g.matchesSameWithAdd(x, []rune("xacd"), 1, y))
}

func TestMatchesSameWithAddNewBranch(t *testing.T) {
	g := New()
	for _, word := range []string{"a", "bc", "bcd", "cd"} {
		g.Add(word)
	}
	require.NoError(t, g.Verify())

	// the node after "b" accepts "c" and "cd"; adding "d" to the ending
	// node gives the node after "c"
	b := child(t, g, g.starting, 'b')
	c := child(t, g, b, 'c')
	assert.True(t, g.matchesSameWithAdd(g.ending, []rune("xd"), 1, child(t, g, g.starting, 'c')))
	assert.True(t, g.matchesOnly(c, []rune("d"), 0))
}

func TestSuffixHash(t *testing.T) {
	// FNV-1a of "a"
	assert.Equal(t, uint32(0xe40c292c), StringHash("a"))
	assert.Equal(t, uint32(fnvOffset), StringHash(""))
	assert.Equal(t, StringHash("bc"), suffixHash([]rune("abc"), 1))
}
