package onlinedawg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, word := range []string{"bat", "bats", "cat", "cats", "cow"} {
		g.Add(word)
	}
	require.NoError(t, g.Verify())
	return g
}

func TestVerifyReferenceCounts(t *testing.T) {
	g := verifiedGraph(t)
	g.node(child(t, g, g.starting, 'c')).refCount++
	assert.ErrorIs(t, g.Verify(), ErrInvariant)
}

func TestVerifyHashes(t *testing.T) {
	g := verifiedGraph(t)
	n := child(t, g, g.starting, 'c')

	g.index.remove(n)
	g.node(n).hash ^= 1
	g.index.add(n)
	assert.ErrorIs(t, g.Verify(), ErrInvariant)
}

func TestVerifyIndexMembership(t *testing.T) {
	g := verifiedGraph(t)
	g.index.remove(child(t, g, g.starting, 'b'))
	assert.ErrorIs(t, g.Verify(), ErrInvariant)
}

func TestVerifyEdgeOrder(t *testing.T) {
	g := verifiedGraph(t)
	run := g.edgeRun(g.starting)
	require.Len(t, run, 2)
	run[0], run[1] = run[1], run[0]
	assert.ErrorIs(t, g.Verify(), ErrInvariant)
}

func TestVerifyEdgeCount(t *testing.T) {
	g := verifiedGraph(t)
	g.edgeCount++
	assert.ErrorIs(t, g.Verify(), ErrInvariant)
}

func TestDereferenceReleasesOrphans(t *testing.T) {
	g := New()
	g.Add("abc")
	require.Equal(t, 4, g.NodeCount())

	// cut the only word loose from the root
	a := child(t, g, g.starting, 'a')
	g.dereference(a)

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, nullNode, g.ending)
	assert.Equal(t, 0, g.index.count)
	assert.Equal(t, 2, g.edges.reuseCount())
}

func TestComputeHashMatchesSuffixes(t *testing.T) {
	g := New()
	words := []string{"bat", "bats", "batsman", "cat", "cats", "catsman", "dog", "dogs", "xats"}
	for _, word := range words {
		g.Add(word)
	}
	require.NoError(t, g.Verify())

	var want uint32
	for _, word := range words {
		want ^= StringHash(word)
	}
	assert.Equal(t, want, g.computeHash(g.starting))
	assert.Equal(t, uint32(0), g.computeHash(g.ending))

	// the node after "ca" accepts "t", "ts" and "tsman"
	n := child(t, g, child(t, g, g.starting, 'c'), 'a')
	assert.Equal(t, StringHash("t")^StringHash("ts")^StringHash("tsman"), g.computeHash(n))
}
