package onlinedawg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeListReuse(t *testing.T) {
	l := newNodeList()

	a, b, c := l.add(), l.add(), l.add()
	assert.Equal(t, []nodeIndex{1, 2, 3}, []nodeIndex{a, b, c})
	assert.Equal(t, 3, l.count())

	l.at(b).refCount = 7
	l.at(b).hash = 0xdeadbeef
	l.reuse(b)
	assert.Equal(t, 1, l.reuseCount())

	// reused records come back zeroed
	again := l.add()
	assert.Equal(t, b, again)
	assert.Equal(t, nodeRecord{}, *l.at(again))
	assert.Equal(t, 0, l.reuseCount())
	assert.Equal(t, 3, l.count())
}

func TestNodeListGrowsByChunk(t *testing.T) {
	l := newNodeList()
	var last nodeIndex
	for i := 0; i < chunkSize+10; i++ {
		last = l.add()
	}

	assert.Equal(t, nodeIndex(chunkSize+10), last)
	assert.Len(t, l.chunks, 2)

	// records stay where they are when the list grows
	first := l.at(1)
	first.hash = 42
	for i := 0; i < chunkSize; i++ {
		l.add()
	}
	assert.Equal(t, uint32(42), l.at(1).hash)
}

func TestEdgeListRunsStayInsideChunks(t *testing.T) {
	l := newEdgeList()

	first := l.add(chunkSize - 1)
	assert.Equal(t, int32(0), first)

	// two edges do not fit in the last slot of the chunk
	second := l.add(2)
	assert.Equal(t, int32(chunkSize), second)
	assert.Equal(t, 1, l.reuseCount())
	assert.Len(t, l.chunks, 2)

	// the leftover slot serves a run of one
	third := l.add(1)
	assert.Equal(t, int32(chunkSize-1), third)
	assert.Equal(t, 0, l.reuseCount())
	assert.Equal(t, chunkSize+2, l.count())
}

func TestEdgeListReuseByLength(t *testing.T) {
	l := newEdgeList()

	a := l.add(3)
	b := l.add(5)
	run := l.run(b, 5)
	require.Len(t, run, 5)
	run[4] = edge{char: 'z', node: 9, accepting: true}

	l.reuse(3, a)
	assert.Equal(t, 3, l.reuseCount())

	// a run of another length does not take the released slots
	c := l.add(2)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, l.add(3))

	// long runs grow the pool table
	d := l.add(100)
	l.reuse(100, d)
	assert.Equal(t, d, l.add(100))

	assert.Equal(t, edge{char: 'z', node: 9, accepting: true}, l.run(b, 5)[4])
}

func TestEdgeListRejectsHugeRuns(t *testing.T) {
	l := newEdgeList()
	assert.Panics(t, func() { l.add(chunkSize + 1) })
}
