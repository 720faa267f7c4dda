package onlinedawg

import (
	"errors"
	"unsafe"
)

const (
	chunkShift = 16
	chunkSize  = 1 << chunkShift
	chunkMask  = chunkSize - 1

	reuseInitial   = 64
	lengthsInitial = 32
)

// nodeIndex identifies a node record in a nodeList. The zero value is the
// null node and is never handed out.
type nodeIndex uint32

const nullNode nodeIndex = 0

type nodeRecord struct {
	edges     int32 // offset of the first edge in the edgeList
	edgeCount int32
	refCount  int32
	hash      uint32
	hashNext  nodeIndex // next node in the same hash bucket
}

type edge struct {
	char      rune
	node      nodeIndex
	accepting bool
}

// nodeList is a list of node records optimized for growth. Storage is split
// into fixed size chunks, so a very large list never has to be copied and a
// pointer to a record stays valid for as long as the list lives.
type nodeList struct {
	chunks [][]nodeRecord
	next   nodeIndex
	free   []nodeIndex
}

func newNodeList() nodeList {
	return nodeList{
		chunks: make([][]nodeRecord, 0, 4),
		next:   1,
		free:   make([]nodeIndex, 0, reuseInitial),
	}
}

// add returns the index of a zeroed record. Indexes previously passed to
// reuse are handed out before the list grows.
func (l *nodeList) add() nodeIndex {
	if n := len(l.free); n > 0 {
		index := l.free[n-1]
		l.free = l.free[:n-1]
		*l.at(index) = nodeRecord{}
		return index
	}

	chunk := int(l.next >> chunkShift)
	if chunk >= len(l.chunks) {
		l.chunks = append(l.chunks, make([]nodeRecord, chunkSize))
	}

	l.next++
	return l.next - 1
}

// reuse marks index for reuse by a future add. Passing an index that is
// already pending reuse corrupts the list.
func (l *nodeList) reuse(index nodeIndex) {
	l.free = append(l.free, index)
}

func (l *nodeList) at(index nodeIndex) *nodeRecord {
	return &l.chunks[index>>chunkShift][index&chunkMask]
}

// count returns the number of records ever handed out, including those
// waiting for reuse.
func (l *nodeList) count() int {
	return int(l.next) - 1
}

func (l *nodeList) reuseCount() int {
	return len(l.free)
}

func (l *nodeList) memoryUsage() int64 {
	usage := int64(unsafe.Sizeof(*l))
	usage += int64(cap(l.free)) * int64(unsafe.Sizeof(nullNode))
	usage += int64(cap(l.chunks)) * int64(unsafe.Sizeof(l.chunks))
	usage += int64(len(l.chunks)) * chunkSize * int64(unsafe.Sizeof(nodeRecord{}))
	return usage
}

// edgeList stores the edge runs of all nodes. A run is a contiguous set of
// edges that never crosses a chunk boundary. Released runs are pooled by
// their exact length.
type edgeList struct {
	chunks [][]edge
	next   int32
	free   [][]int32 // free[length] holds offsets of released runs
}

func newEdgeList() edgeList {
	return edgeList{
		chunks: make([][]edge, 0, 4),
		free:   make([][]int32, lengthsInitial),
	}
}

// add reserves length contiguous edges and returns the offset of the first.
func (l *edgeList) add(length int) int32 {
	if length > chunkSize {
		panic(errors.New("edgeList.add(): node has more edges than fit in a chunk"))
	}
	for length >= len(l.free) {
		l.free = append(l.free, make([][]int32, len(l.free))...)
	}

	if pool := l.free[length]; len(pool) > 0 {
		offset := pool[len(pool)-1]
		l.free[length] = pool[:len(pool)-1]
		return offset
	}

	chunk := int(l.next >> chunkShift)
	if chunk >= len(l.chunks) {
		l.chunks = append(l.chunks, make([]edge, chunkSize))
	}

	// the run must not straddle two chunks; the tail of this chunk becomes
	// a fragment that a later run of the same length can use
	if pos := int(l.next & chunkMask); pos+length > chunkSize {
		rest := chunkSize - pos
		l.reuse(rest, l.next)
		l.next += int32(rest)
		l.chunks = append(l.chunks, make([]edge, chunkSize))
	}

	offset := l.next
	l.next += int32(length)
	return offset
}

// reuse marks the run of length edges at offset as available.
func (l *edgeList) reuse(length int, offset int32) {
	for length >= len(l.free) {
		l.free = append(l.free, make([][]int32, len(l.free))...)
	}
	if l.free[length] == nil {
		l.free[length] = make([]int32, 0, reuseInitial)
	}
	l.free[length] = append(l.free[length], offset)
}

// run returns the length edges starting at offset. The slice aliases the
// list storage.
func (l *edgeList) run(offset int32, length int32) []edge {
	start := offset & chunkMask
	return l.chunks[offset>>chunkShift][start : start+length : start+length]
}

func (l *edgeList) count() int {
	return int(l.next)
}

// reuseCount returns the number of edge slots waiting to be reused.
func (l *edgeList) reuseCount() int {
	total := 0
	for length, pool := range l.free {
		total += length * len(pool)
	}
	return total
}

func (l *edgeList) memoryUsage() int64 {
	usage := int64(unsafe.Sizeof(*l))
	usage += int64(cap(l.chunks)) * int64(unsafe.Sizeof(l.chunks))
	usage += int64(len(l.chunks)) * chunkSize * int64(unsafe.Sizeof(edge{}))
	usage += int64(cap(l.free)) * int64(unsafe.Sizeof(l.free))
	for _, pool := range l.free {
		usage += int64(cap(pool)) * 4
	}
	return usage
}
