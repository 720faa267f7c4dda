package onlinedawg

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
	"unsafe"
)

// Finder is implemented by every structure that can answer lookups: the
// writable Graph as well as the Readonly and Streamed structures read from
// disk.
type Finder interface {
	Contains(value string) bool
	WordCount() int
	NodeCount() int
	EdgeCount() int
	MemoryUsage() int64
}

var (
	// ErrReadOnly is the panic value of Add on a graph read from disk, whose
	// hash index has not been rebuilt.
	ErrReadOnly = errors.New("dawg: graph is read-only")

	errNotInOrder = errors.New("Graph.Add(): words not in alphabetical order")
	errBadUTF8    = errors.New("Graph.Add(): word is not valid UTF-8")
)

// Option configures a Graph created with New.
type Option func(*Graph)

// WithOrderCheck makes Add panic when a value is not strictly greater than
// the previously added one. Without it the order is trusted.
func WithOrderCheck() Option {
	return func(g *Graph) {
		g.checkOrder = true
	}
}

// WithIndexSize sets the initial number of buckets of the structural hash
// index. It is rounded up to a power of two.
func WithIndexSize(size int) Option {
	return func(g *Graph) {
		g.indexSize = size
	}
}

// Graph is a directed acyclic word graph that stays minimal while words are
// added to it.
type Graph struct {
	nodes nodeList
	edges edgeList
	index hashTable

	starting nodeIndex
	ending   nodeIndex // shared blank node, or nullNode when absent

	wordCount     int
	edgeCount     int
	containsEmpty bool

	indexSize  int
	checkOrder bool
	lastWord   string
	readOnly   bool
}

var _ Finder = (*Graph)(nil)

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{indexSize: defaultIndexSize}
	for _, opt := range opts {
		opt(g)
	}
	g.init()
	return g
}

func (g *Graph) init() {
	g.nodes = newNodeList()
	g.edges = newEdgeList()
	g.index = newHashTable(&g.nodes, g.indexSize)
	g.starting = g.nodes.add()
	// the root is owned by the graph itself
	g.node(g.starting).refCount = 1
}

// CanAdd returns true if value is valid UTF-8, sorts after every value
// added so far and the graph is writable.
func (g *Graph) CanAdd(value string) bool {
	return !g.readOnly && utf8.ValidString(value) && (g.wordCount == 0 || value > g.lastWord)
}

// Add adds value to the graph. Adding a value that is already present
// corrupts the graph, as does adding values out of ascending order when
// that order is relied upon. With WithOrderCheck, an out of order value
// panics instead. A value that is not valid UTF-8 always panics.
func (g *Graph) Add(value string) {
	if g.readOnly {
		panic(ErrReadOnly)
	}
	if !utf8.ValidString(value) {
		panic(fmt.Errorf("%w: %q", errBadUTF8, value))
	}
	if g.checkOrder && g.wordCount > 0 && value <= g.lastWord {
		panic(fmt.Errorf("%w: last=%q new=%q", errNotInOrder, g.lastWord, value))
	}
	g.lastWord = value

	g.wordCount++
	if value == "" {
		g.containsEmpty = true
		return
	}

	word := []rune(value)
	node := g.starting
	for index := 0; index < len(word); index++ {
		// the node gains the suffix word[index:], which changes its hash
		if node != g.starting {
			g.index.remove(node)
			g.node(node).hash ^= suffixHash(word, index)
			g.index.add(node)
		}

		last := index == len(word)-1
		pos, found := g.findEdge(node, word[index])
		if !found {
			target := g.addNew(word, index+1)
			g.insertEdge(node, pos, edge{char: word[index], node: target, accepting: last})
			g.node(target).refCount++
			return
		}

		if last {
			g.edgeRun(node)[pos].accepting = true
			return
		}

		child := g.edgeRun(node)[pos].node
		wanted := g.node(child).hash ^ suffixHash(word, index+1)
		if existing := g.findWithAdd(child, word, index+1, wanted); existing != nullNode {
			g.node(existing).refCount++
			g.edgeRun(node)[pos].node = existing
			g.dereference(child)
			return
		}

		if g.node(child).refCount > 1 {
			dup := g.duplicate(child)
			g.node(dup).refCount++
			g.edgeRun(node)[pos].node = dup
			g.dereference(child)
			child = dup
		} else if child == g.ending {
			// its last reference is about to grow edges of its own
			g.ending = nullNode
		}

		node = child
	}
}

// Contains returns true if value was added to the graph. Invalid UTF-8 is
// never found.
func (g *Graph) Contains(value string) bool {
	if value == "" {
		return g.containsEmpty
	}
	if !utf8.ValidString(value) {
		return false
	}

	node := g.starting
	accepting := false
	for _, c := range value {
		pos, found := g.findEdge(node, c)
		if !found {
			return false
		}
		e := g.edgeRun(node)[pos]
		node, accepting = e.node, e.accepting
	}

	return accepting
}

// WordCount returns the number of values added, including the empty string.
func (g *Graph) WordCount() int {
	return g.wordCount
}

// NodeCount returns the number of live nodes, including the starting node
// and the ending node when it exists.
func (g *Graph) NodeCount() int {
	return g.nodes.count() - g.nodes.reuseCount()
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// MemoryUsage returns the approximate number of bytes used by the graph.
func (g *Graph) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*g)) +
		g.nodes.memoryUsage() +
		g.edges.memoryUsage() +
		g.index.memoryUsage()
}

func (g *Graph) node(n nodeIndex) *nodeRecord {
	return g.nodes.at(n)
}

// edgeRun returns the edges of n. The slice aliases arena storage and is
// invalidated when the edges of n are reallocated or released.
func (g *Graph) edgeRun(n nodeIndex) []edge {
	rec := g.nodes.at(n)
	if rec.edgeCount == 0 {
		return nil
	}
	return g.edges.run(rec.edges, rec.edgeCount)
}

// findEdge searches the edges of n for c. When c is missing, pos is where
// an edge for c would be inserted.
func (g *Graph) findEdge(n nodeIndex, c rune) (pos int, found bool) {
	edges := g.edgeRun(n)
	pos = sort.Search(len(edges), func(i int) bool {
		return edges[i].char >= c
	})
	return pos, pos < len(edges) && edges[pos].char == c
}

// newNode allocates a node with room for count edges.
func (g *Graph) newNode(count int) nodeIndex {
	n := g.nodes.add()
	if count > 0 {
		rec := g.node(n)
		rec.edges = g.edges.add(count)
		rec.edgeCount = int32(count)
		g.edgeCount += count
	}
	return n
}

// insertEdge inserts e at pos in the edges of n, moving them to a run one
// edge longer.
func (g *Graph) insertEdge(n nodeIndex, pos int, e edge) {
	rec := g.node(n)
	old := g.edgeRun(n)

	offset := g.edges.add(len(old) + 1)
	run := g.edges.run(offset, int32(len(old)+1))
	copy(run, old[:pos])
	run[pos] = e
	copy(run[pos+1:], old[pos:])

	if len(old) > 0 {
		g.edges.reuse(len(old), rec.edges)
	}
	rec.edges = offset
	rec.edgeCount++
	g.edgeCount++
}

// endingNode returns the shared blank node, creating it when absent.
func (g *Graph) endingNode() nodeIndex {
	if g.ending == nullNode {
		g.ending = g.nodes.add()
	}
	return g.ending
}

// addNew returns a node that accepts exactly word[from:]. Existing single
// chains are reused; only the part of the chain that does not exist yet is
// allocated. The caller owns the reference to the returned node.
func (g *Graph) addNew(word []rune, from int) nodeIndex {
	k := from
	tail := nullNode
	for ; k < len(word); k++ {
		if tail = g.findOnly(word, k); tail != nullNode {
			break
		}
	}
	if tail == nullNode {
		tail = g.endingNode()
	}

	for i := k - 1; i >= from; i-- {
		n := g.newNode(1)
		g.edgeRun(n)[0] = edge{char: word[i], node: tail, accepting: i == len(word)-1}
		g.node(tail).refCount++
		g.node(n).hash = suffixHash(word, i)
		g.index.add(n)
		tail = n
	}

	return tail
}

// findOnly looks for an interned node that is a plain chain spelling
// word[from:].
func (g *Graph) findOnly(word []rune, from int) nodeIndex {
	hash := suffixHash(word, from)
	for n := g.index.first(hash); n != nullNode; n = g.index.next(n) {
		if g.node(n).hash == hash && g.matchesOnly(n, word, from) {
			return n
		}
	}
	return nullNode
}

// findWithAdd looks for an interned node equal to n with word[from:] added.
func (g *Graph) findWithAdd(n nodeIndex, word []rune, from int, hash uint32) nodeIndex {
	for cand := g.index.first(hash); cand != nullNode; cand = g.index.next(cand) {
		if g.node(cand).hash == hash && g.matchesSameWithAdd(n, word, from, cand) {
			return cand
		}
	}
	return nullNode
}

// duplicate copies n so that the copy can be changed without affecting the
// other paths through n. The copy is not interned and has no references.
func (g *Graph) duplicate(n nodeIndex) nodeIndex {
	count := int(g.node(n).edgeCount)
	dup := g.newNode(count)

	// records live in chunks that never move, so both stay valid
	src, dst := g.node(n), g.node(dup)
	dst.hash = src.hash

	to := g.edgeRun(dup)
	copy(to, g.edgeRun(n))
	for _, e := range to {
		g.node(e.node).refCount++
	}

	return dup
}

// dereference drops one reference to n. A node whose last reference is
// dropped is released together with every child it held the last
// reference to.
func (g *Graph) dereference(n nodeIndex) {
	pending := []nodeIndex{n}
	for len(pending) > 0 {
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		rec := g.node(n)
		rec.refCount--
		if rec.refCount < 0 {
			panic(fmt.Errorf("dawg: negative reference count on node %d", n))
		}
		if rec.refCount > 0 {
			continue
		}

		if rec.edgeCount > 0 {
			g.index.remove(n)
			for _, e := range g.edgeRun(n) {
				pending = append(pending, e.node)
			}
			g.edges.reuse(int(rec.edgeCount), rec.edges)
			g.edgeCount -= int(rec.edgeCount)
		}

		if n == g.ending {
			g.ending = nullNode
		}
		g.nodes.reuse(n)
	}
}
