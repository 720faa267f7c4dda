package onlinedawg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"
)

/* FILE FORMAT (DAWG.1)
- 6 bytes: "DAWG.1"
- varint: number of characters K, then K varints: the characters, most used first
- varint: number of edges
- varint: number of nodes
- varint: number of words
- 1 byte: 1 if the empty word was added, else 0
- varint: id of the starting node
- for each node, in id order:
	- varint: number of edges
	- for each edge:
		varint: index of the character in the charset << 1 | accepting
		varint: id of the node the edge leads to

Every varint is an unsigned LEB128: 7 bits per byte, least significant
group first, with 0x80 set on every byte but the last.

Node ids are assigned after sorting the nodes by descending reference
count, so that the most shared nodes get the shortest ids.
*/

const (
	magicV1 = "DAWG.1"
	magicV2 = "DAWG.2"
)

// ErrNotImplemented is returned by RebuildHashes.
var ErrNotImplemented = errors.New("dawg: not implemented")

// layout is the numbering of the nodes and characters used when writing.
type layout struct {
	nodes     []nodeIndex
	ids       []uint32 // ids[n] is the id of node n
	charset   []rune
	charIndex map[rune]int
}

func (g *Graph) layout() *layout {
	nodes := g.getNodes()
	sort.SliceStable(nodes, func(a, b int) bool {
		return g.node(nodes[a]).refCount > g.node(nodes[b]).refCount
	})

	l := &layout{
		nodes:     nodes,
		ids:       make([]uint32, g.nodes.count()+1),
		charIndex: make(map[rune]int),
	}

	uses := make(map[rune]int)
	for id, n := range nodes {
		l.ids[n] = uint32(id)
		for _, e := range g.edgeRun(n) {
			uses[e.char]++
		}
	}

	for c := range uses {
		l.charset = append(l.charset, c)
	}
	sort.Slice(l.charset, func(a, b int) bool {
		ca, cb := l.charset[a], l.charset[b]
		if uses[ca] != uses[cb] {
			return uses[ca] > uses[cb]
		}
		return ca < cb
	})
	for i, c := range l.charset {
		l.charIndex[c] = i
	}

	return l
}

func (l *layout) writeHeader(w *varintWriter, g *Graph) {
	w.writeInt(len(l.charset))
	for _, c := range l.charset {
		w.writeUnsigned(uint64(c))
	}
	w.writeInt(g.EdgeCount())
	w.writeInt(len(l.nodes))
	w.writeInt(g.WordCount())
	if g.containsEmpty {
		w.writeByte(1)
	} else {
		w.writeByte(0)
	}
	w.writeUnsigned(uint64(l.ids[g.starting]))
}

func (l *layout) writeNode(w *varintWriter, g *Graph, n nodeIndex) {
	edges := g.edgeRun(n)
	w.writeInt(len(edges))
	for _, e := range edges {
		characc := uint64(l.charIndex[e.char]) << 1
		if e.accepting {
			characc |= 1
		}
		w.writeUnsigned(characc)
		w.writeUnsigned(uint64(l.ids[e.node]))
	}
}

// Save writes the graph to a file in the DAWG.1 format. Returns the number
// of bytes written.
func (g *Graph) Save(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}

	n, err := g.Write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Write writes the graph to an io.Writer in the DAWG.1 format. Returns the
// number of bytes written.
func (g *Graph) Write(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	vw := &varintWriter{w: bw}

	l := g.layout()
	vw.write([]byte(magicV1))
	l.writeHeader(vw, g)
	for _, n := range l.nodes {
		l.writeNode(vw, g, n)
	}

	if vw.err != nil {
		return vw.written, vw.err
	}
	return vw.written, bw.Flush()
}

// header is the part shared by DAWG.1 and DAWG.2 up to the start id.
type header struct {
	charset       []rune
	edgeCount     int
	nodeCount     int
	wordCount     int
	containsEmpty bool
	starting      int
}

func readMagic(r *varintReader, magic string) error {
	buf := make([]byte, len(magic))
	if err := r.readFull(buf); err != nil {
		if errors.Is(err, ErrUnexpectedEOF) {
			return fmt.Errorf("%w: stream too short for a header", ErrInvalidData)
		}
		return err
	}
	if string(buf) != magic {
		return fmt.Errorf("%w: bad magic %q, expected %q", ErrInvalidData, buf, magic)
	}
	return nil
}

func readHeader(r *varintReader) (*header, error) {
	var h header

	size, err := r.readInt(unicode.MaxRune + 1)
	if err != nil {
		return nil, err
	}
	h.charset = make([]rune, 0, min(size, preallocLimit))
	for i := 0; i < size; i++ {
		c, err := r.readInt(unicode.MaxRune)
		if err != nil {
			return nil, err
		}
		if !utf8.ValidRune(rune(c)) {
			return nil, fmt.Errorf("%w: character %#x is not a valid rune", ErrInvalidData, c)
		}
		h.charset = append(h.charset, rune(c))
	}

	if h.edgeCount, err = r.readInt(maxCount); err != nil {
		return nil, err
	}
	if h.nodeCount, err = r.readInt(maxCount); err != nil {
		return nil, err
	}
	if h.wordCount, err = r.readInt(maxCount); err != nil {
		return nil, err
	}

	empty, err := r.readByte()
	if err != nil {
		return nil, err
	}
	h.containsEmpty = empty != 0

	if h.nodeCount == 0 {
		return nil, fmt.Errorf("%w: graph has no nodes", ErrInvalidData)
	}
	if h.starting, err = r.readInt(h.nodeCount - 1); err != nil {
		return nil, err
	}

	return &h, nil
}

// readEdge reads one edge record, resolving its character through the
// charset.
func (h *header) readEdge(next func() (uint64, error)) (c rune, accepting bool, target int, err error) {
	characc, err := next()
	if err != nil {
		return 0, false, 0, err
	}
	index := characc >> 1
	if index >= uint64(len(h.charset)) {
		return 0, false, 0, fmt.Errorf("%w: character index %d out of range", ErrInvalidData, index)
	}

	id, err := next()
	if err != nil {
		return 0, false, 0, err
	}
	if id >= uint64(h.nodeCount) {
		return 0, false, 0, fmt.Errorf("%w: node id %d out of range", ErrInvalidData, id)
	}

	return h.charset[index], characc&1 != 0, int(id), nil
}

// Load reads a graph saved in the DAWG.1 format from a file.
func Load(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read reads a graph in the DAWG.1 format. The graph answers every query,
// but it cannot be added to: its structural hashes are not stored in the
// file, and rebuilding them is not implemented.
func Read(in io.Reader) (*Graph, error) {
	r := newVarintReader(in)
	if err := readMagic(r, magicV1); err != nil {
		return nil, err
	}
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	g := &Graph{indexSize: 1, readOnly: true}
	g.nodes = newNodeList()
	g.edges = newEdgeList()
	g.index = newHashTable(&g.nodes, g.indexSize)
	g.wordCount = h.wordCount
	g.containsEmpty = h.containsEmpty

	// node id i is stored at index i+1
	remaining := h.edgeCount
	for id := 0; id < h.nodeCount; id++ {
		count, err := r.readInt(remaining)
		if err != nil {
			return nil, err
		}
		if count > chunkSize {
			return nil, fmt.Errorf("%w: node %d has %d edges", ErrInvalidData, id, count)
		}
		remaining -= count

		n := g.newNode(count)
		edges := g.edgeRun(n)
		for i := range edges {
			c, accepting, target, err := h.readEdge(r.readUnsigned)
			if err != nil {
				return nil, err
			}
			if i > 0 && c <= edges[i-1].char {
				return nil, fmt.Errorf("%w: edges of node %d are not sorted", ErrInvalidData, id)
			}
			edges[i] = edge{char: c, node: nodeIndex(target + 1), accepting: accepting}
		}
	}
	if remaining != 0 {
		return nil, fmt.Errorf("%w: header promises %d more edges", ErrInvalidData, remaining)
	}

	if err := g.linkLoaded(nodeIndex(h.starting + 1)); err != nil {
		return nil, err
	}
	return g, nil
}

// linkLoaded restores the reference counts and the starting and ending
// nodes of a graph whose records were just read, rejecting cycles.
func (g *Graph) linkLoaded(starting nodeIndex) error {
	g.starting = starting
	g.node(starting).refCount = 1

	count := nodeIndex(g.nodes.count())
	for n := nodeIndex(1); n <= count; n++ {
		for _, e := range g.edgeRun(n) {
			g.node(e.node).refCount++
		}
		if n != starting && g.node(n).edgeCount == 0 {
			if g.ending != nullNode {
				return fmt.Errorf("%w: more than one blank node", ErrInvalidData)
			}
			g.ending = n
		}
	}

	// Kahn's algorithm: every node must be removable in topological order
	incoming := make([]int32, count+1)
	for n := nodeIndex(1); n <= count; n++ {
		for _, e := range g.edgeRun(n) {
			incoming[e.node]++
		}
	}
	var ready []nodeIndex
	for n := nodeIndex(1); n <= count; n++ {
		if incoming[n] == 0 {
			ready = append(ready, n)
		}
	}
	visited := 0
	for len(ready) > 0 {
		n := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		visited++
		for _, e := range g.edgeRun(n) {
			if incoming[e.node]--; incoming[e.node] == 0 {
				ready = append(ready, e.node)
			}
		}
	}
	if visited != int(count) {
		return fmt.Errorf("%w: graph has a cycle", ErrInvalidData)
	}

	return nil
}

// RebuildHashes would recompute the structural hashes and the hash index of
// a graph read from disk so that it can be added to again. It is not
// implemented.
func (g *Graph) RebuildHashes() error {
	return ErrNotImplemented
}

// IsReadOnly returns true for graphs read from disk.
func (g *Graph) IsReadOnly() bool {
	return g.readOnly
}

// DumpFile prints out a DAWG.1 stream in human readable form.
func DumpFile(w io.Writer, in io.Reader) error {
	r := newVarintReader(in)
	if err := readMagic(r, magicV1); err != nil {
		return err
	}
	h, err := readHeader(r)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Charset=%q\n", string(h.charset))
	fmt.Fprintf(w, "EdgeCount=%d\n", h.edgeCount)
	fmt.Fprintf(w, "NodeCount=%d\n", h.nodeCount)
	fmt.Fprintf(w, "WordCount=%d\n", h.wordCount)
	fmt.Fprintf(w, "ContainsEmpty=%v\n", h.containsEmpty)
	fmt.Fprintf(w, "Starting=<%d>\n", h.starting)

	remaining := h.edgeCount
	for id := 0; id < h.nodeCount; id++ {
		count, err := r.readInt(remaining)
		if err != nil {
			return err
		}
		remaining -= count

		fmt.Fprintf(w, "<%d> has %d edges\n", id, count)
		for i := 0; i < count; i++ {
			c, accepting, target, err := h.readEdge(r.readUnsigned)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "    '%c' goto <%d> accepting=%v\n", c, target, accepting)
		}
	}

	return nil
}
