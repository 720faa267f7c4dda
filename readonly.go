package onlinedawg

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode/utf8"
	"unsafe"
)

type readonlyEdge struct {
	char      rune
	node      int32 // id of the node the edge leads to
	accepting bool
}

// Readonly is an immutable graph read from a DAWG.1 stream. All edges live
// in one array; the edges of node i are edges[first[i]:first[i+1]].
type Readonly struct {
	edges         []readonlyEdge
	first         []int32
	starting      int32
	wordCount     int
	containsEmpty bool
}

var _ Finder = (*Readonly)(nil)

// LoadReadonly reads a Readonly graph from a DAWG.1 file.
func LoadReadonly(filename string) (*Readonly, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadReadonly(f)
}

// ReadReadonly reads a Readonly graph from a DAWG.1 stream.
func ReadReadonly(in io.Reader) (*Readonly, error) {
	r := newVarintReader(in)
	if err := readMagic(r, magicV1); err != nil {
		return nil, err
	}
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	result := &Readonly{
		edges:         make([]readonlyEdge, 0, min(h.edgeCount, preallocLimit)),
		first:         make([]int32, 0, min(h.nodeCount+1, preallocLimit)),
		starting:      int32(h.starting),
		wordCount:     h.wordCount,
		containsEmpty: h.containsEmpty,
	}

	remaining := h.edgeCount
	for id := 0; id < h.nodeCount; id++ {
		result.first = append(result.first, int32(len(result.edges)))

		count, err := r.readInt(remaining)
		if err != nil {
			return nil, err
		}
		remaining -= count

		for i := 0; i < count; i++ {
			c, accepting, target, err := h.readEdge(r.readUnsigned)
			if err != nil {
				return nil, err
			}
			if i > 0 && c <= result.edges[len(result.edges)-1].char {
				return nil, fmt.Errorf("%w: edges of node %d are not sorted", ErrInvalidData, id)
			}
			result.edges = append(result.edges, readonlyEdge{char: c, node: int32(target), accepting: accepting})
		}
	}
	if remaining != 0 {
		return nil, fmt.Errorf("%w: header promises %d more edges", ErrInvalidData, remaining)
	}
	result.first = append(result.first, int32(len(result.edges)))

	return result, nil
}

// Contains returns true if value is in the graph.
func (d *Readonly) Contains(value string) bool {
	if value == "" {
		return d.containsEmpty
	}
	if !utf8.ValidString(value) {
		return false
	}

	node := d.starting
	accepting := false
	for _, c := range value {
		edges := d.edges[d.first[node]:d.first[node+1]]
		i := sort.Search(len(edges), func(i int) bool {
			return edges[i].char >= c
		})
		if i == len(edges) || edges[i].char != c {
			return false
		}
		node, accepting = edges[i].node, edges[i].accepting
	}

	return accepting
}

// WordCount returns the number of words in the graph.
func (d *Readonly) WordCount() int {
	return d.wordCount
}

// NodeCount returns the number of nodes in the graph.
func (d *Readonly) NodeCount() int {
	return len(d.first) - 1
}

// EdgeCount returns the number of edges in the graph.
func (d *Readonly) EdgeCount() int {
	return len(d.edges)
}

// MemoryUsage returns the approximate number of bytes used by the graph.
func (d *Readonly) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*d)) +
		int64(cap(d.edges))*int64(unsafe.Sizeof(readonlyEdge{})) +
		int64(cap(d.first))*4
}
