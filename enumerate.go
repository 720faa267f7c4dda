package onlinedawg

import "unicode/utf8"

// EnumFn is called by Enumerate for every prefix of the stored words.
// final is true when the prefix itself is a stored word.
type EnumFn = func(prefix []rune, final bool) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate whether
// indication should continue below this depth or to stop altogether
type EnumerationResult = int

const (
	// Continue enumerating all words with this prefix
	Continue EnumerationResult = iota

	// Skip will skip all words with this prefix
	Skip

	// Stop will immediately stop enumerating words
	Stop
)

type frame struct {
	node  nodeIndex
	next  int // next edge to visit
	depth int
}

// Iterator walks the stored words in ascending order. It must not be used
// across calls to Add.
type Iterator struct {
	g       *Graph
	stack   []frame
	word    []rune
	current string
	started bool
}

// Iterator returns a new iterator positioned before the first word.
func (g *Graph) Iterator() *Iterator {
	return &Iterator{g: g}
}

// Next advances to the next word and returns false when there are no more.
func (it *Iterator) Next() bool {
	if !it.started {
		it.started = true
		it.stack = append(it.stack, frame{node: it.g.starting})
		if it.g.containsEmpty {
			it.current = ""
			return true
		}
	}

	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		edges := it.g.edgeRun(top.node)
		if top.next >= len(edges) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		e := edges[top.next]
		top.next++
		depth := top.depth + 1
		it.word = append(it.word[:top.depth], e.char)

		if it.g.node(e.node).edgeCount > 0 {
			it.stack = append(it.stack, frame{node: e.node, depth: depth})
		}
		if e.accepting {
			it.current = string(it.word)
			return true
		}
	}

	it.current = ""
	return false
}

// Word returns the word the iterator is positioned on.
func (it *Iterator) Word() string {
	return it.current
}

// Words returns every stored word in ascending order.
func (g *Graph) Words() []string {
	words := make([]string, 0, g.wordCount)
	for it := g.Iterator(); it.Next(); {
		words = append(words, it.Word())
	}
	return words
}

// Enumerate will call the given method, passing it every possible prefix of words in the graph.
// Return Continue to continue enumeration, Skip to skip this branch, or Stop to stop enumeration.
func (g *Graph) Enumerate(fn EnumFn) {
	if fn(nil, g.containsEmpty) != Continue {
		return
	}

	var runes []rune
	stack := []frame{{node: g.starting}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.edgeRun(top.node)
		if top.next >= len(edges) {
			stack = stack[:len(stack)-1]
			continue
		}

		e := edges[top.next]
		top.next++
		depth := top.depth + 1
		runes = append(runes[:top.depth], e.char)

		switch fn(runes, e.accepting) {
		case Stop:
			return
		case Skip:
			continue
		}
		if g.node(e.node).edgeCount > 0 {
			stack = append(stack, frame{node: e.node, depth: depth})
		}
	}
}

// FindAllPrefixesOf returns all words in the graph that are a prefix of the
// input string, shortest first. The search stops at the first byte that is
// not valid UTF-8.
func (g *Graph) FindAllPrefixesOf(input string) []string {
	var results []string
	if g.containsEmpty {
		results = append(results, "")
	}

	node := g.starting
	for pos := 0; pos < len(input); {
		letter, size := utf8.DecodeRuneInString(input[pos:])
		if letter == utf8.RuneError && size == 1 {
			return results
		}
		pos += size

		index, found := g.findEdge(node, letter)
		if !found {
			return results
		}

		e := g.edgeRun(node)[index]
		if e.accepting {
			results = append(results, input[:pos])
		}
		node = e.node
	}

	return results
}

// getNodes returns every live node: the starting node, the interned nodes
// and the ending node. A graph read from disk has no index, so its nodes
// are collected by walking the edges instead.
func (g *Graph) getNodes() []nodeIndex {
	if g.readOnly {
		return g.reachableNodes()
	}

	nodes := make([]nodeIndex, 0, g.NodeCount())
	nodes = append(nodes, g.starting)
	g.index.each(func(n nodeIndex) {
		nodes = append(nodes, n)
	})
	if g.ending != nullNode {
		nodes = append(nodes, g.ending)
	}
	return nodes
}

// reachableNodes returns the nodes reachable from the starting node in
// breadth first order.
func (g *Graph) reachableNodes() []nodeIndex {
	seen := make(map[nodeIndex]bool)
	seen[g.starting] = true
	queue := []nodeIndex{g.starting}
	for i := 0; i < len(queue); i++ {
		for _, e := range g.edgeRun(queue[i]) {
			if !seen[e.node] {
				seen[e.node] = true
				queue = append(queue, e.node)
			}
		}
	}
	return queue
}
