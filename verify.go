package onlinedawg

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every error returned from Verify.
var ErrInvariant = errors.New("dawg: invariant violated")

func invariant(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// Verify performs an exhaustive self check of the graph and returns the
// first problem found. It is slow and meant for tests. A graph read from
// disk has no hash index, so only its shape and counts are checked.
func (g *Graph) Verify() error {
	if g.NodeCount() != g.nodes.count()-g.nodes.reuseCount() {
		return invariant("node count %d does not match node list", g.NodeCount())
	}
	if g.EdgeCount() != g.edges.count()-g.edges.reuseCount() {
		return invariant("edge count %d does not match edge list %d-%d",
			g.EdgeCount(), g.edges.count(), g.edges.reuseCount())
	}

	if !g.readOnly {
		if err := g.verifyIndex(); err != nil {
			return err
		}
	}

	reachable := g.reachableNodes()
	if len(reachable) != g.NodeCount() {
		return invariant("%d nodes reachable, NodeCount is %d", len(reachable), g.NodeCount())
	}
	if nodes := g.getNodes(); len(nodes) != g.NodeCount() {
		return invariant("getNodes returned %d nodes, NodeCount is %d", len(nodes), g.NodeCount())
	}

	refs := make(map[nodeIndex]int32, len(reachable))
	refs[g.starting] = 1
	edges := 0
	interned := 0
	for _, n := range reachable {
		run := g.edgeRun(n)
		edges += len(run)
		for i, e := range run {
			if e.node == nullNode {
				return invariant("node %d has an edge to the null node", n)
			}
			if i > 0 && run[i-1].char >= e.char {
				return invariant("edges of node %d are not sorted", n)
			}
			refs[e.node]++
		}

		if len(run) == 0 {
			if n != g.ending && n != g.starting {
				return invariant("blank node %d is not the ending node", n)
			}
			continue
		}
		if n == g.starting || g.readOnly {
			continue
		}

		interned++
		if !g.index.contains(n) {
			return invariant("node %d is not in the hash table", n)
		}
		if want := g.computeHash(n); g.node(n).hash != want {
			return invariant("node %d has hash %08x, expected %08x", n, g.node(n).hash, want)
		}
	}

	if edges != g.EdgeCount() {
		return invariant("%d edges reachable, EdgeCount is %d", edges, g.EdgeCount())
	}
	for _, n := range reachable {
		if got := g.node(n).refCount; got != refs[n] {
			return invariant("node %d has reference count %d, expected %d", n, got, refs[n])
		}
	}
	if !g.readOnly && interned != g.index.count {
		return invariant("%d nodes need interning, hash table holds %d", interned, g.index.count)
	}

	return nil
}

// verifyIndex checks that the interned nodes are distinct and that no two of
// them are equivalent.
func (g *Graph) verifyIndex() error {
	if g.index.contains(g.starting) {
		return invariant("starting node is in the hash table")
	}
	if g.ending != nullNode && g.index.contains(g.ending) {
		return invariant("ending node is in the hash table")
	}

	groups := make(map[uint32][]nodeIndex)
	g.index.each(func(n nodeIndex) {
		groups[g.node(n).hash] = append(groups[g.node(n).hash], n)
	})
	for _, group := range groups {
		for i := 0; i < len(group)-1; i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i] == group[j] {
					return invariant("node %d is in the hash table twice", group[i])
				}
				if g.matchesSame(group[i], group[j]) {
					return invariant("nodes %d and %d are equivalent; graph is not minimal", group[i], group[j])
				}
			}
		}
	}

	return nil
}

type hashStep struct {
	node  nodeIndex
	state uint32 // FNV-1a state after the characters leading to node
}

// computeHash recomputes the structural hash of n from every suffix it
// accepts. The FNV-1a state is carried down each path, so every edge on a
// path costs one step. Child hashes are not reused: a parent's suffixes
// start from a different state.
func (g *Graph) computeHash(n nodeIndex) uint32 {
	var hash uint32
	pending := []hashStep{{node: n, state: fnvOffset}}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, e := range g.edgeRun(s.node) {
			state := (s.state ^ uint32(e.char)) * fnvPrime
			if e.accepting {
				hash ^= state
			}
			if g.node(e.node).edgeCount > 0 {
				pending = append(pending, hashStep{node: e.node, state: state})
			}
		}
	}
	return hash
}
