package onlinedawg

// matchesOnly returns true if n is a plain chain of single edges spelling
// word[from:], accepting on the last edge only and ending in a blank node.
func (g *Graph) matchesOnly(n nodeIndex, word []rune, from int) bool {
	for ; from < len(word); from++ {
		edges := g.edgeRun(n)
		if len(edges) != 1 {
			return false
		}
		if edges[0].char != word[from] || edges[0].accepting != (from == len(word)-1) {
			return false
		}
		n = edges[0].node
	}
	return g.node(n).edgeCount == 0
}

type nodePair struct {
	a, b nodeIndex
}

// matchesSame returns true if the subgraphs under a and b accept the same
// strings with the same shape.
func (g *Graph) matchesSame(a, b nodeIndex) bool {
	pending := []nodePair{{a, b}}
	for len(pending) > 0 {
		p := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if p.a == p.b {
			continue
		}

		ea, eb := g.edgeRun(p.a), g.edgeRun(p.b)
		if len(ea) != len(eb) {
			return false
		}
		for i := range ea {
			if ea[i].char != eb[i].char || ea[i].accepting != eb[i].accepting {
				return false
			}
		}
		for i := range ea {
			pending = append(pending, nodePair{ea[i].node, eb[i].node})
		}
	}
	return true
}

// matchesSameWithAdd returns true if b is what a would become after adding
// word[from:] to it, without changing a. It requires from < len(word).
//
// Only the edge for word[from] differs between the two, so the test walks
// down that edge level by level. Every other edge must match exactly.
func (g *Graph) matchesSameWithAdd(a nodeIndex, word []rune, from int, b nodeIndex) bool {
	for {
		c := word[from]
		last := from == len(word)-1
		ea, eb := g.edgeRun(a), g.edgeRun(b)

		// a gains at most the edge for c
		if len(ea) < len(eb)-1 || len(ea) > len(eb) {
			return false
		}

		// shallow test to make sure the characters line up
		t, o := 0, 0
		had := false
		for o < len(eb) {
			if eb[o].char == c {
				had = true
				if t < len(ea) && ea[t].char == c {
					if eb[o].accepting != (ea[t].accepting || last) {
						return false
					}
					t++
				} else if eb[o].accepting != last {
					return false
				}
				o++
				continue
			}
			if t >= len(ea) || ea[t].char != eb[o].char || ea[t].accepting != eb[o].accepting {
				return false
			}
			t++
			o++
		}
		if !had || t != len(ea) {
			return false
		}

		// deep test of every edge other than c, remembering where c leads
		var nextA, nextB nodeIndex
		for t, o = 0, 0; o < len(eb); o++ {
			if eb[o].char == c {
				nextB = eb[o].node
				if t < len(ea) && ea[t].char == c {
					nextA = ea[t].node
					t++
				}
				continue
			}
			if !g.matchesSame(ea[t].node, eb[o].node) {
				return false
			}
			t++
		}

		switch {
		case nextA == nullNode:
			// the edge for c is new, so b must carry exactly the rest of word
			return g.matchesOnly(nextB, word, from+1)
		case last:
			return g.matchesSame(nextA, nextB)
		}

		a, b = nextA, nextB
		from++
	}
}
