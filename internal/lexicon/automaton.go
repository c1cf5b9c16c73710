// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

// automaton is an Aho-Corasick matcher over the long gene keys. It answers
// "which keys occur inside this candidate" in one pass over the candidate.
// Transitions are sparse maps: gene dictionaries run to hundreds of
// thousands of keys and dense 256-wide tables would not fit in memory.
type automaton struct {
	nodes []acNode
}

type acNode struct {
	next map[byte]int32
	fail int32
	out  []int32 // pattern indexes that end at this state
}

func newAutomaton(patterns []string) *automaton {
	a := &automaton{nodes: make([]acNode, 1, len(patterns)*4+1)}

	for i, p := range patterns {
		cur := int32(0)
		for j := 0; j < len(p); j++ {
			b := p[j]
			nxt, ok := a.nodes[cur].next[b]
			if !ok {
				if a.nodes[cur].next == nil {
					a.nodes[cur].next = make(map[byte]int32, 2)
				}
				a.nodes = append(a.nodes, acNode{})
				nxt = int32(len(a.nodes) - 1)
				a.nodes[cur].next[b] = nxt
			}
			cur = nxt
		}
		a.nodes[cur].out = append(a.nodes[cur].out, int32(i))
	}

	// BFS to set failure links and propagate outputs.
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c, s := range a.nodes[r].next {
			queue = append(queue, s)
			f := a.nodes[r].fail
			for f > 0 && !a.has(f, c) {
				f = a.nodes[f].fail
			}
			if nxt, ok := a.nodes[f].next[c]; ok && nxt != s {
				f = nxt
			}
			a.nodes[s].fail = f
			if out := a.nodes[f].out; len(out) > 0 {
				a.nodes[s].out = append(a.nodes[s].out, out...)
			}
		}
	}
	return a
}

func (a *automaton) has(state int32, c byte) bool {
	_, ok := a.nodes[state].next[c]
	return ok
}

// scan calls visit with the index of every pattern occurring in text.
// A pattern occurring several times is visited several times.
func (a *automaton) scan(text string, visit func(int32)) {
	state := int32(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		for state > 0 && !a.has(state, c) {
			state = a.nodes[state].fail
		}
		if nxt, ok := a.nodes[state].next[c]; ok {
			state = nxt
		}
		for _, idx := range a.nodes[state].out {
			visit(idx)
		}
	}
}
