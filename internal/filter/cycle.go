package filter

import (
	"log/slog"
	"strings"
)

const (
	unvisited = iota
	visiting
	settled
)

// detachCycles finds membership cycles in the arena and returns the set of
// nodes that must be left out of the tree.
//
// Every node has at most one parent, so a cycle is found by following parent
// links until a root or an already visited node is reached. Nodes on a cycle
// and every node whose ancestry leads into one are dropped. The tree is
// never assembled by recursing through a cycle.
func (a *assembly) detachCycles() map[int]bool {
	state := make([]int, len(a.nodes))
	dropped := make(map[int]bool)

	for start := range a.nodes {
		if state[start] != unvisited {
			continue
		}

		var chain []int
		i := start
		for i >= 0 && state[i] == unvisited {
			state[i] = visiting
			chain = append(chain, i)
			i = a.nodes[i].parent
		}

		// i < 0: reached a root. state[i] == settled: joined a finished chain,
		// inherit its verdict. state[i] == visiting: closed a new cycle.
		bad := i >= 0 && (state[i] == visiting || dropped[i])
		if i >= 0 && state[i] == visiting {
			a.warnCycle(chain, i)
		}

		for _, ci := range chain {
			state[ci] = settled
			if bad {
				dropped[ci] = true
			}
		}
	}

	return dropped
}

func (a *assembly) warnCycle(chain []int, closing int) {
	var path []string
	inCycle := false
	for _, ci := range chain {
		if ci == closing {
			inCycle = true
		}
		if inCycle {
			path = append(path, a.nodes[ci].name)
		}
	}
	path = append(path, a.nodes[closing].name)

	slog.Warn("filter membership cycle detected; dropping nodes",
		"cycle", strings.Join(path, " -> "))
}
