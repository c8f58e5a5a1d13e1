package compiler

import (
	"slices"
)

// Item is one requirement as it appears in a source document's category:
// its identifier plus the title used for equivalence.
type Item struct {
	ID    string
	Title string
}

// OrderResult is the outcome of MergeOrder.
type OrderResult struct {
	// IDs lists every distinct input identifier exactly once.
	IDs []string

	// Degenerate is set when the pairwise precedence constraints were
	// cyclic and the first-seen fallback order was used instead.
	Degenerate bool

	// Cycle is one offending loop of group keys when Degenerate is set.
	Cycle []string
}

// MergeOrder merges several orderings of requirement identifiers into one
// sequence that respects every source ordering wherever they agree.
//
// Identifiers sharing a title form an equivalence group keyed by the first
// identifier seen with that title; groups are ordered as units and expanded
// into their members in first-appearance order. For each source, every
// earlier group must precede every later group. The constraints are solved
// with Kahn's algorithm, always taking the lexicographically smallest ready
// group. When the constraints are cyclic, groups keep the order in which
// they were first seen across the sources.
func MergeOrder(sources [][]Item) OrderResult {
	groupOf := make(map[string]string)
	byTitle := make(map[string]string)
	members := make(map[string][]string)
	var groups []string

	for _, items := range sources {
		for _, it := range items {
			if _, ok := groupOf[it.ID]; ok {
				continue
			}
			key, ok := byTitle[it.Title]
			if !ok {
				key = it.ID
				byTitle[it.Title] = key
				groups = append(groups, key)
			}
			groupOf[it.ID] = key
			members[key] = append(members[key], it.ID)
		}
	}

	graph := make(precedenceGraph)
	inDegree := make(map[string]int, len(groups))
	for _, g := range groups {
		inDegree[g] = 0
	}
	for _, items := range sources {
		seq := make([]string, len(items))
		for i, it := range items {
			seq[i] = groupOf[it.ID]
		}
		for i := range seq {
			for j := i + 1; j < len(seq); j++ {
				if seq[i] == seq[j] {
					continue
				}
				if graph.addEdge(seq[i], seq[j]) {
					inDegree[seq[j]]++
				}
			}
		}
	}

	var ready []string
	for _, g := range groups {
		if inDegree[g] == 0 {
			ready = append(ready, g)
		}
	}
	slices.Sort(ready)

	ordered := make([]string, 0, len(groups))
	for len(ready) > 0 {
		g := ready[0]
		ready = ready[1:]
		ordered = append(ordered, g)
		for _, next := range graph[g] {
			inDegree[next]--
			if inDegree[next] == 0 {
				i, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, i, next)
			}
		}
	}

	var result OrderResult
	if len(ordered) < len(groups) {
		result.Degenerate = true
		result.Cycle = findCycle(graph)
		ordered = groups
	}

	result.IDs = make([]string, 0, len(groupOf))
	for _, g := range ordered {
		result.IDs = append(result.IDs, members[g]...)
	}
	return result
}
