package compiler

import (
	"slices"
	"strings"
)

// precedenceGraph maps a group key to the sorted, distinct group keys that
// must follow it.
type precedenceGraph map[string][]string

// addEdge records from -> to once. Reports whether the edge is new.
func (g precedenceGraph) addEdge(from, to string) bool {
	succ := g[from]
	i, found := slices.BinarySearch(succ, to)
	if found {
		return false
	}
	g[from] = slices.Insert(succ, i, to)
	return true
}

// nodes returns every node with outgoing or incoming edges, sorted.
func (g precedenceGraph) nodes() []string {
	seen := make(map[string]bool)
	var out []string
	for from, succ := range g {
		for _, n := range append([]string{from}, succ...) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	slices.Sort(out)
	return out
}

// findCycle returns one cycle in g as a closed path ("a", "b", "a"), or nil
// when g is acyclic. The strongly connected components come from Tarjan's
// algorithm over nodes in sorted order, so the reported path is stable
// across runs.
func findCycle(g precedenceGraph) []string {
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 {
			return reconstructCyclePath(scc, g)
		}
	}
	return nil
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(g precedenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside scc from its smallest member until
// it returns to the start. Every node of an SCC reaches every other, so a
// depth-first walk restricted to the component always closes the loop.
func reconstructCyclePath(scc []string, g precedenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}
	member := make(map[string]bool, len(scc))
	for _, n := range scc {
		member[n] = true
	}

	start := scc[0]
	visited := map[string]bool{}
	var path []string
	var walk func(string) bool
	walk = func(v string) bool {
		path = append(path, v)
		visited[v] = true
		for _, w := range g[v] {
			if w == start {
				path = append(path, w)
				return true
			}
			if member[w] && !visited[w] && walk(w) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	walk(start)
	return path
}

func formatCycle(path []string) string {
	return strings.Join(path, " -> ")
}
