package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Loop is a feedback loop in the node graph: a set of nodes that can reach
// each other along edge direction.
type Loop struct {
	Path    []string `json:"path"` // first node repeated at the end
	Message string   `json:"message"`
}

// FeedbackLoops reports every strongly connected component of the node
// graph with more than one node, plus self-fed nodes.
//
// Loops are not errors. A compute pass breaks them with the cycle guard and
// emits a CIRCULAR_DEPENDENCY diagnostic, so this is a static preview of
// where that will happen. Results are sorted by their first node id.
func (g *Graph) FeedbackLoops() []Loop {
	succ := g.successors()

	var loops []Loop
	for _, scc := range tarjanSCC(g.NodeIDs(), succ) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], succ) {
			continue
		}
		path := loopPath(scc, succ)
		loops = append(loops, Loop{
			Path:    path,
			Message: fmt.Sprintf("feedback loop: %s", strings.Join(path, " -> ")),
		})
	}
	return loops
}

// successors maps node id -> sorted distinct target node ids.
func (g *Graph) successors() map[string][]string {
	succ := make(map[string][]string, len(g.nodes))
	seen := make(map[[2]string]bool)
	for _, id := range g.EdgeIDs() {
		e := g.edges[id]
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			continue
		}
		seen[key] = true
		succ[e.Source] = append(succ[e.Source], e.Target)
	}
	for id := range succ {
		sort.Strings(succ[id])
	}
	return succ
}

func hasSelfLoop(node string, succ map[string][]string) bool {
	for _, n := range succ[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC visits nodes in the given order. Each component comes back
// sorted, and components are ordered by their smallest id.
func tarjanSCC(nodes []string, succ map[string][]string) [][]string {
	var (
		index   int
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var connect func(string)
	connect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succ[v] {
			if _, visited := indices[w]; !visited {
				connect(w)
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
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			connect(n)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}

// loopPath walks from the smallest member along in-component edges until it
// returns to the start. Members off that walk are appended in id order
// before the closing node.
func loopPath(scc []string, succ map[string][]string) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	member := make(map[string]bool, len(scc))
	for _, n := range scc {
		member[n] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, n := range succ[current] {
			if member[n] && !visited[n] {
				next = n
				break
			}
		}
		if next == "" {
			break
		}
		visited[next] = true
		path = append(path, next)
		current = next
	}
	for _, n := range scc {
		if !visited[n] {
			path = append(path, n)
		}
	}
	return append(path, start)
}
