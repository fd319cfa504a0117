package query

import (
	"math"
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const (
	// MaxRingEdges caps ring and suspicious network responses.
	MaxRingEdges = 500
	MaxHops      = 4
)

const unreachable = math.MaxInt32

// distances is an undirected multi-source BFS.
func distances(g *domain.Graph, sources []string, limit int) map[string]int {
	dist := make(map[string]int, len(sources))
	queue := make([]string, 0, len(sources))
	for _, s := range sources {
		if _, ok := dist[s]; ok {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= limit {
			continue
		}
		for _, e := range g.Incident(cur) {
			next := e.Other(cur)
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

func distOr(d map[string]int, id string) int {
	if v, ok := d[id]; ok {
		return v
	}
	return unreachable
}

// walkEdges returns the relationships lying on a walk of at most hops steps that
// starts at one of roots and ends at one of targets, ordered by distance from the roots.
func walkEdges(g *domain.Graph, roots, targets []string, hops int) []*domain.Edge {
	fromRoot := distances(g, roots, hops)
	toTarget := distances(g, targets, hops)

	type ranked struct {
		e    *domain.Edge
		rank int
		idx  int
	}
	var picked []ranked
	for i, e := range g.Edges {
		du, dv := distOr(fromRoot, e.From), distOr(fromRoot, e.To)
		tu, tv := distOr(toTarget, e.From), distOr(toTarget, e.To)
		forward, backward := unreachable, unreachable
		if du != unreachable && tv != unreachable {
			forward = du + 1 + tv
		}
		if dv != unreachable && tu != unreachable {
			backward = dv + 1 + tu
		}
		if min(forward, backward) > hops {
			continue
		}
		picked = append(picked, ranked{e: e, rank: min(du, dv), idx: i})
	}
	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].rank != picked[j].rank {
			return picked[i].rank < picked[j].rank
		}
		return picked[i].idx < picked[j].idx
	})
	out := make([]*domain.Edge, len(picked))
	for i, p := range picked {
		out[i] = p.e
	}
	return out
}

// trailEdges returns the relationships lying on a trail of 1..hops steps from root
// to one of targets. A trail never uses a relationship twice, so an edge that only
// reaches a target by doubling back is left out. Ordered by distance from root.
func trailEdges(g *domain.Graph, root string, targets []string, hops int) []*domain.Edge {
	fromRoot := distances(g, []string{root}, hops)
	toTarget := distances(g, targets, hops)
	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	onTrail := map[*domain.Edge]bool{}
	used := map[*domain.Edge]bool{}
	var path []*domain.Edge
	var walk func(cur string, depth int)
	walk = func(cur string, depth int) {
		if depth > 0 && isTarget[cur] {
			for _, e := range path {
				onTrail[e] = true
			}
		}
		if depth == hops {
			return
		}
		for _, e := range g.Incident(cur) {
			next := e.Other(cur)
			// no target left within the remaining steps
			if used[e] || distOr(toTarget, next) > hops-depth-1 {
				continue
			}
			used[e] = true
			path = append(path, e)
			walk(next, depth+1)
			path = path[:len(path)-1]
			used[e] = false
		}
	}
	walk(root, 0)

	type ranked struct {
		e    *domain.Edge
		rank int
		idx  int
	}
	var picked []ranked
	for i, e := range g.Edges {
		if onTrail[e] {
			picked = append(picked, ranked{e: e, rank: min(distOr(fromRoot, e.From), distOr(fromRoot, e.To)), idx: i})
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].rank != picked[j].rank {
			return picked[i].rank < picked[j].rank
		}
		return picked[i].idx < picked[j].idx
	})
	out := make([]*domain.Edge, len(picked))
	for i, p := range picked {
		out[i] = p.e
	}
	return out
}

// ringEdges returns every relationship within hops of the sources.
func ringEdges(g *domain.Graph, sources []string, hops int) []*domain.Edge {
	src := map[string]bool{}
	for _, s := range sources {
		src[s] = true
	}
	var others []string
	for id := range g.Nodes {
		if !src[id] {
			others = append(others, id)
		}
	}
	return walkEdges(g, sources, others, hops)
}

// buildSubgraph renders edges (capped at limit when limit > 0) and their endpoints.
func buildSubgraph(g *domain.Graph, edges []*domain.Edge, limit int, always ...string) *Subgraph {
	sg := &Subgraph{Nodes: []SubgraphNode{}, Edges: []SubgraphEdge{}}
	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
		sg.Truncated = true
	}

	seen := map[string]bool{}
	addNode := func(id string) {
		if seen[id] {
			return
		}
		n, ok := g.Nodes[id]
		if !ok {
			return
		}
		seen[id] = true
		sg.Nodes = append(sg.Nodes, renderNode(n))
	}
	for _, id := range always {
		addNode(id)
	}
	for _, e := range edges {
		addNode(e.From)
		addNode(e.To)
		sg.Edges = append(sg.Edges, SubgraphEdge{Source: e.From, Target: e.To, Type: e.Type, Properties: e.Props})
	}
	return sg
}

func renderNode(n *domain.Node) SubgraphNode {
	return SubgraphNode{
		ID:           n.ID,
		Labels:       n.Labels,
		DisplayLabel: n.DisplayLabel(),
		Name:         n.Name(),
		Status:       n.Status(),
		Score:        n.Int(domain.PropSuspicionScore),
		Properties:   n.Props,
	}
}

// Reachable lists the nodes within hops of id, nearest first and by id within a ring.
func Reachable(g *domain.Graph, id string, hops int) []string {
	dist := distances(g, []string{id}, hops)
	out := make([]string, 0, len(dist))
	for n := range dist {
		if n != id {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if dist[out[i]] != dist[out[j]] {
			return dist[out[i]] < dist[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
