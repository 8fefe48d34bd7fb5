package graph

import (
	"slices"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Graph is an immutable traversal graph built from a workspace snapshot.
//
// Editing the workspace after Build has no effect on the graph: positions
// are captured at build time.
type Graph struct {
	nodes   map[NodeKey]Node
	order   []NodeKey
	edges   []Edge
	out     map[NodeKey][]int
	hubs    map[workspace.SurfaceID][]NodeKey
	hubOut  map[workspace.SurfaceID][]int
	lines   int
	anchors int
}

type anchor struct {
	key NodeKey
	t   float64
	pos geom.Vec
}

// Build constructs the graph for the current state of ws.
//
// For every line, its two endpoints and every line endpoint riding on it
// are sorted by their parameter along the line. Points that share a key
// collapse into the occurrence with the smallest parameter, and each pair of
// consecutive nodes is joined by two opposite edges.
func Build(ws *workspace.Workspace) (*Graph, error) {
	g := &Graph{
		nodes:  make(map[NodeKey]Node),
		out:    make(map[NodeKey][]int),
		hubs:   make(map[workspace.SurfaceID][]NodeKey),
		hubOut: make(map[workspace.SurfaceID][]int),
	}

	lines := ws.Lines()
	riders, err := collectRiders(ws, lines)
	if err != nil {
		return nil, err
	}

	for _, lid := range lines {
		l, err := ws.Line(lid)
		if err != nil {
			return nil, err
		}
		a, b, err := ws.LineEnds(lid)
		if err != nil {
			return nil, err
		}

		var list []anchor
		for i, pid := range [2]workspace.PointID{l.P1, l.P2} {
			p, err := ws.Point(pid)
			if err != nil {
				return nil, err
			}
			t := float64(i)
			list = append(list, anchor{key: keyOf(p), t: t, pos: geom.Lerp(a, b, t)})
		}
		for _, r := range riders[lid] {
			list = append(list, anchor{key: r.key, t: r.t, pos: geom.Lerp(a, b, r.t)})
		}
		g.anchors += len(list)

		slices.SortStableFunc(list, func(x, y anchor) int {
			switch {
			case x.t < y.t:
				return -1
			case x.t > y.t:
				return 1
			}
			return 0
		})

		seen := make(map[NodeKey]bool, len(list))
		uniq := list[:0]
		for _, an := range list {
			if seen[an.key] {
				continue
			}
			seen[an.key] = true
			uniq = append(uniq, an)
		}

		for _, an := range uniq {
			g.addNode(an.key, an.pos)
		}
		for i := 0; i+1 < len(uniq); i++ {
			from, to := uniq[i], uniq[i+1]
			g.addEdge(Edge{From: from.key, To: to.key, Line: lid, FromT: from.t, ToT: to.t, a: a, b: b})
			g.addEdge(Edge{From: to.key, To: from.key, Line: lid, FromT: to.t, ToT: from.t, a: a, b: b})
		}
		g.lines++
	}
	return g, nil
}

// collectRiders finds, for each line, the endpoints of other lines that ride
// on it. Shared points are listed once.
func collectRiders(ws *workspace.Workspace, lines []workspace.LineID) (map[workspace.LineID][]anchor, error) {
	out := make(map[workspace.LineID][]anchor)
	seen := make(map[workspace.PointID]bool)
	for _, lid := range lines {
		l, err := ws.Line(lid)
		if err != nil {
			return nil, err
		}
		for _, pid := range [2]workspace.PointID{l.P1, l.P2} {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			p, err := ws.Point(pid)
			if err != nil {
				return nil, err
			}
			if p.Kind != workspace.PointOnLine {
				continue
			}
			out[p.Line] = append(out[p.Line], anchor{key: keyOf(p), t: p.T})
		}
	}
	return out, nil
}

func (g *Graph) addNode(k NodeKey, pos geom.Vec) {
	if _, ok := g.nodes[k]; ok {
		return
	}
	g.nodes[k] = Node{Key: k, Pos: pos}
	g.order = append(g.order, k)
	if k.Kind == NodeOnSurface {
		g.hubs[k.Surface] = append(g.hubs[k.Surface], k)
	}
}

func (g *Graph) addEdge(e Edge) {
	e.Index = len(g.edges)
	g.edges = append(g.edges, e)
	g.out[e.From] = append(g.out[e.From], e.Index)
	if e.From.Kind == NodeOnSurface {
		g.hubOut[e.From.Surface] = append(g.hubOut[e.From.Surface], e.Index)
	}
}

// =============================================================================
// Queries
// =============================================================================

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the nodes in registration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, k := range g.order {
		out[i] = g.nodes[k]
	}
	return out
}

// Node returns the node with key k.
func (g *Graph) Node(k NodeKey) (Node, bool) {
	n, ok := g.nodes[k]
	return n, ok
}

// Edges returns every edge in registration order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Edge returns the edge with the given index.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Hub returns the nodes anchored to surface s in registration order.
func (g *Graph) Hub(s workspace.SurfaceID) []NodeKey { return slices.Clone(g.hubs[s]) }

// Outgoing returns the edges leaving k in registration order. For a node
// anchored to a surface, every edge leaving any node of that surface is
// included, so a surface acts as a single hub.
func (g *Graph) Outgoing(k NodeKey) []Edge {
	idx := g.out[k]
	if k.Kind == NodeOnSurface {
		idx = g.hubOut[k.Surface]
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// SurfaceEdges returns the edges leaving any node of surface s.
func (g *Graph) SurfaceEdges(s workspace.SurfaceID) []Edge {
	idx := g.hubOut[s]
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// StartEdges returns the union of the edges leaving the given surfaces.
// Each edge appears once, in the order the surfaces are given.
func (g *Graph) StartEdges(starts []workspace.SurfaceID) []Edge {
	seen := make(map[int]bool)
	var out []Edge
	for _, s := range starts {
		for _, j := range g.hubOut[s] {
			if seen[j] {
				continue
			}
			seen[j] = true
			out = append(out, g.edges[j])
		}
	}
	return out
}

// Stats summarizes a graph.
type Stats struct {
	Lines   int
	Anchors int
	Nodes   int
	Edges   int
	Hubs    int
}

// Stats returns summary counts.
func (g *Graph) Stats() Stats {
	return Stats{Lines: g.lines, Anchors: g.anchors, Nodes: len(g.order), Edges: len(g.edges), Hubs: len(g.hubs)}
}
