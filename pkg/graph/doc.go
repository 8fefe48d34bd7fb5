// Package graph builds the traversal graph the flow simulator runs on.
//
// # Overview
//
// The editable model in pkg/workspace stores points that drift numerically:
// two lines ending "at the same place" on a surface rarely share exactly the
// same offset. Build merges such points into one node by quantizing their
// coordinates, then turns each line into directed edges between consecutive
// nodes along it.
//
// # Node Keys
//
// A [NodeKey] is derived from the point variant:
//
//	free point     → the point handle itself
//	on a line      → (line, round(t / 1e-4))
//	on a surface   → (surface, round(lx / 1), round(ly / 1))
//
// Nodes anchored to the same surface form a hub: [Graph.Outgoing] on any of
// them returns the edges leaving every node of that surface, so lines that
// touch a shape at different points still connect through it.
//
// # Edges
//
// Each line is split at the endpoints of other lines riding on it. Every
// piece yields two edges with swapped endpoints, each carrying the line
// parameters (FromT, ToT) so positions can be interpolated later with
// [Edge.PointAt]. Edges are numbered in registration order, which is the
// order the simulator uses when a path branches.
//
// # Export
//
// [ToDOT] writes Graphviz DOT with one cluster per surface, and
// [WriteJSON] writes a node-link JSON document:
//
//	g, _ := graph.Build(ws)
//	dot := graph.ToDOT(g, graph.DOTOptions{})
//	graph.WriteJSON(g, os.Stdout)
//
// # Concurrency
//
// A built Graph is immutable and safe for concurrent reads.
package graph
