// Package render turns diagrams into images.
//
// The workspace graph is exported to DOT by [graph.ToDOT] and rendered
// in-process with go-graphviz:
//
//	dot := graph.ToDOT(g, graph.DOTOptions{})
//	svg, err := render.SVG(ctx, dot)
//
// [ToPDF] and [ToPNG] convert an SVG with the external rsvg-convert tool
// (from librsvg).
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [Snapshot] draws the workspace itself, with live tokens, as a PNG using
// fogleman/gg:
//
//	png, err := render.Snapshot(ws, frame.Tokens, render.SnapshotOptions{Scale: 2})
//
// [graph.ToDOT]: github.com/matzehuels/flowboard/pkg/graph#ToDOT
package render
