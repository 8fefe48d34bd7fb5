package graph

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/flowboard/pkg/workspace"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Labels maps surfaces to display names used as cluster labels.
	// Surfaces without an entry are labeled by handle.
	Labels map[workspace.SurfaceID]string

	// Starts are highlighted.
	Starts []workspace.SurfaceID

	// Detailed adds world positions to node labels.
	Detailed bool
}

// ToDOT converts the graph to Graphviz DOT format. Nodes anchored to the
// same surface are grouped into a cluster. Each pair of opposite edges is
// written once as a bidirectional edge.
func ToDOT(g *Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3];\n")
	buf.WriteString("  edge [dir=both, arrowsize=0.5];\n")
	buf.WriteString("\n")

	starts := make(map[workspace.SurfaceID]bool, len(opts.Starts))
	for _, s := range opts.Starts {
		starts[s] = true
	}

	clustered := make(map[workspace.SurfaceID]bool)
	for _, k := range g.order {
		if k.Kind != NodeOnSurface || clustered[k.Surface] {
			continue
		}
		clustered[k.Surface] = true
		label := opts.Labels[k.Surface]
		if label == "" {
			label = k.Surface.String()
		}
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+k.Surface.String())
		fmt.Fprintf(&buf, "    label=%q;\n", label)
		if starts[k.Surface] {
			buf.WriteString("    style=filled; fillcolor=\"#e3f4e8\";\n")
		}
		for _, hk := range g.hubs[k.Surface] {
			fmt.Fprintf(&buf, "    %q [%s];\n", hk.String(), strings.Join(g.nodeAttrs(hk, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	for _, k := range g.order {
		if k.Kind == NodeOnSurface {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", k.String(), strings.Join(g.nodeAttrs(k, opts), ", "))
	}

	buf.WriteString("\n")
	for i := 0; i+1 < len(g.edges); i += 2 {
		e := g.edges[i]
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From.String(), e.To.String(), e.Line.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Graph) nodeAttrs(k NodeKey, opts DOTOptions) []string {
	label := k.String()
	if opts.Detailed {
		p := g.nodes[k].Pos
		label = fmt.Sprintf("%s\n(%.0f, %.0f)", label, p.X, p.Y)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch k.Kind {
	case NodeOnSurface:
		attrs = append(attrs, "shape=box")
	case NodeOnLine:
		attrs = append(attrs, "shape=point", "width=0.12")
	}
	return attrs
}
