package graph_test

import (
	"fmt"

	"github.com/matzehuels/flowboard/pkg/graph"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

func ExampleBuild() {
	ws := workspace.New()
	start := ws.AddSurface(workspace.KindStart, 0, 0, 60, 60, "start")
	step := ws.AddSurface(workspace.KindRectangle, 200, 0, 100, 60, "step")

	from, _ := ws.NewSurfacePoint(start, 60, 30)
	to, _ := ws.NewSurfacePoint(step, 0, 30)
	ws.AddLine(from, to)

	g, err := graph.Build(ws)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, e := range g.StartEdges([]workspace.SurfaceID{start}) {
		fmt.Printf("%s -> %s (%.0f units)\n", e.From, e.To, e.Length())
	}
	fmt.Println("nodes:", g.NodeCount(), "edges:", g.EdgeCount())
	// Output:
	// s0(60,30) -> s1(0,30) (140 units)
	// nodes: 2 edges: 2
}
