package graph

import (
	"fmt"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// Quantization steps used to merge coincident points.
const (
	// LineStep is the grid for the parameter of points riding on a line.
	LineStep = 1e-4

	// SurfaceStep is the grid, in world units, for local offsets of points
	// attached to a surface.
	SurfaceStep = 1.0
)

// =============================================================================
// NodeKey - point equivalence
// =============================================================================

// NodeKind tells which fields of a NodeKey are meaningful.
type NodeKind uint8

const (
	NodeFree NodeKind = iota
	NodeOnLine
	NodeOnSurface
)

func (k NodeKind) String() string {
	switch k {
	case NodeFree:
		return "free"
	case NodeOnLine:
		return "line"
	case NodeOnSurface:
		return "surface"
	}
	return "unknown"
}

// NodeKey identifies a graph node. Two points with equal keys are the same
// node. Keys are comparable and usable as map keys.
type NodeKey struct {
	Kind NodeKind

	Point workspace.PointID // NodeFree: the point itself

	Line workspace.LineID // NodeOnLine: parent line
	T    int64            // NodeOnLine: quantized parameter

	Surface workspace.SurfaceID // NodeOnSurface: owning surface
	LX, LY  int64               // NodeOnSurface: quantized local offset
}

func (k NodeKey) String() string {
	switch k.Kind {
	case NodeOnLine:
		return fmt.Sprintf("%s@%d", k.Line, k.T)
	case NodeOnSurface:
		return fmt.Sprintf("%s(%d,%d)", k.Surface, k.LX, k.LY)
	default:
		return k.Point.String()
	}
}

// KeyFor returns the node key of a point.
func KeyFor(ws *workspace.Workspace, id workspace.PointID) (NodeKey, error) {
	p, err := ws.Point(id)
	if err != nil {
		return NodeKey{}, err
	}
	return keyOf(p), nil
}

func keyOf(p workspace.Point) NodeKey {
	switch p.Kind {
	case workspace.PointOnLine:
		return NodeKey{Kind: NodeOnLine, Line: p.Line, T: geom.Quantize(p.T, LineStep)}
	case workspace.PointOnSurface:
		return NodeKey{
			Kind:    NodeOnSurface,
			Surface: p.Surface,
			LX:      geom.Quantize(p.Local.X, SurfaceStep),
			LY:      geom.Quantize(p.Local.Y, SurfaceStep),
		}
	default:
		return NodeKey{Kind: NodeFree, Point: p.ID}
	}
}

// =============================================================================
// Node and Edge
// =============================================================================

// Node is a merged point of the graph.
type Node struct {
	Key NodeKey
	Pos geom.Vec // World position when the graph was built
}

// Edge is one direction of a line segment between two consecutive nodes on
// a line. Each segment yields two edges with swapped endpoints.
type Edge struct {
	Index      int // Registration order
	From, To   NodeKey
	Line       workspace.LineID
	FromT, ToT float64

	a, b geom.Vec // Line endpoints at build time
}

// PointAt returns the world position at progress in [0, 1] along the edge.
func (e Edge) PointAt(progress float64) geom.Vec {
	return geom.Lerp(e.a, e.b, e.FromT+(e.ToT-e.FromT)*progress)
}

// Start returns the world position of the From node.
func (e Edge) Start() geom.Vec { return e.PointAt(0) }

// End returns the world position of the To node.
func (e Edge) End() geom.Vec { return e.PointAt(1) }

// Length returns the world length of the edge.
func (e Edge) Length() float64 {
	d := e.ToT - e.FromT
	if d < 0 {
		d = -d
	}
	return e.a.Dist(e.b) * d
}
