package snap

import (
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Target identifies what a snap candidate would attach to.
type Target uint8

const (
	// TargetPoint reuses an existing line endpoint.
	TargetPoint Target = iota
	// TargetLine attaches to a line at parameter T.
	TargetLine
	// TargetSurface attaches to a surface at a local offset.
	TargetSurface
)

func (t Target) String() string {
	switch t {
	case TargetPoint:
		return "point"
	case TargetLine:
		return "line"
	case TargetSurface:
		return "surface"
	}
	return "unknown"
}

// Candidate is a proposed snap target. It is a plain value: nothing is
// created in the workspace until [Candidate.Materialize] is called.
type Candidate struct {
	Target   Target
	Pos      geom.Vec // World position the query would snap to
	Distance float64  // Distance from the query

	Point   workspace.PointID   // TargetPoint
	Line    workspace.LineID    // TargetLine
	T       float64             // TargetLine
	Surface workspace.SurfaceID // TargetSurface
	Local   geom.Vec            // TargetSurface
}

// Materialize returns the point the candidate stands for, creating it if
// needed. For TargetPoint the existing point is returned so that it ends up
// shared between lines.
func (c Candidate) Materialize(ws *workspace.Workspace) (workspace.PointID, error) {
	switch c.Target {
	case TargetLine:
		return ws.NewLinePoint(c.Line, c.T)
	case TargetSurface:
		return ws.NewSurfacePoint(c.Surface, c.Local.X, c.Local.Y)
	default:
		if _, err := ws.Point(c.Point); err != nil {
			return workspace.PointID{}, err
		}
		return c.Point, nil
	}
}

// Preview is the transient marker shown where a drag would snap.
type Preview struct {
	visible bool
	pos     geom.Vec
	target  Target
}

// Show places the marker at the candidate's position.
func (p *Preview) Show(c Candidate) {
	p.visible = true
	p.pos = c.Pos
	p.target = c.Target
}

// Hide removes the marker.
func (p *Preview) Hide() { p.visible = false }

// Visible reports whether the marker is shown.
func (p *Preview) Visible() bool { return p.visible }

// X returns the marker's world x coordinate.
func (p *Preview) X() float64 { return p.pos.X }

// Y returns the marker's world y coordinate.
func (p *Preview) Y() float64 { return p.pos.Y }

// Target returns the kind of target the marker points at.
func (p *Preview) Target() Target { return p.target }
