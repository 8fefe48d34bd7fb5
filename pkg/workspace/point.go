package workspace

import (
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
)

// Point is a read-only view of a point. Only the fields belonging to the
// point's Kind are meaningful.
type Point struct {
	ID      PointID
	Kind    PointKind
	Free    geom.Vec  // PointFree: world position
	Surface SurfaceID // PointOnSurface: owning surface
	Local   geom.Vec  // PointOnSurface: offset from the surface's top-left corner
	Line    LineID    // PointOnLine: parent line
	T       float64   // PointOnLine: parameter along the parent line
}

// NewFreePoint creates a point at a fixed world position.
func (w *Workspace) NewFreePoint(x, y float64) PointID {
	w.touch()
	return PointID{w.points.insert(point{kind: PointFree, pos: geom.V(x, y)})}
}

// NewSurfacePoint creates a point attached to a surface at a local offset
// from its top-left corner. The offset is stored as given.
func (w *Workspace) NewSurfacePoint(s SurfaceID, lx, ly float64) (PointID, error) {
	if _, err := w.surface(s); err != nil {
		return PointID{}, err
	}
	w.touch()
	return PointID{w.points.insert(point{kind: PointOnSurface, surface: s, local: geom.V(lx, ly)})}, nil
}

// NewLinePoint creates a point riding on a line at parameter t, clamped
// to [0, 1].
func (w *Workspace) NewLinePoint(l LineID, t float64) (PointID, error) {
	if _, err := w.line(l); err != nil {
		return PointID{}, err
	}
	w.touch()
	return PointID{w.points.insert(point{kind: PointOnLine, line: l, t: geom.Clamp(t, 0, 1)})}, nil
}

// Point returns a read-only view of a point.
func (w *Workspace) Point(id PointID) (Point, error) {
	p, err := w.point(id)
	if err != nil {
		return Point{}, err
	}
	return Point{
		ID:      id,
		Kind:    p.kind,
		Free:    p.pos,
		Surface: p.surface,
		Local:   p.local,
		Line:    p.line,
		T:       p.t,
	}, nil
}

// Position returns the current world position of a point. Positions of
// attached points are derived from their owner on every call.
func (w *Workspace) Position(id PointID) (geom.Vec, error) {
	return w.position(id, 0)
}

func (w *Workspace) position(id PointID, depth int) (geom.Vec, error) {
	if depth > maxDepth {
		return geom.Vec{}, errors.New(errors.ErrCodeCyclicReference, "point %s is part of a reference cycle", id)
	}
	p, err := w.point(id)
	if err != nil {
		return geom.Vec{}, err
	}
	switch p.kind {
	case PointOnSurface:
		s, err := w.surface(p.surface)
		if err != nil {
			return geom.Vec{}, err
		}
		return s.box.TopLeft().Add(p.local), nil
	case PointOnLine:
		a, b, err := w.lineEnds(p.line, depth+1)
		if err != nil {
			return geom.Vec{}, err
		}
		return geom.Lerp(a, b, p.t), nil
	default:
		return p.pos, nil
	}
}

// MovePoint moves a point toward a world position according to its
// variant. A free point moves exactly; a surface point updates its local
// offset, clamped to the surface bounds; a line point is reprojected onto
// its parent line and only its parameter changes.
func (w *Workspace) MovePoint(id PointID, x, y float64) error {
	p, err := w.point(id)
	if err != nil {
		return err
	}
	q := geom.V(x, y)
	switch p.kind {
	case PointOnSurface:
		s, err := w.surface(p.surface)
		if err != nil {
			return err
		}
		p.local = geom.V(
			geom.Clamp(q.X-s.box.X, 0, s.box.W),
			geom.Clamp(q.Y-s.box.Y, 0, s.box.H),
		)
	case PointOnLine:
		a, b, err := w.lineEnds(p.line, 1)
		if err != nil {
			return err
		}
		p.t = geom.ProjectOntoSegment(q, a, b).T
	default:
		p.pos = q
	}
	w.touch()
	return nil
}

// freeze converts a point into a free point at its current position.
func (w *Workspace) freeze(id PointID, at geom.Vec) {
	if p, ok := w.points.get(id.h); ok {
		*p = point{kind: PointFree, pos: at}
	}
}

// referenced reports whether any live line uses the point as an endpoint.
func (w *Workspace) referenced(id PointID) bool {
	for _, h := range w.lines.handles() {
		l, _ := w.lines.get(h)
		if l.p1 == id || l.p2 == id {
			return true
		}
	}
	return false
}

// ReleasePoint discards a point no line refers to. It is a no-op for
// points still used as an endpoint.
func (w *Workspace) ReleasePoint(id PointID) {
	if w.referenced(id) {
		return
	}
	if w.points.remove(id.h) {
		w.touch()
	}
}
