package workspace

import (
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
)

// Line is a read-only view of a line.
type Line struct {
	ID       LineID
	P1, P2   PointID
	Branch   Branch
	Selected bool
}

// End returns the endpoint handle for e.
func (l Line) End(e End) PointID {
	if e == End1 {
		return l.P1
	}
	return l.P2
}

// AddLine creates a line between two existing points. The same point may
// be shared by any number of lines.
func (w *Workspace) AddLine(p1, p2 PointID) (LineID, error) {
	if _, err := w.point(p1); err != nil {
		return LineID{}, err
	}
	if _, err := w.point(p2); err != nil {
		return LineID{}, err
	}
	w.touch()
	return LineID{w.lines.insert(line{p1: p1, p2: p2})}, nil
}

// Line returns a read-only view of a line.
func (w *Workspace) Line(id LineID) (Line, error) {
	l, err := w.line(id)
	if err != nil {
		return Line{}, err
	}
	return Line{ID: id, P1: l.p1, P2: l.p2, Branch: l.branch, Selected: l.selected}, nil
}

// LineEnds returns the current world positions of both endpoints.
func (w *Workspace) LineEnds(id LineID) (a, b geom.Vec, err error) {
	return w.lineEnds(id, 0)
}

func (w *Workspace) lineEnds(id LineID, depth int) (a, b geom.Vec, err error) {
	l, err := w.line(id)
	if err != nil {
		return a, b, err
	}
	if a, err = w.position(l.p1, depth); err != nil {
		return a, b, err
	}
	b, err = w.position(l.p2, depth)
	return a, b, err
}

// SetEndpoint replaces one endpoint of a line. Points that ride on this
// line, directly or through other lines, cannot become its endpoint.
// The previous endpoint is released if nothing else refers to it.
func (w *Workspace) SetEndpoint(id LineID, e End, p PointID) error {
	l, err := w.line(id)
	if err != nil {
		return err
	}
	np, err := w.point(p)
	if err != nil {
		return err
	}
	if np.kind == PointOnLine && w.lineDependsOn(np.line, id) {
		return errors.New(errors.ErrCodeCyclicReference, "point %s depends on line %s", p, id)
	}
	old := l.end(e)
	l.setEnd(e, p)
	w.touch()
	if old != p {
		w.ReleasePoint(old)
	}
	return nil
}

// lineDependsOn reports whether line a's position derives from line b,
// that is a == b or an endpoint of a rides on a line depending on b.
func (w *Workspace) lineDependsOn(a, b LineID) bool {
	seen := make(map[LineID]bool)
	var walk func(LineID) bool
	walk = func(cur LineID) bool {
		if cur == b {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		l, ok := w.lines.get(cur.h)
		if !ok {
			return false
		}
		for _, pid := range [2]PointID{l.p1, l.p2} {
			if p, ok := w.points.get(pid.h); ok && p.kind == PointOnLine && walk(p.line) {
				return true
			}
		}
		return false
	}
	return walk(a)
}

// DetachEndpoint gives one end of a line its own free point at the current
// position, leaving other lines that shared the old point untouched.
func (w *Workspace) DetachEndpoint(id LineID, e End) (PointID, error) {
	l, err := w.line(id)
	if err != nil {
		return PointID{}, err
	}
	old := l.end(e)
	p, err := w.point(old)
	if err != nil {
		return PointID{}, err
	}
	if p.kind == PointFree && !w.sharedEndpoint(old, id) {
		return old, nil
	}
	pos, err := w.Position(old)
	if err != nil {
		return PointID{}, err
	}
	np := w.NewFreePoint(pos.X, pos.Y)
	l.setEnd(e, np)
	w.ReleasePoint(old)
	w.touch()
	return np, nil
}

func (w *Workspace) sharedEndpoint(p PointID, except LineID) bool {
	for _, lid := range w.Lines() {
		if lid == except {
			continue
		}
		l, _ := w.lines.get(lid.h)
		if l.p1 == p || l.p2 == p {
			return true
		}
	}
	return false
}

// RemoveLine deletes a line. Points riding on it become free points at
// their last position. The line's own endpoints are released once no other
// line refers to them.
func (w *Workspace) RemoveLine(id LineID) error {
	l, err := w.line(id)
	if err != nil {
		return err
	}

	type frozen struct {
		id PointID
		at geom.Vec
	}
	var detach []frozen
	for _, h := range w.points.handles() {
		p, _ := w.points.get(h)
		if p.kind == PointOnLine && p.line == id {
			pid := PointID{h}
			at, err := w.Position(pid)
			if err != nil {
				return err
			}
			detach = append(detach, frozen{pid, at})
		}
	}
	for _, f := range detach {
		w.freeze(f.id, f.at)
	}

	p1, p2 := l.p1, l.p2
	w.lines.remove(id.h)
	w.ReleasePoint(p1)
	w.ReleasePoint(p2)
	w.touch()
	return nil
}

// IsLineAttachedTo reports whether either endpoint of the line is a point
// attached to the surface.
func (w *Workspace) IsLineAttachedTo(id LineID, s SurfaceID) bool {
	l, ok := w.lines.get(id.h)
	if !ok {
		return false
	}
	for _, pid := range [2]PointID{l.p1, l.p2} {
		if p, ok := w.points.get(pid.h); ok && p.kind == PointOnSurface && p.surface == s {
			return true
		}
	}
	return false
}

// LinesAttachedTo returns the lines with at least one endpoint on the
// surface, in creation order.
func (w *Workspace) LinesAttachedTo(s SurfaceID) []LineID {
	var out []LineID
	for _, lid := range w.Lines() {
		if w.IsLineAttachedTo(lid, s) {
			out = append(out, lid)
		}
	}
	return out
}

// LinesUsing returns the lines that have p as an endpoint.
func (w *Workspace) LinesUsing(p PointID) []LineID {
	var out []LineID
	for _, lid := range w.Lines() {
		l, _ := w.lines.get(lid.h)
		if l.p1 == p || l.p2 == p {
			out = append(out, lid)
		}
	}
	return out
}

// FindLineEndpoint returns the first line and end using point p.
func (w *Workspace) FindLineEndpoint(p PointID) (LineID, End, bool) {
	for _, lid := range w.Lines() {
		l, _ := w.lines.get(lid.h)
		switch p {
		case l.p1:
			return lid, End1, true
		case l.p2:
			return lid, End2, true
		}
	}
	return LineID{}, End1, false
}
