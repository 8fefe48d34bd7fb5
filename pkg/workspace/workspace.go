package workspace

import (
	"fmt"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
)

// maxDepth bounds the OnLine parent chain followed when a position is
// derived. Endpoint assignment already rejects cycles, so hitting it means
// the model is corrupt.
const maxDepth = 64

type point struct {
	kind    PointKind
	pos     geom.Vec // PointFree only
	surface SurfaceID
	local   geom.Vec
	line    LineID
	t       float64
}

type surface struct {
	kind     Kind
	name     string
	box      geom.Box
	selected bool
}

type line struct {
	p1, p2   PointID
	branch   Branch
	selected bool
}

// Workspace owns every point, surface and line of a diagram.
//
// Entities refer to each other through generation-checked handles, never
// through pointers, so removing an entity can never leave a dangling
// reference: stale handles are reported as ErrCodeStaleHandle.
//
// A Workspace is not safe for concurrent use.
type Workspace struct {
	points   arena[point]
	surfaces arena[surface]
	lines    arena[line]
	revision uint64
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{}
}

// Revision returns a counter bumped by every mutation. Consumers compare it
// against a stored value to detect edits.
func (w *Workspace) Revision() uint64 { return w.revision }

func (w *Workspace) touch() { w.revision++ }

// Counts returns the number of live surfaces, lines and points.
func (w *Workspace) Counts() (surfaces, lines, points int) {
	return w.surfaces.len(), w.lines.len(), w.points.len()
}

// Surfaces returns every live surface in creation order.
func (w *Workspace) Surfaces() []SurfaceID {
	hs := w.surfaces.handles()
	out := make([]SurfaceID, len(hs))
	for i, h := range hs {
		out[i] = SurfaceID{h}
	}
	return out
}

// Lines returns every live line in creation order.
func (w *Workspace) Lines() []LineID {
	hs := w.lines.handles()
	out := make([]LineID, len(hs))
	for i, h := range hs {
		out[i] = LineID{h}
	}
	return out
}

// Points returns every live point in creation order.
func (w *Workspace) Points() []PointID {
	hs := w.points.handles()
	out := make([]PointID, len(hs))
	for i, h := range hs {
		out[i] = PointID{h}
	}
	return out
}

// Extent returns the smallest box holding every surface and line end. It
// reports false for an empty workspace.
func (w *Workspace) Extent() (geom.Box, bool) {
	var lo, hi geom.Vec
	found := false
	grow := func(p geom.Vec) {
		if !found {
			lo, hi, found = p, p, true
			return
		}
		lo = geom.V(min(lo.X, p.X), min(lo.Y, p.Y))
		hi = geom.V(max(hi.X, p.X), max(hi.Y, p.Y))
	}
	for _, id := range w.Surfaces() {
		sf, ok := w.surfaces.get(id.h)
		if !ok {
			continue
		}
		b := sf.box
		grow(b.TopLeft())
		grow(geom.V(b.Right(), b.Bottom()))
	}
	for _, id := range w.Lines() {
		if a, b, err := w.LineEnds(id); err == nil {
			grow(a)
			grow(b)
		}
	}
	return geom.Box{X: lo.X, Y: lo.Y, W: hi.X - lo.X, H: hi.Y - lo.Y}, found
}

func stale(what string, id fmt.Stringer) error {
	return errors.New(errors.ErrCodeStaleHandle, "%s %s no longer exists", what, id)
}

func (w *Workspace) surface(id SurfaceID) (*surface, error) {
	s, ok := w.surfaces.get(id.h)
	if !ok {
		return nil, stale("surface", id)
	}
	return s, nil
}

func (w *Workspace) line(id LineID) (*line, error) {
	l, ok := w.lines.get(id.h)
	if !ok {
		return nil, stale("line", id)
	}
	return l, nil
}

func (w *Workspace) point(id PointID) (*point, error) {
	p, ok := w.points.get(id.h)
	if !ok {
		return nil, stale("point", id)
	}
	return p, nil
}

func (l *line) end(e End) PointID {
	if e == End1 {
		return l.p1
	}
	return l.p2
}

func (l *line) setEnd(e End, p PointID) {
	if e == End1 {
		l.p1 = p
	} else {
		l.p2 = p
	}
}
