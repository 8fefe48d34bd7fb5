package workspace

import (
	"math"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
)

// Surface is a read-only view of a surface.
type Surface struct {
	ID       SurfaceID
	Kind     Kind
	Name     string
	Box      geom.Box
	Selected bool
}

// Bounds returns the surface's bounding box.
func (s Surface) Bounds() geom.Box { return s.Box }

// AddSurface places a new surface with its top-left corner at (x, y).
// Width and height are raised to MinSize.
func (w *Workspace) AddSurface(kind Kind, x, y, width, height float64, name string) SurfaceID {
	w.touch()
	return SurfaceID{w.surfaces.insert(surface{
		kind: kind,
		name: name,
		box:  geom.Box{X: x, Y: y, W: math.Max(MinSize, width), H: math.Max(MinSize, height)},
	})}
}

// Surface returns a read-only view of a surface.
func (w *Workspace) Surface(id SurfaceID) (Surface, error) {
	s, err := w.surface(id)
	if err != nil {
		return Surface{}, err
	}
	return Surface{ID: id, Kind: s.kind, Name: s.name, Box: s.box, Selected: s.selected}, nil
}

// TranslateSurface moves a surface by (dx, dy). Attached points follow
// because their positions are derived from the surface.
func (w *Workspace) TranslateSurface(id SurfaceID, dx, dy float64) error {
	s, err := w.surface(id)
	if err != nil {
		return err
	}
	s.box.X += dx
	s.box.Y += dy
	w.touch()
	return nil
}

// ResizeSurface changes the size of a surface, keeping its top-left corner.
// Sizes are floored at MinSize. Images cannot be resized.
//
// Local offsets of attached points are left unchanged, so a point can end
// up outside a shrunken surface until it is moved again.
func (w *Workspace) ResizeSurface(id SurfaceID, width, height float64) error {
	s, err := w.surface(id)
	if err != nil {
		return err
	}
	if !s.kind.Resizable() {
		return errors.New(errors.ErrCodeNotResizable, "%s %s cannot be resized", s.kind, id)
	}
	s.box.W = math.Max(MinSize, width)
	s.box.H = math.Max(MinSize, height)
	w.touch()
	return nil
}

// RenameSurface sets the display name of a surface.
func (w *Workspace) RenameSurface(id SurfaceID, name string) error {
	s, err := w.surface(id)
	if err != nil {
		return err
	}
	s.name = name
	w.touch()
	return nil
}

// RemoveSurface deletes a surface. Every point attached to it becomes a
// free point at its last position, and lines that were attached lose their
// branch tag.
func (w *Workspace) RemoveSurface(id SurfaceID) error {
	s, err := w.surface(id)
	if err != nil {
		return err
	}

	for _, lid := range w.Lines() {
		if w.IsLineAttachedTo(lid, id) {
			l, _ := w.lines.get(lid.h)
			l.branch = BranchNone
		}
	}

	for _, h := range w.points.handles() {
		p, _ := w.points.get(h)
		if p.kind == PointOnSurface && p.surface == id {
			w.freeze(PointID{h}, s.box.TopLeft().Add(p.local))
		}
	}

	w.surfaces.remove(id.h)
	w.touch()
	return nil
}

// SurfacesAt returns the surfaces whose bounds contain the world position,
// topmost (most recently created) first.
func (w *Workspace) SurfacesAt(x, y float64) []SurfaceID {
	q := geom.V(x, y)
	var out []SurfaceID
	ids := w.Surfaces()
	for i := len(ids) - 1; i >= 0; i-- {
		s, _ := w.surfaces.get(ids[i].h)
		if s.box.Contains(q) {
			out = append(out, ids[i])
		}
	}
	return out
}

// FindSurface returns the first surface with the given name.
func (w *Workspace) FindSurface(name string) (SurfaceID, bool) {
	for _, id := range w.Surfaces() {
		s, _ := w.surfaces.get(id.h)
		if s.name == name {
			return id, true
		}
	}
	return SurfaceID{}, false
}
