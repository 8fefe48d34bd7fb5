package workspace

import "github.com/matzehuels/flowboard/pkg/errors"

// NextBranch returns the tag a new line leaving the decision surface should
// get: True while no attached line holds True, then False while no attached
// line holds False. BranchNone means both are taken and the caller has to
// choose. Non-decision surfaces always yield BranchNone.
func (w *Workspace) NextBranch(decision SurfaceID) Branch {
	s, ok := w.surfaces.get(decision.h)
	if !ok || !s.kind.IsDecision() {
		return BranchNone
	}
	var hasTrue, hasFalse bool
	for _, lid := range w.LinesAttachedTo(decision) {
		l, _ := w.lines.get(lid.h)
		switch l.branch {
		case BranchTrue:
			hasTrue = true
		case BranchFalse:
			hasFalse = true
		}
	}
	switch {
	case !hasTrue:
		return BranchTrue
	case !hasFalse:
		return BranchFalse
	}
	return BranchNone
}

// AssignBranch tags a line attached to a decision surface. Any other line
// attached to the same surface that already holds the tag is reset to
// BranchNone, so each surface has at most one True and one False line.
func (w *Workspace) AssignBranch(decision SurfaceID, id LineID, b Branch) error {
	s, err := w.surface(decision)
	if err != nil {
		return err
	}
	l, err := w.line(id)
	if err != nil {
		return err
	}
	if !s.kind.IsDecision() {
		return errors.New(errors.ErrCodeInvalidInput, "%s %s is not a decision", s.kind, decision)
	}
	if !w.IsLineAttachedTo(id, decision) {
		return errors.New(errors.ErrCodeInvalidInput, "line %s is not attached to %s", id, decision)
	}
	if b != BranchNone {
		for _, other := range w.LinesAttachedTo(decision) {
			if other == id {
				continue
			}
			if ol, _ := w.lines.get(other.h); ol.branch == b {
				ol.branch = BranchNone
			}
		}
	}
	l.branch = b
	w.touch()
	return nil
}

// DecisionOf returns the first decision surface the line is attached to.
func (w *Workspace) DecisionOf(id LineID) (SurfaceID, bool) {
	l, ok := w.lines.get(id.h)
	if !ok {
		return SurfaceID{}, false
	}
	for _, pid := range [2]PointID{l.p1, l.p2} {
		p, ok := w.points.get(pid.h)
		if !ok || p.kind != PointOnSurface {
			continue
		}
		if s, ok := w.surfaces.get(p.surface.h); ok && s.kind.IsDecision() {
			return p.surface, true
		}
	}
	return SurfaceID{}, false
}
