package snap

import (
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Draft is a line being drawn. Both ends are held as candidates and turn
// into points only on Commit, so an abandoned draft leaves no trace in the
// workspace.
type Draft struct {
	r       *Resolver
	start   Candidate
	snapped bool
	end     geom.Vec
	endSnap *Candidate
	Preview Preview
}

// Commit describes the line created by [Draft.Commit].
type Commit struct {
	Line workspace.LineID

	// Decision is the decision surface the line starts on, if any.
	Decision workspace.SurfaceID

	// Branch is the tag assigned automatically.
	Branch workspace.Branch

	// BranchPending is set when the line starts on a decision whose True
	// and False lines both exist; the caller has to pick a tag and call
	// AssignBranch.
	BranchPending bool
}

// BeginDraft starts a line at q, snapped when a target is in range.
func (r *Resolver) BeginDraft(q geom.Vec, scale float64) *Draft {
	d := &Draft{r: r, end: q}
	if c, ok := r.FindBest(q, scale, workspace.LineID{}, workspace.PointID{}); ok {
		d.start = c
		d.snapped = true
		d.end = c.Pos
	} else {
		d.start = Candidate{Pos: q}
	}
	return d
}

// Start returns the draft's start position.
func (d *Draft) Start() geom.Vec { return d.start.Pos }

// End returns the draft's current end position, snapped if a target is in
// range.
func (d *Draft) End() geom.Vec {
	if d.endSnap != nil {
		return d.endSnap.Pos
	}
	return d.end
}

// Update moves the free end of the draft, refreshing the preview marker.
func (d *Draft) Update(q geom.Vec, scale float64) {
	d.end = q
	if c, ok := d.r.FindBest(q, scale, workspace.LineID{}, workspace.PointID{}); ok {
		d.endSnap = &c
		d.Preview.Show(c)
		return
	}
	d.endSnap = nil
	d.Preview.Hide()
}

// Cancel drops the draft.
func (d *Draft) Cancel() { d.Preview.Hide() }

// Commit materializes both ends and adds the line. When the line starts on
// a decision surface it is tagged with the next free branch.
func (d *Draft) Commit() (Commit, error) {
	ws := d.r.ws
	d.Preview.Hide()

	p1, err := d.materialize(d.start, d.snapped)
	if err != nil {
		return Commit{}, err
	}
	var p2 workspace.PointID
	if d.endSnap != nil {
		p2, err = d.endSnap.Materialize(ws)
	} else {
		p2 = ws.NewFreePoint(d.end.X, d.end.Y)
	}
	if err != nil {
		ws.ReleasePoint(p1)
		return Commit{}, err
	}

	id, err := ws.AddLine(p1, p2)
	if err != nil {
		ws.ReleasePoint(p1)
		ws.ReleasePoint(p2)
		return Commit{}, err
	}
	out := Commit{Line: id}

	if pt, err := ws.Point(p1); err == nil && pt.Kind == workspace.PointOnSurface {
		s, err := ws.Surface(pt.Surface)
		if err == nil && s.Kind.IsDecision() {
			out.Decision = s.ID
			b := ws.NextBranch(s.ID)
			if b == workspace.BranchNone {
				out.BranchPending = true
			} else if err := ws.AssignBranch(s.ID, id, b); err != nil {
				return out, err
			}
			out.Branch = b
		}
	}
	return out, nil
}

func (d *Draft) materialize(c Candidate, snapped bool) (workspace.PointID, error) {
	if !snapped {
		return d.r.ws.NewFreePoint(c.Pos.X, c.Pos.Y), nil
	}
	return c.Materialize(d.r.ws)
}

// DragEndpoint moves one end of an existing line to q. A free endpoint
// snaps to the best target in range, excluding the line itself; attached
// endpoints move within their owner. It reports whether a snap happened.
func (r *Resolver) DragEndpoint(id workspace.LineID, e workspace.End, q geom.Vec, scale float64) (bool, error) {
	l, err := r.ws.Line(id)
	if err != nil {
		return false, err
	}
	pid := l.End(e)
	pt, err := r.ws.Point(pid)
	if err != nil {
		return false, err
	}
	if pt.Kind != workspace.PointFree {
		return false, r.ws.MovePoint(pid, q.X, q.Y)
	}

	other := l.P2
	if e == workspace.End2 {
		other = l.P1
	}
	c, ok := r.FindBest(q, scale, id, pid)
	if !ok || (c.Target == TargetPoint && c.Point == other) {
		// A line never snaps onto its own other end.
		return false, r.ws.MovePoint(pid, q.X, q.Y)
	}
	np, err := c.Materialize(r.ws)
	if err != nil {
		return false, err
	}
	if err := r.ws.SetEndpoint(id, e, np); err != nil {
		if !errors.Is(err, errors.ErrCodeCyclicReference) {
			return false, err
		}
		r.ws.ReleasePoint(np)
		return false, r.ws.MovePoint(pid, q.X, q.Y)
	}
	return true, nil
}
