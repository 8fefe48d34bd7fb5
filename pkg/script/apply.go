package script

import (
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/snap"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Index maps script names to the handles they were given.
type Index struct {
	Surfaces map[string]workspace.SurfaceID
	Lines    map[string]workspace.LineID

	// Pending lists lines that start on a decision whose True and False
	// lines both exist and that carry no explicit branch.
	Pending []workspace.LineID
}

func newIndex() *Index {
	return &Index{
		Surfaces: make(map[string]workspace.SurfaceID),
		Lines:    make(map[string]workspace.LineID),
	}
}

// Surface looks up a surface by name.
func (ix *Index) Surface(name string) (workspace.SurfaceID, error) {
	if id, ok := ix.Surfaces[name]; ok {
		return id, nil
	}
	return workspace.SurfaceID{}, errors.New(errors.ErrCodeNotFound, "no surface named %q", name)
}

// Line looks up a line by name.
func (ix *Index) Line(name string) (workspace.LineID, error) {
	if id, ok := ix.Lines[name]; ok {
		return id, nil
	}
	return workspace.LineID{}, errors.New(errors.ErrCodeNotFound, "no line named %q", name)
}

// Apply replays the script into the resolver's workspace.
func (s *Script) Apply(r *snap.Resolver) (*Index, error) {
	ws := r.Workspace()
	ix := newIndex()

	for i, sf := range s.Surfaces {
		kind, err := workspace.ParseKind(sf.Kind)
		if err != nil {
			return ix, errors.Wrap(errors.ErrCodeInvalidScript, err, "surface %d", i+1)
		}
		w, h := sf.W, sf.H
		if w == 0 {
			w = DefaultWidth
		}
		if h == 0 {
			h = DefaultHeight
		}
		id := ws.AddSurface(kind, sf.X, sf.Y, w, h, sf.Name)
		if sf.Name != "" {
			ix.Surfaces[sf.Name] = id
		}
	}

	for i, l := range s.Lines {
		id, err := s.addLine(r, ix, l)
		if err != nil {
			return ix, errors.Wrap(errors.ErrCodeInvalidScript, err, "line %d (%s)", i+1, l.Name)
		}
		if l.Name != "" {
			ix.Lines[l.Name] = id
		}
	}

	for i, st := range s.Steps {
		if err := s.applyStep(r, ix, st); err != nil {
			return ix, errors.Wrap(errors.ErrCodeInvalidScript, err, "step %d (%s)", i+1, st.Op)
		}
	}
	return ix, nil
}

func vec(v []float64) geom.Vec { return geom.V(v[0], v[1]) }

func (s *Script) addLine(r *snap.Resolver, ix *Index, l LineSpec) (workspace.LineID, error) {
	ws := r.Workspace()

	// Both ends given as positions: draw it like a user would.
	if l.From.At != nil && l.To.At != nil {
		d := r.BeginDraft(vec(l.From.At), s.View.Scale)
		d.Update(vec(l.To.At), s.View.Scale)
		c, err := d.Commit()
		if err != nil {
			return workspace.LineID{}, err
		}
		if l.Branch != "" {
			return c.Line, assignBranch(ws, c.Line, l.Branch)
		}
		if c.BranchPending {
			ix.Pending = append(ix.Pending, c.Line)
		}
		return c.Line, nil
	}

	p1, err := s.endpoint(r, ix, l.From)
	if err != nil {
		return workspace.LineID{}, err
	}
	p2, err := s.endpoint(r, ix, l.To)
	if err != nil {
		ws.ReleasePoint(p1)
		return workspace.LineID{}, err
	}
	id, err := ws.AddLine(p1, p2)
	if err != nil {
		return workspace.LineID{}, err
	}
	if l.Branch != "" {
		return id, assignBranch(ws, id, l.Branch)
	}

	// Same rule as a drawn line: the start end decides.
	pt, err := ws.Point(p1)
	if err != nil || pt.Kind != workspace.PointOnSurface {
		return id, nil
	}
	sf, err := ws.Surface(pt.Surface)
	if err != nil || !sf.Kind.IsDecision() {
		return id, nil
	}
	b := ws.NextBranch(sf.ID)
	if b == workspace.BranchNone {
		ix.Pending = append(ix.Pending, id)
		return id, nil
	}
	return id, ws.AssignBranch(sf.ID, id, b)
}

func (s *Script) endpoint(r *snap.Resolver, ix *Index, e Endpoint) (workspace.PointID, error) {
	ws := r.Workspace()
	switch {
	case e.At != nil:
		q := vec(e.At)
		if c, ok := r.FindBest(q, s.View.Scale, workspace.LineID{}, workspace.PointID{}); ok {
			return c.Materialize(ws)
		}
		return ws.NewFreePoint(q.X, q.Y), nil
	case e.Free != nil:
		return ws.NewFreePoint(e.Free[0], e.Free[1]), nil
	case e.Surface != "":
		sid, err := ix.Surface(e.Surface)
		if err != nil {
			return workspace.PointID{}, err
		}
		sf, err := ws.Surface(sid)
		if err != nil {
			return workspace.PointID{}, err
		}
		local := geom.V(sf.Box.W/2, sf.Box.H/2)
		if e.Local != nil {
			local = vec(e.Local)
		}
		return ws.NewSurfacePoint(sid, local.X, local.Y)
	default:
		lid, err := ix.Line(e.Line)
		if err != nil {
			return workspace.PointID{}, err
		}
		return ws.NewLinePoint(lid, e.T)
	}
}

func assignBranch(ws *workspace.Workspace, id workspace.LineID, name string) error {
	b, err := workspace.ParseBranch(name)
	if err != nil {
		return err
	}
	d, ok := ws.DecisionOf(id)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "line %s is not attached to a decision", id)
	}
	return ws.AssignBranch(d, id, b)
}

func (s *Script) applyStep(r *snap.Resolver, ix *Index, st Step) error {
	ws := r.Workspace()
	switch st.Op {
	case OpMove:
		id, err := ix.Surface(st.Target)
		if err != nil {
			return err
		}
		return ws.TranslateSurface(id, st.DX, st.DY)

	case OpResize:
		id, err := ix.Surface(st.Target)
		if err != nil {
			return err
		}
		return ws.ResizeSurface(id, st.W, st.H)

	case OpRename:
		id, err := ix.Surface(st.Target)
		if err != nil {
			return err
		}
		if _, taken := ix.Surfaces[st.Name]; taken {
			return errors.New(errors.ErrCodeInvalidInput, "surface %q already exists", st.Name)
		}
		if err := ws.RenameSurface(id, st.Name); err != nil {
			return err
		}
		delete(ix.Surfaces, st.Target)
		ix.Surfaces[st.Name] = id
		return nil

	case OpDelete:
		if id, ok := ix.Surfaces[st.Target]; ok {
			delete(ix.Surfaces, st.Target)
			return ws.RemoveSurface(id)
		}
		id, err := ix.Line(st.Target)
		if err != nil {
			return errors.New(errors.ErrCodeNotFound, "nothing named %q", st.Target)
		}
		delete(ix.Lines, st.Target)
		return ws.RemoveLine(id)

	case OpDrag:
		id, err := ix.Line(st.Target)
		if err != nil {
			return err
		}
		end, err := parseEnd(st.End)
		if err != nil {
			return err
		}
		_, err = r.DragEndpoint(id, end, vec(st.To), s.View.Scale)
		return err

	case OpDetach:
		id, err := ix.Line(st.Target)
		if err != nil {
			return err
		}
		end, err := parseEnd(st.End)
		if err != nil {
			return err
		}
		_, err = ws.DetachEndpoint(id, end)
		return err

	case OpBranch:
		id, err := ix.Line(st.Target)
		if err != nil {
			return err
		}
		return assignBranch(ws, id, st.Branch)

	case OpSelect:
		ws.ClearSelection()
		if st.All {
			ws.SelectAll()
			return nil
		}
		for _, name := range st.Targets {
			if id, ok := ix.Surfaces[name]; ok {
				if err := ws.SetSurfaceSelected(id, true); err != nil {
					return err
				}
				continue
			}
			id, err := ix.Line(name)
			if err != nil {
				return errors.New(errors.ErrCodeNotFound, "nothing named %q", name)
			}
			if err := ws.SetLineSelected(id, true); err != nil {
				return err
			}
		}
		return nil

	case OpDeleteSelected:
		surfaces, lines := ws.Selection()
		if _, _, err := ws.RemoveSelected(); err != nil {
			return err
		}
		ix.forget(surfaces, lines)
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", st.Op)
}

// forget drops index entries for removed handles.
func (ix *Index) forget(surfaces []workspace.SurfaceID, lines []workspace.LineID) {
	for _, id := range surfaces {
		for name, sid := range ix.Surfaces {
			if sid == id {
				delete(ix.Surfaces, name)
			}
		}
	}
	for _, id := range lines {
		for name, lid := range ix.Lines {
			if lid == id {
				delete(ix.Lines, name)
			}
		}
	}
}
