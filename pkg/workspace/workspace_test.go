package workspace

import (
	"math"
	"testing"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
)

func near(a, b geom.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func mustPos(t *testing.T, w *Workspace, p PointID) geom.Vec {
	t.Helper()
	v, err := w.Position(p)
	if err != nil {
		t.Fatalf("Position(%s): %v", p, err)
	}
	return v
}

func freeLine(t *testing.T, w *Workspace, x1, y1, x2, y2 float64) LineID {
	t.Helper()
	l, err := w.AddLine(w.NewFreePoint(x1, y1), w.NewFreePoint(x2, y2))
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	return l
}

func TestSurfacePointFollowsSurface(t *testing.T) {
	w := New()
	s := w.AddSurface(KindRectangle, 10, 20, 100, 60, "box")
	p, err := w.NewSurfacePoint(s, 100, 30)
	if err != nil {
		t.Fatal(err)
	}

	if got := mustPos(t, w, p); !near(got, geom.V(110, 50)) {
		t.Errorf("Position = %v, want (110,50)", got)
	}

	if err := w.TranslateSurface(s, 5, -5); err != nil {
		t.Fatal(err)
	}
	if got := mustPos(t, w, p); !near(got, geom.V(115, 45)) {
		t.Errorf("Position after translate = %v, want (115,45)", got)
	}

	if err := w.ResizeSurface(s, 200, 200); err != nil {
		t.Fatal(err)
	}
	pt, _ := w.Point(p)
	if !near(pt.Local, geom.V(100, 30)) {
		t.Errorf("Local after resize = %v, want (100,30)", pt.Local)
	}
}

func TestLinePointFollowsParent(t *testing.T) {
	w := New()
	parent := freeLine(t, w, 0, 0, 100, 0)
	lp, err := w.NewLinePoint(parent, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustPos(t, w, lp); !near(got, geom.V(25, 0)) {
		t.Errorf("Position = %v, want (25,0)", got)
	}

	l, _ := w.Line(parent)
	if err := w.MovePoint(l.P2, 100, 100); err != nil {
		t.Fatal(err)
	}
	if got := mustPos(t, w, lp); !near(got, geom.V(25, 25)) {
		t.Errorf("Position after endpoint move = %v, want (25,25)", got)
	}
	pt, _ := w.Point(lp)
	if pt.T != 0.25 {
		t.Errorf("T = %v, want 0.25", pt.T)
	}
}

func TestMovePoint(t *testing.T) {
	w := New()
	s := w.AddSurface(KindRectangle, 0, 0, 100, 100, "")
	sp, _ := w.NewSurfacePoint(s, 10, 10)
	parent := freeLine(t, w, 0, 200, 100, 200)
	lp, _ := w.NewLinePoint(parent, 0)
	fp := w.NewFreePoint(0, 0)

	tests := []struct {
		name string
		p    PointID
		to   geom.Vec
		want geom.Vec
	}{
		{"free moves exactly", fp, geom.V(-7, 3), geom.V(-7, 3)},
		{"surface point clamps to bounds", sp, geom.V(150, -20), geom.V(100, 0)},
		{"line point reprojects", lp, geom.V(40, 250), geom.V(40, 200)},
		{"line point clamps past end", lp, geom.V(300, 200), geom.V(100, 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.MovePoint(tt.p, tt.to.X, tt.to.Y); err != nil {
				t.Fatal(err)
			}
			if got := mustPos(t, w, tt.p); !near(got, tt.want) {
				t.Errorf("Position = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinimumSize(t *testing.T) {
	w := New()
	s := w.AddSurface(KindSquare, 0, 0, 10, 80, "")
	got, _ := w.Surface(s)
	if got.Box.W != MinSize || got.Box.H != 80 {
		t.Errorf("Box = %+v, want W=%v H=80", got.Box, MinSize)
	}
	if err := w.ResizeSurface(s, 5, 5); err != nil {
		t.Fatal(err)
	}
	got, _ = w.Surface(s)
	if got.Box.W != MinSize || got.Box.H != MinSize {
		t.Errorf("Box after resize = %+v, want %v x %v", got.Box, MinSize, MinSize)
	}
}

func TestResizeImageRejected(t *testing.T) {
	w := New()
	img := w.AddSurface(KindImage, 0, 0, 120, 80, "logo")
	err := w.ResizeSurface(img, 300, 300)
	if !errors.Is(err, errors.ErrCodeNotResizable) {
		t.Fatalf("ResizeSurface(image) error = %v, want %s", err, errors.ErrCodeNotResizable)
	}
	if err := w.TranslateSurface(img, 10, 10); err != nil {
		t.Errorf("TranslateSurface(image) error = %v, want nil", err)
	}
}

func TestRemoveLineDetachesDependents(t *testing.T) {
	w := New()
	parent := freeLine(t, w, 0, 0, 100, 0)
	shared, _ := w.NewLinePoint(parent, 0.5)
	a, _ := w.AddLine(shared, w.NewFreePoint(50, 100))
	b, _ := w.AddLine(shared, w.NewFreePoint(50, -100))

	if err := w.RemoveLine(parent); err != nil {
		t.Fatal(err)
	}

	la, _ := w.Line(a)
	lb, _ := w.Line(b)
	if la.P1 != lb.P1 {
		t.Fatalf("shared endpoint split: %s vs %s", la.P1, lb.P1)
	}
	pt, err := w.Point(la.P1)
	if err != nil {
		t.Fatal(err)
	}
	if pt.Kind != PointFree {
		t.Errorf("Kind = %v, want free", pt.Kind)
	}
	if !near(pt.Free, geom.V(50, 0)) {
		t.Errorf("Free = %v, want (50,0)", pt.Free)
	}

	_, lines, points := w.Counts()
	if lines != 2 || points != 3 {
		t.Errorf("Counts lines=%d points=%d, want 2 and 3", lines, points)
	}
}

func TestRemoveSurfaceDetachesDependents(t *testing.T) {
	w := New()
	s := w.AddSurface(KindRectangle, 100, 100, 100, 100, "")
	p, _ := w.NewSurfacePoint(s, 0, 50)
	l, _ := w.AddLine(w.NewFreePoint(0, 0), p)

	if err := w.RemoveSurface(s); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Surface(s); !errors.Is(err, errors.ErrCodeStaleHandle) {
		t.Errorf("Surface after remove error = %v, want stale", err)
	}
	line, _ := w.Line(l)
	pt, _ := w.Point(line.P2)
	if pt.Kind != PointFree || !near(pt.Free, geom.V(100, 150)) {
		t.Errorf("endpoint = %+v, want free at (100,150)", pt)
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	w := New()
	old := w.AddSurface(KindRectangle, 0, 0, 50, 50, "old")
	if err := w.RemoveSurface(old); err != nil {
		t.Fatal(err)
	}
	fresh := w.AddSurface(KindRectangle, 0, 0, 50, 50, "new")
	if old == fresh {
		t.Fatal("reused slot produced an equal handle")
	}
	if _, err := w.Surface(old); !errors.Is(err, errors.ErrCodeStaleHandle) {
		t.Errorf("Surface(old) error = %v, want stale", err)
	}
	s, err := w.Surface(fresh)
	if err != nil || s.Name != "new" {
		t.Errorf("Surface(fresh) = %+v, %v", s, err)
	}
}

func TestSetEndpointRejectsCycle(t *testing.T) {
	w := New()
	a := freeLine(t, w, 0, 0, 100, 0)
	b := freeLine(t, w, 0, 50, 100, 50)

	onA, _ := w.NewLinePoint(a, 0.5)
	if err := w.SetEndpoint(b, End1, onA); err != nil {
		t.Fatalf("SetEndpoint(b, onA) = %v", err)
	}

	onB, _ := w.NewLinePoint(b, 0.5)
	err := w.SetEndpoint(a, End2, onB)
	if !errors.Is(err, errors.ErrCodeCyclicReference) {
		t.Fatalf("SetEndpoint(a, onB) error = %v, want cyclic", err)
	}

	self, _ := w.NewLinePoint(a, 0.1)
	if err := w.SetEndpoint(a, End1, self); !errors.Is(err, errors.ErrCodeCyclicReference) {
		t.Errorf("SetEndpoint(a, self) error = %v, want cyclic", err)
	}
}

func TestDetachEndpoint(t *testing.T) {
	w := New()
	s := w.AddSurface(KindRectangle, 0, 0, 100, 100, "")
	shared, _ := w.NewSurfacePoint(s, 100, 50)
	a, _ := w.AddLine(shared, w.NewFreePoint(200, 50))
	b, _ := w.AddLine(shared, w.NewFreePoint(200, 100))

	np, err := w.DetachEndpoint(a, End1)
	if err != nil {
		t.Fatal(err)
	}
	if np == shared {
		t.Fatal("DetachEndpoint kept the shared point")
	}
	pt, _ := w.Point(np)
	if pt.Kind != PointFree || !near(pt.Free, geom.V(100, 50)) {
		t.Errorf("detached = %+v, want free at (100,50)", pt)
	}
	lb, _ := w.Line(b)
	if lb.P1 != shared {
		t.Errorf("other line endpoint = %s, want %s", lb.P1, shared)
	}
}

func TestBranchAssignment(t *testing.T) {
	w := New()
	d := w.AddSurface(KindDecision, 0, 0, 100, 100, "d")
	newLine := func() LineID {
		p, _ := w.NewSurfacePoint(d, 100, 50)
		l, err := w.AddLine(p, w.NewFreePoint(300, 50))
		if err != nil {
			t.Fatal(err)
		}
		return l
	}

	if got := w.NextBranch(d); got != BranchTrue {
		t.Fatalf("NextBranch(empty) = %v, want true", got)
	}
	l1 := newLine()
	if err := w.AssignBranch(d, l1, w.NextBranch(d)); err != nil {
		t.Fatal(err)
	}
	if got := w.NextBranch(d); got != BranchFalse {
		t.Fatalf("NextBranch(after true) = %v, want false", got)
	}
	l2 := newLine()
	if err := w.AssignBranch(d, l2, w.NextBranch(d)); err != nil {
		t.Fatal(err)
	}
	if got := w.NextBranch(d); got != BranchNone {
		t.Fatalf("NextBranch(full) = %v, want none", got)
	}

	l3 := newLine()
	if err := w.AssignBranch(d, l3, BranchTrue); err != nil {
		t.Fatal(err)
	}

	want := map[LineID]Branch{l1: BranchNone, l2: BranchFalse, l3: BranchTrue}
	for id, b := range want {
		l, err := w.Line(id)
		if err != nil {
			t.Fatalf("Line(%s): %v", id, err)
		}
		if l.Branch != b {
			t.Errorf("Line(%s).Branch = %v, want %v", id, l.Branch, b)
		}
	}
}

func TestAssignBranchRequiresAttachment(t *testing.T) {
	w := New()
	d := w.AddSurface(KindDecision, 0, 0, 100, 100, "d")
	r := w.AddSurface(KindRectangle, 300, 0, 100, 100, "r")
	l := freeLine(t, w, 0, 0, 10, 10)

	if err := w.AssignBranch(d, l, BranchTrue); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AssignBranch(detached) error = %v, want invalid input", err)
	}
	if err := w.AssignBranch(r, l, BranchTrue); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AssignBranch(non-decision) error = %v, want invalid input", err)
	}
	if got := w.NextBranch(r); got != BranchNone {
		t.Errorf("NextBranch(rectangle) = %v, want none", got)
	}
}

func TestRemoveSelected(t *testing.T) {
	w := New()
	s := w.AddSurface(KindRectangle, 0, 0, 100, 100, "")
	keep := w.AddSurface(KindRectangle, 500, 0, 100, 100, "")
	p, _ := w.NewSurfacePoint(s, 100, 50)
	q, _ := w.NewSurfacePoint(keep, 0, 50)
	l, _ := w.AddLine(p, q)
	other := freeLine(t, w, 0, 300, 100, 300)

	_ = w.SetSurfaceSelected(s, true)
	_ = w.SetLineSelected(other, true)

	ns, nl, err := w.RemoveSelected()
	if err != nil {
		t.Fatal(err)
	}
	if ns != 1 || nl != 1 {
		t.Errorf("RemoveSelected = (%d, %d), want (1, 1)", ns, nl)
	}
	line, err := w.Line(l)
	if err != nil {
		t.Fatalf("surviving line: %v", err)
	}
	pt, _ := w.Point(line.P1)
	if pt.Kind != PointFree {
		t.Errorf("P1 kind = %v, want free", pt.Kind)
	}
	if ss, ls := w.Selection(); len(ss) != 0 || len(ls) != 0 {
		t.Errorf("Selection after remove = %v %v, want empty", ss, ls)
	}
}

func TestRevisionBumps(t *testing.T) {
	w := New()
	r0 := w.Revision()
	s := w.AddSurface(KindRectangle, 0, 0, 50, 50, "")
	r1 := w.Revision()
	_ = w.TranslateSurface(s, 1, 1)
	if !(r0 < r1 && r1 < w.Revision()) {
		t.Errorf("Revision did not increase: %d %d %d", r0, r1, w.Revision())
	}
}

func TestExtent(t *testing.T) {
	w := New()
	if _, ok := w.Extent(); ok {
		t.Error("empty workspace should have no extent")
	}
	w.AddSurface(KindRectangle, 0, 0, 50, 50, "")
	freeLine(t, w, -20, 10, 200, 80)

	got, ok := w.Extent()
	want := geom.Box{X: -20, Y: 0, W: 220, H: 80}
	if !ok || got != want {
		t.Errorf("Extent() = %+v, %v, want %+v", got, ok, want)
	}
}
