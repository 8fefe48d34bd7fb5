package snap

import (
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Default thresholds.
const (
	DefaultThresholdPixels = 14.0
	DefaultAnchorThreshold = 10.0
)

// Options configures a Resolver.
type Options struct {
	// ThresholdPixels is the snap radius in screen pixels. It is divided by
	// the view scale so the radius feels constant at any zoom level.
	ThresholdPixels float64

	// AnchorThreshold is the world distance within which a surface anchor
	// is preferred over the nearest boundary point.
	AnchorThreshold float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ThresholdPixels: DefaultThresholdPixels,
		AnchorThreshold: DefaultAnchorThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.ThresholdPixels <= 0 {
		o.ThresholdPixels = DefaultThresholdPixels
	}
	if o.AnchorThreshold <= 0 {
		o.AnchorThreshold = DefaultAnchorThreshold
	}
	return o
}

// Resolver finds the best snap target near a world position.
type Resolver struct {
	ws   *workspace.Workspace
	opts Options
}

// NewResolver creates a resolver over ws. Zero option fields take their
// defaults.
func NewResolver(ws *workspace.Workspace, opts Options) *Resolver {
	return &Resolver{ws: ws, opts: opts.withDefaults()}
}

// Workspace returns the workspace the resolver reads.
func (r *Resolver) Workspace() *workspace.Workspace { return r.ws }

// Options returns the effective options.
func (r *Resolver) Options() Options { return r.opts }

// FindBest returns the closest snap candidate to q within the threshold.
//
// Candidates are considered in a fixed order: line endpoints, projections
// onto lines, non-image surfaces, then images. A candidate replaces the
// current best only when it is strictly closer, so on ties the earlier
// category wins. excludeLine and excludePoint keep a dragged line from
// snapping to itself; pass zero handles to exclude nothing.
func (r *Resolver) FindBest(q geom.Vec, scale float64, excludeLine workspace.LineID, excludePoint workspace.PointID) (Candidate, bool) {
	if !(scale > 0) {
		return Candidate{}, false
	}
	sr := search{q: q, best: Candidate{Distance: r.opts.ThresholdPixels / scale}}

	lines := r.ws.Lines()

	seen := make(map[workspace.PointID]bool)
	for _, lid := range lines {
		l, _ := r.ws.Line(lid)
		for _, pid := range [2]workspace.PointID{l.P1, l.P2} {
			if pid == excludePoint || seen[pid] {
				continue
			}
			seen[pid] = true
			pos, err := r.ws.Position(pid)
			if err != nil {
				continue
			}
			sr.offer(Candidate{Target: TargetPoint, Pos: pos, Point: pid})
		}
	}

	for _, lid := range lines {
		if lid == excludeLine {
			continue
		}
		a, b, err := r.ws.LineEnds(lid)
		if err != nil {
			continue
		}
		pr := geom.ProjectOntoSegment(q, a, b)
		sr.offer(Candidate{Target: TargetLine, Pos: pr.Point, Line: lid, T: pr.T})
	}

	surfaces := r.ws.Surfaces()
	for _, images := range [2]bool{false, true} {
		for _, sid := range surfaces {
			s, err := r.ws.Surface(sid)
			if err != nil || s.Kind.IsImage() != images {
				continue
			}
			pos := r.surfacePoint(s, q)
			sr.offer(Candidate{Target: TargetSurface, Pos: pos, Surface: sid, Local: pos.Sub(s.Box.TopLeft())})
		}
	}

	if !sr.found {
		return Candidate{}, false
	}
	return sr.best, true
}

// SurfacePoint returns the point on surface s that a query at q would snap
// to, ignoring the snap radius.
func (r *Resolver) SurfacePoint(s workspace.Surface, q geom.Vec) geom.Vec {
	return r.surfacePoint(s, q)
}

func (r *Resolver) surfacePoint(s workspace.Surface, q geom.Vec) geom.Vec {
	switch s.Kind.Outline() {
	case workspace.OutlineDiamond:
		return s.Box.NearestOnDiamond(q).Point
	case workspace.OutlineCircle:
		mids := s.Box.Midpoints()
		if a, d := nearest(q, mids[:]); d <= r.opts.AnchorThreshold {
			return a
		}
		return s.Box.NearestOnCircle(q)
	default:
		anchors := s.Box.Anchors()
		if a, d := nearest(q, anchors[:]); d <= r.opts.AnchorThreshold {
			return a
		}
		return s.Box.NearestOnBoundary(q)
	}
}

func nearest(q geom.Vec, pts []geom.Vec) (geom.Vec, float64) {
	best, bestD := pts[0], q.Dist(pts[0])
	for _, p := range pts[1:] {
		if d := q.Dist(p); d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD
}

type search struct {
	q     geom.Vec
	best  Candidate
	found bool
}

func (s *search) offer(c Candidate) {
	c.Distance = s.q.Dist(c.Pos)
	if c.Distance < s.best.Distance {
		s.best = c
		s.found = true
	}
}
