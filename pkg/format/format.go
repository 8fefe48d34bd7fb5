// Package format tidies the selected part of a diagram.
//
// [Formatter.FormatSelection] runs two passes over the selection. The first
// pass pins loose line ends to the center of a nearby selected surface. The
// second pass straightens lines that are almost horizontal or almost
// vertical by moving their ends onto a shared Y (or X). Ends attached to a
// surface are aligned by moving the whole surface, so the attachment
// survives; ends riding on another line are left alone.
package format

import (
	"math"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Defaults for Options.
const (
	DefaultCenterSnapThreshold = 10.0
	DefaultAlignmentAngle      = 5.0
)

const (
	// alignSlack is how far apart two ends may be before a line is aligned.
	alignSlack = 0.1
	// moveSlack is the smallest displacement worth applying.
	moveSlack = 0.01
)

// Options configures a Formatter.
type Options struct {
	// CenterSnapThreshold is the world distance within which a free line
	// end is pinned to a surface center.
	CenterSnapThreshold float64

	// AlignmentAngle is the tolerance in degrees around horizontal and
	// vertical.
	AlignmentAngle float64
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{CenterSnapThreshold: DefaultCenterSnapThreshold, AlignmentAngle: DefaultAlignmentAngle}
}

func (o Options) withDefaults() Options {
	if o.CenterSnapThreshold <= 0 {
		o.CenterSnapThreshold = DefaultCenterSnapThreshold
	}
	if o.AlignmentAngle <= 0 {
		o.AlignmentAngle = DefaultAlignmentAngle
	}
	return o
}

// MoveKind says what a Move displaced.
type MoveKind string

const (
	MovedPoint   MoveKind = "point"
	MovedSurface MoveKind = "surface"
	PinnedPoint  MoveKind = "pin"
)

// Move records one change made by the formatter.
type Move struct {
	Kind    MoveKind
	Point   workspace.PointID   // MovedPoint, PinnedPoint
	Surface workspace.SurfaceID // MovedSurface, PinnedPoint
	From    geom.Vec
	To      geom.Vec
}

// Result summarizes a formatting pass.
type Result struct {
	Snapped int // line ends pinned to a surface center
	Aligned int // lines straightened
	Moves   []Move
}

// Formatter tidies the selection of a workspace.
type Formatter struct {
	ws   *workspace.Workspace
	opts Options
}

// New creates a Formatter. Zero option fields take their defaults.
func New(ws *workspace.Workspace, opts Options) *Formatter {
	return &Formatter{ws: ws, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (f *Formatter) Options() Options { return f.opts }

// FormatSelection runs the center-snap pass and then the alignment pass on
// the selected lines and surfaces.
func (f *Formatter) FormatSelection() (Result, error) {
	surfaces, lines := f.ws.Selection()
	var res Result
	if len(lines) == 0 {
		return res, nil
	}
	if err := f.snapToCenters(lines, surfaces, &res); err != nil {
		return res, err
	}
	if err := f.align(lines, &res); err != nil {
		return res, err
	}
	return res, nil
}

// =============================================================================
// Center snapping
// =============================================================================

func (f *Formatter) snapToCenters(lines []workspace.LineID, surfaces []workspace.SurfaceID, res *Result) error {
	if len(surfaces) == 0 {
		return nil
	}
	for _, l := range lines {
		for _, e := range [2]workspace.End{workspace.End1, workspace.End2} {
			line, err := f.ws.Line(l)
			if err != nil {
				return err
			}
			if err := f.pin(line.End(e), surfaces, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// pin replaces a free point near a surface center by a point attached at
// that center. Every line using the free point is retargeted so shared
// ends stay shared.
func (f *Formatter) pin(id workspace.PointID, surfaces []workspace.SurfaceID, res *Result) error {
	p, err := f.ws.Point(id)
	if err != nil {
		return err
	}
	if p.Kind != workspace.PointFree {
		return nil
	}

	var (
		best     workspace.Surface
		found    bool
		bestDist = math.Inf(1)
	)
	for _, sid := range surfaces {
		s, err := f.ws.Surface(sid)
		if err != nil {
			return err
		}
		if d := p.Free.Dist(s.Box.Center()); d < bestDist {
			best, bestDist, found = s, d, true
		}
	}
	if !found || bestDist > f.opts.CenterSnapThreshold {
		return nil
	}

	np, err := f.ws.NewSurfacePoint(best.ID, best.Box.W/2, best.Box.H/2)
	if err != nil {
		return err
	}
	for _, l := range f.ws.LinesUsing(id) {
		line, err := f.ws.Line(l)
		if err != nil {
			return err
		}
		for _, e := range [2]workspace.End{workspace.End1, workspace.End2} {
			if line.End(e) != id {
				continue
			}
			if err := f.ws.SetEndpoint(l, e, np); err != nil {
				return err
			}
		}
	}
	res.Snapped++
	res.Moves = append(res.Moves, Move{Kind: PinnedPoint, Point: np, Surface: best.ID, From: p.Free, To: best.Box.Center()})
	return nil
}

// =============================================================================
// Alignment
// =============================================================================

type axis int

const (
	axisX axis = iota
	axisY
)

func (f *Formatter) align(lines []workspace.LineID, res *Result) error {
	for _, l := range lines {
		a, b, err := f.ws.LineEnds(l)
		if err != nil {
			return err
		}
		angle := geom.AngleDegrees(a, b)

		var (
			ax     axis
			target float64
			da, db float64
		)
		switch {
		case f.nearAxis(angle):
			ax, target = axisY, (a.Y+b.Y)/2
			da, db = target-a.Y, target-b.Y
		case f.nearAxis(angle - 90):
			ax, target = axisX, (a.X+b.X)/2
			da, db = target-a.X, target-b.X
		default:
			continue
		}
		if math.Abs(da) <= alignSlack && math.Abs(db) <= alignSlack {
			continue
		}

		line, err := f.ws.Line(l)
		if err != nil {
			return err
		}
		moved := false
		for _, e := range [2]workspace.End{workspace.End1, workspace.End2} {
			ok, err := f.moveOnto(line.End(e), ax, target, res)
			if err != nil {
				return err
			}
			moved = moved || ok
		}
		if moved {
			res.Aligned++
		}
	}
	return nil
}

// nearAxis reports whether angle lies within the tolerance of 0° or 180°.
func (f *Formatter) nearAxis(angle float64) bool {
	n := math.Mod(angle, 180)
	if n < 0 {
		n += 180
	}
	return n <= f.opts.AlignmentAngle || n >= 180-f.opts.AlignmentAngle
}

// moveOnto brings a point's coordinate on ax to target, moving the point
// itself when free and its surface when attached.
func (f *Formatter) moveOnto(id workspace.PointID, ax axis, target float64, res *Result) (bool, error) {
	pos, err := f.ws.Position(id)
	if err != nil {
		return false, err
	}
	var delta geom.Vec
	if ax == axisY {
		delta = geom.V(0, target-pos.Y)
	} else {
		delta = geom.V(target-pos.X, 0)
	}
	if delta.Len() < moveSlack {
		return false, nil
	}

	p, err := f.ws.Point(id)
	if err != nil {
		return false, err
	}
	switch p.Kind {
	case workspace.PointFree:
		to := pos.Add(delta)
		if err := f.ws.MovePoint(id, to.X, to.Y); err != nil {
			return false, err
		}
		res.Moves = append(res.Moves, Move{Kind: MovedPoint, Point: id, From: pos, To: to})
	case workspace.PointOnSurface:
		s, err := f.ws.Surface(p.Surface)
		if err != nil {
			return false, err
		}
		if err := f.ws.TranslateSurface(p.Surface, delta.X, delta.Y); err != nil {
			return false, err
		}
		from := s.Box.TopLeft()
		res.Moves = append(res.Moves, Move{Kind: MovedSurface, Surface: p.Surface, From: from, To: from.Add(delta)})
	default:
		return false, nil
	}
	return true, nil
}
