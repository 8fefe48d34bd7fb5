package geom

import "math"

// Box is an axis-aligned rectangle given by its top-left corner and size.
// Y grows downward.
type Box struct {
	X, Y, W, H float64
}

// TopLeft returns the top-left corner.
func (b Box) TopLeft() Vec { return Vec{b.X, b.Y} }

// Center returns the center of the box.
func (b Box) Center() Vec { return Vec{b.X + b.W/2, b.Y + b.H/2} }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Contains reports whether p lies inside or on the boundary of b.
func (b Box) Contains(p Vec) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Bottom()
}

// Anchors returns the eight rectangle anchors in clockwise order starting at
// the top-left corner: corners interleaved with edge midpoints.
func (b Box) Anchors() [8]Vec {
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	r, btm := b.Right(), b.Bottom()
	return [8]Vec{
		{b.X, b.Y}, {cx, b.Y}, {r, b.Y}, {r, cy},
		{r, btm}, {cx, btm}, {b.X, btm}, {b.X, cy},
	}
}

// Midpoints returns the four edge midpoints in the order top, right,
// bottom, left. They are also the vertices of the inscribed diamond.
func (b Box) Midpoints() [4]Vec {
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	return [4]Vec{{cx, b.Y}, {b.Right(), cy}, {cx, b.Bottom()}, {b.X, cy}}
}

// ClampPoint returns the point of b closest to p. Points inside b are
// returned unchanged.
func (b Box) ClampPoint(p Vec) Vec {
	return Vec{Clamp(p.X, b.X, b.Right()), Clamp(p.Y, b.Y, b.Bottom())}
}

// NearestOnBoundary returns the point on the border of b closest to p.
// For an interior point the nearest edge wins; ties prefer left, then
// right, then top, then bottom. Exterior points are clamped onto the box.
func (b Box) NearestOnBoundary(p Vec) Vec {
	if !b.Contains(p) {
		return b.ClampPoint(p)
	}
	dl := p.X - b.X
	dr := b.Right() - p.X
	dt := p.Y - b.Y
	db := b.Bottom() - p.Y
	m := math.Min(math.Min(dl, dr), math.Min(dt, db))
	switch m {
	case dl:
		return Vec{b.X, p.Y}
	case dr:
		return Vec{b.Right(), p.Y}
	case dt:
		return Vec{p.X, b.Y}
	default:
		return Vec{p.X, b.Bottom()}
	}
}

// NearestOnDiamond returns the closest point to p on the diamond inscribed
// in b (the polygon joining the edge midpoints).
func (b Box) NearestOnDiamond(p Vec) Projection {
	m := b.Midpoints()
	best := ProjectOntoSegment(p, m[0], m[1])
	for i := 1; i < 4; i++ {
		pr := ProjectOntoSegment(p, m[i], m[(i+1)%4])
		if pr.Distance < best.Distance {
			best = pr
		}
	}
	return best
}

// NearestOnCircle projects p radially onto the circle inscribed in b, with a
// radius of at least 1. A query at the exact center maps to the rightmost
// point of the circle.
func (b Box) NearestOnCircle(p Vec) Vec {
	c := b.Center()
	r := math.Max(1, math.Min(b.W, b.H)/2)
	d := p.Sub(c)
	l := d.Len()
	if l <= Epsilon {
		return Vec{c.X + r, c.Y}
	}
	return c.Add(d.Scale(r / l))
}
