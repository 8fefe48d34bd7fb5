// Package geom provides the small set of 2D primitives the diagram engine is
// built on: vectors, axis-aligned boxes, segment projection and quantization.
//
// All values are plain structs in world units. Nothing in this package
// allocates or holds state.
package geom

import "math"

// Epsilon is the squared-length threshold below which a segment is
// treated as a single point.
const Epsilon = 1e-9

// Vec is a point or displacement in world coordinates.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b Vec, t float64) Vec {
	return Vec{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Quantize maps v onto an integer grid with the given step so that values
// closer than half a step compare equal. step must be positive.
func Quantize(v, step float64) int64 {
	return int64(math.Round(v / step))
}

// Projection is the result of projecting a point onto a segment.
type Projection struct {
	T        float64 // Parameter along the segment in [0, 1]
	Point    Vec     // Closest point on the segment
	Distance float64 // Distance from the query to Point
}

// ProjectOntoSegment returns the closest point to q on the segment a-b.
// A degenerate segment projects everything onto a with T = 0.
func ProjectOntoSegment(q, a, b Vec) Projection {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den <= Epsilon {
		return Projection{T: 0, Point: a, Distance: q.Dist(a)}
	}
	t := Clamp(q.Sub(a).Dot(ab)/den, 0, 1)
	p := Lerp(a, b, t)
	return Projection{T: t, Point: p, Distance: q.Dist(p)}
}

// AngleDegrees returns the direction of the vector from a to b in degrees,
// normalized to [0, 360).
func AngleDegrees(a, b Vec) float64 {
	deg := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
