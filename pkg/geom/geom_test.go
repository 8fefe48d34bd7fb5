package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearVec(a, b Vec) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestProjectOntoSegment(t *testing.T) {
	tests := []struct {
		name  string
		q     Vec
		a, b  Vec
		wantT float64
		wantP Vec
		wantD float64
	}{
		{"middle", V(5, 3), V(0, 0), V(10, 0), 0.5, V(5, 0), 3},
		{"before start", V(-4, 3), V(0, 0), V(10, 0), 0, V(0, 0), 5},
		{"past end", V(13, 4), V(0, 0), V(10, 0), 1, V(10, 0), 5},
		{"on segment", V(2.5, 0), V(0, 0), V(10, 0), 0.25, V(2.5, 0), 0},
		{"degenerate", V(3, 4), V(0, 0), V(0, 0), 0, V(0, 0), 5},
		{"vertical", V(1, 7), V(0, 0), V(0, 10), 0.7, V(0, 7), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectOntoSegment(tt.q, tt.a, tt.b)
			if !near(got.T, tt.wantT) {
				t.Errorf("T = %v, want %v", got.T, tt.wantT)
			}
			if !nearVec(got.Point, tt.wantP) {
				t.Errorf("Point = %v, want %v", got.Point, tt.wantP)
			}
			if !near(got.Distance, tt.wantD) {
				t.Errorf("Distance = %v, want %v", got.Distance, tt.wantD)
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		v, step float64
		want    int64
	}{
		{0.5, 1e-4, 5000},
		{0.50004, 1e-4, 5000},
		{0.50006, 1e-4, 5001},
		{12.4, 1, 12},
		{12.6, 1, 13},
		{-0.6, 1, -1},
	}
	for _, tt := range tests {
		if got := Quantize(tt.v, tt.step); got != tt.want {
			t.Errorf("Quantize(%v, %v) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestAngleDegrees(t *testing.T) {
	tests := []struct {
		b    Vec
		want float64
	}{
		{V(1, 0), 0},
		{V(0, 1), 90},
		{V(-1, 0), 180},
		{V(0, -1), 270},
	}
	for _, tt := range tests {
		if got := AngleDegrees(V(0, 0), tt.b); !near(got, tt.want) {
			t.Errorf("AngleDegrees(0, %v) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestLerpAndClamp(t *testing.T) {
	if got := Lerp(V(0, 0), V(10, 20), 0.25); !nearVec(got, V(2.5, 5)) {
		t.Errorf("Lerp = %v, want (2.5, 5)", got)
	}
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %v, want 3", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1, 0, 3) = %v, want 0", got)
	}
}
