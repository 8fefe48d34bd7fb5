package workspace

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// MinSize is the smallest width or height a surface can have.
const MinSize = 50.0

// =============================================================================
// Handles
// =============================================================================

// SurfaceID is a weak handle to a surface. The zero value refers to nothing.
type SurfaceID struct{ h handle }

// LineID is a weak handle to a line. The zero value refers to nothing.
type LineID struct{ h handle }

// PointID is a weak handle to a point. The zero value refers to nothing.
type PointID struct{ h handle }

// IsZero reports whether the handle is the zero value.
func (id SurfaceID) IsZero() bool { return !id.h.valid() }

// IsZero reports whether the handle is the zero value.
func (id LineID) IsZero() bool { return !id.h.valid() }

// IsZero reports whether the handle is the zero value.
func (id PointID) IsZero() bool { return !id.h.valid() }

func (id SurfaceID) String() string { return id.h.format("s") }
func (id LineID) String() string    { return id.h.format("l") }
func (id PointID) String() string   { return id.h.format("p") }

// =============================================================================
// Surface kinds
// =============================================================================

// Kind identifies the type of a surface.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindSquare
	KindDiamond
	KindDecision
	KindStart
	KindImage
	KindOpenBrowser
	KindClick
	KindWait
	KindType
	KindGetValue
)

var kindNames = [...]string{
	KindRectangle:   "rectangle",
	KindSquare:      "square",
	KindDiamond:     "diamond",
	KindDecision:    "decision",
	KindStart:       "start",
	KindImage:       "image",
	KindOpenBrowser: "open-browser",
	KindClick:       "click",
	KindWait:        "wait",
	KindType:        "type",
	KindGetValue:    "get-value",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind converts a kind name (case-insensitive) into a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown surface kind %q", s)
}

// Kinds returns every surface kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// IsDecision reports whether lines leaving the surface carry branch tags.
func (k Kind) IsDecision() bool { return k == KindDecision }

// IsStart reports whether the surface seeds tokens when a run starts.
func (k Kind) IsStart() bool { return k == KindStart }

// IsImage reports whether the surface is an image placeholder.
func (k Kind) IsImage() bool { return k == KindImage }

// IsAction reports whether the surface is an automation action marker.
func (k Kind) IsAction() bool { return k >= KindOpenBrowser && k <= KindGetValue }

// Resizable reports whether Resize is allowed. Images keep their size.
func (k Kind) Resizable() bool { return k != KindImage }

// Outline identifies which geometric rule a snap query uses for a kind.
type Outline uint8

const (
	OutlineRect Outline = iota
	OutlineDiamond
	OutlineCircle
)

// Outline returns the snap outline of the kind.
func (k Kind) Outline() Outline {
	switch k {
	case KindDiamond, KindDecision:
		return OutlineDiamond
	case KindStart:
		return OutlineCircle
	default:
		return OutlineRect
	}
}

// =============================================================================
// Points
// =============================================================================

// PointKind is the variant tag of a point.
type PointKind uint8

const (
	PointFree PointKind = iota
	PointOnSurface
	PointOnLine
)

func (k PointKind) String() string {
	switch k {
	case PointFree:
		return "free"
	case PointOnSurface:
		return "on-surface"
	case PointOnLine:
		return "on-line"
	}
	return "unknown"
}

// End selects one endpoint of a line.
type End uint8

const (
	End1 End = iota
	End2
)

func (e End) String() string {
	if e == End1 {
		return "p1"
	}
	return "p2"
}

// =============================================================================
// Branch tags
// =============================================================================

// Branch is the tag carried by lines leaving a decision surface.
type Branch uint8

const (
	BranchNone Branch = iota
	BranchTrue
	BranchFalse
)

var (
	branchTrueColor  = mustHex("#2e9e5b")
	branchFalseColor = mustHex("#d64541")
	branchNoneColor  = mustHex("#8a8a8a")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (b Branch) String() string {
	switch b {
	case BranchTrue:
		return "true"
	case BranchFalse:
		return "false"
	}
	return "none"
}

// ParseBranch converts "true", "false", "none" or "" into a Branch.
func ParseBranch(s string) (Branch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BranchNone, nil
	case "true", "yes", "v":
		return BranchTrue, nil
	case "false", "no", "f":
		return BranchFalse, nil
	}
	return BranchNone, errors.New(errors.ErrCodeInvalidInput, "unknown branch %q", s)
}

// HasMarker reports whether a UI should draw a branch marker for the line.
func (b Branch) HasMarker() bool { return b != BranchNone }

// Glyph returns the single-letter marker drawn at the line midpoint.
func (b Branch) Glyph() string {
	switch b {
	case BranchTrue:
		return "V"
	case BranchFalse:
		return "F"
	}
	return ""
}

// Color returns the marker color.
func (b Branch) Color() colorful.Color {
	switch b {
	case BranchTrue:
		return branchTrueColor
	case BranchFalse:
		return branchFalseColor
	}
	return branchNoneColor
}

// Hex returns the marker color as "#rrggbb".
func (b Branch) Hex() string { return b.Color().Hex() }

// Highlight returns the marker color blended toward white, used for the
// selected state of a tagged line.
func (b Branch) Highlight() colorful.Color {
	return b.Color().BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.4).Clamped()
}
