package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Snapshot defaults.
const (
	DefaultSnapshotPadding = 20.0
	DefaultSnapshotFont    = 12.0

	// maxSnapshotSide bounds the image side in pixels.
	maxSnapshotSide = 8192
)

var (
	snapshotBackground = color.White
	snapshotOutline    = color.RGBA{0x44, 0x44, 0x44, 0xff}
	snapshotStartFill  = color.RGBA{0xe3, 0xf4, 0xe8, 0xff}
	snapshotFill       = color.RGBA{0xf7, 0xf7, 0xf7, 0xff}
	snapshotLabel      = color.RGBA{0x22, 0x22, 0x22, 0xff}
	snapshotToken      = color.RGBA{0xff, 0x8c, 0x42, 0xff}
)

// SnapshotOptions configures [Snapshot].
type SnapshotOptions struct {
	// Scale is the number of pixels per world unit. Zero means 1.
	Scale float64

	// Padding is the world margin around the diagram. Zero means
	// DefaultSnapshotPadding.
	Padding float64

	// FontSize is the label size in points. Zero means DefaultSnapshotFont.
	FontSize float64
}

func (o SnapshotOptions) withDefaults() SnapshotOptions {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Padding <= 0 {
		o.Padding = DefaultSnapshotPadding
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultSnapshotFont
	}
	return o
}

var (
	labelFont     *truetype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

func fontFace(size float64) (font.Face, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(goregular.TTF)
	})
	if labelFontErr != nil {
		return nil, fmt.Errorf("parse font: %w", labelFontErr)
	}
	return truetype.NewFace(labelFont, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}

// Snapshot draws the workspace and the given tokens as a PNG image. Lines
// are tinted by branch tag, start surfaces are filled green and tokens are
// drawn as dots on top.
func Snapshot(ws *workspace.Workspace, tokens []sim.Token, opts SnapshotOptions) ([]byte, error) {
	opts = opts.withDefaults()

	view, ok := ws.Extent()
	if !ok {
		view = geom.Box{W: 100, H: 100}
	}
	view = geom.Box{
		X: view.X - opts.Padding,
		Y: view.Y - opts.Padding,
		W: view.W + 2*opts.Padding,
		H: view.H + 2*opts.Padding,
	}

	w := int(math.Ceil(view.W * opts.Scale))
	h := int(math.Ceil(view.H * opts.Scale))
	if w > maxSnapshotSide || h > maxSnapshotSide {
		return nil, fmt.Errorf("snapshot of %dx%d pixels exceeds %d; lower the scale", w, h, maxSnapshotSide)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(snapshotBackground)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-view.X, -view.Y)

	face, err := fontFace(opts.FontSize / opts.Scale)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for _, id := range ws.Surfaces() {
		s, err := ws.Surface(id)
		if err != nil {
			continue
		}
		drawSurface(dc, s, opts.Scale)
	}

	for _, id := range ws.Lines() {
		l, err := ws.Line(id)
		if err != nil {
			continue
		}
		a, b, err := ws.LineEnds(id)
		if err != nil {
			continue
		}
		dc.SetColor(l.Branch.Color())
		dc.SetLineWidth(2 / opts.Scale)
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
		if l.Branch.HasMarker() {
			mid := geom.Lerp(a, b, 0.5)
			dc.DrawStringAnchored(l.Branch.Glyph(), mid.X, mid.Y, 0.5, 1.2)
		}
	}

	dc.SetColor(snapshotToken)
	for _, t := range tokens {
		dc.DrawCircle(t.Pos.X, t.Pos.Y, 4/opts.Scale)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSurface(dc *gg.Context, s workspace.Surface, scale float64) {
	b := s.Box
	c := b.Center()

	switch s.Kind.Outline() {
	case workspace.OutlineDiamond:
		dc.MoveTo(c.X, b.Y)
		dc.LineTo(b.Right(), c.Y)
		dc.LineTo(c.X, b.Bottom())
		dc.LineTo(b.X, c.Y)
		dc.ClosePath()
	case workspace.OutlineCircle:
		dc.DrawCircle(c.X, c.Y, max(1, min(b.W, b.H)/2))
	default:
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	}

	if s.Kind.IsStart() {
		dc.SetColor(snapshotStartFill)
	} else {
		dc.SetColor(snapshotFill)
	}
	dc.FillPreserve()
	dc.SetColor(snapshotOutline)
	dc.SetLineWidth(1.5 / scale)
	dc.Stroke()

	if s.Name != "" {
		dc.SetColor(snapshotLabel)
		dc.DrawStringAnchored(s.Name, c.X, c.Y, 0.5, 0.5)
	}
}
