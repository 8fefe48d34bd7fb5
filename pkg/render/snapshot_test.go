package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestSnapshot(t *testing.T) {
	ws := workspace.New()
	ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "")
	ws.AddSurface(workspace.KindRectangle, 100, 0, 50, 50, "")
	tokens := []sim.Token{{Pos: geom.V(75, 25)}}

	data, err := Snapshot(ws, tokens, SnapshotOptions{Scale: 2})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// 150x50 world units plus 20 padding per side, at 2 pixels per unit.
	if got, want := img.Bounds(), image.Rect(0, 0, 380, 180); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	px := func(x, y float64) color.Color {
		return img.At(int((x+20)*2), int((y+20)*2))
	}
	tests := []struct {
		name string
		x, y float64
		want color.Color
	}{
		{"background", -15, -15, snapshotBackground},
		{"start fill", 10, 25, snapshotStartFill},
		{"plain fill", 125, 10, snapshotFill},
		{"token", 75, 25, snapshotToken},
	}
	for _, tt := range tests {
		if got := px(tt.x, tt.y); !sameColor(got, tt.want) {
			t.Errorf("%s at (%v, %v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSnapshotEmpty(t *testing.T) {
	data, err := Snapshot(workspace.New(), nil, SnapshotOptions{})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 140 || cfg.Height != 140 {
		t.Errorf("size = %dx%d, want 140x140", cfg.Width, cfg.Height)
	}
}

func TestSnapshotTooLarge(t *testing.T) {
	ws := workspace.New()
	ws.AddSurface(workspace.KindRectangle, 0, 0, 50, 50, "A")
	if _, err := Snapshot(ws, nil, SnapshotOptions{Scale: 1000}); err == nil {
		t.Error("expected an error for an oversized image")
	}
}
