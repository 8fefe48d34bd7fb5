package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/matzehuels/flowboard/pkg/sim"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t, nil)
	opts := Options{Source: []byte(splitScript), Sim: sim.Config{Speed: 10}, Scale: 1}
	ws, _, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		at     time.Duration
		tokens int
	}{
		{"diagram only", 0, 0},
		{"mid first line", 500 * time.Millisecond, 1},
		{"after the fork", 1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, frame, err := r.Snapshot(ctx, ws, opts, tt.at)
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if len(frame.Tokens) != tt.tokens {
				t.Errorf("tokens = %d, want %d", len(frame.Tokens), tt.tokens)
			}
			if frame.Elapsed != tt.at {
				t.Errorf("Elapsed = %v, want %v", frame.Elapsed, tt.at)
			}
			if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
				t.Errorf("not a PNG: %v", err)
			}
		})
	}
}

func TestSnapshotWithoutStart(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t, nil)
	opts := Options{Source: []byte("[[surface]]\nname = \"A\"\nkind = \"rectangle\"\n")}
	ws, _, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	data, frame, err := r.Snapshot(ctx, ws, opts, time.Second)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(frame.Tokens) != 0 || len(data) == 0 {
		t.Errorf("want an image without tokens, got %d tokens and %d bytes", len(frame.Tokens), len(data))
	}
}
