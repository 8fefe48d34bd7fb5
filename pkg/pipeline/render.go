package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/graph"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/render"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// DOTOptions derives graph labels and start highlights from the workspace.
func DOTOptions(ws *workspace.Workspace, detailed bool) graph.DOTOptions {
	opts := graph.DOTOptions{
		Labels:   make(map[workspace.SurfaceID]string),
		Detailed: detailed,
	}
	for _, id := range ws.Surfaces() {
		s, err := ws.Surface(id)
		if err != nil {
			continue
		}
		if s.Name != "" {
			opts.Labels[id] = s.Name
		}
		if s.Kind.IsStart() {
			opts.Starts = append(opts.Starts, id)
		}
	}
	return opts
}

// Render produces every requested artifact without consulting the cache.
func Render(ctx context.Context, ws *workspace.Workspace, g *graph.Graph, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	dot := graph.ToDOT(g, DOTOptions(ws, opts.Detailed))
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := renderOne(ctx, g, dot, f, opts.Scale)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}

func renderOne(ctx context.Context, g *graph.Graph, dot, format string, scale float64) ([]byte, error) {
	if format == FormatJSON {
		return graph.MarshalJSON(g)
	}
	return render.Render(ctx, dot, format, scale)
}

// RenderWithCacheInfo renders the requested artifacts, reusing cached
// images keyed by the DOT source. DOT and JSON are cheap and never cached.
// The returned bool is true when every cacheable artifact was a hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, ws *workspace.Workspace, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.renderCached(ctx, ws, g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) renderCached(ctx context.Context, ws *workspace.Workspace, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	dot := graph.ToDOT(g, DOTOptions(ws, opts.Detailed))
	dotHash := cache.Hash([]byte(dot))

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit, cacheable := true, false
	for _, f := range opts.Formats {
		if f == FormatDOT || f == FormatJSON {
			data, err := renderOne(ctx, g, dot, f, opts.Scale)
			if err != nil {
				return nil, false, fmt.Errorf("render %s: %w", f, err)
			}
			artifacts[f] = data
			continue
		}

		cacheable = true
		ko := cache.ArtifactKeyOpts{Format: f, Detailed: opts.Detailed}
		if f == FormatPNG {
			ko.Scale = opts.Scale
		}
		key := r.Keyer.ArtifactKey(dotHash, ko)
		if !opts.Refresh {
			if data, ok, _ := r.Cache.Get(ctx, key); ok {
				r.Logger.Debug("artifact cache hit", "format", f)
				artifacts[f] = data
				continue
			}
		}
		allHit = false

		data, err := renderOne(ctx, g, dot, f, opts.Scale)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", f, err)
		}
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("failed to cache artifact", "format", f, "error", err)
		}
		artifacts[f] = data
	}
	return artifacts, cacheable && allHit, nil
}
