package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/format"
	"github.com/matzehuels/flowboard/pkg/graph"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/script"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/snap"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Each Execute
// works on its own workspace, so one Runner can serve several goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → format → simulate → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	ws, ix, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Workspace = ws
	result.Index = ix
	result.Stats.LoadTime = time.Since(loadStart)

	// Stage 2: Format
	if opts.Format {
		res, err := r.Format(ws, opts)
		if err != nil {
			return nil, fmt.Errorf("format: %w", err)
		}
		result.Layout = res
	}
	result.Stats.Surfaces, result.Stats.Lines, result.Stats.Points = ws.Counts()

	// Stage 3: Simulate, or just build the graph
	if opts.Simulate {
		simStart := time.Now()
		if err := r.Simulate(ctx, ws, opts, result); err != nil {
			return nil, fmt.Errorf("simulate: %w", err)
		}
		result.Stats.SimTime = time.Since(simStart)
	} else {
		g, err := r.BuildGraph(ctx, ws)
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		result.Graph = g
	}
	result.Stats.Nodes = result.Graph.NodeCount()
	result.Stats.Edges = result.Graph.EdgeCount()

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, ws, result.Graph, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.CacheInfo.RenderHit = hit
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Load parses the script and replays it into a new workspace.
func (r *Runner) Load(ctx context.Context, opts Options) (*workspace.Workspace, *script.Index, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	observability.Pipeline().OnLoadStart(ctx, opts.SourceName)
	start := time.Now()

	ws, ix, err := load(opts)
	surfaces, lines := 0, 0
	if ws != nil {
		surfaces, lines, _ = ws.Counts()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.SourceName, surfaces, lines, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	r.Logger.Info("loaded script",
		"source", opts.SourceName,
		"surfaces", surfaces,
		"lines", lines,
		"duration", time.Since(start))
	for _, id := range ix.Pending {
		r.Logger.Warn("line starts on a decision with both branches taken", "line", id)
	}
	return ws, ix, nil
}

func load(opts Options) (*workspace.Workspace, *script.Index, error) {
	var (
		s   *script.Script
		err error
	)
	if opts.Source != nil {
		s, err = script.Parse(opts.Source)
	} else {
		s, err = script.Load(opts.Script)
	}
	if err != nil {
		return nil, nil, err
	}
	ws := workspace.New()
	ix, err := s.Apply(snap.NewResolver(ws, opts.Snap))
	if err != nil {
		return ws, nil, err
	}
	return ws, ix, nil
}

// Format selects everything and runs the layout formatter.
func (r *Runner) Format(ws *workspace.Workspace, opts Options) (format.Result, error) {
	ws.SelectAll()
	defer ws.ClearSelection()

	res, err := format.New(ws, opts.Layout).FormatSelection()
	if err != nil {
		return res, err
	}
	r.Logger.Info("formatted diagram", "snapped", res.Snapped, "aligned", res.Aligned)
	for _, m := range res.Moves {
		r.Logger.Debug("format move", "kind", m.Kind, "from", m.From, "to", m.To)
	}
	return res, nil
}

// BuildGraph builds the workspace graph.
func (r *Runner) BuildGraph(ctx context.Context, ws *workspace.Workspace) (*graph.Graph, error) {
	start := time.Now()
	g, err := graph.Build(ws)
	if err != nil {
		return nil, err
	}
	stats := g.Stats()
	observability.Pipeline().OnGraphBuilt(ctx, stats.Nodes, stats.Edges, time.Since(start))
	r.Logger.Info("built graph",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"hubs", stats.Hubs,
		"duration", time.Since(start))
	return g, nil
}

// Simulate plays the flow with a fixed time step until every token is gone
// or the time limit is reached, recording sampled frames into result.
func (r *Runner) Simulate(ctx context.Context, ws *workspace.Workspace, opts Options, result *Result) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	s := sim.New(ws, opts.Sim)
	s.Logger = r.Logger
	if err := s.Start(ctx); err != nil {
		return err
	}
	result.Graph = s.Graph()
	result.RunID = s.RunID()
	stats := s.Graph().Stats()
	observability.Pipeline().OnGraphBuilt(ctx, stats.Nodes, stats.Edges, 0)

	result.Frames = append(result.Frames, s.Frame())
	for s.Running() {
		if err := ctx.Err(); err != nil {
			s.Stop(ctx, false)
			return err
		}
		if s.Stats().Elapsed >= opts.TimeLimit {
			s.Stop(ctx, false)
			result.StopReason = ReasonTimeLimit
			break
		}
		s.Tick(ctx, opts.Step)
		if f := s.Frame(); !f.Running || f.Tick%opts.SampleEvery == 0 {
			result.Frames = append(result.Frames, f)
		}
	}
	if result.StopReason == "" {
		result.StopReason = sim.ReasonDrained
	}

	st := s.Stats()
	result.Stats.Ticks = st.Ticks
	result.Stats.Started = st.Started
	result.Stats.Spawned = st.Spawned
	result.Stats.Destroyed = st.Destroyed
	result.Stats.Dropped = st.Dropped
	result.Stats.Peak = st.Peak
	result.Stats.Virtual = st.Elapsed

	r.Logger.Info("simulated flow",
		"run", result.RunID,
		"ticks", st.Ticks,
		"peak", st.Peak,
		"virtual", st.Elapsed,
		"reason", result.StopReason)
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
