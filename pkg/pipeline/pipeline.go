// Package pipeline runs a diagram script end to end.
//
// The pipeline is shared by every CLI command that works on a script, so
// that loading, formatting, simulating and exporting behave the same way
// everywhere.
//
// # Architecture
//
// A run consists of up to four stages:
//
//  1. Load: parse the edit script and replay it into a fresh workspace
//  2. Format: optionally tidy the whole diagram with the layout formatter
//  3. Simulate: optionally play the flow headless with a fixed time step
//  4. Render: export the workspace graph as DOT, JSON, SVG, PDF or PNG
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Script:   "flow.toml",
//	    Simulate: true,
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Peak)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/format"
	"github.com/matzehuels/flowboard/pkg/graph"
	"github.com/matzehuels/flowboard/pkg/render"
	"github.com/matzehuels/flowboard/pkg/script"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/snap"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTimeLimit bounds the virtual time of a headless run.
	DefaultTimeLimit = time.Minute

	// DefaultStep is the fixed time step of a headless run.
	DefaultStep = sim.DefaultTickInterval

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// ReasonTimeLimit is the stop reason of a run cut off by the time limit.
const ReasonTimeLimit = "time-limit"

// Format constants for output formats.
const (
	FormatDOT  = render.FormatDOT
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Script is the path of the edit script. Ignored when Source is set.
	Script string

	// Source is the script content. SourceName labels it in logs.
	Source     []byte
	SourceName string

	// Format runs the layout formatter over the whole diagram.
	Format bool

	// Simulate plays the flow headless after loading.
	Simulate bool

	// Step is the fixed tick length, TimeLimit the virtual time after which
	// a run is cut off, and SampleEvery records one frame per that many
	// ticks (the final frame is always recorded).
	Step        time.Duration
	TimeLimit   time.Duration
	SampleEvery int

	// Formats lists the artifacts to produce. Empty means none.
	Formats []string

	// Detailed adds positions to DOT node labels.
	Detailed bool

	// Scale is the PNG scale factor.
	Scale float64

	// Refresh bypasses cached artifacts.
	Refresh bool

	Snap   snap.Options
	Layout format.Options
	Sim    sim.Config

	Logger *log.Logger

	validated bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(f string) error {
	if !ValidFormats[f] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, json, svg, png, pdf)", f)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil && o.Script == "" {
		return fmt.Errorf("script is required")
	}
	if o.SourceName == "" {
		o.SourceName = o.Script
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.SampleEvery <= 0 {
		o.SampleEvery = 1
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Workspace is the diagram after loading and formatting.
	Workspace *workspace.Workspace

	// Index maps script names to handles.
	Index *script.Index

	// Graph is the workspace graph. For simulated runs it is the graph the
	// simulator played on.
	Graph *graph.Graph

	// Layout is the formatter outcome when Options.Format is set.
	Layout format.Result

	// Frames are the sampled simulation frames.
	Frames []sim.Frame

	// RunID identifies the simulation run.
	RunID string

	// StopReason says why the simulation ended.
	StopReason string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Surfaces int
	Lines    int
	Points   int
	Nodes    int
	Edges    int

	Ticks     int
	Started   int
	Spawned   int
	Destroyed int
	Dropped   int
	Peak      int
	Virtual   time.Duration // simulated time

	LoadTime   time.Duration
	SimTime    time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}
