package sim

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/graph"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Defaults for Config.
const (
	DefaultSpeed        = 80.0
	DefaultMaxTokens    = 2000
	DefaultTickInterval = 16 * time.Millisecond
)

// Stop reasons reported to hooks and logs.
const (
	ReasonDrained   = "drained"
	ReasonStopped   = "stopped"
	ReasonCancelled = "cancelled"
	ReasonRestarted = "restarted"
)

// zeroLength is the edge length under which an edge is crossed instantly.
const zeroLength = 1e-9

// State is the simulator lifecycle state.
type State uint8

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Config configures a Simulator.
type Config struct {
	// Speed is the token speed in world units per second.
	Speed float64

	// MaxTokens caps the number of live tokens. Spawns beyond the cap are
	// dropped silently.
	MaxTokens int

	// TickInterval is the period used by Run when none is given.
	TickInterval time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Speed: DefaultSpeed, MaxTokens: DefaultMaxTokens, TickInterval: DefaultTickInterval}
}

func (c Config) withDefaults() Config {
	if c.Speed <= 0 {
		c.Speed = DefaultSpeed
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return c
}

// Token is a snapshot of a token moving along the graph.
type Token struct {
	ID       uint64
	Edge     graph.Edge
	Progress float64
	Pos      geom.Vec
}

type token struct {
	id       uint64
	edge     graph.Edge
	progress float64
}

func (t *token) snapshot() Token {
	return Token{ID: t.id, Edge: t.edge, Progress: t.progress, Pos: t.edge.PointAt(t.progress)}
}

// Stats counts what happened during the current or last run.
type Stats struct {
	Ticks     int
	Started   int
	Spawned   int
	Destroyed int
	Dropped   int
	Peak      int
	Elapsed   time.Duration // Virtual time passed to Tick
}

// Simulator moves tokens from START surfaces along the workspace graph.
//
// The graph is built once by Start and stays frozen for the run; edits to
// the workspace while running are not picked up (see Stale). The
// simulator is driven by Tick, either directly or through Run.
//
// A Simulator is not safe for concurrent use.
type Simulator struct {
	// Logger receives lifecycle messages. Defaults to log.Default().
	Logger *log.Logger

	ws    *workspace.Workspace
	cfg   Config
	state State
	g     *graph.Graph

	tokens []*token
	nextID uint64

	runID    string
	startRev uint64
	stats    Stats
}

// New creates an idle simulator over ws. Zero config fields take their
// defaults; a negative MaxTokens disables spawning entirely.
func New(ws *workspace.Workspace, cfg Config) *Simulator {
	return &Simulator{ws: ws, cfg: cfg.withDefaults()}
}

func (s *Simulator) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.cfg }

// State returns the lifecycle state.
func (s *Simulator) State() State { return s.state }

// Running reports whether the simulator is running.
func (s *Simulator) Running() bool { return s.state == Running }

// RunID returns the identifier of the current or last run.
func (s *Simulator) RunID() string { return s.runID }

// Graph returns the graph of the current or last run, or nil.
func (s *Simulator) Graph() *graph.Graph { return s.g }

// Stats returns the counters of the current or last run.
func (s *Simulator) Stats() Stats { return s.stats }

// Stale reports whether the workspace was edited after the running
// simulation took its graph snapshot.
func (s *Simulator) Stale() bool {
	return s.state == Running && s.ws.Revision() != s.startRev
}

// Tokens returns a snapshot of the live tokens in creation order.
func (s *Simulator) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	for i, t := range s.tokens {
		out[i] = t.snapshot()
	}
	return out
}

// TokenCount returns the number of live tokens.
func (s *Simulator) TokenCount() int { return len(s.tokens) }

// Start builds the graph and spawns one token per edge leaving a START
// surface. It fails without changing any state when the workspace has no
// START surface, when no edge leaves one, or when no token could be
// spawned. Calling Start while running restarts the run.
func (s *Simulator) Start(ctx context.Context) error {
	var starts []workspace.SurfaceID
	for _, id := range s.ws.Surfaces() {
		if sf, err := s.ws.Surface(id); err == nil && sf.Kind.IsStart() {
			starts = append(starts, id)
		}
	}
	if len(starts) == 0 {
		return s.fail(ctx, errors.New(errors.ErrCodeNoStartSurface, "add a START surface to play the flow"))
	}

	g, err := graph.Build(s.ws)
	if err != nil {
		return s.fail(ctx, errors.Wrap(errors.ErrCodeInternal, err, "build graph"))
	}

	edges := g.StartEdges(starts)
	if len(edges) == 0 {
		return s.fail(ctx, errors.New(errors.ErrCodeNoConnectedEdges, "the START surface has no connected lines"))
	}

	limit := min(len(edges), s.cfg.MaxTokens)
	if limit <= 0 {
		return s.fail(ctx, errors.New(errors.ErrCodeNoTokens, "no tokens could be created"))
	}

	if s.state == Running {
		s.stop(ctx, true, ReasonRestarted)
	}

	s.g = g
	s.tokens = s.tokens[:0]
	s.stats = Stats{}
	for _, e := range edges[:limit] {
		s.spawn(e)
	}
	s.stats.Started = limit
	s.stats.Dropped = len(edges) - limit
	s.stats.Peak = len(s.tokens)
	s.runID = uuid.NewString()
	s.startRev = s.ws.Revision()
	s.state = Running

	stats := g.Stats()
	s.logger().Debug("simulation started", "run", s.runID, "tokens", len(s.tokens), "nodes", stats.Nodes, "edges", stats.Edges)
	observability.Simulation().OnStart(ctx, s.runID, len(s.tokens))
	return nil
}

func (s *Simulator) fail(ctx context.Context, err error) error {
	s.logger().Debug("simulation not started", "err", err)
	observability.Simulation().OnStartFailed(ctx, err)
	return err
}

func (s *Simulator) spawn(e graph.Edge) {
	s.nextID++
	s.tokens = append(s.tokens, &token{id: s.nextID, edge: e})
}

// Stop halts the run. With clear set, all tokens are removed; otherwise
// they stay where they are. Stop is idempotent.
func (s *Simulator) Stop(ctx context.Context, clear bool) {
	s.stop(ctx, clear, ReasonStopped)
}

func (s *Simulator) stop(ctx context.Context, clear bool, reason string) {
	if clear {
		s.tokens = s.tokens[:0]
	}
	if s.state != Running {
		return
	}
	s.state = Idle
	s.logger().Debug("simulation stopped", "run", s.runID, "reason", reason, "ticks", s.stats.Ticks)
	observability.Simulation().OnStop(ctx, s.runID, s.stats.Ticks, reason)
}

// Tick advances every token by Speed × dt. Non-positive durations and
// ticks while idle are ignored.
//
// Tokens are advanced in creation order. Tokens reaching a dead end are
// removed after all tokens were advanced, and tokens spawned at branching
// nodes are added after that, so a token never moves twice in one tick.
// When no token is left, the simulator stops itself.
func (s *Simulator) Tick(ctx context.Context, dt time.Duration) {
	if s.state != Running || dt <= 0 {
		return
	}
	s.stats.Ticks++
	s.stats.Elapsed += dt

	budget := s.cfg.Speed * dt.Seconds()
	maxHops := s.g.EdgeCount() + 1

	dead := make([]bool, len(s.tokens))
	var spawns []graph.Edge
	for i, t := range s.tokens {
		alive, next := s.advance(t, budget, maxHops)
		dead[i] = !alive
		spawns = append(spawns, next...)
	}

	kept := s.tokens[:0]
	for i, t := range s.tokens {
		if dead[i] {
			s.stats.Destroyed++
			continue
		}
		kept = append(kept, t)
	}
	clear(s.tokens[len(kept):])
	s.tokens = kept

	spawned, dropped := 0, 0
	for _, e := range spawns {
		if len(s.tokens) >= s.cfg.MaxTokens {
			dropped++
			continue
		}
		s.spawn(e)
		spawned++
	}
	if len(spawns) > 0 {
		s.stats.Spawned += spawned
		s.stats.Dropped += dropped
		observability.Simulation().OnBranch(ctx, s.runID, spawned, dropped)
	}
	s.stats.Peak = max(s.stats.Peak, len(s.tokens))

	if len(s.tokens) == 0 {
		s.stop(ctx, true, ReasonDrained)
	}
}

// advance moves one token by budget world units, possibly over several
// edges. It reports whether the token survives and which edges need a new
// token because the path branched.
func (s *Simulator) advance(t *token, budget float64, maxHops int) (bool, []graph.Edge) {
	var spawns []graph.Edge
	// zeroHops counts consecutive zero-length crossings.
	zeroHops := 0
	for {
		length := t.edge.Length()
		if length > zeroLength {
			zeroHops = 0
			left := (1 - t.progress) * length
			if budget < left {
				t.progress += budget / length
				return true, spawns
			}
			budget -= left
		} else {
			zeroHops++
		}
		t.progress = 1

		if zeroHops > maxHops {
			// A loop of zero-length edges; resume next tick.
			return true, spawns
		}

		var next []graph.Edge
		for _, e := range s.g.Outgoing(t.edge.To) {
			if e.To != t.edge.From {
				next = append(next, e)
			}
		}
		if len(next) == 0 {
			return false, spawns
		}
		t.edge = next[0]
		t.progress = 0
		spawns = append(spawns, next[1:]...)
	}
}

// Frame is a snapshot of the simulator handed to Run callbacks.
type Frame struct {
	Tick    int
	Elapsed time.Duration
	Tokens  []Token
	Running bool
	Stale   bool
}

// Frame returns a snapshot of the current state.
func (s *Simulator) Frame() Frame {
	return Frame{
		Tick:    s.stats.Ticks,
		Elapsed: s.stats.Elapsed,
		Tokens:  s.Tokens(),
		Running: s.Running(),
		Stale:   s.Stale(),
	}
}

// Run ticks the simulator on a wall-clock ticker until it stops by itself
// or ctx is cancelled, calling onFrame after every tick. The elapsed real
// time between ticks is passed to Tick. interval <= 0 uses the configured
// TickInterval. Cancellation stops the run and keeps the tokens in place.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, onFrame func(Frame)) error {
	if interval <= 0 {
		interval = s.cfg.TickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for s.Running() {
		select {
		case <-ctx.Done():
			s.stop(ctx, false, ReasonCancelled)
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(ctx, now.Sub(last))
			last = now
			if onFrame != nil {
				onFrame(s.Frame())
			}
		}
	}
	return nil
}
