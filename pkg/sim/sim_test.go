package sim

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// fixture builds diagrams with helpers that fail the test on error.
type fixture struct {
	t  *testing.T
	ws *workspace.Workspace
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ws: workspace.New()}
}

func (f *fixture) at(s workspace.SurfaceID, lx, ly float64) workspace.PointID {
	f.t.Helper()
	p, err := f.ws.NewSurfacePoint(s, lx, ly)
	if err != nil {
		f.t.Fatal(err)
	}
	return p
}

func (f *fixture) line(p1, p2 workspace.PointID) workspace.LineID {
	f.t.Helper()
	l, err := f.ws.AddLine(p1, p2)
	if err != nil {
		f.t.Fatal(err)
	}
	return l
}

func (f *fixture) sim(cfg Config) *Simulator {
	s := New(f.ws, cfg)
	s.Logger = log.New(io.Discard)
	return s
}

func (f *fixture) start(cfg Config) *Simulator {
	f.t.Helper()
	s := f.sim(cfg)
	if err := s.Start(context.Background()); err != nil {
		f.t.Fatalf("Start: %v", err)
	}
	return s
}

// splitScenario: S --10--> A, then A --10--> B and A --10--> C.
func splitScenario(t *testing.T) (*fixture, [3]workspace.LineID) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	a := f.ws.AddSurface(workspace.KindRectangle, 60, 0, 50, 50, "A")
	b := f.ws.AddSurface(workspace.KindRectangle, 120, 0, 50, 50, "B")
	c := f.ws.AddSurface(workspace.KindRectangle, 60, 60, 50, 50, "C")
	l1 := f.line(f.at(s, 50, 25), f.at(a, 0, 25))
	l2 := f.line(f.at(a, 50, 25), f.at(b, 0, 25))
	l3 := f.line(f.at(a, 25, 50), f.at(c, 25, 0))
	return f, [3]workspace.LineID{l1, l2, l3}
}

func TestSplitScenario(t *testing.T) {
	f, lines := splitScenario(t)
	ctx := context.Background()
	s := f.start(Config{Speed: 10})

	if s.TokenCount() != 1 {
		t.Fatalf("TokenCount() after Start = %d, want 1", s.TokenCount())
	}

	s.Tick(ctx, time.Second)
	toks := s.Tokens()
	if len(toks) != 2 {
		t.Fatalf("TokenCount() at t=1s = %d, want 2", len(toks))
	}
	if toks[0].Edge.Line != lines[1] || toks[1].Edge.Line != lines[2] {
		t.Errorf("tokens on %s and %s, want %s and %s", toks[0].Edge.Line, toks[1].Edge.Line, lines[1], lines[2])
	}
	for i, tk := range toks {
		if tk.Progress != 0 {
			t.Errorf("token %d progress = %v, want 0", i, tk.Progress)
		}
	}
	if !s.Running() {
		t.Fatal("simulator stopped early")
	}

	s.Tick(ctx, time.Second)
	if s.TokenCount() != 0 {
		t.Errorf("TokenCount() at t=2s = %d, want 0", s.TokenCount())
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want idle", s.State())
	}

	st := s.Stats()
	if st.Ticks != 2 || st.Spawned != 1 || st.Destroyed != 2 || st.Peak != 2 {
		t.Errorf("Stats() = %+v", st)
	}
	if st.Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", st.Elapsed)
	}
}

func TestPartialTick(t *testing.T) {
	f, lines := splitScenario(t)
	s := f.start(Config{Speed: 10})

	s.Tick(context.Background(), 500*time.Millisecond)
	toks := s.Tokens()
	if len(toks) != 1 || toks[0].Edge.Line != lines[0] {
		t.Fatalf("tokens = %+v, want one on %s", toks, lines[0])
	}
	if math.Abs(toks[0].Progress-0.5) > 1e-9 {
		t.Errorf("Progress = %v, want 0.5", toks[0].Progress)
	}
	if want := geom.V(55, 25); toks[0].Pos.Dist(want) > 1e-9 {
		t.Errorf("Pos = %v, want %v", toks[0].Pos, want)
	}
}

func TestTickCrossesSeveralEdges(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	a := f.ws.AddSurface(workspace.KindRectangle, 60, 0, 50, 50, "A")
	b := f.ws.AddSurface(workspace.KindRectangle, 120, 0, 50, 50, "B")
	f.line(f.at(s, 50, 25), f.at(a, 0, 25))
	l2 := f.line(f.at(a, 50, 25), f.at(b, 0, 25))

	sm := f.start(Config{Speed: 10})
	sm.Tick(context.Background(), 1500*time.Millisecond)

	toks := sm.Tokens()
	if len(toks) != 1 {
		t.Fatalf("TokenCount() = %d, want 1", len(toks))
	}
	if toks[0].Edge.Line != l2 || math.Abs(toks[0].Progress-0.5) > 1e-9 {
		t.Errorf("token on %s at %v, want %s at 0.5", toks[0].Edge.Line, toks[0].Progress, l2)
	}
}

// loopScenario: S --10--> P, then a free square P-Q-R-U with 10-unit sides.
func loopScenario(t *testing.T) *fixture {
	f := newFixture(t)
	p := f.ws.NewFreePoint(60, 25)
	q := f.ws.NewFreePoint(70, 25)
	r := f.ws.NewFreePoint(70, 35)
	u := f.ws.NewFreePoint(60, 35)
	f.line(p, q)
	f.line(q, r)
	f.line(r, u)
	f.line(u, p)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	f.line(f.at(s, 50, 25), p)
	return f
}

func TestLongTickAroundLoop(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Speed: 10}

	once := loopScenario(t).start(cfg)
	once.Tick(ctx, 27*time.Second)

	stepped := loopScenario(t).start(cfg)
	for range 27 {
		stepped.Tick(ctx, time.Second)
	}

	a, b := once.Tokens(), stepped.Tokens()
	if len(a) == 0 || len(b) == 0 {
		t.Fatalf("tokens = %d and %d, want both running", len(a), len(b))
	}
	if a[0].Edge.Line != b[0].Edge.Line || a[0].Pos.Dist(b[0].Pos) > 1e-6 {
		t.Errorf("first token after one 27s tick at %v on %s, after 27 ticks at %v on %s",
			a[0].Pos, a[0].Edge.Line, b[0].Pos, b[0].Edge.Line)
	}
}

func TestStartTwoEdges(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	f.line(f.at(s, 50, 25), f.ws.NewFreePoint(100, 25))
	f.line(f.at(s, 25, 50), f.ws.NewFreePoint(25, 100))

	sm := f.start(Config{})
	toks := sm.Tokens()
	if len(toks) != 2 {
		t.Fatalf("TokenCount() = %d, want 2", len(toks))
	}
	for i, tk := range toks {
		if tk.Progress != 0 {
			t.Errorf("token %d progress = %v, want 0", i, tk.Progress)
		}
	}
	if sm.RunID() == "" {
		t.Error("RunID() is empty")
	}
}

func TestBranchingCounts(t *testing.T) {
	tests := []struct {
		name     string
		branches int
		want     int
	}{
		{"dead end", 0, 0},
		{"single path", 1, 1},
		{"three way split", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
			hub := f.ws.NewFreePoint(60, 25)
			f.line(f.at(s, 50, 25), hub)
			for i := 0; i < tt.branches; i++ {
				f.line(hub, f.ws.NewFreePoint(60+100, float64(i*100)))
			}

			sm := f.start(Config{Speed: 10})
			sm.Tick(context.Background(), time.Second)
			if got := sm.TokenCount(); got != tt.want {
				t.Errorf("TokenCount() = %d, want %d", got, tt.want)
			}
			if tt.want == 0 && sm.Running() {
				t.Error("simulator still running with no tokens")
			}
		})
	}
}

func TestZeroLengthEdge(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	x := f.ws.NewFreePoint(60, 25)
	y := f.ws.NewFreePoint(60, 25)
	f.line(f.at(s, 50, 25), x)
	f.line(x, y)
	last := f.line(y, f.ws.NewFreePoint(160, 25))

	sm := f.start(Config{Speed: 10})
	sm.Tick(context.Background(), time.Second)

	toks := sm.Tokens()
	if len(toks) != 1 || toks[0].Edge.Line != last || toks[0].Progress != 0 {
		t.Fatalf("tokens = %+v, want one at the start of %s", toks, last)
	}
}

func TestTokenCap(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	hub := f.ws.NewFreePoint(60, 25)
	f.line(f.at(s, 50, 25), hub)
	for i := 0; i < 4; i++ {
		f.line(hub, f.ws.NewFreePoint(160, float64(i*100)))
	}

	sm := f.start(Config{Speed: 10, MaxTokens: 2})
	sm.Tick(context.Background(), time.Second)
	if got := sm.TokenCount(); got != 2 {
		t.Errorf("TokenCount() = %d, want 2", got)
	}
	if got := sm.Stats().Dropped; got != 2 {
		t.Errorf("Dropped = %d, want 2", got)
	}
}

func TestStartPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture)
		cfg   Config
		code  errors.Code
	}{
		{
			name:  "no start surface",
			build: func(f *fixture) { f.ws.AddSurface(workspace.KindRectangle, 0, 0, 50, 50, "A") },
			code:  errors.ErrCodeNoStartSurface,
		},
		{
			name: "start without lines",
			build: func(f *fixture) {
				f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
				f.line(f.ws.NewFreePoint(100, 100), f.ws.NewFreePoint(200, 100))
			},
			code: errors.ErrCodeNoConnectedEdges,
		},
		{
			name: "no tokens allowed",
			build: func(f *fixture) {
				s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
				f.line(f.at(s, 50, 25), f.ws.NewFreePoint(100, 25))
			},
			cfg:  Config{MaxTokens: -1},
			code: errors.ErrCodeNoTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.build(f)
			sm := f.sim(tt.cfg)
			err := sm.Start(context.Background())
			if !errors.Is(err, tt.code) {
				t.Fatalf("Start() error = %v, want %s", err, tt.code)
			}
			if sm.State() != Idle || sm.TokenCount() != 0 || sm.Graph() != nil {
				t.Errorf("state changed after failed Start: %v, %d tokens", sm.State(), sm.TokenCount())
			}
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	f, _ := splitScenario(t)
	ctx := context.Background()
	sm := f.start(Config{Speed: 10})

	sm.Stop(ctx, false)
	sm.Stop(ctx, false)
	if sm.Running() {
		t.Fatal("Running() after Stop")
	}
	if sm.TokenCount() != 1 {
		t.Errorf("Stop(false) removed tokens: %d", sm.TokenCount())
	}

	sm.Tick(ctx, time.Second)
	if sm.Stats().Ticks != 0 {
		t.Error("Tick advanced an idle simulator")
	}

	sm.Stop(ctx, true)
	if sm.TokenCount() != 0 {
		t.Errorf("Stop(true) kept %d tokens", sm.TokenCount())
	}
}

func TestTickIgnoresNonPositiveDuration(t *testing.T) {
	f, _ := splitScenario(t)
	sm := f.start(Config{Speed: 10})
	sm.Tick(context.Background(), 0)
	sm.Tick(context.Background(), -time.Second)
	if sm.Stats().Ticks != 0 || sm.Tokens()[0].Progress != 0 {
		t.Errorf("Tick with dt <= 0 advanced the simulation: %+v", sm.Stats())
	}
}

func TestGraphFrozenDuringRun(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	f.line(f.at(s, 50, 25), f.ws.NewFreePoint(150, 25))

	sm := f.start(Config{Speed: 10})
	before := sm.Tokens()[0].Pos
	if sm.Stale() {
		t.Fatal("Stale() right after Start")
	}
	if err := f.ws.TranslateSurface(s, 0, 1000); err != nil {
		t.Fatal(err)
	}
	if !sm.Stale() {
		t.Error("Stale() = false after an edit")
	}
	if after := sm.Tokens()[0].Pos; after != before {
		t.Errorf("token moved with the edit: %v -> %v", before, after)
	}
}

func TestRestartWhileRunning(t *testing.T) {
	f, _ := splitScenario(t)
	ctx := context.Background()
	sm := f.start(Config{Speed: 10})
	first := sm.RunID()
	sm.Tick(ctx, time.Second)

	if err := sm.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if sm.RunID() == first {
		t.Error("RunID() unchanged after restart")
	}
	if sm.TokenCount() != 1 || sm.Stats().Ticks != 0 {
		t.Errorf("restart kept old state: %d tokens, %d ticks", sm.TokenCount(), sm.Stats().Ticks)
	}
}

func TestRunDrains(t *testing.T) {
	f, _ := splitScenario(t)
	sm := f.start(Config{Speed: 1e6})

	var frames int
	err := sm.Run(context.Background(), time.Millisecond, func(fr Frame) { frames++ })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if frames == 0 {
		t.Error("Run() produced no frames")
	}
	if sm.Running() || sm.TokenCount() != 0 {
		t.Errorf("Run() returned with %d tokens, running=%v", sm.TokenCount(), sm.Running())
	}
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	s := f.ws.AddSurface(workspace.KindStart, 0, 0, 50, 50, "S")
	f.line(f.at(s, 50, 25), f.ws.NewFreePoint(100000, 25))
	sm := f.start(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sm.Run(ctx, time.Millisecond, nil); err != context.Canceled {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if sm.Running() {
		t.Error("Running() after cancellation")
	}
	if sm.TokenCount() != 1 {
		t.Errorf("TokenCount() = %d, want tokens kept", sm.TokenCount())
	}
}

type recordingHooks struct {
	observability.NoopSimulationHooks
	starts, fails, branches, stops int
	reason                         string
}

func (h *recordingHooks) OnStart(context.Context, string, int)    { h.starts++ }
func (h *recordingHooks) OnStartFailed(context.Context, error)    { h.fails++ }
func (h *recordingHooks) OnBranch(context.Context, string, int, int) { h.branches++ }
func (h *recordingHooks) OnStop(_ context.Context, _ string, _ int, reason string) {
	h.stops++
	h.reason = reason
}

func TestSimulationHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetSimulationHooks(h)
	defer observability.Reset()

	empty := newFixture(t)
	_ = empty.sim(Config{}).Start(context.Background())

	f, _ := splitScenario(t)
	sm := f.start(Config{Speed: 10})
	sm.Tick(context.Background(), time.Second)
	sm.Tick(context.Background(), time.Second)

	if h.starts != 1 || h.fails != 1 || h.branches != 1 || h.stops != 1 {
		t.Errorf("hooks = %+v", h)
	}
	if h.reason != ReasonDrained {
		t.Errorf("stop reason = %q, want %q", h.reason, ReasonDrained)
	}
}
