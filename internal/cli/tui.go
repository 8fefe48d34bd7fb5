package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Canvas styles
var (
	canvasSurfaceStyle = lipgloss.NewStyle().Foreground(colorGray)
	canvasStartStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	canvasLineStyle    = lipgloss.NewStyle().Foreground(colorDim)
	canvasLabelStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// Token colors shift from fresh to nearly arrived along each edge, and
// branch lines are tinted by the side of the decision they leave.
var (
	tokenFresh   = colorful.Color{R: 0.24, G: 0.86, B: 0.52}
	tokenArrived = colorful.Color{R: 1.00, G: 0.55, B: 0.26}
	branchTrue   = colorful.Color{R: 0.35, G: 0.75, B: 0.45}
	branchFalse  = colorful.Color{R: 0.85, G: 0.35, B: 0.35}
)

// tokenColor returns the display color of a token at progress p in [0,1].
func tokenColor(p float64) lipgloss.Color {
	return lipgloss.Color(tokenFresh.BlendLab(tokenArrived, geom.Clamp(p, 0, 1)).Clamped().Hex())
}

func branchStyle(b workspace.Branch) lipgloss.Style {
	switch b {
	case workspace.BranchTrue:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(branchTrue.Hex()))
	case workspace.BranchFalse:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(branchFalse.Hex()))
	}
	return canvasLineStyle
}

// =============================================================================
// Canvas - world to terminal cell mapping
// =============================================================================

// canvas is a grid of styled cells covering a world rectangle.
type canvas struct {
	cols, rows int
	view       geom.Box
	cells      [][]string
}

func newCanvas(cols, rows int, view geom.Box) *canvas {
	cols, rows = max(cols, 10), max(rows, 4)
	c := &canvas{cols: cols, rows: rows, view: view, cells: make([][]string, rows)}
	for r := range c.cells {
		c.cells[r] = make([]string, cols)
		for i := range c.cells[r] {
			c.cells[r][i] = " "
		}
	}
	return c
}

// cell maps a world position to a grid cell.
func (c *canvas) cell(p geom.Vec) (int, int, bool) {
	if c.view.W <= 0 || c.view.H <= 0 {
		return 0, 0, false
	}
	col := int(math.Round((p.X - c.view.X) / c.view.W * float64(c.cols-1)))
	row := int(math.Round((p.Y - c.view.Y) / c.view.H * float64(c.rows-1)))
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (c *canvas) set(p geom.Vec, s string) {
	if col, row, ok := c.cell(p); ok {
		c.cells[row][col] = s
	}
}

// segment plots a line with one sample per crossed cell.
func (c *canvas) segment(a, b geom.Vec, s string) {
	ca, ra, _ := c.cell(a)
	cb, rb, _ := c.cell(b)
	n := max(abs(cb-ca), abs(rb-ra), 1)
	for i := 0; i <= n; i++ {
		c.set(geom.Lerp(a, b, float64(i)/float64(n)), s)
	}
}

func (c *canvas) box(b geom.Box, style lipgloss.Style, label string) {
	tl, tr := b.TopLeft(), geom.V(b.Right(), b.Y)
	bl, br := geom.V(b.X, b.Bottom()), geom.V(b.Right(), b.Bottom())
	c.segment(tl, tr, style.Render("─"))
	c.segment(bl, br, style.Render("─"))
	c.segment(tl, bl, style.Render("│"))
	c.segment(tr, br, style.Render("│"))
	c.set(tl, style.Render("┌"))
	c.set(tr, style.Render("┐"))
	c.set(bl, style.Render("└"))
	c.set(br, style.Render("┘"))

	col, row, ok := c.cell(b.Center())
	if !ok || label == "" {
		return
	}
	for i, r := range label {
		if col+i >= c.cols {
			break
		}
		c.cells[row][col+i] = canvasLabelStyle.Render(string(r))
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for r, row := range c.cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, s := range row {
			b.WriteString(s)
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// worldBounds returns a padded box around every surface and line.
func worldBounds(ws *workspace.Workspace) geom.Box {
	b, ok := ws.Extent()
	if !ok {
		return geom.Box{W: 100, H: 100}
	}
	const pad = 10.0
	return geom.Box{X: b.X - pad, Y: b.Y - pad, W: b.W + 2*pad, H: b.H + 2*pad}
}

// =============================================================================
// WatchModel - real-time player
// =============================================================================

type tickMsg time.Time

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WatchModel is the bubbletea model that plays a diagram in real time.
type WatchModel struct {
	Title    string
	Sim      *sim.Simulator
	WS       *workspace.Workspace
	Interval time.Duration
	Width    int
	Height   int
	Paused   bool
	Err      error

	ctx      context.Context
	view     geom.Box
	lastTick time.Time
}

// NewWatchModel creates a player for s over ws. Start the simulator before
// running the program; the player only ticks a running simulation.
func NewWatchModel(ctx context.Context, title string, ws *workspace.Workspace, s *sim.Simulator) WatchModel {
	return WatchModel{
		Title:    title,
		Sim:      s,
		WS:       ws,
		Interval: s.Config().TickInterval,
		Width:    80,
		Height:   24,
		ctx:      ctx,
		view:     worldBounds(ws),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tickEvery(m.Interval)
}

// start (re)starts the run and records any precondition failure.
func (m WatchModel) start() WatchModel {
	m.Err = m.Sim.Start(m.ctx)
	m.Paused = false
	return m
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Sim.Stop(m.ctx, true)
			return m, tea.Quit
		case " ", "p":
			m.Paused = !m.Paused
		case "r", "enter":
			m = m.start()
		case "s":
			m.Sim.Stop(m.ctx, true)
		}
	case tickMsg:
		// The first tick arrives one interval after Init; later ones carry
		// the real time since the previous tick.
		now, dt := time.Time(msg), m.Interval
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick)
		}
		m.lastTick = now
		if !m.Paused && m.Sim.Running() {
			m.Sim.Tick(m.ctx, dt)
		}
		return m, tickEvery(m.Interval)
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("space pause  r restart  s stop  q quit"))
	b.WriteString("\n\n")

	c := newCanvas(m.Width, m.Height-6, m.view)
	m.drawDiagram(c)
	for _, t := range m.Sim.Tokens() {
		c.set(t.Pos, lipgloss.NewStyle().Foreground(tokenColor(t.Progress)).Render("●"))
	}
	b.WriteString(c.String())
	b.WriteString("\n\n")
	b.WriteString(m.status())
	return b.String()
}

func (m WatchModel) drawDiagram(c *canvas) {
	for _, id := range m.WS.Lines() {
		l, err := m.WS.Line(id)
		if err != nil {
			continue
		}
		a, bEnd, err := m.WS.LineEnds(id)
		if err != nil {
			continue
		}
		c.segment(a, bEnd, branchStyle(l.Branch).Render("·"))
	}
	for _, id := range m.WS.Surfaces() {
		s, err := m.WS.Surface(id)
		if err != nil {
			continue
		}
		style := canvasSurfaceStyle
		if s.Kind.IsStart() {
			style = canvasStartStyle
		}
		c.box(s.Box, style, s.Name)
	}
}

func (m WatchModel) status() string {
	if m.Err != nil {
		return StyleWarning.Render(iconWarning + " " + m.Err.Error())
	}
	st := m.Sim.Stats()
	state := m.Sim.State().String()
	if m.Paused {
		state = "paused"
	}
	line := fmt.Sprintf("%s · tick %d · %s · %d tokens · peak %d",
		state, st.Ticks, st.Elapsed.Round(time.Millisecond), m.Sim.TokenCount(), st.Peak)
	if m.Sim.Stale() {
		line += " · " + StyleWarning.Render("diagram changed, restart to apply")
	}
	return listDimStyle.Render(line)
}
