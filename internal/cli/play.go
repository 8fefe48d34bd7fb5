package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/sim"
)

// playOpts holds the command-line flags for the play command.
type playOpts struct {
	step      time.Duration // fixed tick length
	limit     time.Duration // virtual time limit
	speed     float64       // token speed override
	maxTokens int           // live token cap override
	sample    int           // record one frame every n ticks
	rows      int           // frame rows printed, 0 for none
	format    bool          // run the formatter before playing
}

// playCommand creates the play command for headless simulation runs.
func (c *CLI) playCommand() *cobra.Command {
	var opts playOpts

	cmd := &cobra.Command{
		Use:   "play [script.toml]",
		Short: "Play a diagram's flow headless and summarize it",
		Long: `Play a diagram's flow headless and summarize it.

The script is replayed into a fresh workspace, then tokens leave every start
surface and advance with a fixed time step until all of them reach a dead
end or the time limit passes. Step, speed and limit default to the [sim]
settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.step, "step", 0, "fixed time step (default from settings)")
	cmd.Flags().DurationVar(&opts.limit, "limit", 0, "virtual time limit (default from settings)")
	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "token speed in units per second")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "cap on live tokens")
	cmd.Flags().IntVar(&opts.sample, "sample", 10, "record one frame every n ticks")
	cmd.Flags().IntVar(&opts.rows, "rows", 12, "frames to print (0 prints none)")
	cmd.Flags().BoolVar(&opts.format, "format", false, "tidy the diagram before playing")

	return cmd
}

// runPlay executes a headless run and prints the summary.
func (c *CLI) runPlay(ctx context.Context, script string, opts playOpts) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	popts.Simulate = true
	popts.Format = opts.format
	popts.SampleEvery = opts.sample
	if opts.step > 0 {
		popts.Step = opts.step
	}
	if opts.limit > 0 {
		popts.TimeLimit = opts.limit
	}
	if opts.speed > 0 {
		popts.Sim.Speed = opts.speed
	}
	if opts.maxTokens != 0 {
		popts.Sim.MaxTokens = opts.maxTokens
	}

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		if errors.IsSimulationPrecondition(err) {
			printWarning("Nothing to play: %s", errors.UserMessage(err))
			return nil
		}
		return err
	}
	prog.done(fmt.Sprintf("Played %s", script))

	printPlaySummary(script, res)
	if opts.rows > 0 && len(res.Frames) > 0 {
		printNewline()
		fmt.Println(framesTable(res.Frames, opts.rows))
	}
	return nil
}

func printPlaySummary(script string, res *pipeline.Result) {
	st := res.Stats
	fmt.Println(StyleTitle.Render("Flow " + script))
	printStats(st.Surfaces, st.Lines, st.Nodes, st.Edges, false)
	printNewline()

	printKeyValue("Run", StyleDim.Render(res.RunID))
	printKeyValue("Ticks", StyleNumber.Render(strconv.Itoa(st.Ticks)))
	printKeyValue("Virtual", st.Virtual.String())
	printKeyValue("Started", strconv.Itoa(st.Started))
	printKeyValue("Spawned", strconv.Itoa(st.Spawned))
	printKeyValue("Destroyed", strconv.Itoa(st.Destroyed))
	printKeyValue("Peak", StyleHighlight.Render(strconv.Itoa(st.Peak)))
	if st.Dropped > 0 {
		printKeyValue("Dropped", StyleWarning.Render(strconv.Itoa(st.Dropped)))
	}

	switch res.StopReason {
	case sim.ReasonDrained:
		printSuccess("Every token reached a dead end")
	case pipeline.ReasonTimeLimit:
		printWarning("Stopped at the time limit with tokens still moving")
	default:
		printInfo("Stopped: %s", res.StopReason)
	}
	if res.Layout.Snapped+res.Layout.Aligned > 0 {
		printDetail("Formatted: %d ends pinned, %d lines aligned", res.Layout.Snapped, res.Layout.Aligned)
	}
}

// framesTable renders up to limit sampled frames, keeping the last one.
func framesTable(frames []sim.Frame, limit int) string {
	if len(frames) > limit {
		frames = append(frames[:limit-1:limit-1], frames[len(frames)-1])
	}

	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		state := "idle"
		if f.Running {
			state = "running"
		}
		rows = append(rows, []string{
			strconv.Itoa(f.Tick),
			f.Elapsed.Round(time.Millisecond).String(),
			strconv.Itoa(len(f.Tokens)),
			state,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Tick", "Elapsed", "Tokens", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
