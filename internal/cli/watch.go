package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/sim"
)

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	speed     float64
	maxTokens int
	format    bool
}

// watchCommand creates the watch command, which plays a diagram in the terminal.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [script.toml]",
		Short: "Play a diagram's flow live in the terminal",
		Long: `Play a diagram's flow live in the terminal.

Tokens are drawn on a character canvas as they move along the lines. The
simulation ticks in real time at the configured tick interval.

Keys: space pauses, r restarts, s stops and clears, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "token speed in units per second")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "cap on live tokens")
	cmd.Flags().BoolVar(&opts.format, "format", false, "tidy the diagram before playing")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, script string, opts watchOpts) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	ws, _, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	if opts.format {
		if _, err := runner.Format(ws, popts); err != nil {
			return err
		}
	}

	cfg := popts.Sim
	if opts.speed > 0 {
		cfg.Speed = opts.speed
	}
	if opts.maxTokens != 0 {
		cfg.MaxTokens = opts.maxTokens
	}

	s := sim.New(ws, cfg)
	// Log output would tear the alternate screen.
	s.Logger = log.NewWithOptions(io.Discard, log.Options{})

	model := NewWatchModel(ctx, script, ws, s)
	if err := s.Start(ctx); err != nil {
		if !errors.IsSimulationPrecondition(err) {
			return err
		}
		model.Err = err
	}

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if m, ok := final.(WatchModel); ok {
		st := m.Sim.Stats()
		printInfo("Played %d ticks, peak %d tokens", st.Ticks, st.Peak)
	}
	return nil
}
