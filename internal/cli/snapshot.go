package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// snapshotOpts holds the command-line flags for the snapshot command.
type snapshotOpts struct {
	output string
	at     time.Duration
	scale  float64
	format bool
}

// snapshotCommand creates the snapshot command, which draws a diagram as PNG.
func (c *CLI) snapshotCommand() *cobra.Command {
	var opts snapshotOpts

	cmd := &cobra.Command{
		Use:   "snapshot [script.toml]",
		Short: "Draw a diagram and its tokens as a PNG image",
		Long: `Draw a diagram and its tokens as a PNG image.

With --at the flow is played for that much virtual time first and the
tokens alive at that moment are drawn on top of the diagram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshot(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <script>.png)")
	cmd.Flags().DurationVar(&opts.at, "at", 0, "virtual time to play before drawing")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "pixels per world unit")
	cmd.Flags().BoolVar(&opts.format, "format", false, "tidy the diagram before drawing")

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, script string, opts snapshotOpts) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	popts.Scale = opts.scale
	ws, _, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	if opts.format {
		if _, err := runner.Format(ws, popts); err != nil {
			return err
		}
	}

	data, frame, err := runner.Snapshot(ctx, ws, popts, opts.at)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = basePath("", script) + ".png"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Drew %s", script)
	if opts.at > 0 {
		printDetail("%d tokens at %s", len(frame.Tokens), frame.Elapsed)
	}
	printFile(path)
	return nil
}
