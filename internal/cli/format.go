package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/format"
)

// formatCommand creates the format command, which previews the layout formatter.
func (c *CLI) formatCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "format [script.toml]",
		Short: "Tidy a diagram and list what the formatter changed",
		Long: `Tidy a diagram and list what the formatter changed.

Line ends close to a surface center are pinned to it, then lines that are
nearly horizontal or vertical are straightened. The whole diagram is
selected for the pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFormat(cmd.Context(), args[0], list)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list every move")

	return cmd
}

func (c *CLI) runFormat(ctx context.Context, script string, list bool) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	popts.Format = true
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	lay := res.Layout
	if lay.Snapped+lay.Aligned == 0 {
		printSuccess("%s is already tidy", script)
		return nil
	}
	printSuccess("Formatted %s", script)
	printKeyValue("Pinned", fmt.Sprintf("%d line ends", lay.Snapped))
	printKeyValue("Aligned", fmt.Sprintf("%d lines", lay.Aligned))
	printKeyValue("Moves", fmt.Sprintf("%d", len(lay.Moves)))

	if list {
		printNewline()
		for _, m := range lay.Moves {
			printDetail("%s", describeMove(m))
		}
	}
	return nil
}

func describeMove(m format.Move) string {
	switch m.Kind {
	case format.PinnedPoint:
		return fmt.Sprintf("pin %s to %s (%.4g, %.4g)", m.Point, m.Surface, m.To.X, m.To.Y)
	case format.MovedSurface:
		return fmt.Sprintf("move %s (%.4g, %.4g) -> (%.4g, %.4g)", m.Surface, m.From.X, m.From.Y, m.To.X, m.To.Y)
	default:
		return fmt.Sprintf("move %s (%.4g, %.4g) -> (%.4g, %.4g)", m.Point, m.From.X, m.From.Y, m.To.X, m.To.Y)
	}
}
