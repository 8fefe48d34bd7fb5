package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/geom"
	"github.com/matzehuels/flowboard/pkg/script"
	"github.com/matzehuels/flowboard/pkg/snap"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// snapCommand creates the snap command, which shows where a pointer would snap.
func (c *CLI) snapCommand() *cobra.Command {
	var scale float64

	cmd := &cobra.Command{
		Use:   "snap [script.toml] X Y",
		Short: "Show what a pointer at X,Y would snap to",
		Long: `Show what a pointer at X,Y would snap to.

The script is replayed first, then the resolver searches line endpoints,
lines and surfaces around the query within the snap threshold at the
given zoom scale.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "invalid x %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "invalid y %q", args[2])
			}
			if err := errors.ValidateScale(scale); err != nil {
				return err
			}
			return c.runSnap(cmd.Context(), args[0], geom.V(x, y), scale)
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", 1, "zoom scale the threshold is divided by")

	return cmd
}

func (c *CLI) runSnap(ctx context.Context, script string, q geom.Vec, scale float64) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(script)
	ws, ix, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}

	r := snap.NewResolver(ws, popts.Snap)
	cand, ok := r.FindBest(q, scale, workspace.LineID{}, workspace.PointID{})
	if !ok {
		printInfo("Nothing within %.4g of (%.4g, %.4g)", r.Options().ThresholdPixels/scale, q.X, q.Y)
		return nil
	}

	printSuccess("Snaps to %s", describeCandidate(ws, ix, cand))
	printKeyValue("Target", cand.Target.String())
	printKeyValue("Position", fmt.Sprintf("(%.4g, %.4g)", cand.Pos.X, cand.Pos.Y))
	printKeyValue("Distance", strconv.FormatFloat(cand.Distance, 'g', 4, 64))
	return nil
}

// describeCandidate names the snap target using script names where possible.
func describeCandidate(ws *workspace.Workspace, ix *script.Index, cand snap.Candidate) string {
	lineNames := make(map[workspace.LineID]string, len(ix.Lines))
	for name, id := range ix.Lines {
		lineNames[id] = name
	}
	lineName := func(id workspace.LineID) string {
		if n, ok := lineNames[id]; ok {
			return n
		}
		return id.String()
	}

	switch cand.Target {
	case snap.TargetPoint:
		if id, end, ok := ws.FindLineEndpoint(cand.Point); ok {
			return fmt.Sprintf("the %s end of line %s", end, lineName(id))
		}
		return "point " + cand.Point.String()
	case snap.TargetLine:
		return fmt.Sprintf("line %s at t=%.3f", lineName(cand.Line), cand.T)
	case snap.TargetSurface:
		name := cand.Surface.String()
		if s, err := ws.Surface(cand.Surface); err == nil && s.Name != "" {
			name = s.Name
		}
		return fmt.Sprintf("surface %s at (%.4g, %.4g)", name, cand.Local.X, cand.Local.Y)
	}
	return cand.Target.String()
}
