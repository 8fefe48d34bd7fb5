package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/render"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Snapshot plays the flow for the virtual time at and draws the diagram with
// the tokens alive at that moment as a PNG. A zero at, or a diagram that
// cannot be played, draws the diagram alone. The returned frame is the one
// drawn.
func (r *Runner) Snapshot(ctx context.Context, ws *workspace.Workspace, opts Options, at time.Duration) ([]byte, sim.Frame, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, sim.Frame{}, err
	}

	var frame sim.Frame
	if at > 0 {
		s := sim.New(ws, opts.Sim)
		s.Logger = r.Logger
		switch err := s.Start(ctx); {
		case errors.IsSimulationPrecondition(err):
			r.Logger.Warn("drawing without tokens", "reason", errors.UserMessage(err))
		case err != nil:
			return nil, frame, err
		default:
			for s.Running() && s.Stats().Elapsed < at {
				if err := ctx.Err(); err != nil {
					s.Stop(ctx, false)
					return nil, frame, err
				}
				s.Tick(ctx, min(opts.Step, at-s.Stats().Elapsed))
			}
			frame = s.Frame()
			s.Stop(ctx, true)
		}
	}

	data, err := render.Snapshot(ws, frame.Tokens, render.SnapshotOptions{Scale: opts.Scale})
	if err != nil {
		return nil, frame, errors.Wrap(errors.ErrCodeInternal, err, "draw snapshot")
	}
	r.Logger.Debug("drew snapshot", "tick", frame.Tick, "tokens", len(frame.Tokens), "bytes", len(data))
	return data, frame, nil
}
