// Package pkg provides the core libraries for Flowboard diagram playback.
//
// # Overview
//
// Flowboard models flowchart diagrams as surfaces joined by lines whose
// endpoints are shared points, and plays them: tokens leave every start
// surface and split at each junction until they reach a dead end. The pkg
// directory is organized into four main areas:
//
//  1. Model: [geom], [workspace] (surfaces, lines, points and selection)
//  2. Editing: [snap] (snap resolution and line drafting), [format]
//     (layout formatter) and [script] (TOML edit scripts)
//  3. Playback: [graph] (connectivity graph) and [sim] (token simulator)
//  4. Delivery: [pipeline], [render], [cache], [explorer] and [config]
//
// # Architecture
//
// The typical data flow through Flowboard:
//
//	Edit script (TOML)
//	         ↓
//	    [script] package (replay into a workspace through the snap resolver)
//	         ↓
//	    [format] package (optional tidy pass)
//	         ↓
//	    [graph] package (split lines at attached points, emit edges)
//	         ↓
//	    [sim] package (advance tokens) or [render] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
//	ws := workspace.New()
//	start := ws.AddSurface(workspace.KindStart, 0, 0, 100, 60, "Start")
//	next := ws.AddSurface(workspace.KindRectangle, 200, 0, 100, 60, "Next")
//
//	r := snap.NewResolver(ws, snap.DefaultOptions())
//	d := r.BeginDraft(geom.V(100, 30), 1)
//	d.Update(geom.V(200, 30), 1)
//	if _, err := d.Commit(); err != nil {
//	    return err
//	}
//
//	s := sim.New(ws, sim.Config{})
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	s.Tick(ctx, sim.DefaultTickInterval)
//
// # Errors
//
// All packages return coded errors from [errors]; use errors.GetCode to
// branch on the failure kind and errors.UserMessage for display.
//
// # Observability
//
// The [observability] package exposes hooks for load, render, simulation
// and cache events. Hooks default to no-ops.
package pkg
