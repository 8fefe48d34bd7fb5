// Package workspace holds the editable diagram model: surfaces (shapes),
// lines, and the points lines are drawn between.
//
// # Points
//
// A point is one of three variants:
//
//   - Free: an absolute world position
//   - OnSurface: an offset from a surface's top-left corner
//   - OnLine: a parameter t in [0, 1] along another line
//
// Only free points store a position. The position of an attached point is
// derived from its owner on every read, so moving or resizing a surface, or
// moving a line's endpoints, is immediately visible through every point that
// depends on it without any notification step.
//
// Points are shared: when a line is drawn onto an existing endpoint, both
// lines refer to the same point and move together.
//
// # Handles
//
// Surfaces, lines and points live in arenas and are addressed by
// generation-checked handles ([SurfaceID], [LineID], [PointID]). A handle
// to a removed entity is reported as stale rather than resolving to
// whatever reused the slot.
//
// # Removal
//
// Removing a surface or a line converts every point attached to it into a
// free point at its last computed position. Lines that shared such a point
// keep sharing it. Endpoints no longer used by any line are released.
//
// # Decision branches
//
// Lines attached to a decision surface carry a [Branch] tag. [Workspace.NextBranch]
// picks the tag for a new line and [Workspace.AssignBranch] keeps at most one
// True and one False line per decision.
//
// # Usage
//
//	ws := workspace.New()
//	a := ws.AddSurface(workspace.KindStart, 0, 0, 60, 60, "start")
//	b := ws.AddSurface(workspace.KindRectangle, 200, 0, 100, 60, "step")
//	p1, _ := ws.NewSurfacePoint(a, 60, 30)
//	p2, _ := ws.NewSurfacePoint(b, 0, 30)
//	l, _ := ws.AddLine(p1, p2)
//	ws.TranslateSurface(b, 0, 40) // l's second end follows
//
// A Workspace is single-threaded; callers serialize access.
package workspace
