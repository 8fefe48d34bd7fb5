// Package snap resolves where a dragged line end should attach.
//
// [Resolver.FindBest] scans, in order, every line endpoint, the projection
// onto every line, every non-image surface and finally every image, keeping
// the strictly closest candidate within a radius given in screen pixels.
// Surface candidates follow the outline of the surface kind:
//
//   - rectangles and action markers: eight anchors, else the nearest border point
//   - diamonds and decisions: the nearest point on the inscribed diamond
//   - start surfaces: four cross anchors, else the inscribed circle
//
// Candidates are values. [Candidate.Materialize] turns one into a point only
// when the caller commits, so hovering never changes the workspace.
// [Draft] wraps the draw-a-line interaction, including automatic branch
// tagging for lines leaving a decision.
package snap
