// Package sim plays a diagram: tokens leave every START surface and travel
// along the lines at constant speed, splitting where paths branch and
// disappearing at dead ends.
//
// # Lifecycle
//
//	Idle --Start--> Running --(no tokens left | Stop)--> Idle
//
// [Simulator.Start] builds a [graph.Graph] from the workspace and spawns one
// token per edge leaving a START surface. It fails with a coded error
// (NO_START_SURFACE, NO_CONNECTED_EDGES, NO_TOKENS) and leaves the simulator
// untouched when the diagram cannot be played.
//
// # Ticks
//
// [Simulator.Tick] advances each token by Speed × Δ, crossing as many edges as
// the budget allows. At a node the token continues on the first outgoing edge
// that does not lead straight back to where it came from; every other
// candidate edge receives a new token once all tokens have moved. A token with
// nowhere to go is removed. Spawns beyond MaxTokens are dropped.
//
// Tick is independent of any clock. [Simulator.Run] drives it from a
// time.Ticker for interactive use; tests call Tick directly.
//
// [graph.Graph]: github.com/matzehuels/flowboard/pkg/graph
package sim
