// Package script replays diagram edits described in a TOML file.
//
// A script declares surfaces, then lines, then a list of edit steps. Every
// edit goes through the public workspace and snap APIs, so a script drives
// the engine exactly the way an interactive editor would:
//
//	[view]
//	scale = 1.0
//
//	[[surface]]
//	name = "S"
//	kind = "start"
//	x = 0
//	y = 0
//
//	[[surface]]
//	name = "A"
//	kind = "decision"
//	x = 200
//	y = 0
//
//	[[line]]
//	name = "L1"
//	from = { at = [120, 30] }          # snapped like a mouse press
//	to = { surface = "A", local = [0, 30] }
//
//	[[line]]
//	name = "L2"
//	from = { at = [320, 30] }
//	to = { free = [500, 30] }           # never snapped
//	branch = "false"
//
//	[[step]]
//	op = "move"
//	target = "A"
//	dx = 40
//
// Endpoints are inline tables with exactly one of at, free, surface or line.
// A surface endpoint without local is placed at the surface center; a line
// endpoint rides the named line at t.
//
// Steps are applied in order. Supported ops: move, resize, rename, delete,
// drag, detach, branch, select and delete-selected.
package script

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/workspace"
)

// Default surface size used when a script omits w or h.
const (
	DefaultWidth  = 120.0
	DefaultHeight = 60.0
)

// Step operations.
const (
	OpMove           = "move"
	OpResize         = "resize"
	OpRename         = "rename"
	OpDelete         = "delete"
	OpDrag           = "drag"
	OpDetach         = "detach"
	OpBranch         = "branch"
	OpSelect         = "select"
	OpDeleteSelected = "delete-selected"
)

// Script is a parsed edit script.
type Script struct {
	View     View          `toml:"view"`
	Surfaces []SurfaceSpec `toml:"surface"`
	Lines    []LineSpec    `toml:"line"`
	Steps    []Step        `toml:"step"`
}

// View holds the view state edits are made under.
type View struct {
	// Scale is the zoom factor used to turn pixel snap radii into world
	// distances.
	Scale float64 `toml:"scale"`
}

// SurfaceSpec declares a surface.
type SurfaceSpec struct {
	Name string  `toml:"name"`
	Kind string  `toml:"kind"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	W    float64 `toml:"w"`
	H    float64 `toml:"h"`
}

// LineSpec declares a line.
type LineSpec struct {
	Name   string   `toml:"name"`
	From   Endpoint `toml:"from"`
	To     Endpoint `toml:"to"`
	Branch string   `toml:"branch"`
}

// Endpoint locates one end of a line.
type Endpoint struct {
	At      []float64 `toml:"at"`
	Free    []float64 `toml:"free"`
	Surface string    `toml:"surface"`
	Local   []float64 `toml:"local"`
	Line    string    `toml:"line"`
	T       float64   `toml:"t"`
}

// Step is one edit applied after surfaces and lines exist.
type Step struct {
	Op      string    `toml:"op"`
	Target  string    `toml:"target"`
	Targets []string  `toml:"targets"`
	All     bool      `toml:"all"`
	DX      float64   `toml:"dx"`
	DY      float64   `toml:"dy"`
	W       float64   `toml:"w"`
	H       float64   `toml:"h"`
	Name    string    `toml:"name"`
	End     string    `toml:"end"`
	To      []float64 `toml:"to"`
	Branch  string    `toml:"branch"`
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidScript, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if s.View.Scale == 0 {
		s.View.Scale = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "read %s", path)
	}
	return Parse(data)
}

// Validate checks the script without touching a workspace. References
// between entries are resolved by Apply.
func (s *Script) Validate() error {
	if err := errors.ValidateScale(s.View.Scale); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScript, err, "view")
	}

	names := make(map[string]string)
	claim := func(kind, name string) error {
		if name == "" {
			return nil
		}
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "%s %q", kind, name)
		}
		if prev, ok := names[name]; ok {
			return errors.New(errors.ErrCodeInvalidScript, "%s %q: name already used by a %s", kind, name, prev)
		}
		names[name] = kind
		return nil
	}

	for i, sf := range s.Surfaces {
		if err := claim("surface", sf.Name); err != nil {
			return err
		}
		if _, err := workspace.ParseKind(sf.Kind); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "surface %d", i+1)
		}
	}
	for i, l := range s.Lines {
		if err := claim("line", l.Name); err != nil {
			return err
		}
		if err := l.From.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "line %d from", i+1)
		}
		if err := l.To.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "line %d to", i+1)
		}
		if _, err := workspace.ParseBranch(l.Branch); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "line %d", i+1)
		}
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "step %d (%s)", i+1, st.Op)
		}
	}
	return nil
}

func (e Endpoint) validate() error {
	set := 0
	if e.At != nil {
		set++
	}
	if e.Free != nil {
		set++
	}
	if e.Surface != "" {
		set++
	}
	if e.Line != "" {
		set++
	}
	if set != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of at, free, surface or line is required")
	}
	for _, v := range [][]float64{e.At, e.Free, e.Local} {
		if v != nil && len(v) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "coordinates need two values, got %d", len(v))
		}
	}
	if e.Local != nil && e.Surface == "" {
		return errors.New(errors.ErrCodeInvalidInput, "local is only valid with surface")
	}
	if e.T < 0 || e.T > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "t must be within [0, 1], got %g", e.T)
	}
	return nil
}

func (st Step) validate() error {
	needTarget := func() error {
		if st.Target == "" {
			return errors.New(errors.ErrCodeInvalidInput, "target is required")
		}
		return nil
	}
	switch st.Op {
	case OpMove, OpDelete:
		return needTarget()
	case OpResize:
		if st.W <= 0 || st.H <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "w and h must be positive")
		}
		return needTarget()
	case OpRename:
		if err := errors.ValidateName(st.Name); err != nil {
			return err
		}
		return needTarget()
	case OpDrag:
		if len(st.To) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "to needs two values")
		}
		if _, err := parseEnd(st.End); err != nil {
			return err
		}
		return needTarget()
	case OpDetach:
		if _, err := parseEnd(st.End); err != nil {
			return err
		}
		return needTarget()
	case OpBranch:
		if _, err := workspace.ParseBranch(st.Branch); err != nil {
			return err
		}
		return needTarget()
	case OpSelect, OpDeleteSelected:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", st.Op)
}

func parseEnd(s string) (workspace.End, error) {
	switch s {
	case "p1", "from":
		return workspace.End1, nil
	case "p2", "to":
		return workspace.End2, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "end must be p1 or p2, got %q", s)
}
