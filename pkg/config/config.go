// Package config loads flowboard settings from a TOML file.
//
// Settings are grouped by the component they tune:
//
//	[snap]
//	threshold_pixels = 14
//	anchor_threshold = 10
//
//	[format]
//	center_snap_threshold = 10
//	alignment_angle = 5
//
//	[sim]
//	speed = 80
//	max_tokens = 2000
//	tick_ms = 16
//	time_limit_ms = 60000
//
//	[graph]
//	detailed = false
//
//	[explorer]
//	root = "~/flowboard"
//
// Missing keys keep their defaults; unknown keys are rejected so typos do not
// go unnoticed.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/format"
	"github.com/matzehuels/flowboard/pkg/sim"
	"github.com/matzehuels/flowboard/pkg/snap"
)

const (
	// AppName names the per-user configuration and data directories.
	AppName = "flowboard"

	// FileName is the settings file looked up in the configuration directory.
	FileName = "config.toml"

	// DefaultTimeLimit bounds headless simulation runs.
	DefaultTimeLimit = time.Minute
)

// Settings is the full configuration.
type Settings struct {
	Snap     SnapSettings     `toml:"snap"`
	Format   FormatSettings   `toml:"format"`
	Sim      SimSettings      `toml:"sim"`
	Graph    GraphSettings    `toml:"graph"`
	Explorer ExplorerSettings `toml:"explorer"`
}

// SnapSettings tunes the snap resolver.
type SnapSettings struct {
	ThresholdPixels float64 `toml:"threshold_pixels"`
	AnchorThreshold float64 `toml:"anchor_threshold"`
}

// FormatSettings tunes the layout formatter.
type FormatSettings struct {
	CenterSnapThreshold float64 `toml:"center_snap_threshold"`
	AlignmentAngle      float64 `toml:"alignment_angle"`
}

// SimSettings tunes the flow simulator. Durations are in milliseconds.
type SimSettings struct {
	Speed       float64 `toml:"speed"`
	MaxTokens   int     `toml:"max_tokens"`
	TickMillis  int     `toml:"tick_ms"`
	LimitMillis int     `toml:"time_limit_ms"`
}

// GraphSettings tunes graph export.
type GraphSettings struct {
	Detailed bool `toml:"detailed"`
}

// ExplorerSettings configures project storage.
type ExplorerSettings struct {
	Root string `toml:"root"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Snap: SnapSettings{
			ThresholdPixels: snap.DefaultThresholdPixels,
			AnchorThreshold: snap.DefaultAnchorThreshold,
		},
		Format: FormatSettings{
			CenterSnapThreshold: format.DefaultCenterSnapThreshold,
			AlignmentAngle:      format.DefaultAlignmentAngle,
		},
		Sim: SimSettings{
			Speed:       sim.DefaultSpeed,
			MaxTokens:   sim.DefaultMaxTokens,
			TickMillis:  int(sim.DefaultTickInterval / time.Millisecond),
			LimitMillis: int(DefaultTimeLimit / time.Millisecond),
		},
		Explorer: ExplorerSettings{Root: "~/" + AppName},
	}
}

// Validate checks that every value is usable.
func (s Settings) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"snap.threshold_pixels", s.Snap.ThresholdPixels},
		{"snap.anchor_threshold", s.Snap.AnchorThreshold},
		{"format.center_snap_threshold", s.Format.CenterSnapThreshold},
		{"format.alignment_angle", s.Format.AlignmentAngle},
		{"sim.speed", s.Sim.Speed},
		{"sim.max_tokens", float64(s.Sim.MaxTokens)},
		{"sim.tick_ms", float64(s.Sim.TickMillis)},
		{"sim.time_limit_ms", float64(s.Sim.LimitMillis)},
	}
	for _, c := range checks {
		if err := errors.ValidatePositive(c.field, c.value); err != nil {
			return err
		}
	}
	if s.Format.AlignmentAngle >= 45 {
		return errors.New(errors.ErrCodeInvalidConfig, "format.alignment_angle must be below 45 degrees, got %g", s.Format.AlignmentAngle)
	}
	if strings.TrimSpace(s.Explorer.Root) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "explorer.root must not be empty")
	}
	return nil
}

// SnapOptions returns the resolver options.
func (s Settings) SnapOptions() snap.Options {
	return snap.Options{ThresholdPixels: s.Snap.ThresholdPixels, AnchorThreshold: s.Snap.AnchorThreshold}
}

// FormatOptions returns the formatter options.
func (s Settings) FormatOptions() format.Options {
	return format.Options{CenterSnapThreshold: s.Format.CenterSnapThreshold, AlignmentAngle: s.Format.AlignmentAngle}
}

// SimConfig returns the simulator configuration.
func (s Settings) SimConfig() sim.Config {
	return sim.Config{
		Speed:        s.Sim.Speed,
		MaxTokens:    s.Sim.MaxTokens,
		TickInterval: time.Duration(s.Sim.TickMillis) * time.Millisecond,
	}
}

// TimeLimit returns the headless run limit.
func (s Settings) TimeLimit() time.Duration {
	return time.Duration(s.Sim.LimitMillis) * time.Millisecond
}

// ExplorerRoot returns the project root with a leading "~" expanded.
func (s Settings) ExplorerRoot() (string, error) {
	root := s.Explorer.Root
	if root != "~" && !strings.HasPrefix(root, "~/") {
		return filepath.Clean(root), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "expand %s", root)
	}
	return filepath.Join(home, strings.TrimPrefix(root, "~")), nil
}

// Decode parses TOML data on top of the defaults.
func Decode(data []byte) (Settings, error) {
	s := Default()
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Settings{}, errors.New(errors.ErrCodeInvalidConfig, "unknown settings: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads settings from path. An empty path falls back to the default
// location; a missing file at the default location yields the defaults.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Decode(data)
}

// Dir returns the configuration directory following XDG conventions
// (~/.config/flowboard/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultPath returns the settings file in Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}
