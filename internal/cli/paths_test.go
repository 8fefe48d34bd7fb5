package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowboard/pkg/buildinfo"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/config"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache(true): %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want *cache.NullCache", c)
	}

	c, err = newCache(false)
	if err != nil {
		t.Fatalf("newCache(false): %v", err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache(false) = %T, want *cache.FileCache", c)
	}
	if filepath.Base(fc.Dir()) != appName {
		t.Errorf("cache dir = %q, want it to end in %q", fc.Dir(), appName)
	}
}

func TestPipelineOptions(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Settings.Sim.TickMillis = 20
	c.Settings.Sim.LimitMillis = 3000
	c.Settings.Graph.Detailed = true

	opts := c.pipelineOptions("flow.toml")
	if opts.Script != "flow.toml" {
		t.Errorf("Script = %q", opts.Script)
	}
	if opts.Step != 20*time.Millisecond || opts.Sim.TickInterval != opts.Step {
		t.Errorf("Step = %v, TickInterval = %v, want 20ms", opts.Step, opts.Sim.TickInterval)
	}
	if opts.TimeLimit != 3*time.Second {
		t.Errorf("TimeLimit = %v, want 3s", opts.TimeLimit)
	}
	if !opts.Detailed {
		t.Error("Detailed should follow the graph settings")
	}
	if opts.Snap != config.Default().SnapOptions() {
		t.Errorf("Snap = %+v, want defaults", opts.Snap)
	}
	if opts.Logger != c.Logger {
		t.Error("Logger should be the CLI logger")
	}
}

func TestNewRunnerScopesKeysByVersion(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	r, err := c.newRunner(true)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close()

	opts := cache.ArtifactKeyOpts{Format: "svg"}
	want := buildinfo.Version + ":" + cache.NewDefaultKeyer().ArtifactKey("h", opts)
	if got := r.Keyer.ArtifactKey("h", opts); got != want {
		t.Errorf("ArtifactKey() = %q, want %q", got, want)
	}
}
