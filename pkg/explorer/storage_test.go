package explorer

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "root"))
	s.Logger = log.NewWithOptions(io.Discard, log.Options{})
	if err := s.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}
	return s
}

// populate creates directories (names ending in "/") and files under root.
func populate(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, filepath.FromSlash(n))
		if n[len(n)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func names(t *testing.T, s *Storage, dir string) []string {
	t.Helper()
	entries, err := s.Children(dir)
	if err != nil {
		t.Fatalf("Children(%q) error = %v", dir, err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func sidecar(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, OrderFileName))
	if err != nil {
		t.Fatalf("read order file: %v", err)
	}
	var order []string
	if err := json.Unmarshal(data, &order); err != nil {
		t.Fatalf("decode order file: %v", err)
	}
	return order
}

func TestChildrenDefaultOrder(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "zeta.toml", "beta/", "a.toml", "Alpha/")

	got := names(t, s, "")
	want := []string{"Alpha", "beta", "a.toml", "zeta.toml"}
	if !slices.Equal(got, want) {
		t.Errorf("Children() = %v, want %v", got, want)
	}

	entries, _ := s.Children("")
	if !entries[0].IsDir || entries[2].IsDir {
		t.Errorf("IsDir flags wrong: %+v", entries)
	}
	if entries[0].Path != filepath.Join(s.Root, "Alpha") {
		t.Errorf("Path = %q", entries[0].Path)
	}
}

func TestInsertAndMove(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "zeta.toml", "beta/", "a.toml", "Alpha/")

	if err := s.Insert("", "zeta.toml", 0); err != nil {
		t.Fatal(err)
	}
	want := []string{"zeta.toml", "Alpha", "beta", "a.toml"}
	if got := names(t, s, ""); !slices.Equal(got, want) {
		t.Errorf("after Insert: %v, want %v", got, want)
	}
	if got := sidecar(t, s.Root); !slices.Equal(got, want) {
		t.Errorf("order file = %v, want %v", got, want)
	}

	if err := s.Move("", "BETA", 0); err != nil {
		t.Fatal(err)
	}
	want = []string{"beta", "zeta.toml", "Alpha", "a.toml"}
	if got := names(t, s, ""); !slices.Equal(got, want) {
		t.Errorf("after Move: %v, want %v", got, want)
	}

	if err := s.Move("", "beta", 99); err != nil {
		t.Fatal(err)
	}
	want = []string{"zeta.toml", "Alpha", "a.toml", "beta"}
	if got := names(t, s, ""); !slices.Equal(got, want) {
		t.Errorf("after clamped Move: %v, want %v", got, want)
	}

	if err := s.Insert("", "Alpha", -5); err != nil {
		t.Fatal(err)
	}
	if got := names(t, s, ""); got[0] != "Alpha" {
		t.Errorf("negative index should clamp to front, got %v", got)
	}
}

func TestMoveUnknownIsIgnored(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "a.toml")
	if err := s.Move("", "nope", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.Root, OrderFileName)); !os.IsNotExist(err) {
		t.Error("Move of an unknown name wrote an order file")
	}
}

func TestRemove(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "b.toml", "a.toml", "c.toml")
	if err := s.Insert("", "c.toml", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("", "C.TOML"); err != nil {
		t.Fatal(err)
	}
	if got, want := sidecar(t, s.Root), []string{"a.toml", "b.toml"}; !slices.Equal(got, want) {
		t.Errorf("order file = %v, want %v", got, want)
	}
	// Unordered entries follow the ordered ones.
	if got, want := names(t, s, ""), []string{"a.toml", "b.toml", "c.toml"}; !slices.Equal(got, want) {
		t.Errorf("Children() = %v, want %v", got, want)
	}
}

func TestRenameOrder(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "a.toml", "b.toml", "c.toml")
	if err := s.Insert("", "c.toml", 0); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(s.Root, "c.toml"), filepath.Join(s.Root, "z.toml")); err != nil {
		t.Fatal(err)
	}
	if err := s.Rename("", "c.toml", "z.toml"); err != nil {
		t.Fatal(err)
	}
	if got, want := names(t, s, ""), []string{"z.toml", "a.toml", "b.toml"}; !slices.Equal(got, want) {
		t.Errorf("Children() = %v, want %v", got, want)
	}
}

func TestStaleAndCorruptOrder(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "b.toml", "a.toml")

	if err := os.WriteFile(filepath.Join(s.Root, OrderFileName), []byte(`["gone.toml", "b.toml", "B.toml"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, want := names(t, s, ""), []string{"b.toml", "a.toml"}; !slices.Equal(got, want) {
		t.Errorf("Children() = %v, want %v", got, want)
	}

	if err := os.WriteFile(filepath.Join(s.Root, OrderFileName), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, want := names(t, s, ""), []string{"a.toml", "b.toml"}; !slices.Equal(got, want) {
		t.Errorf("Children() with corrupt order = %v, want %v", got, want)
	}
}

func TestHasUserContent(t *testing.T) {
	s := newStorage(t)
	populate(t, s.Root, "empty/", "full/x.toml")
	if err := s.Insert("empty", "nothing", 0); err != nil {
		t.Fatal(err)
	}

	if s.HasUserContent("empty") {
		t.Error("a directory holding only the order file has no user content")
	}
	if !s.HasUserContent("full") {
		t.Error("full should have user content")
	}
	if s.HasUserContent("missing") {
		t.Error("missing directory should report false")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := newStorage(t)
	for _, dir := range []string{"../outside", "a/../../b"} {
		if _, err := s.Path(dir); err == nil {
			t.Errorf("Path(%q) should fail", dir)
		}
	}
	if p, err := s.Path("/projects/"); err != nil || p != filepath.Join(s.Root, "projects") {
		t.Errorf("Path(/projects/) = %q, %v", p, err)
	}
}
