// Package explorer stores the project tree that holds diagram files.
//
// The tree is a plain directory hierarchy under a root folder. Each
// directory may carry a hidden sidecar file, [OrderFileName], holding a JSON
// array of child names in the order the user arranged them. Children that
// the sidecar does not mention follow the ordered ones, directories first,
// then by case-insensitive name.
//
// Order bookkeeping is best-effort: a sidecar that cannot be read is treated
// as empty and a sidecar that cannot be written is logged and skipped. Only
// filesystem operations on the entries themselves return errors.
//
// All directory arguments are slash-separated paths relative to the root;
// the empty string names the root itself.
package explorer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// OrderFileName is the sidecar file holding the child order of a directory.
const OrderFileName = ".flowboard.order.json"

// Entry is a child of a directory.
type Entry struct {
	Name  string
	Path  string // absolute path on disk
	IsDir bool
}

// Storage manages the project tree below Root.
type Storage struct {
	Root string

	// Logger receives best-effort failures. Defaults to log.Default().
	Logger *log.Logger
}

// New returns a storage rooted at root.
func New(root string) *Storage {
	return &Storage{Root: root}
}

func (s *Storage) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// EnsureRoot creates the root directory if needed.
func (s *Storage) EnsureRoot() error {
	return os.MkdirAll(s.Root, 0o755)
}

// Path resolves a directory argument to an absolute path below the root.
func (s *Storage) Path(dir string) (string, error) {
	dir = filepath.ToSlash(strings.Trim(dir, "/"))
	if err := errors.ValidatePath(dir); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filepath.FromSlash(dir)), nil
}

// Children lists the entries of dir in display order.
func (s *Storage) Children(dir string) ([]Entry, error) {
	path, err := s.Path(dir)
	if err != nil {
		return nil, err
	}
	entries, err := listEntries(path)
	if err != nil {
		return nil, err
	}
	order := s.readOrder(path)
	if len(order) == 0 {
		slices.SortStableFunc(entries, byKindThenName)
		return entries, nil
	}
	return applyOrder(entries, order), nil
}

// HasUserContent reports whether dir holds anything besides its sidecar.
// Unreadable directories report false.
func (s *Storage) HasUserContent(dir string) bool {
	path, err := s.Path(dir)
	if err != nil {
		return false
	}
	return hasUserContent(path)
}

func hasUserContent(path string) bool {
	des, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, de := range des {
		if !isOrderFile(de.Name()) {
			return true
		}
	}
	return false
}

// Insert places name at index in the order of dir, replacing any existing
// occurrence. The index is clamped to the valid range.
func (s *Storage) Insert(dir, name string, index int) error {
	path, err := s.Path(dir)
	if err != nil {
		return err
	}
	s.insert(path, name, index)
	return nil
}

func (s *Storage) insert(path, name string, index int) {
	order := s.normalizedOrder(path)
	order = slices.DeleteFunc(order, func(n string) bool { return sameName(n, name) })
	order = slices.Insert(order, clamp(index, len(order)), name)
	s.writeOrder(path, order)
}

// Move moves name to index within the order of dir. Unknown names are
// ignored.
func (s *Storage) Move(dir, name string, index int) error {
	path, err := s.Path(dir)
	if err != nil {
		return err
	}
	order := s.normalizedOrder(path)
	i := slices.IndexFunc(order, func(n string) bool { return sameName(n, name) })
	if i < 0 {
		return nil
	}
	entry := order[i]
	order = slices.Delete(order, i, i+1)
	order = slices.Insert(order, clamp(index, len(order)), entry)
	s.writeOrder(path, order)
	return nil
}

// Remove drops name from the order of dir.
func (s *Storage) Remove(dir, name string) error {
	path, err := s.Path(dir)
	if err != nil {
		return err
	}
	s.remove(path, name)
	return nil
}

func (s *Storage) remove(path, name string) {
	order := s.normalizedOrder(path)
	order = slices.DeleteFunc(order, func(n string) bool { return sameName(n, name) })
	s.writeOrder(path, order)
}

// Rename replaces oldName with newName in the order of dir, keeping its
// position. If oldName is not ordered, newName is appended.
func (s *Storage) Rename(dir, oldName, newName string) error {
	path, err := s.Path(dir)
	if err != nil {
		return err
	}
	s.rename(path, oldName, newName)
	return nil
}

func (s *Storage) rename(path, oldName, newName string) {
	order := s.readOrder(path)
	order = slices.DeleteFunc(order, func(n string) bool { return sameName(n, newName) })
	if i := slices.IndexFunc(order, func(n string) bool { return sameName(n, oldName) }); i >= 0 {
		order[i] = newName
	} else {
		order = append(order, newName)
	}
	entries, err := listEntries(path)
	if err != nil {
		s.logger().Warn("failed to list directory", "path", path, "error", err)
		return
	}
	s.writeOrder(path, normalize(order, entries))
}

func (s *Storage) readOrder(path string) []string {
	data, err := os.ReadFile(filepath.Join(path, OrderFileName))
	if err != nil {
		return nil
	}
	var order []string
	if err := json.Unmarshal(data, &order); err != nil {
		s.logger().Debug("ignoring unreadable order file", "path", path, "error", err)
		return nil
	}
	return order
}

func (s *Storage) normalizedOrder(path string) []string {
	entries, err := listEntries(path)
	if err != nil {
		s.logger().Debug("failed to list directory", "path", path, "error", err)
	}
	return normalize(s.readOrder(path), entries)
}

func (s *Storage) writeOrder(path string, order []string) {
	if order == nil {
		order = []string{}
	}
	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		s.logger().Warn("failed to encode order", "path", path, "error", err)
		return
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		s.logger().Warn("failed to write order", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(path, OrderFileName), data, 0o644); err != nil {
		s.logger().Warn("failed to write order", "path", path, "error", err)
	}
}

// normalize keeps the ordered names that still exist, in order and without
// duplicates, then appends the unordered entries directories first.
func normalize(order []string, entries []Entry) []string {
	remaining := make(map[string]bool, len(entries))
	for _, e := range entries {
		remaining[fold(e.Name)] = true
	}
	out := make([]string, 0, len(entries))
	for _, n := range order {
		if !remaining[fold(n)] {
			continue
		}
		delete(remaining, fold(n))
		out = append(out, n)
	}

	var missing []Entry
	for _, e := range entries {
		if remaining[fold(e.Name)] {
			missing = append(missing, e)
		}
	}
	slices.SortStableFunc(missing, byKindThenName)
	for _, e := range missing {
		out = append(out, e.Name)
	}
	return out
}

func applyOrder(entries []Entry, order []string) []Entry {
	index := make(map[string]int, len(order))
	for i, n := range order {
		if _, ok := index[fold(n)]; !ok {
			index[fold(n)] = i
		}
	}
	rank := func(e Entry) int {
		if i, ok := index[fold(e.Name)]; ok {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return byKindThenName(a, b)
	})
	return entries
}

func listEntries(path string) ([]Entry, error) {
	des, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if !de.IsDir() && isOrderFile(de.Name()) {
			continue
		}
		entries = append(entries, Entry{
			Name:  de.Name(),
			Path:  filepath.Join(path, de.Name()),
			IsDir: de.IsDir(),
		})
	}
	return entries, nil
}

func byKindThenName(a, b Entry) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}
	return strings.Compare(fold(a.Name), fold(b.Name))
}

func isOrderFile(name string) bool { return sameName(name, OrderFileName) }

func sameName(a, b string) bool { return strings.EqualFold(a, b) }

func fold(s string) string { return strings.ToLower(s) }

func clamp(i, n int) int {
	return max(0, min(i, n))
}
