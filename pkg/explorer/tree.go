package explorer

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// ValidateName trims an entry name and checks that it is usable as a file
// or folder name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidateName(name); err != nil {
		return "", err
	}
	if strings.HasSuffix(name, ".") {
		return "", errors.New(errors.ErrCodeInvalidName, "name cannot end with a dot: %q", name)
	}
	if strings.ContainsAny(name, `<>:"|?*`) {
		return "", errors.New(errors.ErrCodeInvalidName, "name contains invalid characters: %q", name)
	}
	return name, nil
}

// CreateFolder creates the folder name in dir and appends it to the order.
// An existing folder is replaced only when overwrite is set.
func (s *Storage) CreateFolder(dir, name string, overwrite bool) (string, error) {
	parent, name, err := s.child(dir, name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(parent, name)

	switch info, err := os.Stat(path); {
	case err == nil && !info.IsDir():
		return "", errors.New(errors.ErrCodeAlreadyExists, "a file named %q already exists", name)
	case err == nil && !overwrite:
		return "", errors.New(errors.ErrCodeAlreadyExists, "folder %q already exists", name)
	case err == nil:
		if err := os.RemoveAll(path); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	s.insert(parent, name, math.MaxInt)
	s.logger().Debug("created folder", "path", path)
	return path, nil
}

// CreateFile writes data to the file name in dir and appends it to the
// order. An existing file is replaced only when overwrite is set.
func (s *Storage) CreateFile(dir, name string, data []byte, overwrite bool) (string, error) {
	parent, name, err := s.child(dir, name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(parent, name)

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return "", errors.New(errors.ErrCodeAlreadyExists, "a folder named %q already exists", name)
		}
		if !overwrite {
			return "", errors.New(errors.ErrCodeAlreadyExists, "file %q already exists", name)
		}
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	s.insert(parent, name, math.MaxInt)
	s.logger().Debug("created file", "path", path)
	return path, nil
}

// RenameEntry renames oldName in dir to newName and keeps its place in the
// order. A differently named existing target is replaced only when
// overwrite is set. Renaming to a case variant of the same name is a no-op.
func (s *Storage) RenameEntry(dir, oldName, newName string, overwrite bool) (string, error) {
	parent, newName, err := s.child(dir, newName)
	if err != nil {
		return "", err
	}
	src, err := existing(parent, oldName)
	if err != nil {
		return "", err
	}
	if sameName(oldName, newName) {
		return src, nil
	}
	dst := filepath.Join(parent, newName)
	if err := clearTarget(dst, overwrite); err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	s.rename(parent, oldName, newName)
	s.logger().Debug("renamed entry", "from", src, "to", dst)
	return dst, nil
}

// DeleteEntry removes name from dir, recursively for folders, and drops it
// from the order.
func (s *Storage) DeleteEntry(dir, name string) error {
	parent, err := s.Path(dir)
	if err != nil {
		return err
	}
	path, err := existing(parent, name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	s.remove(parent, name)
	s.logger().Debug("deleted entry", "path", path)
	return nil
}

// MoveEntry moves name from srcDir to index in dstDir. Within one directory
// only the order changes. A folder cannot be moved into itself or one of
// its descendants.
func (s *Storage) MoveEntry(srcDir, name, dstDir string, index int, overwrite bool) (string, error) {
	from, err := s.Path(srcDir)
	if err != nil {
		return "", err
	}
	to, err := s.Path(dstDir)
	if err != nil {
		return "", err
	}
	src, err := existing(from, name)
	if err != nil {
		return "", err
	}

	if from == to {
		if err := s.Move(srcDir, name, index); err != nil {
			return "", err
		}
		return src, nil
	}

	if info, err := os.Stat(to); err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeNotFound, "folder %q not found", dstDir)
	}
	if rel, err := filepath.Rel(src, to); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "cannot move %q into itself", name)
	}

	dst := filepath.Join(to, filepath.Base(src))
	if err := clearTarget(dst, overwrite); err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	s.remove(from, name)
	s.insert(to, filepath.Base(src), index)
	s.logger().Debug("moved entry", "from", src, "to", dst)
	return dst, nil
}

func (s *Storage) child(dir, name string) (string, string, error) {
	parent, err := s.Path(dir)
	if err != nil {
		return "", "", err
	}
	name, err = ValidateName(name)
	if err != nil {
		return "", "", err
	}
	return parent, name, nil
}

// existing finds name in parent, ignoring case.
func existing(parent, name string) (string, error) {
	if err := errors.ValidateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(parent, name)
	if _, err := os.Lstat(path); err == nil {
		return path, nil
	}
	entries, err := listEntries(parent)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNotFound, err, "folder %q not found", parent)
	}
	for _, e := range entries {
		if sameName(e.Name, name) {
			return e.Path, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "%q not found", name)
}

func clearTarget(path string, overwrite bool) error {
	if _, err := os.Lstat(path); err != nil {
		return nil
	}
	if !overwrite {
		return errors.New(errors.ErrCodeAlreadyExists, "%q already exists", filepath.Base(path))
	}
	return os.RemoveAll(path)
}
