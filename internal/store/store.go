// Package store keeps schematic files on disk, one directory per catalog id
// and version.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/oriumgames/pile/schemconv/format"
)

// Key names one stored file.
type Key struct {
	ID         int64
	Version    int
	SubVersion int
	Type       format.Target
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%s_%d", k.ID, k.Version, k.Type, k.SubVersion)
}

// Store is a directory tree of schematic files.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created on the
// first Save.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns <root>/<id>/<version>/<type>_<sub>.<ext>.
func (s *Store) Path(k Key) (string, error) {
	if !k.Type.Valid() {
		return "", fmt.Errorf("%w: %s", format.ErrUnsupportedTarget, k.Type)
	}
	name := strconv.Itoa(int(k.Type)) + "_" + strconv.Itoa(k.SubVersion) + k.Type.Extension()
	return filepath.Join(s.root, strconv.FormatInt(k.ID, 10), strconv.Itoa(k.Version), name), nil
}

// Open returns the contents of a stored file.
func (s *Store) Open(k Key) ([]byte, error) {
	path, err := s.Path(k)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", k, err)
	}
	return data, nil
}

// Save stores the bytes written by fn under k. fn writes into a temporary
// file that replaces the target only when fn and the write both succeed.
func (s *Store) Save(k Key, fn func(io.Writer) error) (n int64, err error) {
	path, err := s.Path(k)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("save %s: %w", k, err)
	}

	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", k, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	cw := &countWriter{w: f}
	if err = fn(cw); err != nil {
		return 0, err
	}
	if err = f.Close(); err != nil {
		return 0, fmt.Errorf("save %s: %w", k, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("save %s: %w", k, err)
	}
	return cw.n, nil
}

// SaveBytes stores data under k.
func (s *Store) SaveBytes(k Key, data []byte) error {
	_, err := s.Save(k, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err
}

// Exists reports whether a file is stored under k.
func (s *Store) Exists(k Key) (bool, error) {
	path, err := s.Path(k)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Remove deletes the file stored under k. Removing a missing file is not
// an error.
func (s *Store) Remove(k Key) error {
	path, err := s.Path(k)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", k, err)
	}
	return nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
