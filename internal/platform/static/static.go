package static

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid file name")

// Dir is a directory of files served to clients under urlPrefix.
type Dir struct {
	root      string
	urlPrefix string
}

// New creates root (and any extra directories) if missing.
func New(root, urlPrefix string, extra ...string) (*Dir, error) {
	for _, d := range append([]string{root}, extra...) {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s failed: %w", d, err)
		}
	}
	return &Dir{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (d *Dir) Root() string {
	return d.root
}

// Save writes a file through a temp file in the same directory and renames it
// into place, replacing any existing file with that name.
func (d *Dir) Save(name string, write func(io.Writer) error) error {
	if err := checkName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file failed: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file failed: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s failed: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.root, name)); err != nil {
		return fmt.Errorf("move %s into place failed: %w", name, err)
	}
	return nil
}

func (d *Dir) URL(name string) string {
	return path.Join(d.urlPrefix, name)
}

// Writable reports whether a file can be created in the directory.
func (d *Dir) Writable() error {
	f, err := os.CreateTemp(d.root, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
