package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FSSource reads artifacts below a local directory.
type FSSource struct {
	root string
}

// NewFSSource returns a filesystem source rooted at root.
func NewFSSource(root string) (*FSSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("model root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model root %s is not a directory", root)
	}
	return &FSSource{root: root}, nil
}

func (s *FSSource) Driver() Driver { return DriverFilesystem }

func (s *FSSource) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *FSSource) Dirs(_ context.Context, prefix string) ([]string, error) {
	dir, err := s.pathFor(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FSSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
		}
		return nil, err
	}
	return f, nil
}
