// Package artifact provides read-only access to model folders stored on the
// local filesystem or in an S3-compatible bucket.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Driver identifies a Source implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ErrNotExist is returned by Open when the key does not exist.
var ErrNotExist = errors.New("artifact: object does not exist")

// Source lists model folders and opens the files inside them. Keys are
// slash-separated and relative to the source root.
type Source interface {
	// Dirs returns the names of the immediate sub-folders of prefix.
	Dirs(ctx context.Context, prefix string) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Driver() Driver
}

// Join builds a key from path elements.
func Join(elem ...string) string {
	return strings.TrimPrefix(path.Join(elem...), "/")
}

func sanitizeKey(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q contains '..'", key)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := path.Clean("/" + key)
	return strings.TrimPrefix(clean, "/"), nil
}
