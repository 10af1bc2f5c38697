// Package taxonomy serves the static category taxonomy file.
package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Reader returns the taxonomy file verbatim. Every call reads from disk
// again, so edits made to the file while the server runs are visible on the
// next read without a restart. Deliberately no caching; if this ever shows up
// in a profile, invalidate on mtime change rather than caching blindly.
type Reader struct {
	path string
}

func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the file the reader is bound to.
func (r *Reader) Path() string {
	return r.path
}

// Read returns the raw UTF-8 content of the taxonomy file. The content is
// expected to be JSON but is not validated or transformed.
func (r *Reader) Read(ctx context.Context) (string, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		return "", fmt.Errorf("read taxonomy file %s: %w", r.path, err)
	}

	slog.DebugContext(ctx, "Taxonomy file read", "path", r.path, "bytes", len(content))
	return string(content), nil
}
