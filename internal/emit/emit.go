package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docorganizer/internal/classify"
)

// bucketDirs are the output subdirectories, one per section type family.
var bucketDirs = []string{"endpoints", "concepts", "overview"}

// BucketFor maps a section type to its output subdirectory. Anything that
// is not an endpoint or a concept lands in overview.
func BucketFor(t classify.SectionType) string {
	switch t {
	case classify.TypeEndpoint:
		return "endpoints"
	case classify.TypeConcept:
		return "concepts"
	default:
		return "overview"
	}
}

// Writer emits classification records as Markdown files beneath a single
// output directory.
type Writer struct {
	dir string
	log *slog.Logger
}

// NewWriter creates the output directory structure.
func NewWriter(dir string, log *slog.Logger) (*Writer, error) {
	for _, sub := range bucketDirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return &Writer{dir: dir, log: log}, nil
}

// Dir returns the output root.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores one record under its bucket and returns the path relative to
// the output root. Existing files are never overwritten: a collision is
// logged and resolved with a numeric suffix.
func (w *Writer) Write(rec *classify.Record) (relPath string, collided bool, err error) {
	bucket := BucketFor(rec.SectionType)
	name := rec.Filename
	path := filepath.Join(w.dir, bucket, name)

	if _, statErr := os.Stat(path); statErr == nil {
		collided = true
		base := strings.TrimSuffix(name, ".md")
		for i := 2; ; i++ {
			alt := fmt.Sprintf("%s-%d.md", base, i)
			candidate := filepath.Join(w.dir, bucket, alt)
			if _, statErr := os.Stat(candidate); os.IsNotExist(statErr) {
				w.log.Warn("filename collision", "bucket", bucket, "file", name, "renamed", alt)
				name, path = alt, candidate
				break
			}
		}
	}

	if err := os.WriteFile(path, []byte(rec.Content), 0o644); err != nil {
		return "", collided, fmt.Errorf("write %s: %w", path, err)
	}
	return filepath.Join(bucket, name), collided, nil
}
