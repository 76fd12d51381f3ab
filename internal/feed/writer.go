package feed // import "github.com/jemtv/storyfeed/internal/feed"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jemtv/storyfeed/internal/logging"
)

// Writer persists the serialized feed, skipping the write when the
// document is identical to the previous run's.
type Writer struct {
	path  string
	force bool
}

func NewWriter(path string) *Writer { return &Writer{path: path} }

// WithForce makes Write unconditional.
func (self *Writer) WithForce(force bool) *Writer {
	self.force = force
	return self
}

func (self *Writer) digestPath() string { return self.path + ".digest" }

// Write serializes rss to the output path. The feed digest is kept in a
// sidecar file; when it matches the previous run and the output still
// exists, the write is skipped so the file mtime stays meaningful for
// downstream caches. Returns the serialized size and whether the file was
// rewritten.
func (self *Writer) Write(ctx context.Context, rss *RSS) (int, bool, error) {
	b, err := rss.Serialize()
	if err != nil {
		return 0, false, err
	}

	digest := rss.Digest()
	log := logging.FromContext(ctx).With(slog.String("output", self.path))

	if !self.force && self.unchanged(digest) {
		log.Info("Feed unchanged since last run, skipping write",
			slog.String("digest", digest))
		return len(b), false, nil
	}

	if err := writeFileAtomic(self.path, b); err != nil {
		return 0, false, err
	}
	if err := writeFileAtomic(self.digestPath(),
		[]byte(digest+"\n"),
	); err != nil {
		return 0, false, err
	}

	log.Info("Feed written",
		slog.Int("bytes", len(b)), slog.String("digest", digest))
	return len(b), true, nil
}

func (self *Writer) unchanged(digest string) bool {
	if _, err := os.Stat(self.path); err != nil {
		return false
	}

	b, err := os.ReadFile(self.digestPath())
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) == digest
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so feed readers never observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("feed: create temp file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if err2 := tmp.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return fmt.Errorf("feed: write %q: %w", tmp.Name(), err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("feed: chmod %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("feed: rename to %q: %w", path, err)
	}
	return nil
}
