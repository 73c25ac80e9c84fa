package photoengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Store is the flat-file document store backing every collection. Each
// collection lives in one JSON document under dataDir; blog post bodies live
// as individual HTML files under dataDir/content. There is no database:
// every mutation is a full load→mutate→save cycle of the owning document,
// run inside a single Locker.WithLock call so concurrent mutations cannot
// lose each other's writes.
type Store struct {
	dataDir    string
	contentDir string
	publicDir  string
	locker     *Locker
}

// NewStore prepares the data layout under dataDir and returns a Store.
// publicDir is the web root that holds the uploads area; the store needs it
// to delete image files owned by gallery entries and to resolve upload
// timestamps for the media index.
func NewStore(dataDir, publicDir string) (*Store, error) {
	contentDir := filepath.Join(dataDir, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dataDir:    dataDir,
		contentDir: contentDir,
		publicDir:  publicDir,
		locker:     NewLocker(),
	}, nil
}

func (s *Store) galleryPath() string { return filepath.Join(s.dataDir, "gallery.json") }
func (s *Store) blogPath() string    { return filepath.Join(s.dataDir, "blog.json") }
func (s *Store) pagesPath() string   { return filepath.Join(s.dataDir, "pages.json") }

func (s *Store) bodyPath(slug string) string {
	return filepath.Join(s.contentDir, slug+".html")
}

// loadDocument reads and decodes the JSON document at path into v. A
// missing file is not an error: v keeps its zero value and callers get a
// working default collection. A file that exists but cannot be read or
// parsed is an error. Read-only paths may ignore it; mutating paths must
// not, because saving a snapshot loaded from a corrupt file would atomically
// replace real data with a near-empty collection.
func loadDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// saveDocument serializes v as pretty-printed JSON (2-space indent, stable
// key order, diff-friendly) and atomically replaces the file at path. The
// replace is write-to-temp-then-rename, so concurrent readers never observe
// a torn file.
func saveDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	return saveRaw(path, data)
}

// saveRaw atomically replaces path with raw bytes (used for HTML bodies).
func saveRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", filepath.Base(path), err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// removeFile deletes a file, treating "already gone" as success: the end
// state is what matters.
func removeFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// uploadFilePath maps a site-relative URL like /uploads/gallery/x.jpg to its
// on-disk location under the public dir. Returns "" for non-local URLs or
// anything that escapes the public dir.
func (s *Store) uploadFilePath(url string) string {
	if url == "" || url[0] != '/' {
		return ""
	}
	rel := filepath.Clean(strings.TrimPrefix(url, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	return filepath.Join(s.publicDir, rel)
}

// removeUpload deletes the on-disk file behind a site-relative upload URL.
// Non-local URLs and already-missing files are not errors.
func (s *Store) removeUpload(url string) error {
	path := s.uploadFilePath(url)
	if path == "" {
		return nil
	}
	return removeFile(path)
}
