// Package ingest loads raw article records from disk, validates them and
// turns them into the catalog the rest of the archive works on.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"commentarchive/internal/models"
)

// DefaultPattern matches JSON records directly inside each first-level
// folder of the data directory, such as fixed/ and page/.
const DefaultPattern = "*/*.json"

// Record is one decoded record file.
type Record struct {
	// Path is relative to the data directory, slash separated.
	Path string
	// Fixed is true for records below the fixed folder.
	Fixed bool
	Raw   models.RawArticle
}

// Source reads record files from a data directory. Files below FixedDir get
// a page of 9999 when they do not set one; all other files keep whatever
// page they carry.
type Source struct {
	DataDir  string
	FixedDir string
	Pattern  string

	fsys fs.FS
}

// NewSource creates a source rooted at dataDir.
func NewSource(dataDir, fixedDir, pattern string) *Source {
	return &Source{DataDir: dataDir, FixedDir: fixedDir, Pattern: pattern}
}

// NewSourceFS creates a source over an arbitrary file system.
func NewSourceFS(fsys fs.FS, fixedDir, pattern string) *Source {
	return &Source{FixedDir: fixedDir, Pattern: pattern, fsys: fsys}
}

func (s *Source) filesystem() fs.FS {
	if s.fsys != nil {
		return s.fsys
	}

	return os.DirFS(s.DataDir)
}

// Files returns the matching record paths in sorted order.
func (s *Source) Files() ([]string, error) {
	pattern := s.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.Glob(s.filesystem(), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
	}

	sort.Strings(matches)

	return matches, nil
}

// Load decodes every record file. A file that is not valid JSON is reported
// as a *FileError and stops the load.
func (s *Source) Load(ctx context.Context) ([]Record, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	fsys := s.filesystem()
	records := make([]Record, 0, len(files))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := s.read(fsys, name)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func (s *Source) read(fsys fs.FS, name string) (Record, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Record{}, &FileError{Path: name, Err: err}
	}

	var raw models.RawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, &FileError{Path: name, Err: err}
	}

	rec := Record{Path: name, Fixed: s.isFixed(name), Raw: raw}
	if rec.Fixed && rec.Raw.Page == nil {
		page := models.DefaultSortKey
		rec.Raw.Page = &page
	}

	return rec, nil
}

func (s *Source) isFixed(name string) bool {
	if s.FixedDir == "" {
		return false
	}

	dir := path.Dir(name)

	return dir == s.FixedDir || strings.HasPrefix(dir, s.FixedDir+"/")
}

// FileError ties a failure to the record file that caused it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
