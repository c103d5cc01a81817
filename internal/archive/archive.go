// Package archive reads .fgcp project archives: zip containers with a
// fixed internal directory convention (Tables/, Pages/, MasterPages/,
// ServerCommands/). Opening applies safety limits so a corrupt or hostile
// file cannot exhaust memory or disk before extraction starts.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Limits bound the resources one archive may consume. Zero values disable
// the corresponding check.
type Limits struct {
	MaxArchiveBytes      int64 // on-disk size of the archive file
	MaxEntries           int   // number of entries in the container
	MaxUncompressedBytes int64 // sum of declared uncompressed entry sizes
}

// DefaultLimits returns the limits used when the caller does not override
// them: 200 MiB archive, 50,000 entries, 1 GiB uncompressed.
func DefaultLimits() Limits {
	return Limits{
		MaxArchiveBytes:      200 << 20,
		MaxEntries:           50000,
		MaxUncompressedBytes: 1 << 30,
	}
}

// LimitError reports a safety limit violated while opening an archive.
type LimitError struct {
	Limit  string // "archive size", "entry count", "uncompressed size"
	Actual int64
	Max    int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit %d", e.Limit, e.Actual, e.Max)
}

// Entry is one file inside an archive, addressed by its slash-separated
// path.
type Entry struct {
	Path    string // full path inside the archive
	Section string // first path segment, e.g. "Tables"
	file    *zip.File
}

// Name returns the entry's file stem: the base name without extension.
// Extractors use it as the fallback record name when the payload carries
// no Name field.
func (e Entry) Name() string {
	return Stem(e.Path)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Reader provides ordered access to the JSON entries of an open archive.
type Reader struct {
	path    string
	zr      *zip.ReadCloser
	entries []Entry
}

// Open opens the archive at p and verifies it against limits. A file that
// cannot be opened as a zip at all is the only fatal failure class for an
// analysis run; every later error is scoped to a single entry.
func Open(p string, limits Limits) (*Reader, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if limits.MaxArchiveBytes > 0 && fi.Size() > limits.MaxArchiveBytes {
		return nil, &LimitError{Limit: "archive size", Actual: fi.Size(), Max: limits.MaxArchiveBytes}
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if limits.MaxEntries > 0 && len(zr.File) > limits.MaxEntries {
		zr.Close()
		return nil, &LimitError{Limit: "entry count", Actual: int64(len(zr.File)), Max: int64(limits.MaxEntries)}
	}

	var total int64
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		total += int64(f.UncompressedSize64)
		entries = append(entries, Entry{
			Path:    f.Name,
			Section: firstSegment(f.Name),
			file:    f,
		})
	}
	if limits.MaxUncompressedBytes > 0 && total > limits.MaxUncompressedBytes {
		zr.Close()
		return nil, &LimitError{Limit: "uncompressed size", Actual: total, Max: limits.MaxUncompressedBytes}
	}

	return &Reader{path: p, zr: zr, entries: entries}, nil
}

// Close releases the underlying archive handle.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// Path returns the on-disk path the archive was opened from.
func (r *Reader) Path() string {
	return r.path
}

// EntryCount returns the total number of entries in the container.
func (r *Reader) EntryCount() int {
	return len(r.entries)
}

// Entries returns the JSON entries under the given top-level section, in
// archive-listing order. That order is observable in extraction output and
// must not be changed.
func (r *Reader) Entries(section string) []Entry {
	prefix := section + "/"
	var out []Entry
	for _, e := range r.entries {
		if strings.HasPrefix(e.Path, prefix) && strings.HasSuffix(e.Path, ".json") {
			out = append(out, e)
		}
	}
	return out
}

// ReadEntry decompresses one entry, refusing to read past its declared
// uncompressed size.
func (r *Reader) ReadEntry(e Entry) ([]byte, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", e.Path, err)
	}
	defer rc.Close()

	declared := int64(e.file.UncompressedSize64)
	data, err := io.ReadAll(io.LimitReader(rc, declared+1))
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", e.Path, err)
	}
	if int64(len(data)) > declared {
		return nil, fmt.Errorf("read entry %s: content exceeds declared size %d", e.Path, declared)
	}
	return data, nil
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}
