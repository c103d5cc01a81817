package extractor

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fginsight/fginsight/internal/archive"
)

// openArchive builds a zip with the given entries in order and opens it.
func openArchive(t *testing.T, entries map[string]string, order []string) *archive.Reader {
	t.Helper()
	p := filepath.Join(t.TempDir(), "project.fgcp")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	r, err := archive.Open(p, archive.DefaultLimits())
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSecondSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tables/Sales/Order.json", "Sales"},
		{"Tables/Order.json", ""},
		{"ServerCommands/Reports/Daily.json", "Reports"},
	}
	for _, tt := range tests {
		if got := secondSegment(tt.in); got != tt.want {
			t.Errorf("secondSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMiddleSegments(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pages/Home.json", ""},
		{"Pages/crm/Home.json", "crm"},
		{"Pages/crm/sub/Home.json", "crm/sub"},
	}
	for _, tt := range tests {
		if got := middleSegments(tt.in); got != tt.want {
			t.Errorf("middleSegments(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
