package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeArchive builds a zip file with the given entries in order and
// returns its path.
func writeArchive(t *testing.T, entries map[string]string, order []string) string {
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
	return p
}

func TestEntriesFilterAndOrder(t *testing.T) {
	p := writeArchive(t, map[string]string{
		"Tables/Sales/Order.json": `{"Name":"Order"}`,
		"Tables/Customer.json":    `{"Name":"Customer"}`,
		"Tables/readme.txt":       "not json",
		"Pages/Home.json":         `{"Name":"Home"}`,
		"ServerCommands/Rpt.json": `{"Name":"Rpt"}`,
		"DataSources/Ext.json":    `{}`,
	}, []string{
		"Tables/Sales/Order.json",
		"Tables/Customer.json",
		"Tables/readme.txt",
		"Pages/Home.json",
		"ServerCommands/Rpt.json",
		"DataSources/Ext.json",
	})

	r, err := Open(p, DefaultLimits())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer r.Close()

	tables := r.Entries("Tables")
	if len(tables) != 2 {
		t.Fatalf("Entries(Tables) length = %d, want 2", len(tables))
	}
	// Archive-listing order is preserved.
	if tables[0].Path != "Tables/Sales/Order.json" {
		t.Errorf("first table entry = %s, want Tables/Sales/Order.json", tables[0].Path)
	}
	if tables[1].Path != "Tables/Customer.json" {
		t.Errorf("second table entry = %s, want Tables/Customer.json", tables[1].Path)
	}
	if tables[0].Section != "Tables" {
		t.Errorf("Section = %q, want %q", tables[0].Section, "Tables")
	}
	if tables[0].Name() != "Order" {
		t.Errorf("Name() = %q, want %q", tables[0].Name(), "Order")
	}

	if got := len(r.Entries("MasterPages")); got != 0 {
		t.Errorf("Entries(MasterPages) length = %d, want 0", got)
	}
}

func TestReadEntry(t *testing.T) {
	p := writeArchive(t, map[string]string{
		"Tables/Customer.json": `{"Name":"Customer"}`,
	}, []string{"Tables/Customer.json"})

	r, err := Open(p, DefaultLimits())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer r.Close()

	entries := r.Entries("Tables")
	if len(entries) != 1 {
		t.Fatalf("Entries length = %d, want 1", len(entries))
	}
	data, err := r.ReadEntry(entries[0])
	if err != nil {
		t.Fatalf("ReadEntry error: %v", err)
	}
	if string(data) != `{"Name":"Customer"}` {
		t.Errorf("ReadEntry = %q, want %q", data, `{"Name":"Customer"}`)
	}
}

func TestOpenNotAZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.fgcp")
	if err := os.WriteFile(p, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := Open(p, DefaultLimits()); err == nil {
		t.Fatal("Open should fail for a non-zip file")
	}
}

func TestOpenEntryCountLimit(t *testing.T) {
	p := writeArchive(t, map[string]string{
		"Tables/A.json": `{}`,
		"Tables/B.json": `{}`,
		"Tables/C.json": `{}`,
	}, []string{"Tables/A.json", "Tables/B.json", "Tables/C.json"})

	limits := DefaultLimits()
	limits.MaxEntries = 2

	_, err := Open(p, limits)
	var le *LimitError
	if !errors.As(err, &le) {
		t.Fatalf("Open error = %v, want LimitError", err)
	}
	if le.Limit != "entry count" || le.Actual != 3 || le.Max != 2 {
		t.Errorf("LimitError = %+v, want entry count 3/2", le)
	}
}

func TestOpenArchiveSizeLimit(t *testing.T) {
	p := writeArchive(t, map[string]string{
		"Tables/A.json": `{"Name":"A","Padding":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`,
	}, []string{"Tables/A.json"})

	limits := DefaultLimits()
	limits.MaxArchiveBytes = 10

	_, err := Open(p, limits)
	var le *LimitError
	if !errors.As(err, &le) {
		t.Fatalf("Open error = %v, want LimitError", err)
	}
	if le.Limit != "archive size" {
		t.Errorf("Limit = %q, want %q", le.Limit, "archive size")
	}
}

func TestOpenUncompressedSizeLimit(t *testing.T) {
	big := make([]byte, 4096)
	for i := range big {
		big[i] = 'a'
	}
	p := writeArchive(t, map[string]string{
		"Tables/A.json": `{"Name":"A","Blob":"` + string(big) + `"}`,
	}, []string{"Tables/A.json"})

	limits := DefaultLimits()
	limits.MaxUncompressedBytes = 100

	_, err := Open(p, limits)
	var le *LimitError
	if !errors.As(err, &le) {
		t.Fatalf("Open error = %v, want LimitError", err)
	}
	if le.Limit != "uncompressed size" {
		t.Errorf("Limit = %q, want %q", le.Limit, "uncompressed size")
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tables/Sales/Order.json", "Order"},
		{"Pages/Home.json", "Home"},
		{"noext", "noext"},
		{"a/b.c.d.json", "b.c.d"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
