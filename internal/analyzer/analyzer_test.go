package analyzer

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, name string, entries map[string]string, order []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, entry := range order {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("create entry %s: %v", entry, err)
		}
		if _, err := w.Write([]byte(entries[entry])); err != nil {
			t.Fatalf("write entry %s: %v", entry, err)
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

func testAnalyzer(progress ProgressFunc) *Analyzer {
	return New(Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Progress: progress,
	})
}

func crmEntries() (map[string]string, []string) {
	entries := map[string]string{
		"Tables/Customer.json": `{
			"Name": "Customer",
			"Columns": [
				{"Name": "Id", "ColumnType": "GrapeCity.Forguncy.Integer, GrapeCity.Forguncy", "Required": true},
				{"Name": "Email", "ColumnType": "GrapeCity.Forguncy.Text, GrapeCity.Forguncy"}
			],
			"PrimaryKey": "Id"
		}`,
		"Tables/Order.json": `{
			"Name": "Order",
			"Columns": [{"Name": "Id", "ColumnType": "GrapeCity.Forguncy.Integer, GrapeCity.Forguncy"}],
			"Relations": [{"SourceColumnName": "CustomerId", "TargetTableName": "Customer", "TargetColumnName": "Id"}],
			"BindingRelatedWorkflow": {
				"States": [
					{"Name": "Draft", "IsInitialState": true},
					{"Name": "Shipped", "IsFinalState": true}
				],
				"Transitions": [{"SourceStateName": "Draft", "TargetStateName": "Shipped", "ActionName": "Ship"}]
			}
		}`,
		"Pages/Home.json":         `{"Name": "Home"}`,
		"MasterPages/Layout.json": `{"Name": "Layout"}`,
		"ServerCommands/Rpt.json": `{"Name": "Rpt", "Commands": [{"$type": "x.NavigateCommand, x"}]}`,
	}
	order := []string{
		"Tables/Customer.json",
		"Tables/Order.json",
		"Pages/Home.json",
		"MasterPages/Layout.json",
		"ServerCommands/Rpt.json",
	}
	return entries, order
}

func TestAnalyzeFullProject(t *testing.T) {
	entries, order := crmEntries()
	p := writeProject(t, "crm.fgcp", entries, order)

	res, err := testAnalyzer(nil).Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("Skipped = %v, want none", res.Skipped)
	}
	project := res.Project
	if project.Name != "crm" {
		t.Errorf("Name = %q, want archive stem %q", project.Name, "crm")
	}
	if len(project.Tables) != 2 || project.Tables[0].Name != "Customer" || project.Tables[1].Name != "Order" {
		t.Fatalf("Tables = %+v, want Customer then Order", project.Tables)
	}
	if len(project.Pages) != 2 || project.Pages[0].Name != "Home" || project.Pages[1].Name != "Layout" {
		t.Fatalf("Pages = %+v, want Home then Layout", project.Pages)
	}
	if len(project.Workflows) != 1 || project.Workflows[0].TableName != "Order" {
		t.Fatalf("Workflows = %+v, want the Order workflow", project.Workflows)
	}
	if len(project.ServerCommands) != 1 || project.ServerCommands[0].Name != "Rpt" {
		t.Fatalf("ServerCommands = %+v, want Rpt", project.ServerCommands)
	}

	s := project.Summary
	if s.TableCount != 2 || s.PageCount != 2 || s.WorkflowCount != 1 || s.ServerCommandCount != 1 {
		t.Errorf("Summary = %+v", s)
	}
	if s.TotalColumns != 3 || s.TotalRelations != 1 {
		t.Errorf("Summary totals = %d columns %d relations, want 3 and 1", s.TotalColumns, s.TotalRelations)
	}
}

func TestAnalyzeIsolatesMalformedEntries(t *testing.T) {
	p := writeProject(t, "mixed.fgcp", map[string]string{
		"Tables/Good.json":   `{"Name": "Good"}`,
		"Tables/Broken.json": `garbage with no object`,
		"Tables/Also.json":   `{"Name": "Also"}`,
		"Pages/Home.json":    `{"Name": "Home"}`,
	}, []string{"Tables/Good.json", "Tables/Broken.json", "Tables/Also.json", "Pages/Home.json"})

	res, err := testAnalyzer(nil).Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(res.Project.Tables) != 2 {
		t.Errorf("Tables length = %d, want 2", len(res.Project.Tables))
	}
	if len(res.Project.Pages) != 1 {
		t.Errorf("Pages length = %d, want 1", len(res.Project.Pages))
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("Skipped = %+v, want one record", res.Skipped)
	}
	if res.Skipped[0].Path != "Tables/Broken.json" || res.Skipped[0].Section != "Tables" {
		t.Errorf("Skipped[0] = %+v", res.Skipped[0])
	}
}

func TestAnalyzeProgressSequence(t *testing.T) {
	entries, order := crmEntries()
	p := writeProject(t, "crm.fgcp", entries, order)

	var percents []int
	var phases []string
	progress := func(percent int, phase string) {
		percents = append(percents, percent)
		phases = append(phases, phase)
	}
	if _, err := testAnalyzer(progress).Analyze(context.Background(), p); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	wantPercents := []int{15, 25, 35, 45, 100}
	if len(percents) != len(wantPercents) {
		t.Fatalf("progress calls = %v, want %v", percents, wantPercents)
	}
	for i, want := range wantPercents {
		if percents[i] != want {
			t.Errorf("percents[%d] = %d, want %d", i, percents[i], want)
		}
	}
	if phases[0] != "analyzing tables" || phases[len(phases)-1] != "building summary" {
		t.Errorf("phases = %v", phases)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	entries, order := crmEntries()
	p := writeProject(t, "crm.fgcp", entries, order)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := testAnalyzer(nil).Analyze(ctx, p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil on cancellation", res)
	}
}

func TestAnalyzeMissingArchive(t *testing.T) {
	_, err := testAnalyzer(nil).Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.fgcp"))
	if err == nil {
		t.Fatal("Analyze should fail for a missing archive")
	}
}

func TestAnalyzeEmptyArchive(t *testing.T) {
	p := writeProject(t, "empty.fgcp", nil, nil)

	res, err := testAnalyzer(nil).Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	s := res.Project.Summary
	if s.TableCount != 0 || s.PageCount != 0 || s.WorkflowCount != 0 || s.ServerCommandCount != 0 {
		t.Errorf("Summary = %+v, want all zero", s)
	}
}
