package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/diff"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/snapshot"
)

func newDiffCmd() *cobra.Command {
	var (
		baseline   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old.fgcp> <new.fgcp>",
		Short: "Compare two versions of a project",
		Long: `Analyze two archives and report every difference between them, classified
as additive (safe for existing pages and callers) or breaking (removals,
renames, tightened constraints).

With --baseline, the old side comes from a stored snapshot instead of an
archive file, so a single new archive can be checked against a saved
state of the project.`,
		Example: `  fginsight diff crm-v1.fgcp crm-v2.fgcp
  fginsight diff crm-v2.fgcp --baseline crm@latest
  fginsight diff crm-v1.fgcp crm-v2.fgcp --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args, baseline, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&baseline, "baseline", "", "Snapshot to diff against: a snapshot id or name@latest")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDiff(args []string, baseline string, jsonOutput bool) error {
	var oldProject *model.Project

	switch {
	case len(args) == 2 && baseline == "":
		oldResult, err := analyzeArchive(args[0])
		if err != nil {
			return fmt.Errorf("analyze %s: %w", args[0], err)
		}
		oldProject = oldResult.Project
	case len(args) == 1 && baseline != "":
		snap, err := loadSnapshot(context.Background(), baseline)
		if err != nil {
			return fmt.Errorf("load baseline %q: %w", baseline, err)
		}
		oldProject = snap.Project
	default:
		return fmt.Errorf("provide two archives, or one archive with --baseline")
	}

	newPath := args[len(args)-1]
	newResult, err := analyzeArchive(newPath)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", newPath, err)
	}

	report := diff.Compare(oldProject, newResult.Project)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printChangeReport(report)
	return nil
}

func printChangeReport(r diff.Report) {
	fmt.Printf("Project Diff: %s -> %s\n", r.OldProject, r.NewProject)

	if !r.HasChanges {
		fmt.Println("  No changes.")
		return
	}

	status := "CHANGES"
	if r.HasBreaking {
		status = "BREAKING"
	}
	fmt.Printf("  %s (%d additive, %d breaking)\n\n", status, r.AdditiveCount, r.BreakingCount)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, item := range r.Items {
		if item.Type == diff.ChangeBreaking {
			red.Printf("  ! %s\n", item.Description)
		} else {
			green.Printf("  + %s\n", item.Description)
		}
	}
}

// loadSnapshot resolves a snapshot reference: either a snapshot id, or
// name@latest for the most recent snapshot of the named project.
func loadSnapshot(ctx context.Context, ref string) (*snapshot.Snapshot, error) {
	store, err := openSnapshotStore()
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	if name, ok := strings.CutSuffix(ref, "@latest"); ok {
		return store.Latest(ctx, name)
	}
	return store.Get(ctx, ref)
}
