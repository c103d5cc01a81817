package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored analysis snapshots",
		Long: `Save analysis results to the local snapshot store and manage them.
Stored snapshots serve as baselines for 'fginsight diff --baseline', so a
project can be checked against its last known state without keeping the
original archive around.`,
	}

	cmd.AddCommand(newSnapshotSaveCmd())
	cmd.AddCommand(newSnapshotListCmd())
	cmd.AddCommand(newSnapshotShowCmd())
	cmd.AddCommand(newSnapshotDeleteCmd())

	return cmd
}

// ---------- snapshot save ----------

func newSnapshotSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <archive.fgcp>",
		Short: "Analyze an archive and store the result",
		Example: `  fginsight snapshot save crm.fgcp
  fginsight snapshot save crm.fgcp --data-dir ./state`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotSave(args[0])
		},
	}

	return cmd
}

func runSnapshotSave(path string) error {
	result, err := analyzeArchive(path)
	if err != nil {
		return err
	}

	store, err := openSnapshotStore()
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	snap, err := store.Save(context.Background(), result, abs)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Printf("Saved snapshot %s for project %q (%d tables, %d pages, %d server commands)\n",
		snap.ID, snap.ProjectName, snap.TableCount, snap.PageCount, snap.ServerCommandCount)
	return nil
}

// ---------- snapshot list ----------

func newSnapshotListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runSnapshotList(jsonOutput bool) error {
	store, err := openSnapshotStore()
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	snaps, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		fmt.Println("No snapshots stored. Use 'fginsight snapshot save' to create one.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-7s %-7s %s\n", "ID", "PROJECT", "TABLES", "PAGES", "CREATED")
	fmt.Printf("%-36s %-20s %-7s %-7s %s\n", "--", "-------", "------", "-----", "-------")
	for _, s := range snaps {
		fmt.Printf("%-36s %-20s %-7d %-7d %s\n",
			s.ID, s.ProjectName, s.TableCount, s.PageCount,
			s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	return nil
}

// ---------- snapshot show ----------

func newSnapshotShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id|name@latest>",
		Short: "Show one stored snapshot",
		Long:  "Show a stored snapshot by id, or the most recent one for a project with name@latest.",
		Example: `  fginsight snapshot show 2f1c9a7e-8d6b-4c0f-9ab1-3e5d7f208c44
  fginsight snapshot show crm@latest --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotShow(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the snapshot with its full project model as JSON")

	return cmd
}

func runSnapshotShow(ref string, jsonOutput bool) error {
	snap, err := loadSnapshot(context.Background(), ref)
	if err != nil {
		return fmt.Errorf("load snapshot %q: %w", ref, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Printf("Snapshot %s\n", snap.ID)
	fmt.Printf("  Project:         %s\n", snap.ProjectName)
	fmt.Printf("  Archive:         %s\n", snap.ArchivePath)
	fmt.Printf("  Created:         %s\n", snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Tables:          %d\n", snap.TableCount)
	fmt.Printf("  Pages:           %d\n", snap.PageCount)
	fmt.Printf("  Workflows:       %d\n", snap.WorkflowCount)
	fmt.Printf("  Server commands: %d\n", snap.ServerCommandCount)
	if snap.SkippedCount > 0 {
		fmt.Printf("  Skipped entries: %d\n", snap.SkippedCount)
	}
	return nil
}

// ---------- snapshot delete ----------

func newSnapshotDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotDelete(args[0])
		},
	}

	return cmd
}

func runSnapshotDelete(id string) error {
	store, err := openSnapshotStore()
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	if err := store.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", id, err)
	}

	fmt.Printf("Deleted snapshot %s\n", id)
	return nil
}
