package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/docs"
)

func newDocsCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "docs <archive.fgcp>",
		Short: "Generate Markdown documentation and diagrams",
		Long: `Generate a Markdown specification for the project plus Mermaid diagram
files: an entity-relationship diagram covering the tables and one state
diagram per workflow.`,
		Example: `  fginsight docs crm.fgcp
  fginsight docs crm.fgcp --out build/docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(args[0], outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "docs", "Output directory for generated files")

	return cmd
}

func runDocs(path, outDir string) error {
	result, err := analyzeArchive(path)
	if err != nil {
		return err
	}
	project := result.Project

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outDir, fileName(project.Name)+".md")
	if err := os.WriteFile(mdPath, []byte(docs.Markdown(project)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}
	written := []string{mdPath}

	if len(project.Tables) > 0 {
		erPath := filepath.Join(outDir, "er.mmd")
		if err := os.WriteFile(erPath, []byte(docs.ERDiagram(project.Tables)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", erPath, err)
		}
		written = append(written, erPath)
	}

	for i := range project.Workflows {
		wf := &project.Workflows[i]
		wfPath := filepath.Join(outDir, "workflow_"+fileName(wf.TableName)+".mmd")
		if err := os.WriteFile(wfPath, []byte(docs.StateDiagram(wf)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", wfPath, err)
		}
		written = append(written, wfPath)
	}

	for _, p := range written {
		fmt.Printf("Wrote %s\n", p)
	}
	return nil
}

// fileName makes a name safe to use as a file name, replacing anything
// outside [A-Za-z0-9._-] with an underscore.
func fileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
