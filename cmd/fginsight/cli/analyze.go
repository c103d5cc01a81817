package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/model"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		format     string
		outputFile string
		flatten    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <archive.fgcp>",
		Short: "Analyze a project archive",
		Long: `Open a .fgcp project archive, recover the definitions inside, and print
the analyzed model: tables, pages, workflows, and server commands.

The default output is a human-readable summary. Use --format json or
--format yaml for the full model, and --flat to print the flattened
pseudocode of a single server command.`,
		Example: `  fginsight analyze crm.fgcp
  fginsight analyze crm.fgcp --format json -o crm.json
  fginsight analyze crm.fgcp --flat SendInvoice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], format, outputFile, flatten)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVar(&flatten, "flat", "", "Print the flattened pseudocode of one server command")

	return cmd
}

func runAnalyze(path, format, outputFile, flatten string) error {
	result, err := analyzeArchive(path)
	if err != nil {
		return err
	}
	project := result.Project

	if flatten != "" {
		for i := range project.ServerCommands {
			if project.ServerCommands[i].Name == flatten {
				return writeOutput(outputFile, []byte(strings.Join(project.ServerCommands[i].Flattened, "\n")))
			}
		}
		return fmt.Errorf("server command %q not found in project %q", flatten, project.Name)
	}

	switch format {
	case "text":
		if outputFile != "" {
			color.NoColor = true // never write escape codes into files
		}
		var b strings.Builder
		writeSummary(&b, result, path)
		return writeOutput(outputFile, []byte(b.String()))
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		return writeOutput(outputFile, data)
	case "yaml":
		data, err := marshalYAML(result)
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		return writeOutput(outputFile, data)
	default:
		return fmt.Errorf("unsupported format %q; use text, json, or yaml", format)
	}
}

func writeSummary(b *strings.Builder, result *model.Result, path string) {
	project := result.Project
	s := project.Summary

	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)

	b.WriteString(bold.Sprintf("Project: %s", project.Name))
	fmt.Fprintf(b, "  (%s)\n\n", path)

	fmt.Fprintf(b, "  %-18s %d  (%d columns, %d relations)\n", "Tables:", s.TableCount, s.TotalColumns, s.TotalRelations)
	fmt.Fprintf(b, "  %-18s %d\n", "Pages:", s.PageCount)
	fmt.Fprintf(b, "  %-18s %d\n", "Workflows:", s.WorkflowCount)
	fmt.Fprintf(b, "  %-18s %d\n", "Server commands:", s.ServerCommandCount)

	if len(project.Tables) > 0 {
		b.WriteString(bold.Sprint("\nTables\n"))
		for _, t := range project.Tables {
			detail := fmt.Sprintf("%d columns", len(t.Columns))
			if len(t.Relations) > 0 {
				detail += fmt.Sprintf(", %d relations", len(t.Relations))
			}
			if t.Workflow != nil {
				detail += ", workflow"
			}
			fmt.Fprintf(b, "  %-28s %s\n", t.Name, detail)
		}
	}

	if len(project.Pages) > 0 {
		b.WriteString(bold.Sprint("\nPages\n"))
		for _, p := range project.Pages {
			detail := string(p.Kind)
			if n := len(p.Buttons); n > 0 {
				detail += fmt.Sprintf(", %d buttons", n)
			}
			if n := len(p.Formulas); n > 0 {
				detail += fmt.Sprintf(", %d formulas", n)
			}
			fmt.Fprintf(b, "  %-28s %s\n", p.Name, detail)
		}
	}

	if len(project.Workflows) > 0 {
		b.WriteString(bold.Sprint("\nWorkflows\n"))
		for _, wf := range project.Workflows {
			fmt.Fprintf(b, "  %-28s %d states, %d transitions\n", wf.TableName, len(wf.States), len(wf.Transitions))
		}
	}

	if len(project.ServerCommands) > 0 {
		b.WriteString(bold.Sprint("\nServer commands\n"))
		for _, c := range project.ServerCommands {
			fmt.Fprintf(b, "  %-28s %d parameters, %d steps\n", c.Name, len(c.Parameters), len(c.Flattened))
		}
	}

	if len(result.Skipped) > 0 {
		b.WriteString(bold.Sprintf("\nSkipped entries (%d)\n", len(result.Skipped)))
		for _, skip := range result.Skipped {
			b.WriteString(yellow.Sprintf("  ! %s: %s\n", skip.Path, skip.Reason))
		}
	}
}
