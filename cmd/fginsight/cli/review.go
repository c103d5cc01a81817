package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/review"
)

func newReviewCmd() *cobra.Command {
	var (
		minSeverity string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "review <archive.fgcp>",
		Short: "Run static checks over a project archive",
		Long: `Analyze an archive and run the built-in review rules over the result:
workflow defects, dangerous SQL, broken references, and definitions that
look unfinished.

Exits with status 1 when any critical finding is present, so the command
can gate a publish pipeline.`,
		Example: `  fginsight review crm.fgcp
  fginsight review crm.fgcp --severity warning
  fginsight review crm.fgcp --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(args[0], minSeverity, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&minSeverity, "severity", "info", "Minimum severity to report: info, warning, or critical")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runReview(path, minSeverity string, jsonOutput bool) error {
	threshold := review.Severity(minSeverity)
	switch threshold {
	case review.SeverityInfo, review.SeverityWarning, review.SeverityCritical:
	default:
		return fmt.Errorf("invalid severity %q; use info, warning, or critical", minSeverity)
	}

	result, err := analyzeArchive(path)
	if err != nil {
		return err
	}

	report := review.Review(result.Project)

	var shown []review.Finding
	for _, f := range report.Findings {
		if f.Severity.Rank() >= threshold.Rank() {
			shown = append(shown, f)
		}
	}

	if jsonOutput {
		// Counts describe the whole review; only the listing is filtered.
		filtered := report
		filtered.Findings = shown
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(filtered); err != nil {
			return err
		}
	} else {
		printReviewReport(report, shown)
	}

	if report.HasCritical {
		return fmt.Errorf("review found %d critical findings in %q", report.CriticalCount, report.ProjectName)
	}
	return nil
}

func printReviewReport(r review.Report, findings []review.Finding) {
	fmt.Printf("Review: %s\n", r.ProjectName)
	fmt.Printf("  %d info, %d warning, %d critical\n\n", r.InfoCount, r.WarningCount, r.CriticalCount)

	if len(findings) == 0 {
		fmt.Println("  No findings at this severity.")
		return
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	for _, f := range findings {
		switch f.Severity {
		case review.SeverityCritical:
			red.Printf("  [critical] %s  (%s)\n", f.Message, f.Rule)
		case review.SeverityWarning:
			yellow.Printf("  [warning]  %s  (%s)\n", f.Message, f.Rule)
		default:
			fmt.Printf("  [info]     %s  (%s)\n", f.Message, f.Rule)
		}
	}
}
