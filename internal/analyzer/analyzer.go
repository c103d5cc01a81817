// Package analyzer orchestrates a full project analysis: it opens the
// archive, runs the section extractors in a fixed order, collects the
// workflows bound to tables, and derives the summary. The pipeline is
// single threaded so that output ordering follows archive-listing order
// exactly.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/extractor"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/workflow"
)

// ProgressFunc receives coarse progress updates as the analysis moves
// through its phases.
type ProgressFunc func(percent int, phase string)

// Options configures an Analyzer. The zero value is usable: it analyzes
// with default limits, the default logger and no progress reporting.
type Options struct {
	Logger   *slog.Logger
	Limits   archive.Limits
	Progress ProgressFunc
}

// Analyzer runs the extraction pipeline over one archive at a time.
type Analyzer struct {
	logger   *slog.Logger
	limits   archive.Limits
	progress ProgressFunc
}

func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limits := opts.Limits
	if limits == (archive.Limits{}) {
		limits = archive.DefaultLimits()
	}
	return &Analyzer{logger: logger, limits: limits, progress: opts.Progress}
}

// Analyze reads the archive at path and builds the full project model.
// Only a failure to open the archive is fatal; malformed entries are
// skipped and recorded on the result. Cancellation is checked between
// phases and never yields a partial model.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*model.Result, error) {
	r, err := archive.Open(path, a.limits)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	a.logger.Info("analyzing project", "archive", path, "entries", r.EntryCount())

	project := &model.Project{Name: archive.Stem(path)}
	var skipped []model.SkipRecord

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.report(15, "analyzing tables")
	tables, skips := extractor.NewTableExtractor(a.logger).Extract(ctx, r)
	project.Tables = tables
	skipped = append(skipped, skips...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.report(25, "analyzing pages")
	pages, skips := extractor.NewPageExtractor(a.logger).Extract(ctx, r)
	project.Pages = pages
	skipped = append(skipped, skips...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.report(35, "analyzing workflows")
	a.collectWorkflows(project)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.report(45, "analyzing server commands")
	cmds, skips := extractor.NewServerCommandExtractor(a.logger).Extract(ctx, r)
	project.ServerCommands = cmds
	skipped = append(skipped, skips...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.report(100, "building summary")
	project.Summary = model.Summarize(project)

	a.logger.Info("analysis complete",
		"tables", project.Summary.TableCount,
		"pages", project.Summary.PageCount,
		"workflows", project.Summary.WorkflowCount,
		"server_commands", project.Summary.ServerCommandCount,
		"skipped", len(skipped))

	return &model.Result{Project: project, Skipped: skipped}, nil
}

// collectWorkflows lifts the workflows parsed alongside their owning
// tables into the project-level list and logs their structural shape.
func (a *Analyzer) collectWorkflows(project *model.Project) {
	for i := range project.Tables {
		wf := project.Tables[i].Workflow
		if wf == nil {
			continue
		}
		project.Workflows = append(project.Workflows, *wf)
		v := workflow.Analyze(wf)
		a.logger.Debug("workflow reconstructed",
			"table", wf.TableName,
			"states", len(wf.States),
			"transitions", len(wf.Transitions),
			"unreachable", len(v.Unreachable),
			"dangling", len(v.Dangling))
	}
}

func (a *Analyzer) report(percent int, phase string) {
	a.logger.Debug("phase", "percent", percent, "phase", phase)
	if a.progress != nil {
		a.progress(percent, phase)
	}
}
