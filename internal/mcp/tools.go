package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/review"
	"github.com/fginsight/fginsight/internal/workflow"
)

// registerTools registers all analysis MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Archive tools -----

	srv.AddTool(
		mcp.NewTool("analyze_project",
			mcp.WithDescription(
				"Analyze a low-code project archive (.fgcp file) and return its summary: "+
					"table, page, workflow, and server command counts plus any entries that "+
					"were skipped as malformed. Use this first to check an archive before "+
					"exploring it with the other tools.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
		),
		s.handleAnalyzeProject,
	)

	// ----- Discovery tools -----

	srv.AddTool(
		mcp.NewTool("list_tables",
			mcp.WithDescription(
				"List all tables defined in a project archive, including column "+
					"summaries, relation counts, and whether a workflow is bound. Use "+
					"this to explore the data model before describing specific tables.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
		),
		s.handleListTables,
	)

	srv.AddTool(
		mcp.NewTool("describe_table",
			mcp.WithDescription(
				"Get the full definition of one table: all columns with types, "+
					"required/unique flags and defaults, the primary key, relations to "+
					"other tables, and the bound workflow if any.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
			mcp.WithString("table",
				mcp.Required(),
				mcp.Description("Name of the table to describe"),
			),
		),
		s.handleDescribeTable,
	)

	srv.AddTool(
		mcp.NewTool("describe_page",
			mcp.WithDescription(
				"Get the interactive surface of one page: its buttons with their "+
					"command sequences, cell-level command handlers, and formulas.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
			mcp.WithString("page",
				mcp.Required(),
				mcp.Description("Name of the page to describe"),
			),
		),
		s.handleDescribePage,
	)

	srv.AddTool(
		mcp.NewTool("describe_server_command",
			mcp.WithDescription(
				"Get one server command's input parameters and its logic rendered "+
					"as indented pseudocode (IF/LOOP/SQL/email steps).",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Name of the server command to describe"),
			),
		),
		s.handleDescribeServerCommand,
	)

	srv.AddTool(
		mcp.NewTool("describe_workflow",
			mcp.WithDescription(
				"Get the state machine bound to a table: states with initial/final "+
					"flags, transitions with actions and assignees, and structural "+
					"validity (unreachable states, dangling transition endpoints).",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
			mcp.WithString("table",
				mcp.Required(),
				mcp.Description("Name of the table whose workflow to describe"),
			),
		),
		s.handleDescribeWorkflow,
	)

	// ----- Review tool -----

	srv.AddTool(
		mcp.NewTool("review_project",
			mcp.WithDescription(
				"Run the static reviewer over a project archive. Reports structural "+
					"problems (tables without primary keys, broken relations, orphan "+
					"workflow states) and risky command logic (destructive SQL, "+
					"DELETE/UPDATE without WHERE, calls to unknown server commands).",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("archive",
				mcp.Required(),
				mcp.Description("Path to the project archive (.fgcp file)"),
			),
			mcp.WithString("severity",
				mcp.Description("Minimum severity to report: info, warning, or critical. Default reports everything."),
			),
		),
		s.handleReviewProject,
	)
}

// =========================================================================
// Tool handlers
// =========================================================================

// handleAnalyzeProject analyzes an archive and returns its summary counts.
func (s *MCPServer) handleAnalyzeProject(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	return successJSON(map[string]interface{}{
		"project": result.Project.Name,
		"summary": result.Project.Summary,
		"skipped": result.Skipped,
	})
}

// handleListTables returns all tables with column summaries.
func (s *MCPServer) handleListTables(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	type columnSummary struct {
		Name string `json:"name"`
		Type string `json:"type"`
		PK   bool   `json:"pk,omitempty"`
	}

	type tableInfo struct {
		Name        string          `json:"name"`
		Folder      string          `json:"folder,omitempty"`
		Columns     []columnSummary `json:"columns"`
		Relations   int             `json:"relations"`
		HasWorkflow bool            `json:"has_workflow"`
	}

	tables := make([]tableInfo, len(result.Project.Tables))
	for i, t := range result.Project.Tables {
		pk := make(map[string]bool, len(t.PrimaryKey))
		for _, name := range t.PrimaryKey {
			pk[name] = true
		}
		cols := make([]columnSummary, len(t.Columns))
		for j, c := range t.Columns {
			cols[j] = columnSummary{
				Name: c.Name,
				Type: c.Type,
				PK:   pk[c.Name],
			}
		}
		tables[i] = tableInfo{
			Name:        t.Name,
			Folder:      t.Folder,
			Columns:     cols,
			Relations:   len(t.Relations),
			HasWorkflow: t.Workflow != nil,
		}
	}

	return successJSON(tables)
}

// handleDescribeTable returns the full definition of one table.
func (s *MCPServer) handleDescribeTable(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}
	tableName, err := requireString(request, "table")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	for i := range result.Project.Tables {
		if result.Project.Tables[i].Name == tableName {
			return successJSON(result.Project.Tables[i])
		}
	}

	// Provide available table names to help the LLM self-correct.
	return toolError("Table %q not found in %q.\n\nAvailable tables: %v",
		tableName, result.Project.Name, tableNames(result.Project))
}

// handleDescribePage returns the interactive surface of one page.
func (s *MCPServer) handleDescribePage(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}
	pageName, err := requireString(request, "page")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	for i := range result.Project.Pages {
		if result.Project.Pages[i].Name == pageName {
			return successJSON(result.Project.Pages[i])
		}
	}

	return toolError("Page %q not found in %q.\n\nAvailable pages: %v",
		pageName, result.Project.Name, pageNames(result.Project))
}

// handleDescribeServerCommand returns one command's parameters and
// pseudocode.
func (s *MCPServer) handleDescribeServerCommand(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}
	commandName, err := requireString(request, "command")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	for i := range result.Project.ServerCommands {
		cmd := &result.Project.ServerCommands[i]
		if cmd.Name != commandName {
			continue
		}
		return successJSON(map[string]interface{}{
			"name":       cmd.Name,
			"folder":     cmd.Folder,
			"parameters": cmd.Parameters,
			"pseudocode": strings.Join(cmd.Flattened, "\n"),
		})
	}

	return toolError("Server command %q not found in %q.\n\nAvailable commands: %v",
		commandName, result.Project.Name, commandNames(result.Project))
}

// handleDescribeWorkflow returns the state machine bound to a table.
func (s *MCPServer) handleDescribeWorkflow(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}
	tableName, err := requireString(request, "table")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	for i := range result.Project.Workflows {
		wf := &result.Project.Workflows[i]
		if wf.TableName != tableName {
			continue
		}
		v := workflow.Analyze(wf)
		return successJSON(map[string]interface{}{
			"table":          wf.TableName,
			"states":         wf.States,
			"transitions":    wf.Transitions,
			"initial_states": v.InitialCount,
			"final_states":   v.FinalCount,
			"unreachable":    v.Unreachable,
			"dangling":       v.Dangling,
		})
	}

	return toolError("No workflow bound to table %q in %q.\n\nTables with workflows: %v",
		tableName, result.Project.Name, workflowTables(result.Project))
}

// handleReviewProject runs the static reviewer over an archive.
func (s *MCPServer) handleReviewProject(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	path, err := requireString(request, "archive")
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.loadResult(ctx, path)
	if err != nil {
		return toolError("Failed to analyze %q: %v", path, err)
	}

	rep := review.Review(result.Project)

	findings := rep.Findings
	if minSev := optionalString(request, "severity"); minSev != "" {
		switch review.Severity(minSev) {
		case review.SeverityInfo, review.SeverityWarning, review.SeverityCritical:
			findings = filterBySeverity(rep.Findings, review.Severity(minSev))
		default:
			return toolError("Invalid severity %q: use info, warning, or critical", minSev)
		}
	}

	return successJSON(map[string]interface{}{
		"project":        rep.ProjectName,
		"info_count":     rep.InfoCount,
		"warning_count":  rep.WarningCount,
		"critical_count": rep.CriticalCount,
		"has_critical":   rep.HasCritical,
		"findings":       findings,
	})
}

// filterBySeverity keeps findings at or above the minimum severity.
func filterBySeverity(findings []review.Finding, min review.Severity) []review.Finding {
	kept := make([]review.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.Rank() >= min.Rank() {
			kept = append(kept, f)
		}
	}
	return kept
}

// =========================================================================
// Name listings for self-correcting error messages
// =========================================================================

func tableNames(p *model.Project) []string {
	names := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		names[i] = t.Name
	}
	return names
}

func pageNames(p *model.Project) []string {
	names := make([]string, len(p.Pages))
	for i, pg := range p.Pages {
		names[i] = pg.Name
	}
	return names
}

func commandNames(p *model.Project) []string {
	names := make([]string, len(p.ServerCommands))
	for i, c := range p.ServerCommands {
		names[i] = c.Name
	}
	return names
}

func workflowTables(p *model.Project) []string {
	names := make([]string, len(p.Workflows))
	for i, wf := range p.Workflows {
		names[i] = wf.TableName
	}
	return names
}
