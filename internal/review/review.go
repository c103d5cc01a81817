// Package review runs static checks over an analyzed project model and
// reports findings: structural workflow defects, dangerous SQL, broken
// references and definitions that look unfinished.
package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/workflow"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so callers can filter findings by a minimum
// threshold. Unknown severities rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Finding describes one issue discovered in the project model.
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Object   string   `json:"object"`
	Detail   string   `json:"detail,omitempty"`
	Message  string   `json:"message"`
}

// Report collects all findings for one project.
type Report struct {
	ProjectName   string    `json:"project_name"`
	Findings      []Finding `json:"findings"`
	InfoCount     int       `json:"info_count"`
	WarningCount  int       `json:"warning_count"`
	CriticalCount int       `json:"critical_count"`
	HasCritical   bool      `json:"has_critical"`
}

// destructiveRe matches statements that change schema or permissions.
// Statements like these inside an application command are almost always a
// mistake left over from development.
var destructiveRe = regexp.MustCompile(`\b(DROP|TRUNCATE|ALTER|GRANT|REVOKE)\b`)

var (
	deleteRe = regexp.MustCompile(`\bDELETE\b`)
	updateRe = regexp.MustCompile(`\bUPDATE\b`)
	whereRe  = regexp.MustCompile(`\bWHERE\b`)
)

// Review checks the project and returns every finding in a stable order:
// tables, workflows, pages, then command logic.
func Review(p *model.Project) Report {
	report := Report{ProjectName: p.Name}

	report.Findings = append(report.Findings, reviewTables(p)...)
	report.Findings = append(report.Findings, reviewWorkflows(p)...)
	report.Findings = append(report.Findings, reviewPages(p)...)
	report.Findings = append(report.Findings, reviewCommands(p)...)

	for _, f := range report.Findings {
		switch f.Severity {
		case SeverityInfo:
			report.InfoCount++
		case SeverityWarning:
			report.WarningCount++
		case SeverityCritical:
			report.CriticalCount++
		}
	}
	report.HasCritical = report.CriticalCount > 0

	return report
}

func reviewTables(p *model.Project) []Finding {
	known := make(map[string]bool, len(p.Tables))
	for _, t := range p.Tables {
		known[t.Name] = true
	}

	var findings []Finding
	for _, t := range p.Tables {
		if len(t.PrimaryKey) == 0 {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Rule:     "table_missing_primary_key",
				Object:   t.Name,
				Message:  fmt.Sprintf("Table %q has no primary key", t.Name),
			})
		}
		for _, rel := range t.Relations {
			if rel.TargetTable != "" && !known[rel.TargetTable] {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Rule:     "relation_unknown_target",
					Object:   t.Name,
					Detail:   rel.SourceColumn,
					Message:  fmt.Sprintf("Relation from %q.%s points at undefined table %q", t.Name, rel.SourceColumn, rel.TargetTable),
				})
			}
		}
	}
	return findings
}

func reviewWorkflows(p *model.Project) []Finding {
	var findings []Finding
	for i := range p.Tables {
		wf := p.Tables[i].Workflow
		if wf == nil || len(wf.States) == 0 {
			continue
		}
		v := workflow.Analyze(wf)

		if v.InitialCount == 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     "workflow_no_initial_state",
				Object:   wf.TableName,
				Message:  fmt.Sprintf("Workflow on %q declares no initial state", wf.TableName),
			})
		}
		if v.InitialCount > 1 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     "workflow_multiple_initial_states",
				Object:   wf.TableName,
				Message:  fmt.Sprintf("Workflow on %q declares %d initial states", wf.TableName, v.InitialCount),
			})
		}
		if v.FinalCount == 0 {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Rule:     "workflow_no_final_state",
				Object:   wf.TableName,
				Message:  fmt.Sprintf("Workflow on %q never terminates: no state is final", wf.TableName),
			})
		}
		for _, state := range v.Unreachable {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     "workflow_unreachable_state",
				Object:   wf.TableName,
				Detail:   state,
				Message:  fmt.Sprintf("Workflow state %q on %q cannot be reached", state, wf.TableName),
			})
		}
		for _, state := range v.Dangling {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Rule:     "workflow_dangling_transition",
				Object:   wf.TableName,
				Detail:   state,
				Message:  fmt.Sprintf("Workflow on %q has a transition involving undeclared state %q", wf.TableName, state),
			})
		}
	}
	return findings
}

func reviewPages(p *model.Project) []Finding {
	var findings []Finding
	for _, page := range p.Pages {
		if page.Kind != model.PageKindPage {
			continue
		}
		if len(page.Buttons) == 0 && len(page.Formulas) == 0 && len(page.CellCommands) == 0 {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Rule:     "page_no_interactive_cells",
				Object:   page.Name,
				Message:  fmt.Sprintf("Page %q has no buttons, formulas or cell commands", page.Name),
			})
		}
	}
	return findings
}

// reviewCommands walks every command tree in the project: server command
// bodies first, then page handlers, then workflow transition hooks.
func reviewCommands(p *model.Project) []Finding {
	known := make(map[string]bool, len(p.ServerCommands))
	for _, c := range p.ServerCommands {
		known[c.Name] = true
	}

	w := &commandWalker{knownCommands: known, seenUnknown: make(map[string]bool)}
	for _, c := range p.ServerCommands {
		w.walk(fmt.Sprintf("server command %q", c.Name), c.Commands)
	}
	for _, page := range p.Pages {
		for _, b := range page.Buttons {
			w.walk(fmt.Sprintf("page %q button %q", page.Name, b.Name), b.Commands)
		}
		for _, cc := range page.CellCommands {
			w.walk(fmt.Sprintf("page %q cell %s", page.Name, cc.Cell), cc.Commands)
		}
	}
	for i := range p.Tables {
		wf := p.Tables[i].Workflow
		if wf == nil {
			continue
		}
		for _, tr := range wf.Transitions {
			w.walk(fmt.Sprintf("workflow %q transition %s -> %s", wf.TableName, tr.From, tr.To), tr.Commands)
		}
	}
	return w.findings
}

type commandWalker struct {
	knownCommands map[string]bool
	seenUnknown   map[string]bool
	findings      []Finding
}

func (w *commandWalker) walk(owner string, cmds []model.Command) {
	for _, cmd := range cmds {
		w.check(owner, cmd)
		w.walk(owner, cmd.Sub)
	}
}

func (w *commandWalker) check(owner string, cmd model.Command) {
	switch cmd.Kind {
	case model.KindExecuteSQL:
		w.checkSQL(owner, jsonmap.Str(cmd.Details, "sql"))
	case model.KindCallServerCommand:
		target := jsonmap.Str(cmd.Details, "command")
		if target == "" {
			w.findings = append(w.findings, Finding{
				Severity: SeverityWarning,
				Rule:     "call_missing_target",
				Object:   owner,
				Message:  fmt.Sprintf("%s calls a server command without naming it", owner),
			})
		} else if !w.knownCommands[target] {
			w.findings = append(w.findings, Finding{
				Severity: SeverityWarning,
				Rule:     "call_unknown_server_command",
				Object:   owner,
				Detail:   target,
				Message:  fmt.Sprintf("%s calls undefined server command %q", owner, target),
			})
		}
	case model.KindSendEmail:
		if jsonmap.Str(cmd.Details, "to") == "" {
			w.findings = append(w.findings, Finding{
				Severity: SeverityWarning,
				Rule:     "email_missing_recipient",
				Object:   owner,
				Message:  fmt.Sprintf("%s sends an email without a recipient", owner),
			})
		}
		if jsonmap.Str(cmd.Details, "subject") == "" {
			w.findings = append(w.findings, Finding{
				Severity: SeverityInfo,
				Rule:     "email_empty_subject",
				Object:   owner,
				Message:  fmt.Sprintf("%s sends an email with an empty subject", owner),
			})
		}
	case model.KindUnknown:
		if !w.seenUnknown[cmd.Label] {
			w.seenUnknown[cmd.Label] = true
			w.findings = append(w.findings, Finding{
				Severity: SeverityInfo,
				Rule:     "command_unknown_kind",
				Object:   owner,
				Detail:   cmd.Label,
				Message:  fmt.Sprintf("Command type %q is not recognized and was kept as-is", cmd.Label),
			})
		}
	}
}

func (w *commandWalker) checkSQL(owner, sql string) {
	if sql == "" {
		return
	}
	upper := strings.ToUpper(sql)
	if m := destructiveRe.FindString(upper); m != "" {
		w.findings = append(w.findings, Finding{
			Severity: SeverityCritical,
			Rule:     "sql_destructive_statement",
			Object:   owner,
			Detail:   m,
			Message:  fmt.Sprintf("%s executes SQL containing %s", owner, m),
		})
		return
	}
	if (deleteRe.MatchString(upper) || updateRe.MatchString(upper)) && !whereRe.MatchString(upper) {
		w.findings = append(w.findings, Finding{
			Severity: SeverityWarning,
			Rule:     "sql_missing_where",
			Object:   owner,
			Message:  fmt.Sprintf("%s executes a DELETE or UPDATE without a WHERE clause", owner),
		})
	}
}
