// Package docs renders an analyzed project as a human-readable system
// specification: a Markdown document with summary tables, per-object
// detail sections and embedded Mermaid diagrams.
package docs

import (
	"fmt"
	"strings"

	"github.com/fginsight/fginsight/internal/model"
)

// Rendering caps for the detail sections. Long lists are cut off with a
// count of the remainder.
const (
	maxFormulaRows     = 20
	maxPseudocodeLines = 50
)

// Markdown renders the full specification document. Output is
// deterministic for a given model so generated documents diff cleanly
// across project versions.
func Markdown(p *model.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s System Specification\n\n", p.Name)

	writeOverview(&b, p)
	writeTables(&b, p)
	writePages(&b, p)
	writeWorkflows(&b, p)
	writeServerCommands(&b, p)
	writeERSection(&b, p)

	return b.String()
}

func writeOverview(b *strings.Builder, p *model.Project) {
	b.WriteString("## 1. Overview\n\n")
	b.WriteString("| Item | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Project name | %s |\n", p.Name)
	fmt.Fprintf(b, "| Tables | %d |\n", p.Summary.TableCount)
	fmt.Fprintf(b, "| Pages | %d |\n", p.Summary.PageCount)
	fmt.Fprintf(b, "| Workflows | %d |\n", p.Summary.WorkflowCount)
	fmt.Fprintf(b, "| Server commands | %d |\n", p.Summary.ServerCommandCount)
	fmt.Fprintf(b, "| Total columns | %d |\n", p.Summary.TotalColumns)
	fmt.Fprintf(b, "| Total relations | %d |\n\n", p.Summary.TotalRelations)
}

func writeTables(b *strings.Builder, p *model.Project) {
	b.WriteString("## 2. Tables\n\n")
	if len(p.Tables) == 0 {
		b.WriteString("No tables defined.\n\n")
		return
	}

	b.WriteString("### 2.1 Table list\n\n")
	b.WriteString("| # | Table | Folder | Columns | Relations |\n|---|---|---|---|---|\n")
	for i, t := range p.Tables {
		fmt.Fprintf(b, "| %d | %s | %s | %d | %d |\n", i+1, t.Name, orDash(t.Folder), len(t.Columns), len(t.Relations))
	}
	b.WriteString("\n### 2.2 Table details\n\n")

	for _, t := range p.Tables {
		fmt.Fprintf(b, "#### %s\n\n", t.Name)
		if len(t.PrimaryKey) > 0 {
			fmt.Fprintf(b, "Primary key: `%s`\n\n", strings.Join(t.PrimaryKey, ", "))
		}
		if len(t.Columns) > 0 {
			b.WriteString("| Column | Type | Required | Unique | Default | Description |\n|---|---|---|---|---|---|\n")
			for _, c := range t.Columns {
				fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
					c.Name, c.Type, yesNo(c.Required), yesNo(c.Unique), strOrEmpty(c.DefaultValue), c.Description)
			}
			b.WriteString("\n")
		}
		if len(t.Relations) > 0 {
			b.WriteString("Relations:\n\n")
			b.WriteString("| Type | Source column | Target table | Target column |\n|---|---|---|---|\n")
			for _, r := range t.Relations {
				fmt.Fprintf(b, "| %s | %s | %s | %s |\n", r.Type, r.SourceColumn, r.TargetTable, r.TargetColumn)
			}
			b.WriteString("\n")
		}
	}
}

func writePages(b *strings.Builder, p *model.Project) {
	b.WriteString("## 3. Pages\n\n")
	if len(p.Pages) == 0 {
		b.WriteString("No pages defined.\n\n")
		return
	}

	b.WriteString("### 3.1 Page list\n\n")
	b.WriteString("| # | Page | Kind | Buttons | Formulas |\n|---|---|---|---|---|\n")
	for i, page := range p.Pages {
		kind := "page"
		if page.Kind == model.PageKindMaster {
			kind = "master page"
		}
		fmt.Fprintf(b, "| %d | %s | %s | %d | %d |\n", i+1, page.Name, kind, len(page.Buttons), len(page.Formulas))
	}
	b.WriteString("\n")

	detailed := make([]model.Page, 0, len(p.Pages))
	for _, page := range p.Pages {
		if len(page.Buttons) > 0 || len(page.Formulas) > 0 || len(page.CellCommands) > 0 {
			detailed = append(detailed, page)
		}
	}
	if len(detailed) == 0 {
		return
	}

	b.WriteString("### 3.2 Page details\n\n")
	for _, page := range detailed {
		fmt.Fprintf(b, "#### %s\n\n", page.Name)

		if len(page.Buttons) > 0 {
			b.WriteString("Buttons:\n\n")
			for _, btn := range page.Buttons {
				fmt.Fprintf(b, "- **%s** (%d commands)\n", btn.Name, len(btn.Commands))
				for _, cmd := range btn.Commands {
					fmt.Fprintf(b, "  - %s\n", cmd.Description)
				}
			}
			b.WriteString("\n")
		}

		if len(page.CellCommands) > 0 {
			b.WriteString("Cell commands:\n\n")
			for _, cc := range page.CellCommands {
				fmt.Fprintf(b, "- cell %s on %s (%d commands)\n", cc.Cell, cc.Event, len(cc.Commands))
			}
			b.WriteString("\n")
		}

		if len(page.Formulas) > 0 {
			b.WriteString("Formulas:\n\n| Cell | Formula |\n|---|---|\n")
			for i, f := range page.Formulas {
				if i == maxFormulaRows {
					break
				}
				fmt.Fprintf(b, "| %s | `%s` |\n", f.Cell, f.Formula)
			}
			b.WriteString("\n")
			if extra := len(page.Formulas) - maxFormulaRows; extra > 0 {
				fmt.Fprintf(b, "%d more formulas not shown.\n\n", extra)
			}
		}
	}
}

func writeWorkflows(b *strings.Builder, p *model.Project) {
	if len(p.Workflows) == 0 {
		return
	}
	b.WriteString("## 4. Workflows\n\n")

	for i := range p.Workflows {
		wf := &p.Workflows[i]
		fmt.Fprintf(b, "### Workflow: %s\n\n", wf.TableName)

		b.WriteString("| State | Initial | Final |\n|---|---|---|\n")
		for _, s := range wf.States {
			fmt.Fprintf(b, "| %s | %s | %s |\n", s.Name, yesNo(s.IsInitial), yesNo(s.IsFinal))
		}
		b.WriteString("\n")

		if len(wf.Transitions) > 0 {
			b.WriteString("| Action | From | To | Assignees |\n|---|---|---|---|\n")
			for _, tr := range wf.Transitions {
				fmt.Fprintf(b, "| %s | %s | %s | %s |\n", tr.Action, tr.From, tr.To, assigneeList(tr.Assignees))
			}
			b.WriteString("\n")
		}

		b.WriteString("```mermaid\n")
		b.WriteString(StateDiagram(wf))
		b.WriteString("\n```\n\n")
	}
}

func writeServerCommands(b *strings.Builder, p *model.Project) {
	if len(p.ServerCommands) == 0 {
		return
	}
	b.WriteString("## 5. Server commands\n\n")

	b.WriteString("### 5.1 Command list\n\n")
	b.WriteString("| # | Command | Folder | Parameters | Lines |\n|---|---|---|---|---|\n")
	for i, c := range p.ServerCommands {
		fmt.Fprintf(b, "| %d | %s | %s | %d | %d |\n", i+1, c.Name, orDash(c.Folder), len(c.Parameters), len(c.Flattened))
	}
	b.WriteString("\n### 5.2 Command details\n\n")

	for _, c := range p.ServerCommands {
		fmt.Fprintf(b, "#### %s\n\n", c.Name)

		if len(c.Parameters) > 0 {
			b.WriteString("Parameters:\n\n| Parameter | Type | Required | Default |\n|---|---|---|---|\n")
			for _, param := range c.Parameters {
				fmt.Fprintf(b, "| %s | %s | %s | %s |\n", param.Name, param.Type, yesNo(param.Required), strOrEmpty(param.DefaultValue))
			}
			b.WriteString("\n")
		}

		if len(c.Flattened) > 0 {
			b.WriteString("Logic:\n\n```\n")
			for i, line := range c.Flattened {
				if i == maxPseudocodeLines {
					break
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("```\n\n")
			if extra := len(c.Flattened) - maxPseudocodeLines; extra > 0 {
				fmt.Fprintf(b, "%d more lines not shown.\n\n", extra)
			}
		}
	}
}

func writeERSection(b *strings.Builder, p *model.Project) {
	if len(p.Tables) == 0 {
		return
	}
	b.WriteString("## 6. ER diagram\n\n```mermaid\n")
	b.WriteString(ERDiagram(p.Tables))
	b.WriteString("\n```\n")
}

func assigneeList(assignees []model.Assignee) string {
	if len(assignees) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(assignees))
	for _, a := range assignees {
		parts = append(parts, string(a.Kind)+": "+a.Value)
	}
	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
