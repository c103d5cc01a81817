// Package diff compares two analyzed project models and classifies every
// difference as additive or breaking. Removals and tightened constraints
// break existing consumers; additions and loosened constraints do not.
package diff

import (
	"fmt"
	"strings"
	"time"

	"github.com/fginsight/fginsight/internal/model"
)

// Compare diffs two project models, old against new.
func Compare(old, new *model.Project) Report {
	report := Report{
		OldProject: old.Name,
		NewProject: new.Name,
		ComparedAt: time.Now().UTC(),
	}

	diffTables(&report, old.Tables, new.Tables)
	diffPages(&report, old.Pages, new.Pages)
	diffServerCommands(&report, old.ServerCommands, new.ServerCommands)

	for _, item := range report.Items {
		switch item.Type {
		case ChangeAdditive:
			report.AdditiveCount++
		case ChangeBreaking:
			report.BreakingCount++
		}
	}
	report.HasChanges = len(report.Items) > 0
	report.HasBreaking = report.BreakingCount > 0

	return report
}

func diffTables(report *Report, old, new []model.Table) {
	newByName := make(map[string]model.Table, len(new))
	for _, t := range new {
		newByName[t.Name] = t
	}
	oldByName := make(map[string]model.Table, len(old))
	for _, t := range old {
		oldByName[t.Name] = t
	}

	for _, oldTable := range old {
		newTable, exists := newByName[oldTable.Name]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "table_removed",
				Object:      oldTable.Name,
				Description: fmt.Sprintf("Table %q was removed", oldTable.Name),
			})
			continue
		}
		diffColumns(report, oldTable.Name, oldTable.Columns, newTable.Columns)
		diffWorkflow(report, oldTable.Name, oldTable.Workflow, newTable.Workflow)
	}

	for _, newTable := range new {
		if _, exists := oldByName[newTable.Name]; !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "table_added",
				Object:      newTable.Name,
				Description: fmt.Sprintf("Table %q was added with %d columns", newTable.Name, len(newTable.Columns)),
			})
		}
	}
}

func diffColumns(report *Report, tableName string, old, new []model.Column) {
	newByName := make(map[string]model.Column, len(new))
	for _, c := range new {
		newByName[c.Name] = c
	}
	oldByName := make(map[string]model.Column, len(old))
	for _, c := range old {
		oldByName[c.Name] = c
	}

	for _, oldCol := range old {
		newCol, exists := newByName[oldCol.Name]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "column_removed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    oldCol.Type,
				Description: fmt.Sprintf("Column %q was removed from table %q", oldCol.Name, tableName),
			})
			continue
		}

		if oldCol.Type != newCol.Type {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "type_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    oldCol.Type,
				NewValue:    newCol.Type,
				Description: fmt.Sprintf("Column %q type changed from %q to %q", oldCol.Name, oldCol.Type, newCol.Type),
			})
		}

		// Tightening a constraint rejects rows that used to be valid;
		// loosening one does not.
		if !oldCol.Required && newCol.Required {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "required_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    "optional",
				NewValue:    "required",
				Description: fmt.Sprintf("Column %q became required", oldCol.Name),
			})
		} else if oldCol.Required && !newCol.Required {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "required_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    "required",
				NewValue:    "optional",
				Description: fmt.Sprintf("Column %q became optional", oldCol.Name),
			})
		}

		if !oldCol.Unique && newCol.Unique {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "unique_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    "non-unique",
				NewValue:    "unique",
				Description: fmt.Sprintf("Column %q gained a unique constraint", oldCol.Name),
			})
		} else if oldCol.Unique && !newCol.Unique {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "unique_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    "unique",
				NewValue:    "non-unique",
				Description: fmt.Sprintf("Column %q lost its unique constraint", oldCol.Name),
			})
		}

		if oldDef, newDef := strValue(oldCol.DefaultValue), strValue(newCol.DefaultValue); oldDef != newDef {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "default_changed",
				Object:      tableName,
				Member:      oldCol.Name,
				OldValue:    oldDef,
				NewValue:    newDef,
				Description: fmt.Sprintf("Column %q default changed from %q to %q", oldCol.Name, oldDef, newDef),
			})
		}
	}

	for _, newCol := range new {
		if _, exists := oldByName[newCol.Name]; !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "column_added",
				Object:      tableName,
				Member:      newCol.Name,
				NewValue:    newCol.Type,
				Description: fmt.Sprintf("Column %q was added to table %q", newCol.Name, tableName),
			})
		}
	}
}

func diffWorkflow(report *Report, tableName string, old, new *model.Workflow) {
	switch {
	case old == nil && new == nil:
		return
	case old == nil:
		report.Items = append(report.Items, Item{
			Type:        ChangeAdditive,
			Category:    "workflow_added",
			Object:      tableName,
			Description: fmt.Sprintf("Table %q gained a workflow with %d states", tableName, len(new.States)),
		})
		return
	case new == nil:
		report.Items = append(report.Items, Item{
			Type:        ChangeBreaking,
			Category:    "workflow_removed",
			Object:      tableName,
			Description: fmt.Sprintf("Table %q lost its workflow", tableName),
		})
		return
	}

	oldStates := make(map[string]bool, len(old.States))
	for _, s := range old.States {
		oldStates[s.Name] = true
	}
	newStates := make(map[string]bool, len(new.States))
	for _, s := range new.States {
		newStates[s.Name] = true
	}
	for _, s := range old.States {
		if !newStates[s.Name] {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "state_removed",
				Object:      tableName,
				Member:      s.Name,
				Description: fmt.Sprintf("Workflow state %q was removed from table %q", s.Name, tableName),
			})
		}
	}
	for _, s := range new.States {
		if !oldStates[s.Name] {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "state_added",
				Object:      tableName,
				Member:      s.Name,
				Description: fmt.Sprintf("Workflow state %q was added to table %q", s.Name, tableName),
			})
		}
	}

	oldEdges := make(map[string]bool, len(old.Transitions))
	for _, tr := range old.Transitions {
		oldEdges[transitionKey(tr)] = true
	}
	newEdges := make(map[string]bool, len(new.Transitions))
	for _, tr := range new.Transitions {
		newEdges[transitionKey(tr)] = true
	}
	for _, tr := range old.Transitions {
		if key := transitionKey(tr); !newEdges[key] {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "transition_removed",
				Object:      tableName,
				Member:      key,
				Description: fmt.Sprintf("Workflow transition %s was removed from table %q", key, tableName),
			})
		}
	}
	for _, tr := range new.Transitions {
		if key := transitionKey(tr); !oldEdges[key] {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "transition_added",
				Object:      tableName,
				Member:      key,
				Description: fmt.Sprintf("Workflow transition %s was added to table %q", key, tableName),
			})
		}
	}
}

func diffPages(report *Report, old, new []model.Page) {
	newByName := make(map[string]model.Page, len(new))
	for _, p := range new {
		newByName[p.Name] = p
	}
	oldByName := make(map[string]model.Page, len(old))
	for _, p := range old {
		oldByName[p.Name] = p
	}

	for _, oldPage := range old {
		newPage, exists := newByName[oldPage.Name]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "page_removed",
				Object:      oldPage.Name,
				Description: fmt.Sprintf("Page %q was removed", oldPage.Name),
			})
			continue
		}
		diffButtons(report, oldPage.Name, oldPage.Buttons, newPage.Buttons)
		diffFormulas(report, oldPage.Name, oldPage.Formulas, newPage.Formulas)
	}

	for _, newPage := range new {
		if _, exists := oldByName[newPage.Name]; !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "page_added",
				Object:      newPage.Name,
				Description: fmt.Sprintf("Page %q was added", newPage.Name),
			})
		}
	}
}

func diffButtons(report *Report, pageName string, old, new []model.Button) {
	newByName := make(map[string]bool, len(new))
	for _, b := range new {
		newByName[b.Name] = true
	}
	oldByName := make(map[string]bool, len(old))
	for _, b := range old {
		oldByName[b.Name] = true
	}
	for _, b := range old {
		if !newByName[b.Name] {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "button_removed",
				Object:      pageName,
				Member:      b.Name,
				Description: fmt.Sprintf("Button %q was removed from page %q", b.Name, pageName),
			})
		}
	}
	for _, b := range new {
		if !oldByName[b.Name] {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "button_added",
				Object:      pageName,
				Member:      b.Name,
				Description: fmt.Sprintf("Button %q was added to page %q", b.Name, pageName),
			})
		}
	}
}

func diffFormulas(report *Report, pageName string, old, new []model.Formula) {
	newByCell := make(map[string]string, len(new))
	for _, f := range new {
		newByCell[f.Cell] = f.Formula
	}
	oldByCell := make(map[string]string, len(old))
	for _, f := range old {
		oldByCell[f.Cell] = f.Formula
	}
	for _, f := range old {
		newFormula, exists := newByCell[f.Cell]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "formula_removed",
				Object:      pageName,
				Member:      f.Cell,
				OldValue:    f.Formula,
				Description: fmt.Sprintf("Formula at %s was removed from page %q", f.Cell, pageName),
			})
			continue
		}
		if newFormula != f.Formula {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "formula_changed",
				Object:      pageName,
				Member:      f.Cell,
				OldValue:    f.Formula,
				NewValue:    newFormula,
				Description: fmt.Sprintf("Formula at %s on page %q changed", f.Cell, pageName),
			})
		}
	}
	for _, f := range new {
		if _, exists := oldByCell[f.Cell]; !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "formula_added",
				Object:      pageName,
				Member:      f.Cell,
				NewValue:    f.Formula,
				Description: fmt.Sprintf("Formula at %s was added to page %q", f.Cell, pageName),
			})
		}
	}
}

func diffServerCommands(report *Report, old, new []model.ServerCommand) {
	newByName := make(map[string]model.ServerCommand, len(new))
	for _, c := range new {
		newByName[c.Name] = c
	}
	oldByName := make(map[string]model.ServerCommand, len(old))
	for _, c := range old {
		oldByName[c.Name] = c
	}

	for _, oldCmd := range old {
		newCmd, exists := newByName[oldCmd.Name]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "command_removed",
				Object:      oldCmd.Name,
				Description: fmt.Sprintf("Server command %q was removed", oldCmd.Name),
			})
			continue
		}
		diffParameters(report, oldCmd.Name, oldCmd.Parameters, newCmd.Parameters)
		if oldLogic, newLogic := strings.Join(oldCmd.Flattened, "\n"), strings.Join(newCmd.Flattened, "\n"); oldLogic != newLogic {
			report.Items = append(report.Items, Item{
				Type:     ChangeAdditive,
				Category: "logic_changed",
				Object:   oldCmd.Name,
				Description: fmt.Sprintf("Server command %q logic changed (%d -> %d steps)",
					oldCmd.Name, len(oldCmd.Flattened), len(newCmd.Flattened)),
			})
		}
	}

	for _, newCmd := range new {
		if _, exists := oldByName[newCmd.Name]; !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeAdditive,
				Category:    "command_added",
				Object:      newCmd.Name,
				Description: fmt.Sprintf("Server command %q was added", newCmd.Name),
			})
		}
	}
}

func diffParameters(report *Report, cmdName string, old, new []model.Parameter) {
	newByName := make(map[string]model.Parameter, len(new))
	for _, p := range new {
		newByName[p.Name] = p
	}
	oldByName := make(map[string]model.Parameter, len(old))
	for _, p := range old {
		oldByName[p.Name] = p
	}

	for _, oldParam := range old {
		newParam, exists := newByName[oldParam.Name]
		if !exists {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "parameter_removed",
				Object:      cmdName,
				Member:      oldParam.Name,
				OldValue:    oldParam.Type,
				Description: fmt.Sprintf("Parameter %q was removed from server command %q", oldParam.Name, cmdName),
			})
			continue
		}
		if oldParam.Type != newParam.Type {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "parameter_type_changed",
				Object:      cmdName,
				Member:      oldParam.Name,
				OldValue:    oldParam.Type,
				NewValue:    newParam.Type,
				Description: fmt.Sprintf("Parameter %q type changed from %q to %q", oldParam.Name, oldParam.Type, newParam.Type),
			})
		}
		if !oldParam.Required && newParam.Required {
			report.Items = append(report.Items, Item{
				Type:        ChangeBreaking,
				Category:    "parameter_required_changed",
				Object:      cmdName,
				Member:      oldParam.Name,
				OldValue:    "optional",
				NewValue:    "required",
				Description: fmt.Sprintf("Parameter %q became required", oldParam.Name),
			})
		}
	}

	for _, newParam := range new {
		if _, exists := oldByName[newParam.Name]; !exists {
			// A new required parameter rejects existing callers; a new
			// optional one does not.
			typ := ChangeAdditive
			if newParam.Required {
				typ = ChangeBreaking
			}
			report.Items = append(report.Items, Item{
				Type:        typ,
				Category:    "parameter_added",
				Object:      cmdName,
				Member:      newParam.Name,
				NewValue:    newParam.Type,
				Description: fmt.Sprintf("Parameter %q was added to server command %q", newParam.Name, cmdName),
			})
		}
	}
}

func transitionKey(tr model.Transition) string {
	if tr.Action == "" {
		return fmt.Sprintf("%s -> %s", tr.From, tr.To)
	}
	return fmt.Sprintf("%s -> %s (%s)", tr.From, tr.To, tr.Action)
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
