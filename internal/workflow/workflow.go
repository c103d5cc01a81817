// Package workflow reconstructs the state machine bound to a table: its
// states and the guarded, assignee-bound transitions between them, plus
// the structural analysis (reachability, endpoint validity) the reviewer
// builds on.
package workflow

import (
	"strings"

	"github.com/fginsight/fginsight/internal/command"
	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
)

// Parse builds the workflow owned by tableName from its raw bound
// definition. Field access is defensive throughout: a sparse or partially
// recognized definition yields a sparse workflow, never an error.
func Parse(tableName string, raw map[string]interface{}) *model.Workflow {
	wf := &model.Workflow{TableName: tableName}

	for _, s := range jsonmap.Maps(raw, "States") {
		wf.States = append(wf.States, model.State{
			Name:      jsonmap.Str(s, "Name"),
			IsInitial: jsonmap.Bool(s, "IsInitialState"),
			IsFinal:   jsonmap.Bool(s, "IsFinalState"),
		})
	}

	for _, tr := range jsonmap.Maps(raw, "Transitions") {
		wf.Transitions = append(wf.Transitions, model.Transition{
			From:       jsonmap.Str(tr, "SourceStateName"),
			To:         jsonmap.Str(tr, "TargetStateName"),
			Action:     jsonmap.Str(tr, "ActionName"),
			Conditions: parseConditions(jsonmap.Map(tr, "Condition")),
			Assignees:  parseAssignees(jsonmap.Maps(tr, "Assignees")),
			Commands:   command.ParseList(jsonmap.Maps(tr, "Commands")),
		})
	}

	return wf
}

// parseConditions maps a transition's condition node to the two supported
// shapes. Discrimination is by substring on the raw $type: the source
// format's condition type names vary by namespace across generations, but
// the class-name core is stable. An absent or unrecognized condition means
// the transition is unconditional.
func parseConditions(cond map[string]interface{}) []model.TransitionCondition {
	if len(cond) == 0 {
		return nil
	}
	typ := jsonmap.Str(cond, "$type")
	switch {
	case strings.Contains(typ, "ExpressionCondition"):
		return []model.TransitionCondition{{
			Type:       "expression",
			Expression: jsonmap.Str(cond, "Expression"),
		}}
	case strings.Contains(typ, "CompareCondition"):
		return []model.TransitionCondition{{
			Type:     "compare",
			Field:    jsonmap.Stringify(cond["LeftOperand"]),
			Operator: jsonmap.StrOr(cond, "Operator", "=="),
			Value:    jsonmap.Stringify(cond["RightOperand"]),
		}}
	}
	return nil
}

// parseAssignees classifies each assignee node by substring match on its
// $type. An unrecognized assignee becomes a user with the literal value
// "unknown": the record is preserved rather than dropped, so a reviewer
// can still see that someone was assigned.
func parseAssignees(raw []map[string]interface{}) []model.Assignee {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Assignee, 0, len(raw))
	for _, a := range raw {
		typ := jsonmap.Str(a, "$type")
		switch {
		case strings.Contains(typ, "UserAssignee"):
			out = append(out, model.Assignee{Kind: model.AssigneeUser, Value: jsonmap.Str(a, "UserName")})
		case strings.Contains(typ, "RoleAssignee"):
			out = append(out, model.Assignee{Kind: model.AssigneeRole, Value: jsonmap.Str(a, "RoleName")})
		case strings.Contains(typ, "FieldAssignee"):
			out = append(out, model.Assignee{Kind: model.AssigneeField, Value: jsonmap.Str(a, "FieldName")})
		case strings.Contains(typ, "CreatorAssignee"):
			out = append(out, model.Assignee{Kind: model.AssigneeCreator, Value: "Creator"})
		case strings.Contains(typ, "PreviousAssignee"):
			out = append(out, model.Assignee{Kind: model.AssigneePrevious, Value: "Previous assignee"})
		default:
			out = append(out, model.Assignee{Kind: model.AssigneeUser, Value: "unknown"})
		}
	}
	return out
}

// Validity is the structural analysis of one workflow.
type Validity struct {
	InitialCount int
	FinalCount   int
	// Unreachable lists declared states no transition path from an
	// initial state can reach (orphan states).
	Unreachable []string
	// Dangling lists transition endpoints that name no declared state.
	Dangling []string
}

// Analyze computes reachability and endpoint validity for wf. Traversal
// starts from the declared initial states; when a workflow declares none,
// states without incoming transitions serve as roots so a legacy
// definition is not reported as entirely unreachable.
func Analyze(wf *model.Workflow) Validity {
	var v Validity

	declared := make(map[string]bool, len(wf.States))
	for _, s := range wf.States {
		declared[s.Name] = true
		if s.IsInitial {
			v.InitialCount++
		}
		if s.IsFinal {
			v.FinalCount++
		}
	}

	incoming := make(map[string]int)
	edges := make(map[string][]string)
	for _, tr := range wf.Transitions {
		edges[tr.From] = append(edges[tr.From], tr.To)
		incoming[tr.To]++
		if tr.From != "" && !declared[tr.From] {
			v.Dangling = append(v.Dangling, tr.From)
		}
		if tr.To != "" && !declared[tr.To] {
			v.Dangling = append(v.Dangling, tr.To)
		}
	}

	var roots []string
	for _, s := range wf.States {
		if s.IsInitial {
			roots = append(roots, s.Name)
		}
	}
	if len(roots) == 0 && v.InitialCount == 0 {
		for _, s := range wf.States {
			if incoming[s.Name] == 0 {
				roots = append(roots, s.Name)
			}
		}
	}

	reached := make(map[string]bool, len(wf.States))
	queue := append([]string(nil), roots...)
	for _, r := range roots {
		reached[r] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, s := range wf.States {
		if !reached[s.Name] {
			v.Unreachable = append(v.Unreachable, s.Name)
		}
	}

	return v
}
