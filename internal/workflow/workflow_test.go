package workflow

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/fginsight/fginsight/internal/model"
)

func object(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestParse(t *testing.T) {
	raw := object(t, `{
		"States": [
			{"Name": "Draft", "IsInitialState": true},
			{"Name": "Review"},
			{"Name": "Approved", "IsFinalState": true}
		],
		"Transitions": [
			{
				"SourceStateName": "Draft",
				"TargetStateName": "Review",
				"ActionName": "Submit",
				"Condition": {"$type": "Wf.CompareCondition, Wf", "LeftOperand": "Total", "Operator": ">", "RightOperand": "0"},
				"Assignees": [{"$type": "Wf.RoleAssignee, Wf", "RoleName": "Manager"}],
				"Commands": [{"$type": "x.SendEmailCommand", "EmailTo": "mgr@example.com", "EmailSubject": "Review request"}]
			},
			{
				"SourceStateName": "Review",
				"TargetStateName": "Approved",
				"ActionName": "Approve"
			}
		]
	}`)

	wf := Parse("Order", raw)

	if wf.TableName != "Order" {
		t.Errorf("TableName = %q, want %q", wf.TableName, "Order")
	}
	if len(wf.States) != 3 {
		t.Fatalf("States length = %d, want 3", len(wf.States))
	}
	if !wf.States[0].IsInitial || wf.States[0].Name != "Draft" {
		t.Errorf("States[0] = %+v, want initial Draft", wf.States[0])
	}
	if !wf.States[2].IsFinal {
		t.Errorf("States[2] = %+v, want final", wf.States[2])
	}

	if len(wf.Transitions) != 2 {
		t.Fatalf("Transitions length = %d, want 2", len(wf.Transitions))
	}
	tr := wf.Transitions[0]
	if tr.From != "Draft" || tr.To != "Review" || tr.Action != "Submit" {
		t.Errorf("transition = %+v, want Draft->Review Submit", tr)
	}
	if len(tr.Conditions) != 1 {
		t.Fatalf("Conditions length = %d, want 1", len(tr.Conditions))
	}
	cond := tr.Conditions[0]
	if cond.Type != "compare" || cond.Field != "Total" || cond.Operator != ">" || cond.Value != "0" {
		t.Errorf("condition = %+v, want compare Total > 0", cond)
	}
	if len(tr.Assignees) != 1 || tr.Assignees[0].Kind != model.AssigneeRole || tr.Assignees[0].Value != "Manager" {
		t.Errorf("assignees = %+v, want role Manager", tr.Assignees)
	}
	if len(tr.Commands) != 1 || tr.Commands[0].Kind != model.KindSendEmail {
		t.Errorf("commands = %+v, want one send_email", tr.Commands)
	}

	// A transition with no Condition key is unconditional.
	if wf.Transitions[1].Conditions != nil {
		t.Errorf("Conditions = %v, want nil for unconditional transition", wf.Transitions[1].Conditions)
	}
}

func TestParseExpressionCondition(t *testing.T) {
	raw := object(t, `{
		"States": [{"Name": "A"}],
		"Transitions": [{
			"SourceStateName": "A",
			"TargetStateName": "A",
			"Condition": {"$type": "Wf.ExpressionCondition, Wf", "Expression": "=ISBLANK([Owner])"}
		}]
	}`)

	wf := Parse("T", raw)
	conds := wf.Transitions[0].Conditions
	if len(conds) != 1 {
		t.Fatalf("Conditions length = %d, want 1", len(conds))
	}
	if conds[0].Type != "expression" || conds[0].Expression != "=ISBLANK([Owner])" {
		t.Errorf("condition = %+v, want expression =ISBLANK([Owner])", conds[0])
	}
}

func TestParseUnrecognizedConditionIsUnconditional(t *testing.T) {
	raw := object(t, `{
		"States": [{"Name": "A"}],
		"Transitions": [{
			"SourceStateName": "A",
			"TargetStateName": "A",
			"Condition": {"$type": "Wf.TimerCondition, Wf"}
		}]
	}`)

	wf := Parse("T", raw)
	if wf.Transitions[0].Conditions != nil {
		t.Errorf("Conditions = %v, want nil for unrecognized condition type", wf.Transitions[0].Conditions)
	}
}

func TestParseAssigneeKinds(t *testing.T) {
	raw := object(t, `{
		"States": [{"Name": "A"}],
		"Transitions": [{
			"SourceStateName": "A",
			"TargetStateName": "A",
			"Assignees": [
				{"$type": "Wf.UserAssignee, Wf", "UserName": "alice"},
				{"$type": "Wf.RoleAssignee, Wf", "RoleName": "Sales"},
				{"$type": "Wf.FieldAssignee, Wf", "FieldName": "Owner"},
				{"$type": "Wf.CreatorAssignee, Wf"},
				{"$type": "Wf.PreviousAssignee, Wf"},
				{"$type": "Wf.TeamAssignee, Wf", "TeamName": "Ops"}
			]
		}]
	}`)

	wf := Parse("T", raw)
	got := wf.Transitions[0].Assignees
	want := []model.Assignee{
		{Kind: model.AssigneeUser, Value: "alice"},
		{Kind: model.AssigneeRole, Value: "Sales"},
		{Kind: model.AssigneeField, Value: "Owner"},
		{Kind: model.AssigneeCreator, Value: "Creator"},
		{Kind: model.AssigneePrevious, Value: "Previous assignee"},
		// Unrecognized assignee types are preserved as user/"unknown".
		{Kind: model.AssigneeUser, Value: "unknown"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assignees = %+v, want %+v", got, want)
	}
}

func TestAnalyzeReachability(t *testing.T) {
	wf := &model.Workflow{
		TableName: "Order",
		States: []model.State{
			{Name: "A", IsInitial: true},
			{Name: "B"},
			{Name: "C", IsFinal: true},
		},
		Transitions: []model.Transition{
			{From: "A", To: "B"},
			{From: "B", To: "C"},
		},
	}

	v := Analyze(wf)
	if v.InitialCount != 1 || v.FinalCount != 1 {
		t.Errorf("counts = %d initial %d final, want 1/1", v.InitialCount, v.FinalCount)
	}
	if len(v.Unreachable) != 0 {
		t.Errorf("Unreachable = %v, want none: C is reachable via B", v.Unreachable)
	}
	if len(v.Dangling) != 0 {
		t.Errorf("Dangling = %v, want none", v.Dangling)
	}
}

func TestAnalyzeOrphanState(t *testing.T) {
	wf := &model.Workflow{
		TableName: "Order",
		States: []model.State{
			{Name: "A", IsInitial: true},
			{Name: "B"},
			{Name: "C", IsFinal: true},
		},
		Transitions: []model.Transition{
			{From: "A", To: "C"},
		},
	}

	v := Analyze(wf)
	if !reflect.DeepEqual(v.Unreachable, []string{"B"}) {
		t.Errorf("Unreachable = %v, want [B]", v.Unreachable)
	}
}

func TestAnalyzeDanglingTransition(t *testing.T) {
	wf := &model.Workflow{
		TableName: "Order",
		States:    []model.State{{Name: "A", IsInitial: true}},
		Transitions: []model.Transition{
			{From: "A", To: "Ghost"},
		},
	}

	v := Analyze(wf)
	if !reflect.DeepEqual(v.Dangling, []string{"Ghost"}) {
		t.Errorf("Dangling = %v, want [Ghost]", v.Dangling)
	}
}

func TestAnalyzeNoInitialStateFallsBackToGraphRoots(t *testing.T) {
	wf := &model.Workflow{
		TableName: "Order",
		States: []model.State{
			{Name: "A"},
			{Name: "B"},
			{Name: "Island"},
		},
		Transitions: []model.Transition{
			{From: "A", To: "B"},
		},
	}

	v := Analyze(wf)
	if v.InitialCount != 0 {
		t.Errorf("InitialCount = %d, want 0", v.InitialCount)
	}
	// A and Island have no incoming transitions and act as roots; B is
	// reached from A. Nothing is unreachable in this shape.
	if len(v.Unreachable) != 0 {
		t.Errorf("Unreachable = %v, want none", v.Unreachable)
	}
}
