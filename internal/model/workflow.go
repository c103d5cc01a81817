package model

// Workflow is the state machine bound to a table, modeling its record
// approval or status lifecycle.
type Workflow struct {
	TableName   string       `json:"table_name"`
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

// State is one node of a workflow. A workflow may declare zero, one, or
// several initial and final states; structural validity is checked by the
// reviewer, not at construction.
type State struct {
	Name      string `json:"name"`
	IsInitial bool   `json:"is_initial"`
	IsFinal   bool   `json:"is_final"`
}

// Transition is a guarded, assignee-bound edge between two states.
type Transition struct {
	From       string                `json:"from_state"`
	To         string                `json:"to_state"`
	Action     string                `json:"action"`
	Conditions []TransitionCondition `json:"conditions,omitempty"`
	Assignees  []Assignee            `json:"assignees,omitempty"`
	Commands   []Command             `json:"commands,omitempty"`
}

// TransitionCondition guards a transition. Exactly two shapes exist in the
// source format: a free-form expression, or a left/operator/right
// comparison.
type TransitionCondition struct {
	Type       string `json:"type"` // "expression" or "compare"
	Expression string `json:"expression,omitempty"`
	Field      string `json:"field,omitempty"`
	Operator   string `json:"operator,omitempty"`
	Value      string `json:"value,omitempty"`
}

// AssigneeKind classifies who is responsible for acting on a transition.
type AssigneeKind string

const (
	AssigneeUser     AssigneeKind = "user"
	AssigneeRole     AssigneeKind = "role"
	AssigneeField    AssigneeKind = "field"
	AssigneeCreator  AssigneeKind = "creator"
	AssigneePrevious AssigneeKind = "previousAssignee"
)

// Assignee is the responsible party for a workflow transition. Value is an
// identifier for user/role/field kinds and a fixed label for the creator
// and previousAssignee kinds.
type Assignee struct {
	Kind  AssigneeKind `json:"kind"`
	Value string       `json:"value"`
}
