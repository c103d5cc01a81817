package docs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fginsight/fginsight/internal/model"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Customer", "Customer"},
		{"In Review", "In_Review"},
		{"a-b c", "a_b_c"},
		{"顧客マスタ", "顧客マスタ"},
		{"state (final)", "state__final_"},
	}
	for _, tt := range tests {
		if got := sanitizeID(tt.in); got != tt.want {
			t.Errorf("sanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateDiagram(t *testing.T) {
	wf := &model.Workflow{
		TableName: "Order",
		States: []model.State{
			{Name: "Draft", IsInitial: true},
			{Name: "In Review"},
			{Name: "Done", IsFinal: true},
		},
		Transitions: []model.Transition{
			{From: "Draft", To: "In Review", Action: "Submit"},
			{From: "In Review", To: "Done"},
		},
	}

	want := strings.Join([]string{
		"stateDiagram-v2",
		"  [*] --> Draft",
		"  Done --> [*]",
		"  Draft --> In_Review: Submit",
		"  In_Review --> Done",
	}, "\n")
	if got := StateDiagram(wf); got != want {
		t.Errorf("StateDiagram =\n%s\nwant\n%s", got, want)
	}
}

func TestERDiagram(t *testing.T) {
	tables := []model.Table{
		{
			Name:       "Customer",
			PrimaryKey: []string{"Id"},
			Columns: []model.Column{
				{Name: "Id", Type: "Integer", Required: true},
				{Name: "Email", Type: "Text"},
			},
		},
		{
			Name:    "Order",
			Columns: []model.Column{{Name: "Id", Type: "Integer"}},
			Relations: []model.Relation{
				{SourceColumn: "CustomerId", TargetTable: "Customer", TargetColumn: "Id", Type: "OneToMany"},
			},
		},
	}

	want := strings.Join([]string{
		"erDiagram",
		"  Customer {",
		"    integer Id PK NOT_NULL",
		"    text Email",
		"  }",
		"  Order {",
		"    integer Id PK",
		"  }",
		`  Order }o--|| Customer : "CustomerId"`,
	}, "\n")
	if got := ERDiagram(tables); got != want {
		t.Errorf("ERDiagram =\n%s\nwant\n%s", got, want)
	}
}

func TestERDiagramColumnCap(t *testing.T) {
	table := model.Table{Name: "Wide", PrimaryKey: []string{"c0"}}
	for i := 0; i < 14; i++ {
		table.Columns = append(table.Columns, model.Column{Name: fmt.Sprintf("c%d", i), Type: "Text"})
	}

	out := ERDiagram([]model.Table{table})
	if !strings.Contains(out, `string _more_columns "..."`) {
		t.Error("expected a _more_columns marker")
	}
	if strings.Contains(out, "c10") {
		t.Error("columns beyond the cap should not be rendered")
	}
	if !strings.Contains(out, "text c9") {
		t.Error("the tenth column should still be rendered")
	}
}

func TestERDiagramOneToOneEdge(t *testing.T) {
	tables := []model.Table{{
		Name:      "Profile",
		Relations: []model.Relation{{SourceColumn: "UserId", TargetTable: "User", Type: "OneToOne"}},
	}}

	out := ERDiagram(tables)
	if !strings.Contains(out, `Profile ||--|| User : "UserId"`) {
		t.Errorf("ERDiagram =\n%s\nwant a ||--|| edge", out)
	}
}

func testProject() *model.Project {
	def := "5"
	p := &model.Project{
		Name: "crm",
		Tables: []model.Table{{
			Name:       "Customer",
			Folder:     "Sales",
			PrimaryKey: []string{"Id"},
			Columns: []model.Column{
				{Name: "Id", Type: "Integer", Required: true},
				{Name: "Credit", Type: "Integer", DefaultValue: &def},
			},
			Relations: []model.Relation{{SourceColumn: "RegionId", TargetTable: "Region", TargetColumn: "Id", Type: "OneToMany"}},
		}},
		Pages: []model.Page{{
			Name: "Home",
			Kind: model.PageKindPage,
			Path: "Pages/Home.json",
			Buttons: []model.Button{{
				Name:     "Save",
				Cell:     "1,1",
				Commands: []model.Command{{Kind: model.KindNavigate, Description: "Navigate to page"}},
			}},
			Formulas: []model.Formula{{Cell: "2,2", Formula: "=A1"}},
		}},
		Workflows: []model.Workflow{{
			TableName:   "Customer",
			States:      []model.State{{Name: "New", IsInitial: true}, {Name: "Active", IsFinal: true}},
			Transitions: []model.Transition{{From: "New", To: "Active", Action: "Approve", Assignees: []model.Assignee{{Kind: model.AssigneeRole, Value: "Manager"}}}},
		}},
		ServerCommands: []model.ServerCommand{{
			Name:       "Nightly",
			Folder:     "Jobs",
			Parameters: []model.Parameter{{Name: "days", Type: "Integer", Required: true}},
			Flattened:  []string{"EXECUTE SQL:", "  DELETE FROM Temp WHERE Age > 30"},
		}},
	}
	p.Summary = model.Summarize(p)
	return p
}

func TestMarkdownSections(t *testing.T) {
	out := Markdown(testProject())

	wantFragments := []string{
		"# crm System Specification",
		"| Project name | crm |",
		"| Tables | 1 |",
		"### 2.2 Table details",
		"#### Customer",
		"Primary key: `Id`",
		"| Credit | Integer |  |  | 5 |",
		"| OneToMany | RegionId | Region | Id |",
		"| 1 | Home | page | 1 | 1 |",
		"- **Save** (1 commands)",
		"  - Navigate to page",
		"| 2,2 | `=A1` |",
		"### Workflow: Customer",
		"| Approve | New | Active | role: Manager |",
		"stateDiagram-v2",
		"| 1 | Nightly | Jobs | 1 | 2 |",
		"| days | Integer | yes |  |",
		"EXECUTE SQL:",
		"## 6. ER diagram",
		"erDiagram",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(out, frag) {
			t.Errorf("Markdown output missing fragment %q", frag)
		}
	}
}

func TestMarkdownDeterministic(t *testing.T) {
	p := testProject()
	if Markdown(p) != Markdown(p) {
		t.Error("Markdown output should be deterministic")
	}
}

func TestMarkdownPseudocodeCap(t *testing.T) {
	p := &model.Project{Name: "big"}
	cmd := model.ServerCommand{Name: "Long"}
	for i := 0; i < maxPseudocodeLines+5; i++ {
		cmd.Flattened = append(cmd.Flattened, fmt.Sprintf("CALL SERVER COMMAND: step%d", i))
	}
	p.ServerCommands = []model.ServerCommand{cmd}
	p.Summary = model.Summarize(p)

	out := Markdown(p)
	if !strings.Contains(out, "5 more lines not shown.") {
		t.Error("expected a truncation note for long pseudocode")
	}
	if strings.Contains(out, "step52") {
		t.Error("lines beyond the cap should not be rendered")
	}
}

func TestMarkdownEmptyProject(t *testing.T) {
	p := &model.Project{Name: "empty"}
	p.Summary = model.Summarize(p)

	out := Markdown(p)
	if !strings.Contains(out, "No tables defined.") {
		t.Error("expected a no-tables note")
	}
	if !strings.Contains(out, "No pages defined.") {
		t.Error("expected a no-pages note")
	}
	if strings.Contains(out, "## 4. Workflows") || strings.Contains(out, "## 5. Server commands") {
		t.Error("empty sections should be omitted")
	}
	if strings.Contains(out, "## 6. ER diagram") {
		t.Error("the ER diagram should be omitted without tables")
	}
}
