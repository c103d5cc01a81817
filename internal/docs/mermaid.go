package docs

import (
	"regexp"
	"strings"

	"github.com/fginsight/fginsight/internal/model"
)

// Mermaid rendering caps. Tables with many columns are cut off so the
// diagram stays readable.
const maxDiagramColumns = 10

// mermaidIDRe matches characters Mermaid cannot digest inside node ids.
// Japanese kana and kanji are kept because project authors name states
// and tables in them.
var mermaidIDRe = regexp.MustCompile(`[^a-zA-Z0-9_\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)

var typeTokenRe = regexp.MustCompile(`[^a-z]`)

func sanitizeID(s string) string {
	return mermaidIDRe.ReplaceAllString(s, "_")
}

// StateDiagram renders a workflow as a Mermaid state diagram: entry
// arrows for initial states, exit arrows for final states, then one edge
// per transition.
func StateDiagram(wf *model.Workflow) string {
	lines := []string{"stateDiagram-v2"}

	for _, s := range wf.States {
		if s.IsInitial {
			lines = append(lines, "  [*] --> "+sanitizeID(s.Name))
		}
		if s.IsFinal {
			lines = append(lines, "  "+sanitizeID(s.Name)+" --> [*]")
		}
	}

	for _, tr := range wf.Transitions {
		edge := "  " + sanitizeID(tr.From) + " --> " + sanitizeID(tr.To)
		if tr.Action != "" {
			edge += ": " + tr.Action
		}
		lines = append(lines, edge)
	}

	return strings.Join(lines, "\n")
}

// ERDiagram renders the tables as a Mermaid entity-relationship diagram.
// Column types are reduced to a bare lowercase token, key columns are
// marked PK, and one crow's-foot edge is drawn per relation.
func ERDiagram(tables []model.Table) string {
	lines := []string{"erDiagram"}

	for _, t := range tables {
		lines = append(lines, "  "+sanitizeID(t.Name)+" {")
		for i, col := range t.Columns {
			if i == maxDiagramColumns {
				lines = append(lines, `    string _more_columns "..."`)
				break
			}
			lines = append(lines, "    "+columnLine(t, col))
		}
		lines = append(lines, "  }")
	}

	for _, t := range tables {
		for _, rel := range t.Relations {
			edge := "||--||"
			if strings.Contains(rel.Type, "Many") {
				edge = "}o--||"
			}
			lines = append(lines, "  "+sanitizeID(t.Name)+" "+edge+" "+sanitizeID(rel.TargetTable)+` : "`+rel.SourceColumn+`"`)
		}
	}

	return strings.Join(lines, "\n")
}

func columnLine(t model.Table, col model.Column) string {
	typ := typeTokenRe.ReplaceAllString(strings.ToLower(col.Type), "")
	if typ == "" {
		typ = "string"
	}
	tokens := []string{typ, sanitizeID(col.Name)}
	if isKeyColumn(t, col) {
		tokens = append(tokens, "PK")
	}
	if col.Required {
		tokens = append(tokens, "NOT_NULL")
	}
	return strings.Join(tokens, " ")
}

// isKeyColumn prefers the declared primary key and falls back to the
// naming convention for tables that declare none.
func isKeyColumn(t model.Table, col model.Column) bool {
	if len(t.PrimaryKey) > 0 {
		for _, k := range t.PrimaryKey {
			if k == col.Name {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(col.Name, "id")
}
