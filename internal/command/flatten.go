package command

import (
	"strings"

	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
)

// Flatten renders a raw command node list as indented pseudocode, one
// line per entry, two spaces per nesting level. Depth comes purely from
// recursion, never from source whitespace. Every node yields at least one
// line; unrecognized nodes render as their bare label.
func Flatten(nodes []map[string]interface{}) []string {
	var lines []string
	flattenInto(nodes, 0, &lines)
	return lines
}

func flattenInto(nodes []map[string]interface{}, depth int, lines *[]string) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		lbl := label(node)
		switch kindOf(lbl) {
		case model.KindCondition:
			*lines = append(*lines, indent+"IF "+FormatCondition(jsonmap.Map(node, "Condition"))+" THEN")
			if branch := jsonmap.Maps(node, "TrueCommands"); len(branch) > 0 {
				flattenInto(branch, depth+1, lines)
			}
			if branch := jsonmap.Maps(node, "FalseCommands"); len(branch) > 0 {
				*lines = append(*lines, indent+"ELSE")
				flattenInto(branch, depth+1, lines)
			}
			*lines = append(*lines, indent+"END IF")
		case model.KindLoop:
			*lines = append(*lines, indent+"LOOP")
			if body := jsonmap.Maps(node, "Commands"); len(body) > 0 {
				flattenInto(body, depth+1, lines)
			}
			*lines = append(*lines, indent+"END LOOP")
		case model.KindExecuteSQL:
			*lines = append(*lines, indent+"EXECUTE SQL:")
			for _, sqlLine := range strings.Split(jsonmap.Str(node, "SqlStatement"), "\n") {
				*lines = append(*lines, indent+"  "+sqlLine)
			}
		case model.KindUpdateTable:
			*lines = append(*lines, indent+"UPDATE TABLE: "+jsonmap.Str(node, "TableName"))
		case model.KindInsertTable:
			*lines = append(*lines, indent+"INSERT INTO TABLE: "+jsonmap.Str(node, "TableName"))
		case model.KindDeleteTable:
			*lines = append(*lines, indent+"DELETE FROM TABLE: "+jsonmap.Str(node, "TableName"))
		case model.KindSendEmail:
			*lines = append(*lines, indent+"SEND EMAIL TO: "+jsonmap.Stringify(node["EmailTo"]))
			*lines = append(*lines, indent+"  SUBJECT: "+jsonmap.Stringify(node["EmailSubject"]))
		case model.KindCallServerCommand:
			*lines = append(*lines, indent+"CALL SERVER COMMAND: "+jsonmap.StrOr(node, "ServerCommandName", "(unknown)"))
		default:
			*lines = append(*lines, indent+lbl)
		}
	}
}

// FormatCondition renders a condition node as display text. A free-form
// Expression wins when present; otherwise "<left> <operator> <right>" with
// "==" as the default operator and empty strings for missing operands. An
// absent or empty condition renders as the fixed "(no condition)"
// placeholder.
func FormatCondition(cond map[string]interface{}) string {
	if len(cond) == 0 {
		return "(no condition)"
	}
	if expr := jsonmap.Stringify(cond["Expression"]); expr != "" {
		return expr
	}
	left := jsonmap.Stringify(cond["LeftOperand"])
	op := jsonmap.StrOr(cond, "Operator", "==")
	right := jsonmap.Stringify(cond["RightOperand"])
	return left + " " + op + " " + right
}
