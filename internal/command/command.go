// Package command interprets the polymorphic command trees attached to
// buttons, cell events, server commands, and workflow transitions. Each
// raw node carries a runtime type discriminator in its $type field; the
// interpreter produces both a structured tree and a flattened pseudocode
// rendering from the same nodes, sharing one tag-to-kind mapping so the
// two can never disagree.
package command

import (
	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
)

// kindOf is the single mapping from a normalized discriminator label to a
// command kind. Parse and Flatten both go through it; add new kinds here
// and nowhere else.
func kindOf(label string) model.CommandKind {
	switch label {
	case "ConditionCommand":
		return model.KindCondition
	case "LoopCommand":
		return model.KindLoop
	case "ExecuteSqlCommand":
		return model.KindExecuteSQL
	case "UpdateTableDataCommand":
		return model.KindUpdateTable
	case "InsertTableDataCommand":
		return model.KindInsertTable
	case "DeleteTableDataCommand":
		return model.KindDeleteTable
	case "SendEmailCommand":
		return model.KindSendEmail
	case "SetCellValueCommand":
		return model.KindSetCellValue
	case "NavigateCommand":
		return model.KindNavigate
	case "CallServerCommandCommand":
		return model.KindCallServerCommand
	default:
		return model.KindUnknown
	}
}

// label derives the short discriminator segment of a raw node. Nodes with
// no usable discriminator yield "Unknown"; that is a value, not an error.
func label(node map[string]interface{}) string {
	return model.ShortTypeName(jsonmap.Str(node, "$type"), "Unknown")
}

// Parse builds the structured command for one raw node. It never fails:
// unrecognized nodes become KindUnknown commands carrying their raw label.
func Parse(node map[string]interface{}) model.Command {
	lbl := label(node)
	kind := kindOf(lbl)
	cmd := model.Command{
		Kind:        kind,
		Label:       lbl,
		Description: describe(node, lbl, kind),
	}

	switch kind {
	case model.KindCondition:
		cmd.Description = "IF " + FormatCondition(jsonmap.Map(node, "Condition"))
		sub := ParseList(jsonmap.Maps(node, "TrueCommands"))
		cmd.Sub = append(sub, ParseList(jsonmap.Maps(node, "FalseCommands"))...)
	case model.KindLoop:
		cmd.Sub = ParseList(jsonmap.Maps(node, "Commands"))
	case model.KindExecuteSQL:
		sql := jsonmap.Str(node, "SqlStatement")
		cmd.Details = map[string]interface{}{"sql": sql}
		cmd.Description = "Execute SQL: " + truncateRunes(sql, 100) + "..."
	case model.KindUpdateTable:
		cmd.Details = map[string]interface{}{
			"table":    node["TableName"],
			"mappings": node["ColumnMappings"],
		}
	case model.KindSendEmail:
		cmd.Details = map[string]interface{}{
			"to":      node["EmailTo"],
			"subject": node["EmailSubject"],
		}
		cmd.Description = "Send email: " + jsonmap.StrOr(node, "EmailSubject", "(no subject)")
	case model.KindCallServerCommand:
		cmd.Details = map[string]interface{}{"command": node["ServerCommandName"]}
	}

	return cmd
}

// ParseList builds structured commands for a raw node list, preserving
// order.
func ParseList(nodes []map[string]interface{}) []model.Command {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]model.Command, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Parse(n))
	}
	return out
}

// describe returns the kind-specific one-line summary for a node. Parse
// overrides it for kinds whose summary embeds payload text.
func describe(node map[string]interface{}, lbl string, kind model.CommandKind) string {
	switch kind {
	case model.KindCondition:
		return "Conditional branch"
	case model.KindLoop:
		return "Loop"
	case model.KindExecuteSQL:
		return "Execute SQL"
	case model.KindUpdateTable:
		return "Update table: " + jsonmap.Str(node, "TableName")
	case model.KindInsertTable:
		return "Insert into table: " + jsonmap.Str(node, "TableName")
	case model.KindDeleteTable:
		return "Delete from table: " + jsonmap.Str(node, "TableName")
	case model.KindSendEmail:
		return "Send email"
	case model.KindSetCellValue:
		return "Set cell value"
	case model.KindNavigate:
		return "Navigate to page"
	case model.KindCallServerCommand:
		return "Call server command"
	default:
		return lbl
	}
}

// truncateRunes returns the first n runes of s. Rune-based so multibyte
// text in SQL comments is never split mid-character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
