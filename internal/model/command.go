package model

// CommandKind identifies one variant of the polymorphic command tree. The
// set is closed: discriminators that map to none of the known kinds become
// KindUnknown with the raw label preserved on the Command.
type CommandKind string

const (
	KindCondition         CommandKind = "condition"
	KindLoop              CommandKind = "loop"
	KindExecuteSQL        CommandKind = "execute_sql"
	KindUpdateTable       CommandKind = "update_table"
	KindInsertTable       CommandKind = "insert_table"
	KindDeleteTable       CommandKind = "delete_table"
	KindSendEmail         CommandKind = "send_email"
	KindSetCellValue      CommandKind = "set_cell_value"
	KindNavigate          CommandKind = "navigate"
	KindCallServerCommand CommandKind = "call_server_command"
	KindUnknown           CommandKind = "unknown"
)

// Command is one node of the business-logic action tree attached to a
// button, cell event, server command, or workflow transition. Condition
// nodes hold the concatenation of their true and false branches in Sub;
// Loop nodes hold their body there. Details carries kind-specific payload
// such as SQL text or email fields.
type Command struct {
	Kind        CommandKind            `json:"kind"`
	Label       string                 `json:"label"` // short discriminator segment, e.g. "ConditionCommand"
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Sub         []Command              `json:"sub_commands,omitempty"`
}
