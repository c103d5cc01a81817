package model

import "strings"

// Project is the fully extracted model of one analyzed archive: schema,
// pages, workflows, and server-side command sequences, plus derived summary
// counts. A Project is built once per analysis run and never mutated
// afterward.
type Project struct {
	Name           string          `json:"name"`
	Tables         []Table         `json:"tables"`
	Pages          []Page          `json:"pages"`
	Workflows      []Workflow      `json:"workflows"`
	ServerCommands []ServerCommand `json:"server_commands"`
	Summary        Summary         `json:"summary"`
}

// Table describes one data table definition, including its columns,
// outgoing relations, and the workflow bound to it, if any.
type Table struct {
	Name       string     `json:"name"`
	Folder     string     `json:"folder,omitempty"`
	Columns    []Column   `json:"columns"`
	Relations  []Relation `json:"relations"`
	PrimaryKey []string   `json:"primary_key,omitempty"`
	Workflow   *Workflow  `json:"workflow,omitempty"`
}

// Column describes a single column within a table. Type is always the
// short normalized type name and is never empty.
type Column struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Required     bool    `json:"required"`
	Unique       bool    `json:"unique"`
	DefaultValue *string `json:"default_value,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// Relation describes a directional association from a column of the owning
// table to a column of the target table.
type Relation struct {
	SourceColumn string `json:"source_column"`
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
	Type         string `json:"type"` // "OneToMany" unless the source says otherwise
}

// PageKind distinguishes regular pages from master pages.
type PageKind string

const (
	PageKindPage   PageKind = "page"
	PageKindMaster PageKind = "masterPage"
)

// Page describes one UI page: its interactive cells (buttons, formulas,
// command-bearing cells) as a sparse view keyed by cell address. Cells
// with no attached behavior are never materialized.
type Page struct {
	Name         string        `json:"name"`
	Kind         PageKind      `json:"kind"`
	Path         string        `json:"path"`
	Folder       string        `json:"folder,omitempty"`
	Buttons      []Button      `json:"buttons,omitempty"`
	Formulas     []Formula     `json:"formulas,omitempty"`
	CellCommands []CellCommand `json:"cell_commands,omitempty"`
}

// Button is a clickable element with an attached command sequence. Buttons
// recovered from nested menu items carry a "menu: " name prefix.
type Button struct {
	Name     string    `json:"name"`
	Cell     string    `json:"cell,omitempty"`
	Commands []Command `json:"commands,omitempty"`
}

// Formula is a spreadsheet-style formula attached to a cell.
type Formula struct {
	Cell    string `json:"cell"`
	Formula string `json:"formula"`
}

// CellCommand is a command sequence attached to a non-button cell event.
type CellCommand struct {
	Cell     string    `json:"cell"`
	Event    string    `json:"event"`
	Commands []Command `json:"commands,omitempty"`
}

// ServerCommand describes one server-side command sequence: its input
// parameters, the structured command tree, and the flattened pseudocode
// rendering of that tree.
type ServerCommand struct {
	Name       string      `json:"name"`
	Folder     string      `json:"folder,omitempty"`
	Path       string      `json:"path"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Commands   []Command   `json:"commands,omitempty"`
	Flattened  []string    `json:"flattened,omitempty"`
}

// Parameter describes a single input parameter of a server command.
type Parameter struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Required     bool    `json:"required"`
	DefaultValue *string `json:"default_value,omitempty"`
}

// Summary holds the derived aggregate counts for a project. It is computed
// from the finished collections by Summarize and never maintained
// incrementally.
type Summary struct {
	TableCount         int `json:"table_count"`
	PageCount          int `json:"page_count"`
	WorkflowCount      int `json:"workflow_count"`
	ServerCommandCount int `json:"server_command_count"`
	TotalColumns       int `json:"total_columns"`
	TotalRelations     int `json:"total_relations"`
}

// Summarize recomputes the summary counts from scratch over the project's
// final collections.
func Summarize(p *Project) Summary {
	s := Summary{
		TableCount:         len(p.Tables),
		PageCount:          len(p.Pages),
		WorkflowCount:      len(p.Workflows),
		ServerCommandCount: len(p.ServerCommands),
	}
	for _, t := range p.Tables {
		s.TotalColumns += len(t.Columns)
		s.TotalRelations += len(t.Relations)
	}
	return s
}

// ShortTypeName reduces a qualified type reference from the archive format
// to its short name: the text before the first comma, then the segment
// after the last dot. "Ns.Sub.ColumnType.Text, Assembly=1.0" becomes
// "Text". Empty input, or input that reduces to nothing, returns fallback.
// Already-short names pass through unchanged.
func ShortTypeName(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	head := raw
	if i := strings.IndexByte(head, ','); i >= 0 {
		head = head[:i]
	}
	if j := strings.LastIndexByte(head, '.'); j >= 0 {
		head = head[j+1:]
	}
	if head == "" {
		return fallback
	}
	return head
}
