package extractor

import (
	"context"
	"log/slog"

	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/workflow"
)

// TableExtractor reads table definitions: columns, relations, primary
// keys and the optionally embedded workflow.
type TableExtractor struct {
	logger *slog.Logger
}

func NewTableExtractor(logger *slog.Logger) *TableExtractor {
	return &TableExtractor{logger: logger}
}

func (x *TableExtractor) Section() string { return SectionTables }

// Extract processes every table entry in listing order. Entries that
// cannot be decoded are skipped and recorded.
func (x *TableExtractor) Extract(ctx context.Context, r *archive.Reader) ([]model.Table, []model.SkipRecord) {
	var (
		tables []model.Table
		skips  []model.SkipRecord
	)
	for _, e := range r.Entries(SectionTables) {
		if ctx.Err() != nil {
			return tables, skips
		}
		t, err := x.extractOne(r, e)
		if err != nil {
			recordSkip(x.logger, &skips, e, err)
			continue
		}
		tables = append(tables, t)
	}
	return tables, skips
}

func (x *TableExtractor) extractOne(r *archive.Reader, e archive.Entry) (model.Table, error) {
	raw, err := decodeEntry(r, e)
	if err != nil {
		return model.Table{}, err
	}
	t := model.Table{
		Name:       jsonmap.StrOr(raw, "Name", e.Name()),
		Folder:     secondSegment(e.Path),
		Columns:    parseColumns(jsonmap.Maps(raw, "Columns")),
		Relations:  parseRelations(jsonmap.Maps(raw, "Relations")),
		PrimaryKey: parsePrimaryKey(raw["PrimaryKey"]),
	}
	if wf := jsonmap.Map(raw, "BindingRelatedWorkflow"); len(wf) > 0 {
		t.Workflow = workflow.Parse(t.Name, wf)
	}
	return t, nil
}

func parseColumns(nodes []map[string]interface{}) []model.Column {
	var cols []model.Column
	for _, node := range nodes {
		cols = append(cols, model.Column{
			Name:         jsonmap.Str(node, "Name"),
			Type:         model.ShortTypeName(jsonmap.Str(node, "ColumnType"), "Text"),
			Required:     jsonmap.Bool(node, "Required"),
			Unique:       jsonmap.Bool(node, "Unique"),
			DefaultValue: jsonmap.Stringified(node, "DefaultValue"),
			Description:  jsonmap.Str(node, "Description"),
		})
	}
	return cols
}

func parseRelations(nodes []map[string]interface{}) []model.Relation {
	var rels []model.Relation
	for _, node := range nodes {
		rels = append(rels, model.Relation{
			SourceColumn: jsonmap.Str(node, "SourceColumnName"),
			TargetTable:  jsonmap.Str(node, "TargetTableName"),
			TargetColumn: jsonmap.Str(node, "TargetColumnName"),
			Type:         jsonmap.StrOr(node, "RelationType", "OneToMany"),
		})
	}
	return rels
}

// parsePrimaryKey accepts either a single column name or a list of them.
func parsePrimaryKey(v interface{}) []string {
	switch pk := v.(type) {
	case string:
		return []string{pk}
	case []interface{}:
		var keys []string
		for _, k := range pk {
			keys = append(keys, jsonmap.Stringify(k))
		}
		return keys
	default:
		return nil
	}
}
