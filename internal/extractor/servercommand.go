package extractor

import (
	"context"
	"log/slog"

	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/command"
	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
)

// ServerCommandExtractor reads server command definitions: their input
// parameters, the structured command tree and its pseudocode rendering.
type ServerCommandExtractor struct {
	logger *slog.Logger
}

func NewServerCommandExtractor(logger *slog.Logger) *ServerCommandExtractor {
	return &ServerCommandExtractor{logger: logger}
}

func (x *ServerCommandExtractor) Section() string { return SectionServerCommands }

// Extract processes every server command entry in listing order.
func (x *ServerCommandExtractor) Extract(ctx context.Context, r *archive.Reader) ([]model.ServerCommand, []model.SkipRecord) {
	var (
		cmds  []model.ServerCommand
		skips []model.SkipRecord
	)
	for _, e := range r.Entries(SectionServerCommands) {
		if ctx.Err() != nil {
			return cmds, skips
		}
		c, err := x.extractOne(r, e)
		if err != nil {
			recordSkip(x.logger, &skips, e, err)
			continue
		}
		cmds = append(cmds, c)
	}
	return cmds, skips
}

func (x *ServerCommandExtractor) extractOne(r *archive.Reader, e archive.Entry) (model.ServerCommand, error) {
	raw, err := decodeEntry(r, e)
	if err != nil {
		return model.ServerCommand{}, err
	}
	nodes := jsonmap.Maps(raw, "Commands")
	return model.ServerCommand{
		Name:       jsonmap.StrOr(raw, "Name", e.Name()),
		Folder:     secondSegment(e.Path),
		Path:       e.Path,
		Parameters: parseParameters(raw),
		Commands:   command.ParseList(nodes),
		Flattened:  command.Flatten(nodes),
	}, nil
}

// parseParameters prefers the trigger-declared parameters of current
// archives and falls back to the top-level Parameters list of older ones
// only when the triggers declare none.
func parseParameters(raw map[string]interface{}) []model.Parameter {
	var params []model.Parameter
	if triggers := jsonmap.Maps(raw, "Triggers"); len(triggers) > 0 {
		for _, p := range jsonmap.Maps(triggers[0], "Parameters") {
			params = append(params, model.Parameter{
				Name:     jsonmap.Str(p, "Name"),
				Type:     validationType(jsonmap.Map(p, "DataValidationInfo")),
				Required: true,
			})
		}
	}
	if len(params) > 0 {
		return params
	}
	for _, p := range jsonmap.Maps(raw, "Parameters") {
		params = append(params, model.Parameter{
			Name:         jsonmap.Str(p, "Name"),
			Type:         model.ShortTypeName(jsonmap.Str(p, "Type"), "Text"),
			Required:     jsonmap.Bool(p, "Required"),
			DefaultValue: jsonmap.Stringified(p, "DefaultValue"),
		})
	}
	return params
}

// validationType maps a trigger parameter's validation number type to a
// column type name.
func validationType(info map[string]interface{}) string {
	switch jsonmap.Int(info, "NumberType") {
	case 4:
		return "DateTime"
	case 1:
		return "Integer"
	case 2:
		return "Decimal"
	default:
		return "Text"
	}
}
