package extractor

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/command"
	"github.com/fginsight/fginsight/internal/jsonmap"
	"github.com/fginsight/fginsight/internal/model"
)

// PageExtractor reads page definitions from both the Pages and
// MasterPages sections and collects their interactive surface: buttons,
// formulas and command-bearing cells.
//
// Two cell shapes exist in the wild. Current archives attach behavior
// through a CellType object whose $type names the cell class; older
// archives put Commands and ButtonText directly on the cell. Both are
// recognized, and the CellType shape wins when a cell carries both.
type PageExtractor struct {
	logger *slog.Logger
}

func NewPageExtractor(logger *slog.Logger) *PageExtractor {
	return &PageExtractor{logger: logger}
}

func (x *PageExtractor) Section() string { return SectionPages }

// Extract processes regular pages first, then master pages, each in
// listing order.
func (x *PageExtractor) Extract(ctx context.Context, r *archive.Reader) ([]model.Page, []model.SkipRecord) {
	var (
		pages []model.Page
		skips []model.SkipRecord
	)
	for _, e := range r.Entries(SectionPages) {
		if ctx.Err() != nil {
			return pages, skips
		}
		p, err := x.extractOne(r, e, model.PageKindPage, middleSegments(e.Path))
		if err != nil {
			recordSkip(x.logger, &skips, e, err)
			continue
		}
		pages = append(pages, p)
	}
	for _, e := range r.Entries(SectionMasterPages) {
		if ctx.Err() != nil {
			return pages, skips
		}
		p, err := x.extractOne(r, e, model.PageKindMaster, SectionMasterPages)
		if err != nil {
			recordSkip(x.logger, &skips, e, err)
			continue
		}
		pages = append(pages, p)
	}
	return pages, skips
}

func (x *PageExtractor) extractOne(r *archive.Reader, e archive.Entry, kind model.PageKind, folder string) (model.Page, error) {
	raw, err := decodeEntry(r, e)
	if err != nil {
		return model.Page{}, err
	}
	p := model.Page{
		Name:   jsonmap.StrOr(raw, "Name", e.Name()),
		Kind:   kind,
		Path:   e.Path,
		Folder: folder,
	}
	extractCells(&p, jsonmap.Map(raw, "AttachInfos"))
	return p, nil
}

// extractCells walks the sparse cell map in address order so output is
// stable across runs.
func extractCells(p *model.Page, attachInfos map[string]interface{}) {
	addrs := make([]string, 0, len(attachInfos))
	for addr := range attachInfos {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	for _, addr := range addrs {
		cell, ok := attachInfos[addr].(map[string]interface{})
		if !ok {
			continue
		}
		if f := jsonmap.Str(cell, "Formula"); f != "" {
			p.Formulas = append(p.Formulas, model.Formula{Cell: addr, Formula: f})
		}
		if cellType := jsonmap.Map(cell, "CellType"); len(cellType) > 0 {
			extractTypedCell(p, addr, cellType)
			continue
		}
		extractLegacyCell(p, addr, cell)
	}
}

// extractTypedCell handles the CellType shape. Menus contribute one
// button per command-carrying item; button cells contribute a named
// button; any other cell class with a command list is recorded as a
// click handler.
func extractTypedCell(p *model.Page, addr string, cellType map[string]interface{}) {
	typeStr := jsonmap.Str(cellType, "$type")
	if strings.Contains(typeStr, "MenuCellType") {
		extractMenuItems(p, addr, jsonmap.Maps(cellType, "Items"))
	}
	commands := jsonmap.Maps(cellType, "CommandList")
	if len(commands) == 0 {
		return
	}
	if strings.Contains(typeStr, "ButtonCellType") {
		name := jsonmap.StrOr(cellType, "Text", jsonmap.StrOr(cellType, "Content", "Button"))
		p.Buttons = append(p.Buttons, model.Button{
			Name:     name,
			Cell:     addr,
			Commands: command.ParseList(commands),
		})
		return
	}
	p.CellCommands = append(p.CellCommands, model.CellCommand{
		Cell:     addr,
		Event:    "Click",
		Commands: command.ParseList(commands),
	})
}

// extractLegacyCell handles cells that carry Commands directly. A cell
// with ButtonText is a button; one without is a click handler.
func extractLegacyCell(p *model.Page, addr string, cell map[string]interface{}) {
	commands := jsonmap.Maps(cell, "Commands")
	if len(commands) == 0 {
		return
	}
	if text := jsonmap.Str(cell, "ButtonText"); text != "" {
		p.Buttons = append(p.Buttons, model.Button{
			Name:     text,
			Cell:     addr,
			Commands: command.ParseList(commands),
		})
		return
	}
	p.CellCommands = append(p.CellCommands, model.CellCommand{
		Cell:     addr,
		Event:    "Click",
		Commands: command.ParseList(commands),
	})
}

// extractMenuItems descends a menu tree and records every item that
// carries commands as a button on the menu's cell.
func extractMenuItems(p *model.Page, addr string, items []map[string]interface{}) {
	for _, item := range items {
		if commands := jsonmap.Maps(item, "CommandList"); len(commands) > 0 {
			p.Buttons = append(p.Buttons, model.Button{
				Name:     "menu: " + jsonmap.StrOr(item, "Text", "(unnamed)"),
				Cell:     addr,
				Commands: command.ParseList(commands),
			})
		}
		if sub := jsonmap.Maps(item, "SubItems"); len(sub) > 0 {
			extractMenuItems(p, addr, sub)
		}
	}
}
