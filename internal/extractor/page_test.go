package extractor

import (
	"context"
	"testing"

	"github.com/fginsight/fginsight/internal/model"
)

func TestPageExtractorInteractiveCells(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/Home.json": `{
			"Name": "Home",
			"AttachInfos": {
				"5,2": {"Formula": "=SUM(A1:A9)"},
				"3,1": {
					"CellType": {
						"$type": "Forguncy.CellTypes.ButtonCellType, Forguncy.CellTypes",
						"Text": "Save",
						"CommandList": [{"$type": "Forguncy.Commands.NavigateCommand, Forguncy.Commands"}]
					}
				},
				"7,4": {
					"CellType": {
						"$type": "Forguncy.CellTypes.ImageCellType, Forguncy.CellTypes",
						"CommandList": [{"$type": "Forguncy.Commands.NavigateCommand, Forguncy.Commands"}]
					}
				}
			}
		}`,
	}, []string{"Pages/Home.json"})

	pages, skips := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(skips) != 0 {
		t.Fatalf("skips = %v, want none", skips)
	}
	if len(pages) != 1 {
		t.Fatalf("pages length = %d, want 1", len(pages))
	}
	p := pages[0]
	if p.Name != "Home" || p.Kind != model.PageKindPage || p.Path != "Pages/Home.json" {
		t.Errorf("page = %+v", p)
	}

	if len(p.Buttons) != 1 {
		t.Fatalf("buttons length = %d, want 1", len(p.Buttons))
	}
	b := p.Buttons[0]
	if b.Name != "Save" || b.Cell != "3,1" {
		t.Errorf("button = %q at %q, want Save at 3,1", b.Name, b.Cell)
	}
	if len(b.Commands) != 1 || b.Commands[0].Kind != model.KindNavigate {
		t.Errorf("button commands = %+v", b.Commands)
	}

	if len(p.Formulas) != 1 {
		t.Fatalf("formulas length = %d, want 1", len(p.Formulas))
	}
	if p.Formulas[0].Cell != "5,2" || p.Formulas[0].Formula != "=SUM(A1:A9)" {
		t.Errorf("formula = %+v", p.Formulas[0])
	}

	if len(p.CellCommands) != 1 {
		t.Fatalf("cell commands length = %d, want 1", len(p.CellCommands))
	}
	cc := p.CellCommands[0]
	if cc.Cell != "7,4" || cc.Event != "Click" {
		t.Errorf("cell command = %+v", cc)
	}
}

func TestPageExtractorButtonNameFallbacks(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/P.json": `{
			"Name": "P",
			"AttachInfos": {
				"1,1": {"CellType": {"$type": "x.ButtonCellType, x", "Content": "Go", "CommandList": [{}]}},
				"2,2": {"CellType": {"$type": "x.ButtonCellType, x", "CommandList": [{}]}}
			}
		}`,
	}, []string{"Pages/P.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 1 || len(pages[0].Buttons) != 2 {
		t.Fatalf("pages = %+v, want 1 page with 2 buttons", pages)
	}
	if got := pages[0].Buttons[0].Name; got != "Go" {
		t.Errorf("button name = %q, want Content fallback %q", got, "Go")
	}
	if got := pages[0].Buttons[1].Name; got != "Button" {
		t.Errorf("button name = %q, want default %q", got, "Button")
	}
}

func TestPageExtractorMenuItems(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/Nav.json": `{
			"Name": "Nav",
			"AttachInfos": {
				"0,0": {
					"CellType": {
						"$type": "Forguncy.CellTypes.MenuCellType, Forguncy.CellTypes",
						"Items": [
							{"Text": "Export", "CommandList": [{"$type": "x.NavigateCommand, x"}]},
							{"Text": "Plain"},
							{"Text": "More", "SubItems": [
								{"Text": "Archive", "CommandList": [{"$type": "x.NavigateCommand, x"}]}
							]}
						]
					}
				}
			}
		}`,
	}, []string{"Pages/Nav.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 1 {
		t.Fatalf("pages length = %d, want 1", len(pages))
	}
	buttons := pages[0].Buttons
	if len(buttons) != 2 {
		t.Fatalf("buttons length = %d, want 2", len(buttons))
	}
	if buttons[0].Name != "menu: Export" {
		t.Errorf("first button = %q, want %q", buttons[0].Name, "menu: Export")
	}
	if buttons[1].Name != "menu: Archive" {
		t.Errorf("second button = %q, want nested %q", buttons[1].Name, "menu: Archive")
	}
	if buttons[0].Cell != "0,0" || buttons[1].Cell != "0,0" {
		t.Errorf("menu buttons keep the menu cell, got %q and %q", buttons[0].Cell, buttons[1].Cell)
	}
}

func TestPageExtractorLegacyShape(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/Old.json": `{
			"Name": "Old",
			"AttachInfos": {
				"1,1": {"ButtonText": "Submit", "Commands": [{"$type": "x.NavigateCommand, x"}]},
				"2,2": {"Commands": [{"$type": "x.NavigateCommand, x"}]}
			}
		}`,
	}, []string{"Pages/Old.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 1 {
		t.Fatalf("pages length = %d, want 1", len(pages))
	}
	p := pages[0]
	if len(p.Buttons) != 1 || p.Buttons[0].Name != "Submit" || p.Buttons[0].Cell != "1,1" {
		t.Errorf("buttons = %+v, want single Submit at 1,1", p.Buttons)
	}
	if len(p.CellCommands) != 1 || p.CellCommands[0].Cell != "2,2" || p.CellCommands[0].Event != "Click" {
		t.Errorf("cell commands = %+v, want single Click at 2,2", p.CellCommands)
	}
}

func TestPageExtractorCellTypeWinsOverLegacy(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/Mixed.json": `{
			"Name": "Mixed",
			"AttachInfos": {
				"1,1": {
					"ButtonText": "Old",
					"Commands": [{"$type": "x.NavigateCommand, x"}],
					"CellType": {"$type": "x.ButtonCellType, x", "Text": "New", "CommandList": [{}]}
				}
			}
		}`,
	}, []string{"Pages/Mixed.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 1 {
		t.Fatalf("pages length = %d, want 1", len(pages))
	}
	p := pages[0]
	if len(p.Buttons) != 1 {
		t.Fatalf("buttons length = %d, want 1", len(p.Buttons))
	}
	if p.Buttons[0].Name != "New" {
		t.Errorf("button name = %q, want CellType shape to win with %q", p.Buttons[0].Name, "New")
	}
	if len(p.CellCommands) != 0 {
		t.Errorf("cell commands = %+v, want none", p.CellCommands)
	}
}

func TestPageExtractorMasterPages(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/crm/Home.json":     `{"Name":"Home"}`,
		"MasterPages/Layout.json": `{"Name":"Layout"}`,
	}, []string{"Pages/crm/Home.json", "MasterPages/Layout.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 2 {
		t.Fatalf("pages length = %d, want 2", len(pages))
	}
	if pages[0].Kind != model.PageKindPage || pages[0].Folder != "crm" {
		t.Errorf("first page = %+v, want regular page in crm", pages[0])
	}
	if pages[1].Kind != model.PageKindMaster || pages[1].Folder != "MasterPages" {
		t.Errorf("second page = %+v, want master page", pages[1])
	}
}

func TestPageExtractorNameFallsBackToStem(t *testing.T) {
	r := openArchive(t, map[string]string{
		"Pages/Dashboard.json": `{"AttachInfos":{}}`,
	}, []string{"Pages/Dashboard.json"})

	pages, _ := NewPageExtractor(testLogger()).Extract(context.Background(), r)
	if len(pages) != 1 || pages[0].Name != "Dashboard" {
		t.Fatalf("pages = %+v, want single Dashboard", pages)
	}
}
