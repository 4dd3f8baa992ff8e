// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xlsx exports a document model as a spreadsheet workbook. The
// Document sheet lists every block in order; each table also gets its own
// sheet so its cells can be filtered and sorted.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/docgen/internal/document"
)

// DocumentSheet is the name of the block listing sheet.
const DocumentSheet = "Document"

var blockHeader = []any{"Line", "Kind", "Level", "Text"}

// TableSheet returns the sheet name of the n-th table (1-based).
func TableSheet(n int) string {
	return fmt.Sprintf("Table %d", n)
}

// Encode writes doc to w as an .xlsx workbook.
func Encode(w io.Writer, doc *document.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DocumentSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRow(f, DocumentSheet, 1, blockHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(DocumentSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(DocumentSheet, "D", "D", 80); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	tables := 0
	for i, blk := range doc.Blocks {
		text := blockText(blk)
		if blk.Kind == document.BlockTable {
			tables++
			text = TableSheet(tables)
			if err := writeTable(f, TableSheet(tables), blk.Table, headerStyle); err != nil {
				return err
			}
		}
		var level any
		if blk.Kind == document.BlockHeading {
			level = blk.Level
		}
		if err := writeRow(f, DocumentSheet, i+2, []any{blk.Line, blockKind(blk), level, text}); err != nil {
			return err
		}
	}

	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title,
		Creator: "docgen",
		Created: created.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("setting properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *document.Table, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	header := make([]any, len(t.Header))
	for i, c := range t.Header {
		header[i] = plain(c.Runs)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}

	for r, row := range t.Rows {
		vals := make([]any, len(row))
		for i, c := range row {
			vals[i] = plain(c.Runs)
		}
		if err := writeRow(f, sheet, r+2, vals); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func blockKind(b document.Block) string {
	switch {
	case b.Kind == document.BlockListItem && b.List == document.ListNumbered:
		return "numbered"
	case b.Kind == document.BlockListItem:
		return "bullet"
	case b.Emphasis:
		return "emphasis"
	}
	return b.Kind.String()
}

func blockText(b document.Block) string {
	text := plain(b.Runs)
	if b.Kind == document.BlockListItem && b.List == document.ListNumbered {
		return fmt.Sprintf("%d. %s", b.Ordinal, text)
	}
	return text
}

func plain(runs []document.Run) string {
	var s string
	for _, r := range runs {
		s += r.Text
	}
	return s
}
