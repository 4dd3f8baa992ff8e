// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"strings"

	"github.com/pdiddy/docgen/internal/markup"
	"github.com/pdiddy/docgen/pkg/types"
)

// Assemble builds a document from classified lines. Blank lines produce no
// block; every other record becomes exactly one block, in source order.
// Table rows shorter than the header are padded with empty cells and longer
// rows are truncated; both are reported as malformed_table diagnostics.
func Assemble(lines []markup.Line, style Style) (*Document, []types.Diagnostic) {
	style = style.withDefaults()
	doc := &Document{Style: style}
	var diags []types.Diagnostic

	for _, l := range lines {
		switch l.Kind {
		case markup.KindBlank:
			continue

		case markup.KindHeading1, markup.KindHeading2, markup.KindHeading3:
			level := l.Kind.HeadingLevel()
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  BlockHeading,
				Level: level,
				Text:  l.Text,
				Runs:  ParseRuns(l.Text),
				Align: style.HeadingAlign[level-1],
				Line:  l.Number,
			})
			if level == 1 && doc.Title == "" {
				doc.Title = plainText(l.Text)
			}

		case markup.KindBold:
			doc.Blocks = append(doc.Blocks, Block{
				Kind:     BlockParagraph,
				Text:     l.Text,
				Runs:     []Run{{Text: plainText(l.Text), Bold: true}},
				Emphasis: true,
				Align:    AlignLeft,
				Line:     l.Number,
			})

		case markup.KindBullet, markup.KindNumbered:
			list := ListBullet
			if l.Kind == markup.KindNumbered {
				list = ListNumbered
			}
			doc.Blocks = append(doc.Blocks, Block{
				Kind:    BlockListItem,
				Text:    l.Text,
				Runs:    ParseRuns(l.Text),
				List:    list,
				Ordinal: l.Ordinal,
				Align:   AlignLeft,
				Line:    l.Number,
			})

		case markup.KindTable:
			tbl, d := buildTable(l.Table)
			diags = append(diags, d...)
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  BlockTable,
				Table: tbl,
				Line:  l.Number,
			})

		default:
			// Paragraphs, and stray table rows that were never grouped.
			text := l.Text
			if text == "" {
				text = strings.TrimSpace(l.Raw)
			}
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  BlockParagraph,
				Text:  text,
				Runs:  ParseRuns(text),
				Align: AlignLeft,
				Line:  l.Number,
			})
		}
	}

	return doc, diags
}

func buildTable(src *markup.Table) (*Table, []types.Diagnostic) {
	cols := len(src.Header)
	t := &Table{
		Columns: cols,
		Header:  cells(src.Header),
	}

	var diags []types.Diagnostic
	for i, row := range src.Rows {
		switch {
		case len(row) < cols:
			diags = append(diags, types.Diagnostic{
				Kind:    types.DiagMalformedTable,
				Line:    src.Line,
				Message: fmt.Sprintf("table row %d has %d of %d cells; missing cells left empty", i+1, len(row), cols),
			})
			padded := make([]string, cols)
			copy(padded, row)
			row = padded
		case len(row) > cols:
			diags = append(diags, types.Diagnostic{
				Kind:    types.DiagMalformedTable,
				Line:    src.Line,
				Message: fmt.Sprintf("table row %d has %d cells but the header has %d; extra cells ignored", i+1, len(row), cols),
			})
			row = row[:cols]
		}
		t.Rows = append(t.Rows, cells(row))
	}
	return t, diags
}

func cells(texts []string) []Cell {
	out := make([]Cell, len(texts))
	for i, s := range texts {
		out[i] = Cell{Text: s, Runs: ParseRuns(s)}
	}
	return out
}

// ParseRuns splits text on paired ** markers into plain and bold runs.
// An unpaired ** is kept as literal text. Empty runs are dropped.
func ParseRuns(text string) []Run {
	parts := strings.Split(text, "**")
	// An even number of parts means the last ** has no partner.
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + "**" + parts[last]
		parts = parts[:last]
	}

	var runs []Run
	for i, p := range parts {
		if p == "" {
			continue
		}
		bold := i%2 == 1
		if n := len(runs); n > 0 && runs[n-1].Bold == bold {
			runs[n-1].Text += p
			continue
		}
		runs = append(runs, Run{Text: p, Bold: bold})
	}
	return runs
}

// plainText removes paired ** markers.
func plainText(text string) string {
	var b strings.Builder
	for _, r := range ParseRuns(text) {
		b.WriteString(r.Text)
	}
	return b.String()
}
