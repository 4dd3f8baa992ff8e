// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup classifies the lines of a filled template into typed
// records and groups pipe rows into tables.
//
// Only the subset used by the document templates is recognized: headings
// levels 1-3, bold-only lines, bullet and numbered items, pipe tables and
// plain paragraphs.
package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/docgen/pkg/types"
)

// Kind tags a line record.
type Kind int

const (
	KindBlank Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindBold
	KindBullet
	KindNumbered
	KindTableRow
	KindParagraph
	// KindTable is a grouped run of table rows; only Tokenize emits it.
	KindTable
)

var kindNames = map[Kind]string{
	KindBlank:     "blank",
	KindHeading1:  "heading1",
	KindHeading2:  "heading2",
	KindHeading3:  "heading3",
	KindBold:      "bold",
	KindBullet:    "bullet",
	KindNumbered:  "numbered",
	KindTableRow:  "table-row",
	KindParagraph: "paragraph",
	KindTable:     "table",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// HeadingLevel returns 1-3 for heading kinds and 0 otherwise.
func (k Kind) HeadingLevel() int {
	switch k {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	}
	return 0
}

// Line is one classified unit of markup.
type Line struct {
	Kind Kind

	// Text is the content with the markup prefix removed and trimmed.
	Text string

	// Raw is the source line without its line ending.
	Raw string

	// Number is the 1-based source line. For tables it is the header line.
	Number int

	// Ordinal is the number written before a numbered item.
	Ordinal int

	// Table is set for KindTable records.
	Table *Table
}

// Table is a header row plus data rows. Separator rows are not kept.
type Table struct {
	Header []string
	Rows   [][]string

	// Line is the 1-based source line of the header row.
	Line int
}

// numberedPattern matches "12. text".
var numberedPattern = regexp.MustCompile(`^(\d+)\.\s`)

// Classify returns the record for a single line. Table rows are returned
// as KindTableRow; grouping happens in Tokenize.
func Classify(raw string) Line {
	raw = strings.TrimRight(raw, "\r")
	s := strings.TrimSpace(raw)
	l := Line{Raw: raw}

	switch {
	case s == "":
		l.Kind = KindBlank
	case strings.HasPrefix(s, "### "):
		l.Kind, l.Text = KindHeading3, strings.TrimSpace(s[4:])
	case strings.HasPrefix(s, "## "):
		l.Kind, l.Text = KindHeading2, strings.TrimSpace(s[3:])
	case strings.HasPrefix(s, "# "):
		l.Kind, l.Text = KindHeading1, strings.TrimSpace(s[2:])
	case len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**"):
		l.Kind, l.Text = KindBold, strings.TrimSpace(s[2:len(s)-2])
	case strings.HasPrefix(s, "- "):
		l.Kind, l.Text = KindBullet, strings.TrimSpace(s[2:])
	case numberedPattern.MatchString(s):
		m := numberedPattern.FindStringSubmatch(s)
		l.Kind = KindNumbered
		l.Ordinal, _ = strconv.Atoi(m[1])
		l.Text = strings.TrimSpace(s[len(m[0]):])
	case strings.HasPrefix(s, "|"):
		l.Kind, l.Text = KindTableRow, s
	default:
		l.Kind, l.Text = KindParagraph, s
	}
	return l
}

// Tokenize splits text into line records in source order. Consecutive
// table rows are grouped into a single KindTable record when they form a
// header row with at least one cell, a separator row and at least one
// data row; otherwise each
// row degrades to a paragraph and a malformed_table diagnostic is added.
func Tokenize(text string) ([]Line, []types.Diagnostic) {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}

	var (
		lines []Line
		diags []types.Diagnostic
		group []Line
	)

	flush := func() {
		if len(group) == 0 {
			return
		}
		recs, d := groupTable(group)
		lines = append(lines, recs...)
		diags = append(diags, d...)
		group = nil
	}

	for i, raw := range strings.Split(text, "\n") {
		l := Classify(raw)
		l.Number = i + 1
		if l.Kind == KindTableRow {
			group = append(group, l)
			continue
		}
		flush()
		lines = append(lines, l)
	}
	flush()

	return lines, diags
}

// groupTable turns a run of consecutive pipe rows into a table record or,
// when the run is not a well-formed table, into paragraphs.
func groupTable(rows []Line) ([]Line, []types.Diagnostic) {
	var data [][]string
	if len(rows) >= 3 {
		for _, r := range rows[2:] {
			if !IsSeparator(r.Text) {
				data = append(data, SplitRow(r.Text))
			}
		}
	}

	header := SplitRow(rows[0].Text)
	if len(rows) >= 3 && len(header) > 0 && !IsSeparator(rows[0].Text) && IsSeparator(rows[1].Text) && len(data) > 0 {
		t := &Table{
			Header: header,
			Rows:   data,
			Line:   rows[0].Number,
		}
		return []Line{{
			Kind:   KindTable,
			Raw:    rows[0].Raw,
			Number: rows[0].Number,
			Table:  t,
		}}, nil
	}

	out := make([]Line, len(rows))
	for i, r := range rows {
		r.Kind = KindParagraph
		out[i] = r
	}
	first, last := rows[0].Number, rows[len(rows)-1].Number
	diag := types.Diagnostic{
		Kind:    types.DiagMalformedTable,
		Line:    first,
		Message: fmt.Sprintf("pipe rows at lines %d-%d need a header, a separator and at least one data row; rendered as paragraphs", first, last),
	}
	return out, []types.Diagnostic{diag}
}

// SplitRow splits a pipe row into trimmed cells, dropping the empty
// segments produced by the leading and trailing pipes.
func SplitRow(row string) []string {
	row = strings.TrimSpace(row)
	parts := strings.Split(row, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.HasSuffix(row, "|") && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// IsSeparator reports whether row consists only of '-', ':', '|' and
// spaces, with at least one '-'.
func IsSeparator(row string) bool {
	row = strings.TrimSpace(row)
	if !strings.Contains(row, "-") {
		return false
	}
	for _, c := range row {
		switch c {
		case '-', ':', '|', ' ', '\t':
		default:
			return false
		}
	}
	return true
}
