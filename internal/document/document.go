// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document holds the in-memory rich-document model and the
// assembler that builds it from classified markup lines.
package document

import (
	"fmt"
	"strings"
	"time"
)

// BlockKind identifies the kind of a document block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockListItem
	BlockTable
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockListItem:
		return "list-item"
	case BlockTable:
		return "table"
	}
	return fmt.Sprintf("block(%d)", int(k))
}

// ListStyle selects bullet or numbered list formatting.
type ListStyle int

const (
	ListNone ListStyle = iota
	ListBullet
	ListNumbered
)

// Alignment is a paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Run is a span of text with uniform formatting.
type Run struct {
	Text string
	Bold bool
}

// Block is one element of the document body.
type Block struct {
	Kind BlockKind

	// Level is the heading level (1-3).
	Level int

	// Text is the block text as written in the markup, inline markers
	// included. Empty for tables.
	Text string

	// Runs is Text split into formatted runs.
	Runs []Run

	// Emphasis marks a bold-only paragraph, rendered as a larger bold run.
	Emphasis bool

	// List is the list style of a list item.
	List ListStyle

	// Ordinal is the number written before a numbered item.
	Ordinal int

	// Align is the paragraph alignment.
	Align Alignment

	// Table is set for table blocks.
	Table *Table

	// Line is the 1-based source line the block came from.
	Line int
}

// Table is a rectangular table: every row has exactly Columns cells.
type Table struct {
	Columns int
	Header  []Cell
	Rows    [][]Cell
}

// Cell is a table cell.
type Cell struct {
	Text string
	Runs []Run
}

// Style holds the default styling applied while assembling and writing.
type Style struct {
	// FontFamily is the body font.
	FontFamily string `json:"font_family" yaml:"font_family" mapstructure:"font_family"`

	// FontSizePt is the body font size in points.
	FontSizePt float64 `json:"font_size_pt" yaml:"font_size_pt" mapstructure:"font_size_pt"`

	// EmphasisSizePt is the size of bold-only paragraphs.
	EmphasisSizePt float64 `json:"emphasis_size_pt" yaml:"emphasis_size_pt" mapstructure:"emphasis_size_pt"`

	// HeadingAlign holds the alignment of heading levels 1, 2 and 3.
	HeadingAlign [3]Alignment `json:"heading_align" yaml:"heading_align" mapstructure:"heading_align"`
}

// DefaultStyle centers top-level headings and left-aligns the others.
func DefaultStyle() Style {
	return Style{
		FontFamily:     "Arial",
		FontSizePt:     11,
		EmphasisSizePt: 13,
		HeadingAlign:   [3]Alignment{AlignCenter, AlignLeft, AlignLeft},
	}
}

// withDefaults fills zero fields from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}
	if s.FontSizePt <= 0 {
		s.FontSizePt = d.FontSizePt
	}
	if s.EmphasisSizePt <= 0 {
		s.EmphasisSizePt = d.EmphasisSizePt
	}
	for i, a := range s.HeadingAlign {
		if a == "" {
			s.HeadingAlign[i] = d.HeadingAlign[i]
		}
	}
	return s
}

// Document is an ordered sequence of blocks plus the style to render them
// with.
type Document struct {
	// Title is the text of the first level-1 heading, used for document
	// properties.
	Title  string
	Blocks []Block
	Style  Style

	// Created stamps the document properties. Zero means unset.
	Created time.Time
}

// Markdown re-serializes the document into the markup subset it was
// assembled from. Tokenizing and assembling the result yields the same
// block sequence.
func (d *Document) Markdown() string {
	var b strings.Builder
	prev := BlockKind(-1)
	for i, blk := range d.Blocks {
		if i > 0 && !(blk.Kind == BlockListItem && prev == BlockListItem) {
			b.WriteString("\n")
		}
		switch blk.Kind {
		case BlockHeading:
			b.WriteString(strings.Repeat("#", blk.Level) + " " + blk.Text + "\n")
		case BlockParagraph:
			if blk.Emphasis {
				b.WriteString("**" + blk.Text + "**\n")
			} else {
				b.WriteString(blk.Text + "\n")
			}
		case BlockListItem:
			if blk.List == ListNumbered {
				fmt.Fprintf(&b, "%d. %s\n", blk.Ordinal, blk.Text)
			} else {
				b.WriteString("- " + blk.Text + "\n")
			}
		case BlockTable:
			writeMarkdownTable(&b, blk.Table)
		}
		prev = blk.Kind
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t *Table) {
	row := func(cells []Cell) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" " + c.Text + " |")
		}
		b.WriteString("\n")
	}
	row(t.Header)
	b.WriteString("|")
	for range t.Header {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, r := range t.Rows {
		row(r)
	}
}
