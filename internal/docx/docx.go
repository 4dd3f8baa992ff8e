// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx encodes a document model as an Office Open XML
// WordprocessingML package.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/pdiddy/docgen/internal/document"
)

// Page geometry in twentieths of a point (US Letter, one inch margins).
const (
	pageWidth   = 12240
	pageHeight  = 15840
	pageMargin  = 1440
	textWidth   = pageWidth - 2*pageMargin
	headerShade = "D9D9D9"

	bulletNumID = 1
	// Numbered lists get their own num instances starting here.
	firstListNumID = 2
)

const (
	abstractBullet  = 0
	abstractDecimal = 1
)

// Encode writes doc to w as a .docx package.
func Encode(w io.Writer, doc *document.Document) error {
	style := doc.Style
	if style.FontFamily == "" {
		style = document.DefaultStyle()
	}

	body, numbering := buildBody(doc.Blocks, style)

	docXML, err := marshal(wDocument{XmlnsW: nsW, XmlnsR: nsR, Body: body})
	if err != nil {
		return fmt.Errorf("encoding document part: %w", err)
	}
	numXML, err := marshal(numbering)
	if err != nil {
		return fmt.Errorf("encoding numbering part: %w", err)
	}

	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/core.xml", coreXML(doc.Title, created)},
		{"word/document.xml", docXML},
		{"word/styles.xml", stylesXML(style)},
		{"word/numbering.xml", numXML},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: created,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package: %w", err)
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildBody converts blocks into body content and collects the numbering
// instances the numbered lists need. Each contiguous run of numbered items
// gets a fresh instance that starts at the run's first ordinal.
func buildBody(blocks []document.Block, style document.Style) (body, wNumbering) {
	numbering := wNumbering{
		XmlnsW:   nsW,
		Abstract: []abstractNum{bulletAbstract(), decimalAbstract()},
		Nums:     []num{{ID: bulletNumID, AbstractNum: val{itoa(abstractBullet)}}},
	}

	var b body
	listNumID := 0
	for _, blk := range blocks {
		if !(blk.Kind == document.BlockListItem && blk.List == document.ListNumbered) {
			listNumID = 0
		}

		switch blk.Kind {
		case document.BlockHeading:
			b.Content = append(b.Content, paragraph{
				PPr:  &pPr{PStyle: &val{"Heading" + itoa(blk.Level)}, Jc: jc(blk.Align)},
				Runs: runs(blk.Runs, false, 0),
			})

		case document.BlockParagraph:
			p := paragraph{PPr: &pPr{Jc: jc(blk.Align)}}
			if blk.Emphasis {
				p.Runs = runs(blk.Runs, true, halfPoints(style.EmphasisSizePt))
			} else {
				p.Runs = runs(blk.Runs, false, 0)
			}
			b.Content = append(b.Content, p)

		case document.BlockListItem:
			styleID, id := "ListBullet", bulletNumID
			if blk.List == document.ListNumbered {
				if listNumID == 0 {
					listNumID = firstListNumID + len(numbering.Nums) - 1
					start := blk.Ordinal
					if start < 1 {
						start = 1
					}
					numbering.Nums = append(numbering.Nums, num{
						ID:          listNumID,
						AbstractNum: val{itoa(abstractDecimal)},
						Override:    &lvlOverride{Ilvl: 0, StartOverride: val{itoa(start)}},
					})
				}
				styleID, id = "ListNumber", listNumID
			}
			b.Content = append(b.Content, paragraph{
				PPr: &pPr{
					PStyle: &val{styleID},
					NumPr:  &numPr{Ilvl: val{"0"}, NumID: val{itoa(id)}},
				},
				Runs: runs(blk.Runs, false, 0),
			})

		case document.BlockTable:
			b.Content = append(b.Content, buildTable(blk.Table))
			// Word merges a table with a following table unless a paragraph
			// separates them.
			b.Content = append(b.Content, paragraph{})
		}
	}

	b.SectPr = sectPr{
		PgSz: pgSz{W: pageWidth, H: pageHeight},
		PgMar: pgMar{
			Top: pageMargin, Right: pageMargin, Bottom: pageMargin, Left: pageMargin,
			Header: 720, Footer: 720,
		},
	}
	return b, numbering
}

func buildTable(t *document.Table) table {
	cols := t.Columns
	if cols < 1 {
		cols = 1
	}
	colWidth := textWidth / cols

	tbl := table{
		TblPr: tblPr{Style: val{"TableGrid"}, Width: width{W: 0, Type: "auto"}},
	}
	for i := 0; i < cols; i++ {
		tbl.Grid.Cols = append(tbl.Grid.Cols, gridCol{W: colWidth})
	}

	header := tableRow{TrPr: &trPr{TblHeader: &flag{}}}
	for _, c := range t.Header {
		header.Cells = append(header.Cells, tableCell{
			TcPr: tcPr{
				Width: width{W: colWidth, Type: "dxa"},
				Shd:   &shading{Val: "clear", Color: "auto", Fill: headerShade},
			},
			Paragraphs: []paragraph{{Runs: runs(c.Runs, true, 0)}},
		})
	}
	tbl.Rows = append(tbl.Rows, header)

	for _, r := range t.Rows {
		row := tableRow{}
		for _, c := range r {
			row.Cells = append(row.Cells, tableCell{
				TcPr:       tcPr{Width: width{W: colWidth, Type: "dxa"}},
				Paragraphs: []paragraph{{Runs: runs(c.Runs, false, 0)}},
			})
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// runs converts model runs. forceBold makes every run bold; size, when
// non-zero, is the run size in half-points.
func runs(src []document.Run, forceBold bool, size int) []run {
	out := make([]run, 0, len(src))
	for _, r := range src {
		var props rPr
		if r.Bold || forceBold {
			props.B = &flag{}
		}
		if size > 0 {
			props.Sz = &val{itoa(size)}
			props.SzCs = &val{itoa(size)}
		}
		wr := run{T: text{Value: r.Text, Space: "preserve"}}
		if props.B != nil || props.Sz != nil {
			wr.RPr = &props
		}
		out = append(out, wr)
	}
	return out
}

func jc(a document.Alignment) *val {
	if a == "" {
		return nil
	}
	return &val{string(a)}
}

func halfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func bulletAbstract() abstractNum {
	return abstractNum{
		ID: abstractBullet,
		Lvl: []lvl{{
			Ilvl:    0,
			Start:   val{"1"},
			NumFmt:  val{"bullet"},
			LvlText: val{"•"},
			LvlJc:   val{"left"},
			PPr:     lvlPPr{Ind: ind{Left: 720, Hanging: 360}},
		}},
	}
}

func decimalAbstract() abstractNum {
	return abstractNum{
		ID: abstractDecimal,
		Lvl: []lvl{{
			Ilvl:    0,
			Start:   val{"1"},
			NumFmt:  val{"decimal"},
			LvlText: val{"%1."},
			LvlJc:   val{"left"},
			PPr:     lvlPPr{Ind: ind{Left: 720, Hanging: 360}},
		}},
	}
}
