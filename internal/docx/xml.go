// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import "encoding/xml"

// WordprocessingML element types. Names carry the w: prefix literally; the
// namespace is declared once on the document root.

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	XmlnsR  string   `xml:"xmlns:r,attr"`
	Body    body     `xml:"w:body"`
}

// body keeps paragraphs and tables in document order.
type body struct {
	Content []any
	SectPr  sectPr
}

// MarshalXML writes the body children in order followed by the section
// properties, which must come last.
func (b body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:body"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range b.Content {
		if err := e.Encode(el); err != nil {
			return err
		}
	}
	if err := e.EncodeElement(b.SectPr, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type val struct {
	Val string `xml:"w:val,attr"`
}

type flag struct{}

type paragraph struct {
	XMLName xml.Name `xml:"w:p"`
	PPr     *pPr     `xml:"w:pPr"`
	Runs    []run    `xml:"w:r"`
}

type pPr struct {
	PStyle *val   `xml:"w:pStyle"`
	NumPr  *numPr `xml:"w:numPr"`
	Jc     *val   `xml:"w:jc"`
}

type numPr struct {
	Ilvl  val `xml:"w:ilvl"`
	NumID val `xml:"w:numId"`
}

type run struct {
	RPr *rPr `xml:"w:rPr"`
	T   text `xml:"w:t"`
}

type rPr struct {
	B    *flag `xml:"w:b"`
	Sz   *val  `xml:"w:sz"`
	SzCs *val  `xml:"w:szCs"`
}

type text struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type table struct {
	XMLName xml.Name   `xml:"w:tbl"`
	TblPr   tblPr      `xml:"w:tblPr"`
	Grid    tblGrid    `xml:"w:tblGrid"`
	Rows    []tableRow `xml:"w:tr"`
}

type tblPr struct {
	Style val   `xml:"w:tblStyle"`
	Width width `xml:"w:tblW"`
}

type width struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type tblGrid struct {
	Cols []gridCol `xml:"w:gridCol"`
}

type gridCol struct {
	W int `xml:"w:w,attr"`
}

type tableRow struct {
	TrPr  *trPr       `xml:"w:trPr"`
	Cells []tableCell `xml:"w:tc"`
}

type trPr struct {
	TblHeader *flag `xml:"w:tblHeader"`
}

type tableCell struct {
	TcPr       tcPr        `xml:"w:tcPr"`
	Paragraphs []paragraph `xml:"w:p"`
}

type tcPr struct {
	Width width    `xml:"w:tcW"`
	Shd   *shading `xml:"w:shd"`
}

type shading struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

type sectPr struct {
	PgSz  pgSz  `xml:"w:pgSz"`
	PgMar pgMar `xml:"w:pgMar"`
}

type pgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type pgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

// Numbering part.

type wNumbering struct {
	XMLName  xml.Name      `xml:"w:numbering"`
	XmlnsW   string        `xml:"xmlns:w,attr"`
	Abstract []abstractNum `xml:"w:abstractNum"`
	Nums     []num         `xml:"w:num"`
}

type abstractNum struct {
	ID  int   `xml:"w:abstractNumId,attr"`
	Lvl []lvl `xml:"w:lvl"`
}

type lvl struct {
	Ilvl    int    `xml:"w:ilvl,attr"`
	Start   val    `xml:"w:start"`
	NumFmt  val    `xml:"w:numFmt"`
	LvlText val    `xml:"w:lvlText"`
	LvlJc   val    `xml:"w:lvlJc"`
	PPr     lvlPPr `xml:"w:pPr"`
}

type lvlPPr struct {
	Ind ind `xml:"w:ind"`
}

type ind struct {
	Left    int `xml:"w:left,attr"`
	Hanging int `xml:"w:hanging,attr"`
}

type num struct {
	ID          int          `xml:"w:numId,attr"`
	AbstractNum val          `xml:"w:abstractNumId"`
	Override    *lvlOverride `xml:"w:lvlOverride"`
}

type lvlOverride struct {
	Ilvl          int `xml:"w:ilvl,attr"`
	StartOverride val `xml:"w:startOverride"`
}
