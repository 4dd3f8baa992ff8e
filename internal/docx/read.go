// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotDocx indicates the package has no word/document.xml part.
var ErrNotDocx = errors.New("not a wordprocessing package")

// ReadTextFrom returns the text of every paragraph in an in-memory .docx
// package, in document order. Table cell paragraphs are included.
func ReadTextFrom(r io.ReaderAt, size int64) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	return readParagraphs(zr)
}

func readParagraphs(zr *zip.Reader) ([]string, error) {
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, ErrNotDocx
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening document part: %w", err)
	}
	defer rc.Close()

	var (
		paras  []string
		cur    strings.Builder
		inPara bool
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = inPara
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				paras = append(paras, cur.String())
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
