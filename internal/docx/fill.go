// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/docgen/internal/placeholder"
)

const documentPart = "word/document.xml"

// Fill resolves the placeholder markers of a .docx template package and
// returns the filled package with the sorted, deduplicated keys that had
// no value. The body, headers and footers are filled, table cells
// included; every other part is copied unchanged.
//
// Word often splits a marker over several runs. Markers are found on the
// joined text of each paragraph; the value goes into the run where the
// marker starts and the rest of the marker is removed from the runs that
// follow, so formatting of the surrounding text is kept. Unresolved
// markers are left as [[KEY]]. With legacy set, {{KEY}} markers are
// resolved too.
func Fill(pkg []byte, ctx placeholder.Context, legacy bool) ([]byte, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, nil, fmt.Errorf("reading package: %w", err)
	}

	missing := make(map[string]bool)
	found := false

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if !fillable(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		if f.Name == documentPart {
			found = true
		}

		data, err := readFile(f)
		if err != nil {
			return nil, nil, err
		}
		filled, err := fillPart(data, ctx, legacy, missing)
		if err != nil {
			return nil, nil, fmt.Errorf("filling %s: %w", f.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := w.Write(filled); err != nil {
			return nil, nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if !found {
		return nil, nil, ErrNotDocx
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing package: %w", err)
	}

	unresolved := make([]string, 0, len(missing))
	for k := range missing {
		unresolved = append(unresolved, k)
	}
	sort.Strings(unresolved)
	return buf.Bytes(), unresolved, nil
}

func fillable(name string) bool {
	if name == documentPart {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// segment is one w:t element: its byte span in the part, the namespace
// prefix it was written with and its decoded text.
type segment struct {
	start, end int64
	prefix     string
	text       string
}

// edit replaces part[start:end].
type edit struct {
	start, end int64
	data       []byte
}

// fillPart rewrites the w:t elements of one XML part that contain
// markers. Everything else in the part is kept byte for byte.
func fillPart(data []byte, ctx placeholder.Context, legacy bool, missing map[string]bool) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		edits []edit
		paras [][]segment // open paragraphs; text boxes nest them
		cur   *segment
		text  strings.Builder
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "p"):
				paras = append(paras, nil)
			case isW(t.Name, "t") && len(paras) > 0:
				cur = &segment{start: offset, prefix: t.Name.Space}
				text.Reset()
			}
		case xml.CharData:
			if cur != nil {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case isW(t.Name, "t") && cur != nil:
				cur.end = dec.InputOffset()
				cur.text = text.String()
				paras[len(paras)-1] = append(paras[len(paras)-1], *cur)
				cur = nil
			case isW(t.Name, "p") && len(paras) > 0:
				segs := paras[len(paras)-1]
				paras = paras[:len(paras)-1]
				edits = append(edits, fillParagraph(segs, ctx, legacy, missing)...)
			}
		}
	}

	if len(edits) == 0 {
		return data, nil
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out bytes.Buffer
	out.Grow(len(data))
	var last int64
	for _, e := range edits {
		out.Write(data[last:e.start])
		out.Write(e.data)
		last = e.end
	}
	out.Write(data[last:])
	return out.Bytes(), nil
}

// isW reports whether name is the WordprocessingML element local, written
// with the w prefix or unprefixed. Math text (m:t) is left alone.
func isW(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == "w" || name.Space == "")
}

// fillParagraph resolves the markers of one paragraph and returns the
// edits for the segments whose text changed.
func fillParagraph(segs []segment, ctx placeholder.Context, legacy bool, missing map[string]bool) []edit {
	if len(segs) == 0 {
		return nil
	}

	var joined strings.Builder
	bounds := make([]int, len(segs)+1)
	for i, s := range segs {
		bounds[i] = joined.Len()
		joined.WriteString(s.text)
	}
	bounds[len(segs)] = joined.Len()
	text := joined.String()

	markers := placeholder.FindMarkers(text, legacy)
	if len(markers) == 0 {
		return nil
	}

	out := make([]strings.Builder, len(segs))
	copyRange := func(from, to int) {
		for i := range segs {
			lo, hi := max(from, bounds[i]), min(to, bounds[i+1])
			if lo < hi {
				out[i].WriteString(text[lo:hi])
			}
		}
	}
	owner := func(pos int) int {
		for i := range segs {
			if pos >= bounds[i] && pos < bounds[i+1] {
				return i
			}
		}
		return len(segs) - 1
	}

	cursor := 0
	for _, m := range markers {
		copyRange(cursor, m.Start)
		value, ok := ctx[m.Key]
		if ok {
			out[owner(m.Start)].WriteString(placeholder.Stringify(value))
		} else {
			out[owner(m.Start)].WriteString("[[" + m.Key + "]]")
			missing[m.Key] = true
		}
		cursor = m.End
	}
	copyRange(cursor, len(text))

	var edits []edit
	for i, s := range segs {
		if got := out[i].String(); got != s.text {
			edits = append(edits, edit{start: s.start, end: s.end, data: textElement(s.prefix, got)})
		}
	}
	return edits
}

// textElement encodes a w:t element that keeps leading and trailing
// spaces.
func textElement(prefix, text string) []byte {
	name := "t"
	if prefix != "" {
		name = prefix + ":t"
	}
	var b bytes.Buffer
	b.WriteString("<" + name + ` xml:space="preserve">`)
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString("</" + name + ">")
	return b.Bytes()
}
