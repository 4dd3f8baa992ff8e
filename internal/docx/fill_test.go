// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgen/internal/placeholder"
)

const templateDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Owner: [[OW</w:t></w:r><w:r><w:t>NER]] and </w:t></w:r><w:r><w:t xml:space="preserve">{{SITE}}</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>[[OWNER]]</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
	`<w:p><w:r><w:t>No markers here</w:t></w:r><w:r><w:t/></w:r></w:p>` +
	`<w:sectPr/></w:body></w:document>`

const templateHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:p><w:r><w:t>Doc [[DOC_ID]]</w:t></w:r></w:p></w:hdr>`

const templateStyles = `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">[[NOT_FILLED]]</w:styles>`

// wordTemplate builds a minimal .docx template package.
func wordTemplate(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", documentPart, "word/header1.xml", "word/styles.xml"} {
		data, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testTemplate(t *testing.T) []byte {
	return wordTemplate(t, map[string]string{
		"[Content_Types].xml": contentTypesXML,
		documentPart:          templateDocument,
		"word/header1.xml":    templateHeader,
		"word/styles.xml":     templateStyles,
	})
}

func paragraphs(t *testing.T, pkg []byte) []string {
	t.Helper()
	paras, err := ReadTextFrom(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	return paras
}

func TestFillAcrossRunsAndCells(t *testing.T) {
	ctx := placeholder.Context{"OWNER": "QA & Ops", "SITE": "Milan", "DOC_ID": "D-7"}

	out, unresolved, err := Fill(testTemplate(t), ctx, true)
	require.NoError(t, err)
	assert.Empty(t, unresolved)

	assert.Equal(t, []string{"Owner: QA & Ops and Milan", "QA & Ops", "No markers here"}, paragraphs(t, out))

	doc := readPart(t, out, documentPart)
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Owner: QA &amp; Ops</w:t>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve"> and </w:t>`)
	assert.Contains(t, doc, `<w:r><w:t>No markers here</w:t></w:r><w:r><w:t/></w:r>`, "paragraphs without markers are untouched")

	assert.Contains(t, readPart(t, out, "word/header1.xml"), "Doc D-7")
	assert.Equal(t, templateStyles, readPart(t, out, "word/styles.xml"))
}

func TestFillLeavesMissingKeysAsMarkers(t *testing.T) {
	out, unresolved, err := Fill(testTemplate(t), placeholder.Context{"OWNER": "QA"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"DOC_ID", "SITE"}, unresolved)
	assert.Equal(t, "Owner: QA and [[SITE]]", paragraphs(t, out)[0])
	assert.Contains(t, readPart(t, out, "word/header1.xml"), "Doc [[DOC_ID]]")
}

func TestFillWithoutLegacyIgnoresBraces(t *testing.T) {
	out, unresolved, err := Fill(testTemplate(t), placeholder.Context{"OWNER": "QA", "DOC_ID": "D-7"}, false)
	require.NoError(t, err)
	assert.Empty(t, unresolved)
	assert.Equal(t, "Owner: QA and {{SITE}}", paragraphs(t, out)[0])
}

func TestFillRejectsNonWordPackages(t *testing.T) {
	_, _, err := Fill(wordTemplate(t, map[string]string{"word/styles.xml": templateStyles}), nil, false)
	assert.ErrorIs(t, err, ErrNotDocx)

	_, _, err = Fill([]byte("not a zip"), nil, false)
	assert.Error(t, err)
}

func TestFillEncodedDocument(t *testing.T) {
	tmpl := encode(t, build(t, "# [[TITLE]]\n\n| Item | Value |\n|---|---|\n| Owner | [[OWNER]] |"))

	out, unresolved, err := Fill(tmpl, placeholder.Context{"TITLE": "IQ"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"OWNER"}, unresolved)
	assert.Equal(t, []string{"IQ", "Item", "Value", "Owner", "[[OWNER]]", ""}, paragraphs(t, out))
}
