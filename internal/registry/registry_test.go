// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgen/internal/document"
	"github.com/pdiddy/docgen/internal/docx"
	"github.com/pdiddy/docgen/internal/httputil"
	"github.com/pdiddy/docgen/internal/markup"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// wordPackage encodes markup text as a .docx package.
func wordPackage(t *testing.T, text string) []byte {
	t.Helper()
	lines, _ := markup.Tokenize(text)
	doc, _ := document.Assemble(lines, document.DefaultStyle())
	var buf bytes.Buffer
	require.NoError(t, docx.Encode(&buf, doc))
	return buf.Bytes()
}

func TestBuiltin(t *testing.T) {
	r := Builtin()
	assert.Equal(t, []string{"ARI", "IQ", "OQ", "PQ", "VP"}, r.Names())

	ctx := context.Background()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			res, err := r.Resolve(name)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(res.Source, "builtin:"))

			data, err := r.Open(ctx, res)
			require.NoError(t, err)
			tmpl, err := Parse(res, data)
			require.NoError(t, err)

			assert.NotEmpty(t, tmpl.Title)
			assert.Contains(t, tmpl.Keys, "SYSTEM_NAME")
			assert.Contains(t, tmpl.Keys, "DOCUMENT_DATE")
			assert.Equal(t, "To be defined", tmpl.Defaults["APPROVER"])
		})
	}
}

func TestBuiltinFrontMatter(t *testing.T) {
	cache := NewCache(Builtin())
	tmpl, err := cache.Get(context.Background(), "ARI")
	require.NoError(t, err)

	assert.Equal(t, "Initial Risk Assessment", tmpl.Title)
	assert.Equal(t, "Full system", tmpl.Defaults["ASSESSMENT_SCOPE"])
	assert.True(t, strings.HasPrefix(tmpl.Body, "# Initial Risk Assessment"))
}

func TestBuiltinIQDefaultsLayerOverGlobal(t *testing.T) {
	res, err := Builtin().Resolve("IQ")
	require.NoError(t, err)
	assert.Equal(t, "To be verified", res.Defaults["RAM_INSTALLED"])
	assert.Equal(t, 5, res.Defaults["GAMP_CATEGORY"])
}

func TestResolveCaseInsensitive(t *testing.T) {
	res, err := Builtin().Resolve("iq")
	require.NoError(t, err)
	assert.Equal(t, "IQ", res.Name)
}

func TestResolveUnknown(t *testing.T) {
	_, err := Builtin().Resolve("XYZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.False(t, errors.Is(err, ErrTemplateNotFound))

	var ue *UnknownTemplateError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "XYZ", ue.Name)
	assert.Contains(t, ue.Known, "IQ")
	assert.Contains(t, err.Error(), `"XYZ"`)
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
defaults:
  OWNER: QA
templates:
  Report:
    title: Report
    defaults:
      OWNER: Ops
  Legacy:
    file: old/legacy.txt
    delimiter: braces
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy", "Report"}, m.Names())
	assert.Equal(t, "report.md", m.Templates["Report"].File)
	assert.Equal(t, "old/legacy.txt", m.Templates["Legacy"].File)

	res, err := m.resource("Report", func(f string) string { return "x/" + f })
	require.NoError(t, err)
	assert.Equal(t, "Ops", res.Defaults["OWNER"])
	assert.Equal(t, "x/report.md", res.Source)
}

func TestParseManifestErrors(t *testing.T) {
	_, err := ParseManifest([]byte("templates: [not, a, map]"))
	assert.Error(t, err)

	_, err = ParseManifest([]byte("templates:\n  X:\n    delimiter: angle\n"))
	assert.ErrorContains(t, err, "unknown delimiter")
}

func TestParseFrontMatter(t *testing.T) {
	res := Resource{Name: "T", Title: "From manifest", Defaults: map[string]any{"A": "1", "B": "2"}}

	tmpl, err := Parse(res, []byte("---\ntitle: From file\ndefaults:\n  B: 3\n---\n# [[A]] [[B]]\n"))
	require.NoError(t, err)
	assert.Equal(t, "From file", tmpl.Title)
	assert.Equal(t, "1", tmpl.Defaults["A"])
	assert.Equal(t, 3, tmpl.Defaults["B"])
	assert.Equal(t, "# [[A]] [[B]]\n", tmpl.Body)
	assert.Equal(t, []string{"A", "B"}, tmpl.Keys)
}

func TestParseWithoutFrontMatter(t *testing.T) {
	for _, text := range []string{"# Title\n---\nbody", "", "----\nx"} {
		tmpl, err := Parse(Resource{Name: "T"}, []byte(text))
		require.NoError(t, err)
		assert.Equal(t, text, tmpl.Body)
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	_, err := Parse(Resource{Name: "T"}, []byte("---\ntitle: x\n# never closed"))
	assert.ErrorContains(t, err, "not closed")

	_, err = Parse(Resource{Name: "T"}, []byte("---\ntitle: [\n---\nbody"))
	assert.ErrorContains(t, err, "front matter")

	_, err = Parse(Resource{Name: "T"}, []byte("---\ndelimiter: angle\n---\nbody"))
	assert.ErrorContains(t, err, "unknown delimiter")
}

func TestParseBraceDelimiter(t *testing.T) {
	tmpl, err := Parse(Resource{Name: "T", Delimiter: DelimBraces}, []byte("Owner: {{ OWNER }} and {{DATE}}"))
	require.NoError(t, err)
	assert.Equal(t, "Owner: [[OWNER]] and [[DATE]]", tmpl.Body)
	assert.Equal(t, []string{"DATE", "OWNER"}, tmpl.Keys)
}

func TestParseStripsByteOrderMark(t *testing.T) {
	tmpl, err := Parse(Resource{Name: "T"}, []byte("\ufeff---\ntitle: X\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "X", tmpl.Title)
	assert.Equal(t, "body", tmpl.Body)
}

func TestParseWordTemplate(t *testing.T) {
	pkg := wordPackage(t, "# {{TITLE}}\n\nOwner: {{OWNER}}")

	tmpl, err := Parse(Resource{Name: "W", File: "w.DOCX", Delimiter: DelimBraces}, pkg)
	require.NoError(t, err)
	assert.True(t, tmpl.IsWord())
	assert.Equal(t, pkg, tmpl.Package)
	assert.Equal(t, "[[TITLE]]\nOwner: [[OWNER]]", tmpl.Body)
	assert.Equal(t, []string{"OWNER", "TITLE"}, tmpl.Keys)

	_, err = Parse(Resource{Name: "W", File: "w.docx"}, []byte("# not a package"))
	assert.ErrorContains(t, err, "template W")

	text, err := Parse(Resource{Name: "M", File: "m.md"}, []byte("# [[A]]"))
	require.NoError(t, err)
	assert.False(t, text.IsWord())
}

func TestDirRegistryWithWordTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "form.docx"), wordPackage(t, "Owner: [[OWNER]]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.docx"), wordPackage(t, "ignored"), 0o644))
	writeFile(t, dir, "audit.md", "# Audit")

	r, err := NewDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AUDIT", "FORM"}, r.Names())

	res, err := r.Resolve("AUDIT")
	require.NoError(t, err)
	assert.Equal(t, "audit.md", res.File)

	tmpl, err := NewCache(r).Get(context.Background(), "form")
	require.NoError(t, err)
	assert.True(t, tmpl.IsWord())
	assert.Equal(t, []string{"OWNER"}, tmpl.Keys)
}

func TestDirRegistryWithManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, "templates:\n  IQ:\n    file: custom-iq.md\n    title: Custom IQ\n  GONE: {}\n")
	writeFile(t, dir, "custom-iq.md", "# Custom [[SYSTEM_NAME]]")

	r, err := NewDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"GONE", "IQ"}, r.Names())

	res, err := r.Resolve("IQ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom-iq.md"), res.Source)

	data, err := r.Open(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "# Custom [[SYSTEM_NAME]]", string(data))

	res, err = r.Resolve("GONE")
	require.NoError(t, err)
	_, err = r.Open(context.Background(), res)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	var nf *TemplateNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "GONE", nf.Name)
	assert.Equal(t, filepath.Join(dir, "gone.md"), nf.Source)
}

func TestDirRegistryWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "audit.md", "# Audit")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	r, err := NewDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AUDIT"}, r.Names())
}

func TestNewDirErrors(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "file", "x")
	_, err = NewDir(filepath.Join(dir, "file"))
	assert.ErrorContains(t, err, "not a directory")
}

func TestChainPrefersEarlierRegistries(t *testing.T) {
	user, err := NewFS(fstest.MapFS{
		"iq.md":    {Data: []byte("# User IQ")},
		"extra.md": {Data: []byte("# Extra")},
	}, func(f string) string { return "user:" + f })
	require.NoError(t, err)

	chain := Chain{user, Builtin()}
	assert.Equal(t, []string{"ARI", "EXTRA", "IQ", "OQ", "PQ", "VP"}, chain.Names())

	ctx := context.Background()
	res, err := chain.Resolve("IQ")
	require.NoError(t, err)
	assert.Equal(t, "user:iq.md", res.Source)
	data, err := chain.Open(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, "# User IQ", string(data))

	res, err = chain.Resolve("OQ")
	require.NoError(t, err)
	assert.Equal(t, "builtin:oq.md", res.Source)
	data, err = chain.Open(ctx, res)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Operational Qualification")

	_, err = chain.Resolve("NOPE")
	var ue *UnknownTemplateError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, chain.Names(), ue.Known)

	_, err = chain.Open(ctx, Resource{Name: "IQ", Source: "elsewhere"})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func newTemplateServer(t *testing.T, files map[string]string, hits *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		body, ok := files[strings.TrimPrefix(r.URL.Path, "/tmpl/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPRegistry(t *testing.T) {
	ts := newTemplateServer(t, map[string]string{
		ManifestFile: "templates:\n  SOP:\n    title: Procedure\n  LOST: {}\n",
		"sop.md":     "# [[TITLE]]",
	}, nil)

	ctx := context.Background()
	r, err := NewHTTP(ctx, ts.URL+"/tmpl", ts.Client())
	require.NoError(t, err)
	assert.Equal(t, []string{"LOST", "SOP"}, r.Names())

	res, err := r.Resolve("SOP")
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/tmpl/sop.md", res.Source)

	data, err := r.Open(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, "# [[TITLE]]", string(data))

	res, err = r.Resolve("LOST")
	require.NoError(t, err)
	_, err = r.Open(ctx, res)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestHTTPRegistryRetriesUnavailable(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("templates:\n  A: {}\n"))
	}))
	defer ts.Close()

	r, err := NewHTTP(context.Background(), ts.URL, ts.Client())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, r.Names())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewHTTPErrors(t *testing.T) {
	ctx := context.Background()
	_, err := NewHTTP(ctx, "ftp://example.com/templates", nil)
	assert.ErrorContains(t, err, "scheme")

	ts := newTemplateServer(t, map[string]string{}, nil)
	_, err = NewHTTP(ctx, ts.URL+"/tmpl", ts.Client())
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestCacheLoadsOnce(t *testing.T) {
	var hits int32
	ts := newTemplateServer(t, map[string]string{
		ManifestFile: "templates:\n  SOP: {}\n",
		"sop.md":     "# SOP [[OWNER]]",
	}, &hits)

	ctx := context.Background()
	r, err := NewHTTP(ctx, ts.URL+"/tmpl", ts.Client())
	require.NoError(t, err)
	cache := NewCache(r)

	var wg sync.WaitGroup
	results := make([]*Template, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tmpl, err := cache.Get(ctx, "SOP")
			assert.NoError(t, err)
			results[i] = tmpl
		}(i)
	}
	wg.Wait()

	first, err := cache.Get(ctx, "sop")
	require.NoError(t, err)
	for _, tmpl := range results {
		assert.Same(t, first, tmpl)
	}
	assert.Equal(t, []string{"OWNER"}, first.Keys)

	before := atomic.LoadInt32(&hits)
	_, err = cache.Get(ctx, "SOP")
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&hits), "cached template is not fetched again")
}

func TestCacheKeepsAliasesOfOneFileApart(t *testing.T) {
	r, err := NewFS(fstest.MapFS{
		ManifestFile: {Data: []byte(`templates:
  IQ:
    file: iq.md
    title: Generic IQ
    defaults: {SYSTEM_NAME: Generic}
  IQ_LIMS:
    file: iq.md
    title: LIMS IQ
    defaults: {SYSTEM_NAME: LIMS}
`)},
		"iq.md": {Data: []byte("# IQ for [[SYSTEM_NAME]]\n")},
	}, func(f string) string { return "test:" + f })
	require.NoError(t, err)
	cache := NewCache(r)
	ctx := context.Background()

	generic, err := cache.Get(ctx, "IQ")
	require.NoError(t, err)
	lims, err := cache.Get(ctx, "IQ_LIMS")
	require.NoError(t, err)

	assert.Equal(t, "IQ", generic.Name)
	assert.Equal(t, "Generic", generic.Defaults["SYSTEM_NAME"])
	assert.Equal(t, "IQ_LIMS", lims.Name)
	assert.Equal(t, "LIMS IQ", lims.Title)
	assert.Equal(t, "LIMS", lims.Defaults["SYSTEM_NAME"])
	assert.Equal(t, generic.Source, lims.Source)

	again, err := cache.Get(ctx, "iq_lims")
	require.NoError(t, err)
	assert.Same(t, lims, again)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	fsys := fstest.MapFS{ManifestFile: {Data: []byte("templates:\n  LATE: {}\n")}}
	r, err := NewFS(fsys, func(f string) string { return f })
	require.NoError(t, err)
	cache := NewCache(r)

	_, err = cache.Get(context.Background(), "LATE")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	fsys["late.md"] = &fstest.MapFile{Data: []byte("now here")}
	tmpl, err := cache.Get(context.Background(), "LATE")
	require.NoError(t, err)
	assert.Equal(t, "now here", tmpl.Body)

	_, err = cache.Get(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Same(t, r, cache.Registry())
}
