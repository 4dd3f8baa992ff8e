// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine is the entry point for rendering documents. It resolves a
// template through a registry, fills its placeholders from a layered
// context, assembles the document model and writes it to the destination.
//
// One Render call is one synchronous attempt. Unresolved placeholders are
// reported, never fatal; unknown templates, missing template resources and
// unwritable destinations are.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/docgen/internal/document"
	"github.com/pdiddy/docgen/internal/docx"
	"github.com/pdiddy/docgen/internal/markup"
	"github.com/pdiddy/docgen/internal/placeholder"
	"github.com/pdiddy/docgen/internal/registry"
	"github.com/pdiddy/docgen/internal/writer"
	"github.com/pdiddy/docgen/pkg/types"
)

// DefaultDateKeys maps the date keys filled from the engine clock to
// their Go time layouts.
var DefaultDateKeys = map[string]string{
	"DOCUMENT_DATE": "20060102",
	"PREPARED_DATE": "02/01/2006",
}

// Recorder receives every render result, successful or not.
type Recorder interface {
	Record(ctx context.Context, res *types.RenderResult) error
}

// Engine renders templates. It is safe for concurrent use; the template
// cache is its only shared state.
type Engine struct {
	cache    *registry.Cache
	defaults placeholder.Context
	style    document.Style
	now      func() time.Time
	dateKeys map[string]string
	legacy   bool
	recorder Recorder
	status   io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults sets values used when neither the template nor the caller
// supplies a key.
func WithDefaults(ctx placeholder.Context) Option {
	return func(e *Engine) { e.defaults = placeholder.Merge(ctx) }
}

// WithStyle sets the document style.
func WithStyle(s document.Style) Option {
	return func(e *Engine) { e.style = s }
}

// WithClock sets the clock used for date keys and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDateKeys replaces the date keys. An empty map disables them.
func WithDateKeys(keys map[string]string) Option {
	return func(e *Engine) {
		e.dateKeys = make(map[string]string, len(keys))
		for k, v := range keys {
			e.dateKeys[k] = v
		}
	}
}

// WithLegacyDelimiters also resolves {{KEY}} markers in every template.
func WithLegacyDelimiters(on bool) Option {
	return func(e *Engine) { e.legacy = on }
}

// WithRecorder records every result.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithStatus sets where progress lines are written.
func WithStatus(w io.Writer) Option {
	return func(e *Engine) { e.status = w }
}

// New creates an Engine over reg.
func New(reg registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		cache:    registry.NewCache(reg),
		style:    document.DefaultStyle(),
		now:      time.Now,
		dateKeys: DefaultDateKeys,
		status:   io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Names lists the templates the engine can render.
func (e *Engine) Names() []string {
	return e.cache.Registry().Names()
}

// Template loads a template without rendering it.
func (e *Engine) Template(ctx context.Context, name string) (*registry.Template, error) {
	return e.template(ctx, name)
}

// template loads name as the engine renders it: with legacy delimiters
// on, {{KEY}} markers count as keys too. The cached template is not
// modified.
func (e *Engine) template(ctx context.Context, name string) (*registry.Template, error) {
	tmpl, err := e.cache.Get(ctx, name)
	if err != nil || !e.legacy {
		return tmpl, err
	}
	t := *tmpl
	t.Body = placeholder.NormalizeLegacy(t.Body)
	t.Keys = placeholder.Scan(t.Body)
	return &t, nil
}

// fillsKey reports whether the engine supplies key on its own, from a
// date key or an engine default.
func (e *Engine) fillsKey(key string) bool {
	if _, ok := e.dateKeys[key]; ok {
		return true
	}
	_, ok := e.defaults[key]
	return ok
}

// Render fills the named template with values and writes the document to
// outputPath. The returned result is never nil. On failure it has
// Success false and Error set, and the error is also returned.
//
// Context layering, lowest to highest priority: date keys from the
// clock, engine defaults, template defaults, values.
func (e *Engine) Render(ctx context.Context, name string, values placeholder.Context, outputPath string) (*types.RenderResult, error) {
	began := time.Now()
	res := &types.RenderResult{
		Template:   name,
		Format:     writer.FormatFor(outputPath),
		Unresolved: []string{},
	}

	out, err := e.build(ctx, name, values, res)
	if err == nil {
		res.OutputPath, err = out.write(outputPath)
	}

	res.RenderedAt = e.now()
	res.Duration = time.Since(began)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		fmt.Fprintf(e.status, "render %s failed: %v\n", name, err)
	} else {
		res.Success = true
		fmt.Fprintf(e.status, "rendered %s -> %s (%d unresolved, %d diagnostics)\n",
			res.Template, res.OutputPath, len(res.Unresolved), len(res.Diagnostics))
	}

	if e.recorder != nil {
		if rerr := e.recorder.Record(ctx, res); rerr != nil {
			fmt.Fprintf(e.status, "warning: recording render of %s: %v\n", name, rerr)
		}
	}
	return res, err
}

// output is what build produces: an assembled document, or a filled
// package when the template is a Word document.
type output struct {
	doc *document.Document
	pkg []byte
}

func (o output) write(dest string) (string, error) {
	if o.pkg != nil {
		return writer.WriteFile(o.pkg, dest)
	}
	return writer.Write(o.doc, dest)
}

// build runs the pipeline up to the encoded output, filling the result's
// unresolved keys and diagnostics.
func (e *Engine) build(ctx context.Context, name string, values placeholder.Context, res *types.RenderResult) (output, error) {
	if err := ctx.Err(); err != nil {
		return output{}, err
	}

	tmpl, err := e.template(ctx, name)
	if err != nil {
		return output{}, err
	}
	res.Template = tmpl.Name

	now := e.now()
	merged := placeholder.Merge(e.dateContext(now), e.defaults, tmpl.Defaults, values)
	valid, invalid := placeholder.ValidateKeys(merged)
	for _, k := range invalid {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Kind:    types.DiagInvalidKey,
			Message: fmt.Sprintf("context key %q is not a valid placeholder key; ignored", k),
		})
	}

	if tmpl.IsWord() {
		return e.fillWord(tmpl, valid, res)
	}

	filled, unresolved := placeholder.Resolve(tmpl.Body, valid)
	res.Unresolved = unresolved

	lines, diags := markup.Tokenize(filled)
	res.Diagnostics = append(res.Diagnostics, diags...)

	doc, diags := document.Assemble(lines, e.style)
	res.Diagnostics = append(res.Diagnostics, diags...)

	reportUnresolved(res, filled)

	if doc.Title == "" {
		doc.Title = tmpl.Title
	}
	doc.Created = now
	return output{doc: doc}, nil
}

// fillWord fills the markers inside a Word template. The package keeps
// its own layout, so only .docx destinations are accepted; diagnostic
// lines count paragraphs.
func (e *Engine) fillWord(tmpl *registry.Template, valid placeholder.Context, res *types.RenderResult) (output, error) {
	if res.Format != types.FormatDOCX {
		return output{}, fmt.Errorf("template %s is a Word document and renders to .docx only, not %s", tmpl.Name, res.Format)
	}

	legacy := e.legacy || tmpl.Delimiter == registry.DelimBraces
	pkg, unresolved, err := docx.Fill(tmpl.Package, valid, legacy)
	if err != nil {
		return output{}, fmt.Errorf("filling template %s: %w", tmpl.Name, err)
	}
	res.Unresolved = unresolved

	if len(unresolved) > 0 {
		paras, err := docx.ReadTextFrom(bytes.NewReader(pkg), int64(len(pkg)))
		if err != nil {
			return output{}, fmt.Errorf("reading filled template %s: %w", tmpl.Name, err)
		}
		reportUnresolved(res, strings.Join(paras, "\n"))
	}
	return output{pkg: pkg}, nil
}

// reportUnresolved adds a diagnostic per unresolved key, pointing at its
// first line in the filled text.
func reportUnresolved(res *types.RenderResult, filled string) {
	for _, k := range res.Unresolved {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Kind:    types.DiagUnresolved,
			Line:    firstLine(filled, "[["+k+"]]"),
			Message: fmt.Sprintf("no value for placeholder %s; marker left in the document", k),
		})
	}
}

func (e *Engine) dateContext(now time.Time) placeholder.Context {
	ctx := make(placeholder.Context, len(e.dateKeys))
	for k, layout := range e.dateKeys {
		ctx[k] = now.Format(layout)
	}
	return ctx
}

// firstLine returns the 1-based line of the first occurrence of marker in
// text, or 0.
func firstLine(text, marker string) int {
	i := strings.Index(text, marker)
	if i < 0 {
		return 0
	}
	return strings.Count(text[:i], "\n") + 1
}
