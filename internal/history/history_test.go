// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/pkg/types"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	results := []types.RenderResult{
		{
			Template: "IQ", OutputPath: "/out/iq.docx", Format: types.FormatDOCX, Success: true,
			Unresolved: []string{}, RenderedAt: base, Duration: 12 * time.Millisecond,
		},
		{
			Template: "OQ", OutputPath: "/out/oq.docx", Format: types.FormatDOCX, Success: true,
			Unresolved: []string{"TECHNICAL_OWNER"},
			Diagnostics: []types.Diagnostic{
				{Kind: types.DiagUnresolved, Line: 7, Message: "no value for placeholder TECHNICAL_OWNER"},
			},
			RenderedAt: base.Add(time.Minute),
		},
		{
			Template: "XYZ", Success: false, Unresolved: []string{},
			Error: `unknown template "XYZ"`, RenderedAt: base.Add(2 * time.Minute),
		},
		{
			Template: "IQ", OutputPath: "/out/iq-2.md", Format: types.FormatMarkdown, Success: true,
			RenderedAt: base.Add(3*time.Minute + 500*time.Millisecond),
		},
	}
	for i := range results {
		require.NoError(t, s.Record(context.Background(), &results[i]))
	}
}

func templates(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Template
	}
	return out
}

func TestListNewestFirst(t *testing.T) {
	s, _ := testStore(t)
	seed(t, s)

	entries, err := s.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"IQ", "XYZ", "OQ", "IQ"}, templates(entries))

	oq := entries[2]
	assert.True(t, oq.Success)
	assert.Equal(t, "/out/oq.docx", oq.OutputPath)
	assert.Equal(t, types.FormatDOCX, oq.Format)
	assert.Equal(t, []string{"TECHNICAL_OWNER"}, oq.Unresolved)
	require.Len(t, oq.Diagnostics, 1)
	assert.Equal(t, 7, oq.Diagnostics[0].Line)
	assert.True(t, oq.RenderedAt.Equal(base.Add(time.Minute)))

	assert.Equal(t, 12*time.Millisecond, entries[3].Duration)
	assert.NotNil(t, entries[0].Unresolved, "nil unresolved keys come back empty")
}

func TestListFilters(t *testing.T) {
	s, _ := testStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"by template", QueryOptions{Template: "IQ"}, []string{"IQ", "IQ"}},
		{"by template ignoring case", QueryOptions{Template: "oq"}, []string{"OQ"}},
		{"failed only", QueryOptions{FailedOnly: true}, []string{"XYZ"}},
		{"since", QueryOptions{Since: base.Add(2 * time.Minute)}, []string{"IQ", "XYZ"}},
		{"limit", QueryOptions{MaxResults: 1}, []string{"IQ"}},
		{"full text on unresolved key", QueryOptions{Query: "TECHNICAL_OWNER"}, []string{"OQ"}},
		{"full text on error", QueryOptions{Query: "unknown"}, []string{"XYZ"}},
		{"full text combined with filter", QueryOptions{Query: "IQ", FailedOnly: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, entries)
				return
			}
			assert.Equal(t, tt.want, templates(entries))
		})
	}
}

func TestPrune(t *testing.T) {
	s, _ := testStore(t)
	seed(t, s)
	ctx := context.Background()

	n, err := s.Prune(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"IQ", "XYZ"}, templates(entries))

	// Pruned rows leave the full-text index too.
	entries, err = s.List(ctx, QueryOptions{Query: "TECHNICAL_OWNER"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorePersists(t *testing.T) {
	s, path := testStore(t)
	seed(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestConcurrentRecord(t *testing.T) {
	s, _ := testStore(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &types.RenderResult{Template: "IQ", Success: true, RenderedAt: base.Add(time.Duration(i) * time.Second)}
			assert.NoError(t, s.Record(context.Background(), res))
		}()
	}
	wg.Wait()

	entries, err := s.List(context.Background(), QueryOptions{MaxResults: 100})
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestExportJSON(t *testing.T) {
	s, _ := testStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf, QueryOptions{FailedOnly: true}))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "XYZ", got[0]["template"])
	assert.Equal(t, false, got[0]["success"])
	assert.Equal(t, `unknown template "XYZ"`, got[0]["error"])
	assert.Contains(t, got[0], "id")
}

func TestExportYAML(t *testing.T) {
	s, _ := testStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(context.Background(), &buf, QueryOptions{Template: "OQ"}))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "OQ", got[0]["template"])
	assert.Equal(t, []any{"TECHNICAL_OWNER"}, got[0]["unresolved"])
}

func TestExportEmpty(t *testing.T) {
	s, _ := testStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf, QueryOptions{}))
	assert.Equal(t, "[]\n", buf.String())
}
