// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package placeholder

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		ctx            Context
		wantFilled     string
		wantUnresolved []string
	}{
		{
			name:           "title and body",
			text:           "# [[TITLE]]\n\n[[BODY]]\n",
			ctx:            Context{"TITLE": "IQ Report", "BODY": "All checks passed."},
			wantFilled:     "# IQ Report\n\nAll checks passed.\n",
			wantUnresolved: []string{},
		},
		{
			name:           "missing key stays literal",
			text:           "Owner: [[OWNER]]",
			ctx:            Context{},
			wantFilled:     "Owner: [[OWNER]]",
			wantUnresolved: []string{"OWNER"},
		},
		{
			name:           "repeated missing key reported once",
			text:           "[[B]] [[A]] [[B]] [[B]]",
			ctx:            Context{},
			wantFilled:     "[[B]] [[A]] [[B]] [[B]]",
			wantUnresolved: []string{"A", "B"},
		},
		{
			name:           "keys are case-sensitive",
			text:           "[[name]] [[NAME]]",
			ctx:            Context{"NAME": "x"},
			wantFilled:     "[[name]] x",
			wantUnresolved: []string{"name"},
		},
		{
			name:           "value resembling a marker is not rescanned",
			text:           "[[A]]",
			ctx:            Context{"A": "see [[B]]"},
			wantFilled:     "see [[B]]",
			wantUnresolved: []string{},
		},
		{
			name:           "invalid key content is plain text",
			text:           "[[not a key]] [[OK]]",
			ctx:            Context{"OK": 1},
			wantFilled:     "[[not a key]] 1",
			wantUnresolved: []string{},
		},
		{
			name:           "no markers",
			text:           "plain text",
			ctx:            Context{"A": "b"},
			wantFilled:     "plain text",
			wantUnresolved: []string{},
		},
		{
			name:           "empty value replaces marker",
			text:           "a[[X]]b",
			ctx:            Context{"X": ""},
			wantFilled:     "ab",
			wantUnresolved: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, unresolved := Resolve(tt.text, tt.ctx)
			assert.Equal(t, tt.wantFilled, filled)
			assert.Equal(t, tt.wantUnresolved, unresolved)
		})
	}
}

func TestResolveFullContextLeavesNoMarkers(t *testing.T) {
	templates := []string{
		"[[A]][[B]][[C]]",
		"| [[A]] | [[B]] |\n|---|---|\n| [[C]] | x |",
		"- [[A]]\n1. [[B]]\n**[[C]]**",
	}
	ctx := Context{"A": "alpha", "B": 2, "C": true}
	for _, tpl := range templates {
		filled, unresolved := Resolve(tpl, ctx)
		assert.Empty(t, unresolved)
		assert.NotContains(t, filled, "[[", "template %q", tpl)
	}
}

func TestResolveMissingKeyReportedOnce(t *testing.T) {
	text := strings.Repeat("[[OWNER]] and [[SYSTEM]]\n", 5)
	_, unresolved := Resolve(text, Context{"SYSTEM": "LIMS"})
	assert.Equal(t, []string{"OWNER"}, unresolved)
}

func TestMergeLastWriteWins(t *testing.T) {
	defaults := Context{"A": "default", "B": "default"}
	caller := Context{"B": "caller", "C": "caller"}

	merged := Merge(defaults, nil, caller)

	assert.Equal(t, Context{"A": "default", "B": "caller", "C": "caller"}, merged)
	assert.Equal(t, "default", defaults["B"], "inputs are not mutated")
}

func TestValidateKeys(t *testing.T) {
	valid, invalid := ValidateKeys(Context{
		"SYSTEM_NAME": "x",
		"v2":          "y",
		"bad key":     "z",
		"dash-key":    "w",
		"":            "e",
	})
	assert.Equal(t, Context{"SYSTEM_NAME": "x", "v2": "y"}, valid)
	assert.Equal(t, []string{"", "bad key", "dash-key"}, invalid)
}

func TestScan(t *testing.T) {
	keys := Scan("[[B]] text [[A]] [[B]] [[bad key]] {{LEGACY}}")
	assert.Equal(t, []string{"A", "B"}, keys)
}

func TestNormalizeLegacy(t *testing.T) {
	got := NormalizeLegacy("{{SYSTEM_NAME}} v{{ VERSION }} {{not valid}}")
	assert.Equal(t, "[[SYSTEM_NAME]] v[[VERSION]] {{not valid}}", got)

	filled, unresolved := Resolve(got, Context{"SYSTEM_NAME": "LIMS"})
	assert.Equal(t, "LIMS v[[VERSION]] {{not valid}}", filled)
	assert.Equal(t, []string{"VERSION"}, unresolved)
}

func TestFindMarkers(t *testing.T) {
	text := "A [[OWNER]] b {{ SITE }} [[bad key]]"

	assert.Equal(t, []Marker{{Start: 2, End: 11, Key: "OWNER"}}, FindMarkers(text, false))
	assert.Equal(t, []Marker{
		{Start: 2, End: 11, Key: "OWNER"},
		{Start: 14, End: 24, Key: "SITE"},
	}, FindMarkers(text, true))
	assert.Empty(t, FindMarkers("plain", true))
}

type label struct{ s string }

func (l label) String() string { return "label:" + l.s }

func TestStringify(t *testing.T) {
	ts := time.Date(2026, 1, 21, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(200), "200"},
		{"float whole", float64(5), "5"},
		{"float fraction", 0.25, "0.25"},
		{"large float no exponent", 1e21, "1000000000000000000000"},
		{"float32", float32(1.5), "1.5"},
		{"bool", true, "true"},
		{"time", ts, "2026-01-21T09:30:00Z"},
		{"stringer", label{"x"}, "label:x"},
		{"string slice", []string{"Java 11", "HANA Client"}, "Java 11, HANA Client"},
		{"any slice", []any{"a", 1, false}, "a, 1, false"},
		{"map falls back to fmt", map[string]int{"a": 1}, "map[a:1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}
