// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package placeholder substitutes [[KEY]] markers in template text with
// values from a render context and reports the markers it could not fill.
package placeholder

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Context maps placeholder keys to values. Keys are case-sensitive and
// must match KeyPattern; values are rendered with Stringify.
type Context map[string]any

// KeyPattern is the grammar of a placeholder key.
var KeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// markerPattern matches a canonical [[KEY]] marker.
var markerPattern = regexp.MustCompile(`\[\[([A-Za-z0-9_]+)\]\]`)

// legacyPattern matches the legacy {{KEY}} marker, tolerating inner spaces.
var legacyPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// anyPattern matches either marker form.
var anyPattern = regexp.MustCompile(`\[\[([A-Za-z0-9_]+)\]\]|\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Marker locates one placeholder marker in a text.
type Marker struct {
	Start, End int
	Key        string
}

// FindMarkers returns the [[KEY]] markers of text in order, with byte
// offsets into text. With legacy set, {{KEY}} markers are found as well.
func FindMarkers(text string, legacy bool) []Marker {
	pattern := markerPattern
	if legacy {
		pattern = anyPattern
	}
	var out []Marker
	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		lo, hi := m[2], m[3]
		if lo < 0 {
			lo, hi = m[4], m[5]
		}
		out = append(out, Marker{Start: m[0], End: m[1], Key: text[lo:hi]})
	}
	return out
}

// Merge layers contexts left to right; a later layer overwrites keys of an
// earlier one. Nil layers are skipped.
func Merge(layers ...Context) Context {
	merged := make(Context)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// ValidateKeys splits ctx into the entries with valid keys and the sorted
// list of invalid keys.
func ValidateKeys(ctx Context) (Context, []string) {
	valid := make(Context, len(ctx))
	var invalid []string
	for k, v := range ctx {
		if KeyPattern.MatchString(k) {
			valid[k] = v
			continue
		}
		invalid = append(invalid, k)
	}
	sort.Strings(invalid)
	return valid, invalid
}

// Resolve replaces every [[KEY]] in text whose key is present in ctx with
// the stringified value. Markers with an absent key are left verbatim and
// returned in unresolved, sorted and deduplicated.
//
// Substitution is a single pass over the markers of the original text:
// substituted values are never rescanned.
func Resolve(text string, ctx Context) (filled string, unresolved []string) {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, []string{}
	}

	missing := make(map[string]bool)
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		key := text[m[2]:m[3]]
		b.WriteString(text[last:m[0]])
		if v, ok := ctx[key]; ok {
			b.WriteString(Stringify(v))
		} else {
			b.WriteString(text[m[0]:m[1]])
			missing[key] = true
		}
		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String(), sortedKeys(missing)
}

// Scan returns the sorted, deduplicated keys referenced by text.
func Scan(text string) []string {
	seen := make(map[string]bool)
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	return sortedKeys(seen)
}

// NormalizeLegacy rewrites legacy {{KEY}} markers to [[KEY]] so that
// templates written for the brace delimiter resolve the same way.
func NormalizeLegacy(text string) string {
	return legacyPattern.ReplaceAllString(text, "[[$1]]")
}

// Stringify renders a context value as text. Numbers never use locale
// formatting; callers that need one pre-format the value.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, ", ")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
