// Package sanitize implements the first two pipeline stages (spec.md
// §4.1–§4.2): coercing arbitrary synthesis values into XML-1.0-safe,
// visually-normalized strings, and recursively stripping transient
// "internal/AI-meta" keys before any layout decision is made.
package sanitize

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// glyphReplacements maps non-ASCII punctuation that commonly arrives from
// LLM-authored synthesis text to ASCII equivalents the reference template's
// fonts render without fallback-glyph boxes.
var glyphReplacements = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"…", "...", // ellipsis
	" ", " ", // nbsp
	"→", "->", // right arrow
	"←", "<-", // left arrow
	"•", "-", // bullet
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"‍", "", // zero-width joiner
	"﻿", "", // BOM
	" ", "\n", // line separator
	" ", "\n\n", // paragraph separator
)

// EnsureString coerces v to a string, normalizes its glyphs, strips orphan
// surrogate halves, and removes every XML-1.0-invalid control character.
// Idempotent: EnsureString(EnsureString(v)) == EnsureString(v).
func EnsureString(v any) string {
	s := coerce(v)
	s = norm.NFC.String(s)
	s = glyphReplacements.Replace(s)
	s = stripOrphanSurrogates(s)
	s = stripInvalidXMLChars(s)
	return s
}

func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stripOrphanSurrogates drops any UTF-16 surrogate code unit that Go's UTF-8
// decoding has already turned into utf8.RuneError, while leaving validly
// paired surrogates (already combined into a single rune by the decoder)
// untouched. Values originating from JSON produced by tools that emit raw
// \uD800-\uDFFF escapes outside a pair reach here as RuneError.
func stripOrphanSurrogates(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		if utf16.IsSurrogate(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isXMLInvalidControl reports whether r is in the XML 1.0 invalid
// control-character class: U+0000-U+0008, U+000B, U+000C, U+000E-U+001F.
func isXMLInvalidControl(r rune) bool {
	switch {
	case r >= 0x0000 && r <= 0x0008:
		return true
	case r == 0x000B || r == 0x000C:
		return true
	case r >= 0x000E && r <= 0x001F:
		return true
	}
	return false
}

func stripInvalidXMLChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isXMLInvalidControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// hardCapChars is the crash guard applied to every cell regardless of
// maxLen — a safety bound, not a style choice (spec.md §4.1).
const hardCapChars = 3000

// softHintExpansion maps a caller-supplied soft maxLen hint up to the
// actual enforced cap. Historical per-field caps from 40 to 260 chars
// produced pervasive visible truncation; the system widens them.
var softHintExpansion = []struct{ hint, expanded int }{
	{40, 220},
	{80, 300},
	{120, 360},
	{260, 600},
}

// SafeCell applies EnsureString, collapses internal whitespace runs to a
// single space, and enforces length caps. maxLen, if > 0, is treated as a
// soft hint and expanded per softHintExpansion before being applied; in all
// cases the hard 3000-char crash guard still applies on top.
func SafeCell(v any, maxLen int) string {
	s := EnsureString(v)
	s = collapseWhitespace(s)

	cap := hardCapChars
	if maxLen > 0 {
		effective := expandHint(maxLen)
		if effective < cap {
			cap = effective
		}
	}
	if len([]rune(s)) > cap {
		r := []rune(s)
		s = string(r[:cap])
	}
	return s
}

func expandHint(hint int) int {
	for _, e := range softHintExpansion {
		if hint <= e.hint {
			return e.expanded
		}
	}
	return hint
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// transientKeys is the closed set of internal/AI-meta key names that must
// never reach the renderer (spec.md §4.2).
var transientKeys = map[string]struct{}{
	"_synthesisError":  {},
	"_wasArray":        {},
	"message":          {},
	"confidenceScore":  {},
	"dataType":         {},
	"_sourceModel":     {},
	"_promptTokens":    {},
	"_completionTokens": {},
	"_latencyMs":       {},
	"_retryCount":      {},
	"_schemaVersion":   {},
}

// isTransientKey reports whether k is a known transient key or matches the
// leading-underscore heuristic for ad hoc internal fields.
func isTransientKey(k string) bool {
	if _, ok := transientKeys[k]; ok {
		return true
	}
	return strings.HasPrefix(k, "_")
}

// Sanitize recursively removes any map key matching the transient
// predicate, preserving structure (maps, slices, scalars) otherwise. It
// never mutates v; a cleaned copy is returned.
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isTransientKey(k) {
				continue
			}
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Sanitize(e)
		}
		return out
	default:
		return v
	}
}
