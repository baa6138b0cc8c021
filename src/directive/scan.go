// Package directive implements the extraction and execution engine for
// machine-readable actions embedded in assistant-generated text. The model
// is told to emit bracketed forms such as
//
//	[ACTION:ADD_TO_QUOTE, SKU:ITEM-1, QUANTITY:2]
//	[ACTION:REMOVE_FROM_QUOTE, SKU:ITEM-1]
//
// inside otherwise free-form replies. Scanning, validation and sanitization
// are pure; execution applies validated commands against an injected
// catalog lookup and quote-mutation hooks. Every per-directive failure is
// absorbed locally so one bad directive never aborts the rest of the turn.
package directive

import (
	"regexp"
	"sort"
	"strings"
)

// Kind identifies a recognized directive form.
type Kind string

const (
	KindAddToQuote      Kind = "ADD_TO_QUOTE"
	KindRemoveFromQuote Kind = "REMOVE_FROM_QUOTE"
)

// Span is the half-open byte range [Start, End) a directive occupies in the
// source text. Sanitization removes exactly these ranges, never matching by
// content, so identical text elsewhere in the message is untouched.
type Span struct {
	Start int
	End   int
}

// Match is a raw scanner hit. Field values are whitespace-trimmed but not
// yet validated; a Match is discarded after ParseCommand.
type Match struct {
	Kind     Kind
	SKU      string
	Quantity string
	Span     Span
}

// The grammar is fixed and case-sensitive. SKU is terminated by the next
// comma (add) or closing bracket (remove); bracket content that does not
// fully match either form is left in the text untouched. Quantity captures
// any non-delimiter text so that a non-numeric value is a validator
// rejection (directive stripped, no side effect), not a grammar mismatch
// that would leave the bracket user-visible.
var (
	addPattern    = regexp.MustCompile(`\[ACTION:ADD_TO_QUOTE,\s*SKU:([^,\]]+),\s*QUANTITY:([^,\]]*)\]`)
	removePattern = regexp.MustCompile(`\[ACTION:REMOVE_FROM_QUOTE,\s*SKU:([^,\]]+)\]`)
)

// Scan finds every directive in text, in order of first appearance.
// Overlapping candidates are resolved left to right; text without
// directives yields an empty slice.
func Scan(text string) []Match {
	var matches []Match

	for _, loc := range addPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, Match{
			Kind:     KindAddToQuote,
			SKU:      strings.TrimSpace(text[loc[2]:loc[3]]),
			Quantity: strings.TrimSpace(text[loc[4]:loc[5]]),
			Span:     Span{Start: loc[0], End: loc[1]},
		})
	}
	for _, loc := range removePattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, Match{
			Kind: KindRemoveFromQuote,
			SKU:  strings.TrimSpace(text[loc[2]:loc[3]]),
			Span: Span{Start: loc[0], End: loc[1]},
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Span.Start < matches[j].Span.Start
	})

	// Drop anything overlapping an earlier match; the scan is sequential
	// and non-overlapping.
	out := matches[:0]
	last := -1
	for _, m := range matches {
		if m.Span.Start < last {
			continue
		}
		out = append(out, m)
		last = m.Span.End
	}
	return out
}
