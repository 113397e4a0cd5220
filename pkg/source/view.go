// Package source provides a line-indexed, mutable view over a single
// source file that preserves original 1-indexed line numbers across edits.
package source

import "strings"

// Point is a 1-indexed line / 0-indexed column location, matching the
// AST/scope contract's loc convention.
type Point struct {
	Line   int
	Column int
}

// Directive describes a leading string-literal expression statement
// (e.g. `"use strict";`) that the rewriter must splice around carefully.
type Directive struct {
	// Line is the 1-indexed line the directive's statement starts on.
	Line int
	// EndColumn is the 0-indexed column immediately after the directive's
	// closing semicolon/quote, on Line.
	EndColumn int
	// OwnsLine is true when nothing but the directive appears on Line.
	OwnsLine bool
}

// View is a line-indexed view of a source file. textLines is 1-indexed;
// textLines[0] is always the empty-string sentinel described in spec.md §3.
type View struct {
	textLines []string
	directive *Directive
}

// New builds a View from raw file content.
func New(content string) *View {
	lines := strings.Split(content, "\n")

	// strings.Split on a trailing-newline file yields a trailing "" element
	// that doesn't correspond to a real line; drop it so 1-indexing lines
	// up with the AST's line numbers.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	textLines := make([]string, len(lines)+1)
	textLines[0] = ""
	copy(textLines[1:], lines)

	return &View{textLines: textLines}
}

// LineCount returns the number of real (1-indexed) lines.
func (v *View) LineCount() int {
	return len(v.textLines) - 1
}

// GetLineText returns the text of the given 1-indexed line, or "" if out
// of range.
func (v *View) GetLineText(n int) string {
	if n <= 0 || n >= len(v.textLines) {
		return ""
	}

	return v.textLines[n]
}

// EndsLine reports whether the given end point sits at the last column of
// its line (used by callers to decide whether a node's span consumes the
// whole line it ends on).
func (v *View) EndsLine(end Point) bool {
	return end.Column >= len(v.GetLineText(end.Line))
}

// SetDirective records the leading string-directive location, computed by
// the caller from the AST (spec.md §4.5 step 4).
func (v *View) SetDirective(d *Directive) {
	v.directive = d
}

// GetUseStrict returns the leading directive, if one was recorded.
func (v *View) GetUseStrict() *Directive {
	return v.directive
}

// Lines returns the 1-indexed line slice, including the sentinel at
// index 0, for callers that need direct iteration (e.g. the rewriter).
func (v *View) Lines() []string {
	return v.textLines
}
