// Package rewrite implements the source rewriter (C10): it removes the
// lines spanned by existing imports, splices the composed import block
// in at the correct target line, and normalizes trailing newlines.
package rewrite

import (
	"strings"

	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/source"
)

// placement enumerates the four ways the composed block can attach,
// per spec.md §4.5 step 4.
type placement int

const (
	// placementPrepend inserts block at the very top of the file.
	placementPrepend placement = iota
	// placementAfterImports inserts block directly after the first
	// existing import's start line, with no extra blank-line padding
	// (the removed import lines already free the space).
	placementAfterImports
	// placementAfterDirective inserts block after a directive that owns
	// its whole line, bracketed by one blank line above and below.
	placementAfterDirective
	// placementSpliceDirective splices block into the directive's line
	// at a specific column, bracketed by blank lines.
	placementSpliceDirective
)

// Rewrite applies C10's full algorithm (spec.md §4.5) to code, removing
// existing's source lines and splicing block in at the correct target
// line. block may be "".
func Rewrite(code string, root *jsast.Node, existing []imports.Existing, block string) string {
	view := source.New(code)

	remove := linesToRemove(existing)
	remove = coalesce(remove, view)

	if block == "" {
		if len(remove) > 0 {
			remove = removeTrailingBlank(remove, view)
		}

		return emitPlain(view, remove)
	}

	line, mode, column := target(view, root, existing)

	return emit(view, remove, line, mode, column, block)
}

// linesToRemove computes the union of every existing import's spanned
// source lines — spec.md §4.5 step 1.
func linesToRemove(existing []imports.Existing) map[int]bool {
	remove := make(map[int]bool)

	for _, ex := range existing {
		if ex.Node == nil {
			continue
		}

		for line := ex.Node.Start.Line; line <= ex.Node.End.Line; line++ {
			remove[line] = true
		}
	}

	return remove
}

// coalesce extends remove to also drop any run of whitespace-only lines
// that sits strictly between two removed lines — spec.md §4.5 step 2.
func coalesce(remove map[int]bool, view *source.View) map[int]bool {
	if len(remove) == 0 {
		return remove
	}

	sorted := sortedKeys(remove)

	for i := 0; i < len(sorted)-1; i++ {
		a, b := sorted[i], sorted[i+1]
		if b-a <= 1 {
			continue
		}

		allBlank := true

		for line := a + 1; line < b; line++ {
			if strings.TrimSpace(view.GetLineText(line)) != "" {
				allBlank = false

				break
			}
		}

		if allBlank {
			for line := a + 1; line < b; line++ {
				remove[line] = true
			}
		}
	}

	return remove
}

// removeTrailingBlank additionally removes the single whitespace-only
// line immediately after the removed block, when no replacement
// statements will be emitted — spec.md §4.5 step 3.
func removeTrailingBlank(remove map[int]bool, view *source.View) map[int]bool {
	last := 0

	for line := range remove {
		if line > last {
			last = line
		}
	}

	next := last + 1
	if next <= view.LineCount() && strings.TrimSpace(view.GetLineText(next)) == "" {
		remove[next] = true
	}

	return remove
}

// target implements spec.md §4.5 step 4: where the composed block goes.
func target(view *source.View, root *jsast.Node, existing []imports.Existing) (line int, mode placement, column int) {
	if len(existing) > 0 {
		first := existing[0].Node.Start.Line

		for _, ex := range existing[1:] {
			if ex.Node != nil && ex.Node.Start.Line < first {
				first = ex.Node.Start.Line
			}
		}

		return first, placementAfterImports, 0
	}

	if d := directiveFrom(root, view); d != nil {
		if d.OwnsLine {
			return d.Line, placementAfterDirective, 0
		}

		return d.Line, placementSpliceDirective, d.EndColumn
	}

	return 0, placementPrepend, 0
}

// directiveFrom finds a leading string-literal directive expression
// statement, e.g. `"use strict";`, at the top of the file.
func directiveFrom(root *jsast.Node, view *source.View) *source.Directive {
	if root == nil || len(root.Children) == 0 {
		return nil
	}

	first := root.Children[0]
	if first.Type != "expression_statement" || len(first.Children) != 1 {
		return nil
	}

	if first.Children[0].Type != "string" {
		return nil
	}

	if first.Start.Line != 1 {
		return nil
	}

	return &source.Directive{
		Line:      first.Start.Line,
		EndColumn: first.End.Column,
		OwnsLine:  view.EndsLine(first.End),
	}
}

// emitPlain renders the file with remove applied and nothing spliced in
// — used when block is "".
func emitPlain(view *source.View, remove map[int]bool) string {
	var b strings.Builder

	lines := view.Lines()

	for i := 1; i <= view.LineCount(); i++ {
		if remove[i] {
			continue
		}

		b.WriteString(lines[i])
		b.WriteString("\n")
	}

	return normalizeTrailingNewline(b.String())
}

// emit renders the final file: original lines (minus remove) with the
// composed block spliced in at line, per spec.md §4.5 steps 5-6.
func emit(view *source.View, remove map[int]bool, line int, mode placement, column int, block string) string {
	var b strings.Builder

	lines := view.Lines()

	if mode == placementPrepend {
		b.WriteString(block)
		b.WriteString("\n")

		if view.LineCount() > 0 {
			b.WriteString("\n")
		}
	}

	for i := 1; i <= view.LineCount(); i++ {
		// placementAfterImports targets a line that is itself removed
		// (the first existing import's start line), so the block must be
		// emitted here before the remove-skip below discards the line.
		if i == line && mode == placementAfterImports {
			b.WriteString(block)
			b.WriteString("\n")
		}

		if remove[i] {
			continue
		}

		text := lines[i]

		if i == line && mode == placementSpliceDirective {
			b.WriteString(text[:column])
			b.WriteString("\n\n")
			b.WriteString(block)
			b.WriteString("\n\n")
			b.WriteString(text[column:])
			b.WriteString("\n")

			continue
		}

		b.WriteString(text)
		b.WriteString("\n")

		if i == line && mode == placementAfterDirective {
			b.WriteString("\n")
			b.WriteString(block)
			b.WriteString("\n\n")
		}
	}

	return normalizeTrailingNewline(b.String())
}

// normalizeTrailingNewline implements spec.md §4.5 step 6: the file
// must end with exactly one newline.
func normalizeTrailingNewline(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	return keys
}
