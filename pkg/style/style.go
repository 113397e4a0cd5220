// Package style holds the StyleDescriptor bundle (C1) that the import
// composer (pkg/compose) formats statements with, plus a lightweight
// heuristic detector that infers one from a source file's existing text.
package style

import (
	"regexp"
	"strings"
)

// Descriptor bundles the formatting preferences a rewritten import block
// must match: keyword form, declaration kind, quote character, statement
// terminator, indentation unit, and trailing-comma preference.
type Descriptor struct {
	RequireKeyword string // "require" or "import"
	Kind           string // "const", "let", "var"
	Quote          string // `'` or `"`
	Semi           string // ";" or ""
	Tab            string // indentation unit, e.g. "  "
	TrailingComma  string // "," or ""
}

// Default returns the descriptor depfix falls back to when a style cannot
// be inferred from the source (e.g. an empty file).
func Default() Descriptor {
	return Descriptor{
		RequireKeyword: "require",
		Kind:           "const",
		Quote:          "\"",
		Semi:           ";",
		Tab:            "  ",
		TrailingComma:  "",
	}
}

var (
	importKeywordRe = regexp.MustCompile(`(?m)^\s*import\s`)
	requireRe       = regexp.MustCompile(`require\(\s*['"]`)
	declKindRe      = regexp.MustCompile(`(?m)^\s*(const|let|var)\s`)
	tabIndentRe     = regexp.MustCompile(`(?m)^([ \t]+)\S`)
	trailingCommaRe = regexp.MustCompile(`,\s*\n\s*[}\])]`)
)

// Detect infers a Descriptor from code's existing text, falling back to
// Default() for any facet with no signal in code.
func Detect(code string) Descriptor {
	return DetectWithFallback(code, Default())
}

// DetectWithFallback infers a Descriptor from code's existing text. Each
// facet except the trailing comma falls back independently to fallback
// when no signal is found, so a file that only hints at one convention
// doesn't lose the rest to the caller's configured preferences. The
// trailing comma is always taken from code: "," when code shows one
// before a closing bracket at the start of a line, "" otherwise.
func DetectWithFallback(code string, fallback Descriptor) Descriptor {
	d := fallback

	hasImport := importKeywordRe.MatchString(code)
	hasRequire := requireRe.MatchString(code)

	switch {
	case hasImport && !hasRequire:
		d.RequireKeyword = "import"
	case hasRequire:
		d.RequireKeyword = "require"
	}

	if m := declKindRe.FindStringSubmatch(code); m != nil {
		d.Kind = m[1]
	}

	singleQuotes := strings.Count(code, "'")
	doubleQuotes := strings.Count(code, "\"")

	if singleQuotes > doubleQuotes {
		d.Quote = "'"
	} else if doubleQuotes > 0 || singleQuotes > 0 {
		d.Quote = "\""
	}

	if strings.Contains(code, ";\n") || strings.HasSuffix(strings.TrimRight(code, "\n"), ";") {
		d.Semi = ";"
	} else if len(strings.TrimSpace(code)) > 0 {
		d.Semi = ""
	}

	if m := tabIndentRe.FindStringSubmatch(code); m != nil {
		indent := m[1]
		if strings.Contains(indent, "\t") {
			d.Tab = "\t"
		} else {
			d.Tab = indent
		}
	}

	if trailingCommaRe.MatchString(code) {
		d.TrailingComma = ","
	} else {
		d.TrailingComma = ""
	}

	return d
}
