package registry

import (
	"path"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var wordSplitRe = regexp.MustCompile(`[^A-Za-z0-9_$]+`)

// identsFromID derives the identifier names a module id could plausibly
// be bound to: the literal basename if it's already a valid identifier,
// plus its camelCase and PascalCase forms, per spec.md §4.1 step 4.
func identsFromID(id string, isFile bool) []string {
	base := baseOf(id, isFile)

	seen := make(map[string]bool)
	names := make([]string, 0, 3)

	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	if identRe.MatchString(base) {
		add(base)
	}

	camel := toCamelCase(base)
	add(camel)
	add(toPascalCase(camel))

	return names
}

// baseOf implements spec.md §4.1 step 4's "base" selection: the full id
// if it has no '/', else the basename (extension-stripped for file ids).
func baseOf(id string, isFile bool) string {
	if !strings.Contains(id, "/") {
		return id
	}

	base := path.Base(id)

	if isFile {
		if idx := strings.LastIndexByte(base, '.'); idx > 0 {
			base = base[:idx]
		}
	}

	return base
}

// toCamelCase splits base on runs of non-word characters, lowercases the
// first token, and TitleCases the rest.
func toCamelCase(base string) string {
	tokens := wordSplitRe.Split(base, -1)

	var out []string

	for i, tok := range tokens {
		if tok == "" {
			continue
		}

		if i == 0 || len(out) == 0 {
			out = append(out, strings.ToLower(tok))
		} else {
			out = append(out, titleCase(tok))
		}
	}

	return strings.Join(out, "")
}

func toPascalCase(camel string) string {
	if camel == "" {
		return ""
	}

	return strings.ToUpper(camel[:1]) + camel[1:]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
