// Package compose implements the import block composer (C9): given a
// style descriptor, a target directory, and the merged set of imports to
// add, it renders the sorted, styled import block the rewriter splices
// into the file.
package compose

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/depfix/depfix/pkg/resolver"
	"github.com/depfix/depfix/pkg/style"
)

const lineLengthLimit = 80

// group is one module id's normalized, sorted contribution, ready to
// render.
type group struct {
	id       string
	local    bool
	idents   []string
	defaults []string
	props    []string
}

// Compose renders libsToAdd into the import block text. dir is the
// rewrite target's directory, used to relativize file ids. Returns "" if
// libsToAdd renders no statements.
func Compose(st style.Descriptor, dir string, libsToAdd resolver.LibsToAdd) string {
	if len(libsToAdd) == 0 {
		return ""
	}

	groups := buildGroups(dir, libsToAdd)

	var external, local []group

	for _, g := range groups {
		if g.local {
			local = append(local, g)
		} else {
			external = append(external, g)
		}
	}

	sortGroups(external)
	sortGroups(local)

	externalStatements := renderAll(st, external)
	localStatements := renderAll(st, local)

	statements := append(append([]string(nil), externalStatements...), localStatements...)
	if len(statements) == 0 {
		return ""
	}

	var b strings.Builder

	for i, stmt := range statements {
		if i == len(externalStatements) && len(externalStatements) > 0 && len(localStatements) > 0 {
			b.WriteString("\n")
		}

		b.WriteString(stmt)

		if i != len(statements)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderAll(st style.Descriptor, groups []group) []string {
	var out []string

	for _, g := range groups {
		out = append(out, renderGroup(st, g)...)
	}

	return out
}

// buildGroups normalizes each module id (relativizing file ids per
// spec.md §4.4 step 1) and sorts idents/defaults/props within it.
func buildGroups(dir string, libsToAdd resolver.LibsToAdd) []group {
	groups := make([]group, 0, len(libsToAdd))

	for id, target := range libsToAdd {
		normID := id
		local := filepath.IsAbs(id)

		if local {
			rel, err := filepath.Rel(dir, id)
			if err == nil {
				normID = rel
			}

			normID = filepath.ToSlash(normID)

			if !strings.HasPrefix(normID, ".") {
				normID = "./" + normID
			}
		}

		idents := append([]string(nil), target.Idents...)
		defaults := append([]string(nil), target.Defaults...)
		props := append([]string(nil), target.Props...)

		sort.Strings(idents)
		sort.Strings(defaults)
		sort.Strings(props)

		groups = append(groups, group{
			id:       normID,
			local:    local,
			idents:   idents,
			defaults: defaults,
			props:    props,
		})
	}

	return groups
}

// sortGroups implements spec.md §4.4 step 2's within-group ordering: by
// basename, ties broken by full id.
func sortGroups(groups []group) {
	sort.Slice(groups, func(i, j int) bool {
		bi, bj := path.Base(groups[i].id), path.Base(groups[j].id)
		if bi != bj {
			return bi < bj
		}

		return groups[i].id < groups[j].id
	})
}

// renderGroup emits the statement(s) for one module id, per spec.md
// §4.4 step 3.
func renderGroup(st style.Descriptor, g group) []string {
	if st.RequireKeyword == "import" {
		return renderImportForm(st, g)
	}

	return renderRequireForm(st, g)
}

func quoted(st style.Descriptor, id string) string {
	return st.Quote + id + st.Quote
}

func renderRequireForm(st style.Descriptor, g group) []string {
	var out []string

	for _, ident := range g.idents {
		out = append(out, fmt.Sprintf("%s %s = require(%s)%s", st.Kind, ident, quoted(st, g.id), st.Semi))
	}

	for _, def := range g.defaults {
		out = append(out, fmt.Sprintf("%s %s = require(%s).default%s", st.Kind, def, quoted(st, g.id), st.Semi))
	}

	if len(g.props) > 0 {
		out = append(out, renderPropsStatement(st, g.props, func(destructure string) string {
			return fmt.Sprintf("%s %s = require(%s)%s", st.Kind, destructure, quoted(st, g.id), st.Semi)
		}))
	}

	return out
}

// renderPropsStatement builds the single-line form of a props statement
// via render, and falls back to the multiline destructure when the
// single-line form exceeds the length limit — spec.md §4.4 step 4.
func renderPropsStatement(st style.Descriptor, props []string, render func(destructure string) string) string {
	single := render("{ " + strings.Join(props, ", ") + " }")
	if len(single) <= lineLengthLimit {
		return single
	}

	return render(multilineDestructure(st, props))
}

func multilineDestructure(st style.Descriptor, props []string) string {
	var b strings.Builder

	b.WriteString("{\n")

	for i, p := range props {
		b.WriteString(st.Tab)
		b.WriteString(p)

		if i != len(props)-1 {
			b.WriteString(",")
		} else {
			b.WriteString(st.TrailingComma)
		}

		b.WriteString("\n")
	}

	b.WriteString("}")

	return b.String()
}

func renderImportForm(st style.Descriptor, g group) []string {
	var out []string

	defaults := g.defaults
	idents := g.idents

	if len(g.props) > 0 {
		var lead string

		if len(defaults) > 0 {
			lead = defaults[0] + ", "
			defaults = defaults[1:]
		}

		out = append(out, renderPropsStatement(st, g.props, func(destructure string) string {
			return fmt.Sprintf("import %s%s from %s%s", lead, destructure, quoted(st, g.id), st.Semi)
		}))
	}

	for len(defaults) > 0 || len(idents) > 0 {
		var def, ident string

		if len(defaults) > 0 {
			def = defaults[0]
			defaults = defaults[1:]
		}

		if len(idents) > 0 {
			ident = idents[0]
			idents = idents[1:]
		}

		out = append(out, renderImportPair(st, g.id, def, ident))
	}

	return out
}

func renderImportPair(st style.Descriptor, id, def, ident string) string {
	switch {
	case def != "" && ident != "":
		return fmt.Sprintf("import %s, * as %s from %s%s", def, ident, quoted(st, id), st.Semi)
	case def != "":
		return fmt.Sprintf("import %s from %s%s", def, quoted(st, id), st.Semi)
	default:
		return fmt.Sprintf("import * as %s from %s%s", ident, quoted(st, id), st.Semi)
	}
}
