// Package resolver implements the identifier resolver (C8): it carries
// forward existing imports still in use, walks a file's unresolved
// global-scope references, and consults the dependency registry to
// decide what each remaining name should bind to.
package resolver

import (
	"sort"

	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/registry"
)

// Target is one module id's contribution to LibsToAdd.
type Target struct {
	Idents   []string
	Defaults []string
	Props    []string
}

// LibsToAdd is the merged target set passed to the composer, keyed by
// module id.
type LibsToAdd map[string]*Target

// Resolve implements spec.md §4.3 and §1's "merges existing imports with
// newly required ones": it first carries forward every existing import's
// bound name that used reports as still referenced elsewhere in the
// file, then walks scope.Through for names no scope in the file
// resolves, looks each remaining one up in reg, and accumulates both
// into a single LibsToAdd for the composer to render as one block.
// Dropping used's entry for a name (or omitting it from used entirely)
// is what lets an import go away once its last use does — existing
// import lines are always removed by the rewriter and only reappear
// here if still needed.
func Resolve(scope *jsast.Scope, existing []imports.Existing, used map[string]bool, reg *registry.Registry) LibsToAdd {
	add := make(LibsToAdd)
	seen := make(map[string]bool)

	for _, ex := range existing {
		idents := filterUsed(ex.Idents, used)
		defaults := filterUsed(ex.Defaults, used)
		props := filterUsed(ex.Props, used)

		if len(idents) == 0 && len(defaults) == 0 && len(props) == 0 {
			continue
		}

		target := targetFor(add, ex.DepID)
		target.Idents = append(target.Idents, idents...)
		target.Defaults = append(target.Defaults, defaults...)
		target.Props = append(target.Props, props...)

		markSeen(seen, idents, defaults, props)
	}

	for _, ref := range scope.Through {
		if seen[ref.Name] {
			continue
		}

		seen[ref.Name] = true

		info := reg.Search(ref.Name)
		if info == nil {
			continue
		}

		target := targetFor(add, info.ID)

		switch info.Type {
		case registry.Ident:
			target.Idents = append(target.Idents, ref.Name)
		case registry.Default:
			target.Defaults = append(target.Defaults, ref.Name)
		case registry.Prop:
			target.Props = append(target.Props, ref.Name)
		}
	}

	for _, target := range add {
		sort.Strings(target.Idents)
		sort.Strings(target.Defaults)
		sort.Strings(target.Props)
	}

	return add
}

// filterUsed returns the subset of names that used reports as still
// referenced in the file.
func filterUsed(names []string, used map[string]bool) []string {
	var out []string

	for _, n := range names {
		if used[n] {
			out = append(out, n)
		}
	}

	return out
}

// targetFor returns add's Target for id, creating it if absent.
func targetFor(add LibsToAdd, id string) *Target {
	target, ok := add[id]
	if !ok {
		target = &Target{}
		add[id] = target
	}

	return target
}

func markSeen(seen map[string]bool, groups ...[]string) {
	for _, names := range groups {
		for _, n := range names {
			seen[n] = true
		}
	}
}
