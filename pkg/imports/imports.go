// Package imports implements the existing-import extractor (C4): it
// walks a parsed file's AST and collects every require()/import
// statement together with the shape of names it binds, so the rewriter
// can remove exactly those statements and the resolver can treat their
// bindings as already satisfied.
package imports

import (
	"strings"

	"github.com/depfix/depfix/pkg/jsast"
)

// Existing is one require()/import statement already present in a file,
// matching spec.md's ExistingImport shape.
type Existing struct {
	Node     *jsast.Node
	DepID    string
	Idents   []string
	Defaults []string
	Props    []string
}

// ExtractAll walks tree and returns every require()/import statement it
// finds, in source order.
func ExtractAll(tree *jsast.Tree) []Existing {
	var out []Existing

	tree.Root.Walk(func(n *jsast.Node) bool {
		switch n.Type {
		case "import_statement":
			if ex, ok := fromImportStatement(n); ok {
				out = append(out, ex)
			}
		case "lexical_declaration", "variable_declaration":
			out = append(out, fromVariableDeclaration(n)...)
		}

		return true
	})

	return out
}

func fromImportStatement(n *jsast.Node) (Existing, bool) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return Existing{}, false
	}

	ex := Existing{Node: n, DepID: unquote(source.Content())}

	var clause *jsast.Node

	for _, c := range n.Children {
		if c.Type == "import_clause" {
			clause = c

			break
		}
	}

	if clause == nil {
		return ex, true // bare `import "id";` for side effects only.
	}

	for _, c := range clause.Children {
		switch c.Type {
		case "identifier":
			ex.Defaults = append(ex.Defaults, c.Content())
		case "namespace_import":
			for _, nc := range c.Children {
				if nc.Type == "identifier" {
					ex.Idents = append(ex.Idents, nc.Content())
				}
			}
		case "named_imports":
			for _, spec := range c.Children {
				if spec.Type != "import_specifier" {
					continue
				}

				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}

				if local != nil {
					ex.Props = append(ex.Props, local.Content())
				}
			}
		}
	}

	return ex, true
}

func fromVariableDeclaration(n *jsast.Node) []Existing {
	var out []Existing

	for _, declarator := range n.Children {
		if declarator.Type != "variable_declarator" {
			continue
		}

		value := declarator.ChildByFieldName("value")
		name := declarator.ChildByFieldName("name")

		depID, isDefault, ok := requireCall(value)
		if !ok {
			continue
		}

		ex := Existing{Node: n, DepID: depID}

		switch {
		case name.Type == "identifier" && isDefault:
			ex.Defaults = append(ex.Defaults, name.Content())
		case name.Type == "identifier":
			ex.Idents = append(ex.Idents, name.Content())
		case name.Type == "object_pattern":
			ex.Props = propNames(name)
		default:
			continue
		}

		out = append(out, ex)
	}

	return out
}

// requireCall recognizes `require(QID)` and `require(QID).default`,
// returning the quoted module id and whether the `.default` form was used.
func requireCall(value *jsast.Node) (id string, isDefault bool, ok bool) {
	if value == nil {
		return "", false, false
	}

	call := value

	if value.Type == "member_expression" {
		prop := value.ChildByFieldName("property")
		if prop == nil || prop.Content() != "default" {
			return "", false, false
		}

		call = value.ChildByFieldName("object")
		isDefault = true
	}

	if call == nil || call.Type != "call_expression" {
		return "", false, false
	}

	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Content() != "require" {
		return "", false, false
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || len(args.Children) != 1 {
		return "", false, false
	}

	arg := args.Children[0]
	if arg.Type != "string" {
		return "", false, false
	}

	return unquote(arg.Content()), isDefault, true
}

// propNames collects the local bound names of an object destructuring
// pattern. depfix never renames identifiers, so the local name doubles
// as the exported prop name it was imported under.
func propNames(pattern *jsast.Node) []string {
	var names []string

	for _, c := range pattern.Children {
		switch c.Type {
		case "shorthand_property_identifier_pattern":
			names = append(names, c.Content())
		case "pair_pattern":
			if v := c.ChildByFieldName("value"); v != nil {
				names = append(names, v.Content())
			}
		case "rest_pattern":
			names = append(names, propNames(c)...)
		}
	}

	return names
}

// UsedNames walks tree and returns the set of existing's bound names
// that occur somewhere outside the import/require statement that bound
// them. A name that only ever appears inside its own binding statement
// — the common case right after a fix run strips its last use — is not
// "used"; Resolve treats it as safe to drop from the regenerated block.
func UsedNames(tree *jsast.Tree, existing []Existing) map[string]bool {
	used := make(map[string]bool)

	bound := make(map[string]bool)

	for _, ex := range existing {
		for _, n := range ex.Idents {
			bound[n] = true
		}

		for _, n := range ex.Defaults {
			bound[n] = true
		}

		for _, n := range ex.Props {
			bound[n] = true
		}
	}

	if len(bound) == 0 {
		return used
	}

	tree.Root.Walk(func(n *jsast.Node) bool {
		if n.Type != "identifier" || !bound[n.Content()] || used[n.Content()] {
			return true
		}

		if !insideAnyImport(n, existing) {
			used[n.Content()] = true
		}

		return true
	})

	return used
}

// insideAnyImport reports whether n falls within the byte span of one of
// existing's own nodes — i.e. n is part of the binding statement itself,
// not a reference to it elsewhere in the file.
func insideAnyImport(n *jsast.Node, existing []Existing) bool {
	for _, ex := range existing {
		if ex.Node == nil {
			continue
		}

		if n.StartByte >= ex.Node.StartByte && n.EndByte <= ex.Node.EndByte {
			return true
		}
	}

	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}

	return s
}
