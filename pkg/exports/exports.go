// Package exports implements the static export analyzer (C5): given a
// parsed project file, it determines the identifiers the file exports
// through CommonJS (module.exports / exports.K) and ES module (export)
// forms.
package exports

import (
	"sort"
	"strings"

	"github.com/depfix/depfix/pkg/jsast"
)

// Result is C5's output shape: the identifiers a file exports, split by
// kind, plus whether any export form was seen at all.
type Result struct {
	Idents     []string
	Defaults   []string
	Props      []string
	HasDefault bool
	HasExports bool
}

// varState tracks a local variable's accreted object-literal keys, so
// that `x.a = 1` statements before `module.exports = x` contribute props.
type varState struct {
	props map[string]bool
}

func newVarState() *varState { return &varState{props: make(map[string]bool)} }

func (v *varState) clone() *varState {
	c := newVarState()
	for k := range v.props {
		c.props[k] = true
	}

	return c
}

// analyzer holds the accumulated state while walking a file's top-level
// statements in source order.
type analyzer struct {
	vars map[string]*varState

	moduleExportsIdent string
	moduleExportsProps map[string]bool // set directly by `module.exports = {literal}`

	accumulatedProps map[string]bool // `exports.K = ...` / `module.exports.K = ...`
	idents           map[string]bool
	props            map[string]bool
	hasDefault       bool
	hasExports       bool
}

// Analyze walks tree's top-level statements and returns its exports.
func Analyze(tree *jsast.Tree) Result {
	a := &analyzer{
		vars:             make(map[string]*varState),
		accumulatedProps: make(map[string]bool),
		idents:           make(map[string]bool),
		props:            make(map[string]bool),
	}

	root := tree.Root
	if root.Type != "program" {
		return a.result()
	}

	for _, stmt := range root.Children {
		a.statement(stmt)
	}

	a.finalize()

	return a.result()
}

func (a *analyzer) statement(n *jsast.Node) {
	switch n.Type {
	case "expression_statement":
		for _, c := range n.Children {
			a.expression(c)
		}
	case "lexical_declaration", "variable_declaration":
		a.variableDeclaration(n)
	case "export_statement":
		a.exportStatement(n)
	}
}

func (a *analyzer) expression(n *jsast.Node) {
	if n.Type != "assignment_expression" {
		return
	}

	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if left == nil || right == nil {
		return
	}

	switch left.Type {
	case "identifier":
		a.assignIdentifier(left.Content(), right)
	case "member_expression":
		a.assignMember(left, right)
	}
}

// assignIdentifier handles `x = ...` reassignment of a tracked variable.
func (a *analyzer) assignIdentifier(name string, right *jsast.Node) {
	switch right.Type {
	case "object":
		vs := newVarState()
		for _, k := range objectLiteralKeys(right) {
			vs.props[k] = true
		}

		a.vars[name] = vs
	case "identifier":
		if src, ok := a.vars[right.Content()]; ok {
			a.vars[name] = src.clone()
		} else {
			a.vars[name] = newVarState()
		}
	default:
		a.vars[name] = newVarState()
	}
}

// assignMember handles `module.exports = ...`, `module.exports.K = ...`,
// and `exports.K = ...`.
func (a *analyzer) assignMember(left *jsast.Node, right *jsast.Node) {
	obj := left.ChildByFieldName("object")
	prop := left.ChildByFieldName("property")

	if obj == nil || prop == nil {
		return
	}

	if obj.Type == "identifier" && obj.Content() == "module" && prop.Content() == "exports" {
		a.resetExportTarget(right)

		return
	}

	key := prop.Content()

	if obj.Type == "member_expression" && isModuleExports(obj) {
		a.hasExports = true

		if key == "default" {
			a.setDefaultTarget(right)
		} else {
			a.accumulatedProps[key] = true
		}

		return
	}

	if obj.Type == "identifier" && obj.Content() == "exports" {
		a.hasExports = true

		if key == "default" {
			a.setDefaultTarget(right)
		} else {
			a.accumulatedProps[key] = true
		}

		return
	}

	if obj.Type == "identifier" {
		if vs, ok := a.vars[obj.Content()]; ok {
			vs.props[key] = true
		}
	}
}

func isModuleExports(n *jsast.Node) bool {
	if n.Type != "member_expression" {
		return false
	}

	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")

	return obj != nil && obj.Type == "identifier" && obj.Content() == "module" &&
		prop != nil && prop.Content() == "exports"
}

// resetExportTarget processes `module.exports = RHS`, per spec.md §4.2.
// It does not set hasDefault itself: finalize sets it once the whole file
// has been analyzed, if no props were collected by then, since a CommonJS
// module exporting a single bound value is importable under ESM interop
// either via require() or a default import; a target that resolves with
// props is not (see DESIGN.md).
func (a *analyzer) resetExportTarget(right *jsast.Node) {
	a.hasExports = true
	a.moduleExportsIdent = ""
	a.moduleExportsProps = nil

	if right.Type == "object" {
		a.moduleExportsProps = make(map[string]bool)
		for _, k := range objectLiteralKeys(right) {
			a.moduleExportsProps[k] = true
		}

		return
	}

	a.moduleExportsIdent = identFromExpr(right)
}

// setDefaultTarget handles `exports.default = RHS` and
// `module.exports.default = RHS`, spec.md §4.2's explicit CommonJS
// default-export form: unlike a bare `exports.K = ...` prop assignment,
// this sets hasDefault and carries RHS into idents for promotion, exactly
// as the ES `export default`/`export { X as default }` forms do — it is
// never recorded as a literal prop named "default".
func (a *analyzer) setDefaultTarget(right *jsast.Node) {
	a.hasDefault = true

	if name := identFromExpr(right); name != "" {
		a.idents[name] = true
	}
}

// identFromExpr extracts the single bound name RHS resolves to for the
// ident-style CommonJS default-export forms (`module.exports = RHS`,
// `exports.default = RHS`, `module.exports.default = RHS`); returns "" for
// forms (object literals, non-name-bearing expressions) that don't resolve
// to a single name.
func identFromExpr(right *jsast.Node) string {
	switch right.Type {
	case "identifier":
		return right.Content()
	case "function_declaration", "function_expression", "generator_function", "generator_function_declaration", "class_declaration", "class_expression":
		if name := right.ChildByFieldName("name"); name != nil {
			return name.Content()
		}
	case "new_expression":
		if callee := right.ChildByFieldName("constructor"); callee != nil && callee.Type == "identifier" {
			return callee.Content()
		}
	case "member_expression":
		if prop := right.ChildByFieldName("property"); prop != nil {
			return prop.Content()
		}
	}

	return ""
}

func (a *analyzer) variableDeclaration(n *jsast.Node) {
	for _, declarator := range n.Children {
		if declarator.Type != "variable_declarator" {
			continue
		}

		name := declarator.ChildByFieldName("name")
		if name == nil || name.Type != "identifier" {
			continue
		}

		value := declarator.ChildByFieldName("value")
		if value == nil {
			a.vars[name.Content()] = newVarState()

			continue
		}

		a.assignIdentifier(name.Content(), value)
	}
}

func (a *analyzer) exportStatement(n *jsast.Node) {
	text := strings.TrimSpace(n.Content())

	if strings.HasPrefix(text, "export type ") || strings.HasPrefix(text, "export type{") {
		return
	}

	a.hasExports = true

	if strings.HasPrefix(text, "export default") {
		a.exportDefault(n)

		return
	}

	for _, c := range n.Children {
		switch c.Type {
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if name := c.ChildByFieldName("name"); name != nil {
				a.props[name.Content()] = true
			}
		case "lexical_declaration", "variable_declaration":
			for _, declarator := range c.Children {
				if declarator.Type != "variable_declarator" {
					continue
				}

				if name := declarator.ChildByFieldName("name"); name != nil && name.Type == "identifier" {
					a.props[name.Content()] = true
				}
			}
		case "export_clause":
			a.exportClause(c)
		}
	}
}

func (a *analyzer) exportDefault(n *jsast.Node) {
	a.hasDefault = true

	if len(n.Children) == 0 {
		return
	}

	val := n.Children[len(n.Children)-1]

	switch val.Type {
	case "identifier":
		a.idents[val.Content()] = true
	case "function_declaration", "generator_function_declaration", "class_declaration":
		if name := val.ChildByFieldName("name"); name != nil {
			a.idents[name.Content()] = true
		}
	}
}

func (a *analyzer) exportClause(n *jsast.Node) {
	for _, spec := range n.Children {
		if spec.Type != "export_specifier" {
			continue
		}

		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}

		exported := name.Content()
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = alias.Content()
		}

		if exported == "default" {
			a.hasDefault = true
			a.idents[name.Content()] = true
		} else {
			a.props[exported] = true
		}
	}
}

// finalize merges the CommonJS module.exports target (ident or object
// literal) and its accreted props, and the default-promotion candidates
// from ES `export default`, into the final result sets.
func (a *analyzer) finalize() {
	for k := range a.accumulatedProps {
		a.props[k] = true
	}

	for k := range a.moduleExportsProps {
		a.props[k] = true
	}

	if a.moduleExportsIdent != "" {
		a.idents[a.moduleExportsIdent] = true

		if vs, ok := a.vars[a.moduleExportsIdent]; ok {
			for k := range vs.props {
				a.props[k] = true
			}
		}

		if len(a.props) == 0 {
			a.hasDefault = true
		}
	}
}

func (a *analyzer) result() Result {
	return Result{
		Idents:     sortedKeys(a.idents),
		Defaults:   nil,
		Props:      sortedKeys(a.props),
		HasDefault: a.hasDefault,
		HasExports: a.hasExports,
	}
}

// objectLiteralKeys collects the static keys of an object-literal node:
// `{a: 1, b() {}, ...c}` yields ["a", "b"] (spread keys are unknowable
// statically and dropped).
func objectLiteralKeys(obj *jsast.Node) []string {
	var keys []string

	for _, c := range obj.Children {
		switch c.Type {
		case "pair":
			if k := keyOf(c.ChildByFieldName("key")); k != "" {
				keys = append(keys, k)
			}
		case "method_definition":
			if name := c.ChildByFieldName("name"); name != nil {
				keys = append(keys, name.Content())
			}
		case "shorthand_property_identifier":
			keys = append(keys, c.Content())
		}
	}

	return keys
}

func keyOf(n *jsast.Node) string {
	if n == nil {
		return ""
	}

	switch n.Type {
	case "property_identifier", "number":
		return n.Content()
	case "string":
		s := n.Content()
		if len(s) >= 2 {
			return s[1 : len(s)-1]
		}

		return s
	default:
		return ""
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}

	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
