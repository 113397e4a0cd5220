package jsast

// Binding is a name declared within a scope.
type Binding struct {
	Name string
	Node *Node
}

// Reference is an occurrence of an identifier that was not satisfied by
// any binding visible from where it appears — the AST/scope contract's
// `.identifier.name` / `.identifier.parent` / `.writeExpr` shape from
// spec.md §6.
type Reference struct {
	Identifier *Node
	Name       string
	Parent     *Node
	WriteExpr  *Node
}

// Scope is the result of walking a file's scope chain: the global
// scope's bindings, and the list of references that escaped every scope
// (spec.md's `through`).
type Scope struct {
	Through []*Reference
	Set     map[string]*Binding
}

// scopeNode is an internal scope-chain link; Scope.Set only ever reflects
// the outermost (program) scopeNode.
type scopeNode struct {
	parent *scopeNode
	names  map[string]bool
}

func newScopeNode(parent *scopeNode) *scopeNode {
	return &scopeNode{parent: parent, names: make(map[string]bool)}
}

func (s *scopeNode) declare(name string) {
	if name != "" {
		s.names[name] = true
	}
}

func (s *scopeNode) resolves(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}

	return false
}

// functionLikeTypes are node types that introduce a new variable scope.
var functionLikeTypes = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
	"class_static_block":             true,
}

// ComputeGlobalScope walks root's full subtree, collecting the program
// scope's bindings and every reference that resolves against no scope in
// the chain — spec.md §6's `getGlobalScope()`.
func ComputeGlobalScope(root *Node) *Scope {
	global := &Scope{Set: make(map[string]*Binding)}
	program := newScopeNode(nil)

	collectBindings(root, program)

	for name := range program.names {
		global.Set[name] = &Binding{Name: name}
	}

	walkResolve(root, program, global)

	return global
}

// collectBindings registers every declaration reachable from n without
// crossing into a nested function scope: variable/lexical declarators,
// hoisted function/class names, import bindings, and catch parameters.
func collectBindings(n *Node, sc *scopeNode) {
	if n == nil {
		return
	}

	switch n.Type {
	case "variable_declarator":
		collectPatternBindings(n.ChildByFieldName("name"), sc)

		return
	case "function_declaration", "generator_function_declaration", "class_declaration":
		collectPatternBindings(n.ChildByFieldName("name"), sc)

		return
	case "import_specifier":
		if alias := n.ChildByFieldName("alias"); alias != nil {
			collectPatternBindings(alias, sc)
		} else {
			collectPatternBindings(n.ChildByFieldName("name"), sc)
		}

		return
	case "namespace_import":
		for _, c := range n.Children {
			if c.Type == "identifier" {
				sc.declare(c.Content())
			}
		}

		return
	case "import_clause":
		for _, c := range n.Children {
			if c.Type == "identifier" {
				sc.declare(c.Content())
			} else {
				collectBindings(c, sc)
			}
		}

		return
	case "catch_clause":
		param := n.ChildByFieldName("parameter")
		if param != nil {
			collectPatternBindings(param, sc)
		}

		for _, c := range n.Children {
			if c != param {
				collectBindings(c, sc)
			}
		}

		return
	}

	if functionLikeTypes[n.Type] {
		return // belongs to a nested scope, handled by walkResolve.
	}

	for _, c := range n.Children {
		collectBindings(c, sc)
	}
}

// collectPatternBindings declares every binding identifier within a
// destructuring pattern, skipping object keys (property_identifier) and
// default-value expressions on the right of an assignment_pattern.
func collectPatternBindings(n *Node, sc *scopeNode) {
	if n == nil {
		return
	}

	switch n.Type {
	case "identifier", "shorthand_property_identifier_pattern":
		sc.declare(n.Content())

		return
	case "assignment_pattern":
		collectPatternBindings(n.ChildByFieldName("left"), sc)

		return
	case "pair_pattern":
		collectPatternBindings(n.ChildByFieldName("value"), sc)

		return
	default:
		for _, c := range n.Children {
			collectPatternBindings(c, sc)
		}
	}
}

// collectParams declares a function-like node's own scope bindings: its
// parameters and, for named function expressions, its own name.
func collectParams(n *Node, sc *scopeNode) {
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range params.Children {
			collectPatternBindings(p, sc)
		}
	}

	if p := n.ChildByFieldName("parameter"); p != nil {
		collectPatternBindings(p, sc)
	}

	if name := n.ChildByFieldName("name"); name != nil {
		collectPatternBindings(name, sc)
	}
}

// walkResolve walks n under scope sc, recording any identifier reference
// that resolves against no scope in the chain into global.Through, and
// pushing a fresh child scope whenever it crosses a function boundary.
func walkResolve(n *Node, sc *scopeNode, global *Scope) {
	if n == nil {
		return
	}

	switch {
	case n.Type == "identifier":
		if isExcludedReference(n) {
			return
		}

		name := n.Content()
		if !sc.resolves(name) {
			global.Through = append(global.Through, &Reference{
				Identifier: n,
				Name:       name,
				Parent:     n.Parent,
				WriteExpr:  writeExprFor(n),
			})
		}

		return
	case functionLikeTypes[n.Type]:
		child := newScopeNode(sc)
		collectParams(n, child)

		for _, c := range n.Children {
			collectBindings(c, child)
		}

		for _, c := range n.Children {
			walkResolve(c, child, global)
		}

		return
	}

	for _, c := range n.Children {
		walkResolve(c, sc, global)
	}
}

// isExcludedReference implements spec.md §4.3(c)/(d): the operand of a
// typeof unary expression and the bare-identifier LHS of a plain
// assignment are not counted as references requiring resolution. It also
// excludes the pre-rename remote name of an aliased import specifier
// (`import { a as b }`'s "a"), which collectBindings never declares
// either — it isn't a binding or a code reference, just the external
// name being renamed.
func isExcludedReference(n *Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}

	switch parent.Type {
	case "unary_expression":
		arg := parent.ChildByFieldName("argument")
		operator := parent.ChildByFieldName("operator")

		return arg == n && operator != nil && operator.Content() == "typeof"
	case "assignment_expression":
		left := parent.ChildByFieldName("left")
		operator := parent.ChildByFieldName("operator")

		return left == n && operator != nil && operator.Content() == "="
	case "import_specifier":
		alias := parent.ChildByFieldName("alias")
		name := parent.ChildByFieldName("name")

		return alias != nil && name == n
	default:
		return false
	}
}

// writeExprFor returns the RHS of an assignment whose LHS is n, or nil.
func writeExprFor(n *Node) *Node {
	parent := n.Parent
	if parent == nil || parent.Type != "assignment_expression" {
		return nil
	}

	if parent.ChildByFieldName("left") != n {
		return nil
	}

	return parent.ChildByFieldName("right")
}
