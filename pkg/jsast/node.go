package jsast

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/depfix/depfix/pkg/safeconv"
	"github.com/depfix/depfix/pkg/source"
)

// Node is a source-located AST node with an explicit Parent pointer.
// go-tree-sitter-bare's Node does not expose Parent(), so Tree builds this
// wrapper once via a single recursive-descent conversion pass, fulfilling
// the "AST nodes carry loc" half of spec.md §6's AST/scope contract.
type Node struct {
	Type      string
	Start     source.Point
	End       source.Point
	StartByte uint32
	EndByte   uint32
	IsNamed   bool
	Parent    *Node
	Children  []*Node // named children only.

	raw    sitter.Node
	source []byte
}

// Content returns the node's source text.
func (n *Node) Content() string {
	return string(n.source[n.StartByte:n.EndByte])
}

// ChildByFieldName returns the child registered under fieldName, or nil.
// Delegates to the wrapped tree-sitter node, which tracks field names
// internally; our own Node tree only mirrors named children.
func (n *Node) ChildByFieldName(fieldName string) *Node {
	field := n.raw.ChildByFieldName(fieldName)
	if field.IsNull() {
		return nil
	}

	for _, c := range n.Children {
		if c.StartByte == field.StartByte() && c.EndByte == field.EndByte() && c.Type == field.Type() {
			return c
		}
	}

	return buildNode(field, n, n.source)
}

// Walk calls visit for n and every descendant, depth-first pre-order.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil {
		return
	}

	if !visit(n) {
		return
	}

	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Tree is a parsed file: its root Node plus the raw source bytes.
type Tree struct {
	Root   *Node
	Source []byte
}

// buildNode recursively converts a tree-sitter node into our Node,
// wiring Parent back-pointers as it goes. Only named children are kept:
// C4/C5/C8 only ever need named nodes (identifiers, statements,
// expressions), never punctuation tokens.
func buildNode(raw sitter.Node, parent *Node, src []byte) *Node {
	n := &Node{
		Type:      raw.Type(),
		IsNamed:   raw.IsNamed(),
		StartByte: raw.StartByte(),
		EndByte:   raw.EndByte(),
		Parent:    parent,
		raw:       raw,
		source:    src,
	}

	startPt := raw.StartPoint()
	endPt := raw.EndPoint()

	n.Start = source.Point{Line: safeconv.MustUintToInt(uint(startPt.Row)) + 1, Column: safeconv.MustUintToInt(uint(startPt.Column))}
	n.End = source.Point{Line: safeconv.MustUintToInt(uint(endPt.Row)) + 1, Column: safeconv.MustUintToInt(uint(endPt.Column))}

	count := raw.NamedChildCount()
	n.Children = make([]*Node, 0, count)

	for i := uint32(0); i < count; i++ {
		child := raw.NamedChild(i)
		if child.IsNull() {
			continue
		}

		n.Children = append(n.Children, buildNode(child, n, src))
	}

	return n
}
