package rewrite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/rewrite"
)

func parse(t *testing.T, code string) *jsast.Tree {
	t.Helper()

	tree, err := jsast.NewParser().Parse(context.Background(), "f.js", []byte(code))
	require.NoError(t, err)

	return tree
}

func TestRewriteDirectiveOwnLine(t *testing.T) {
	t.Parallel()

	code := "\"use strict\";\nfoo();\n"
	tree := parse(t, code)

	out := rewrite.Rewrite(code, tree.Root, nil, `const bar = require("bar");`)

	expected := "\"use strict\";\n\nconst bar = require(\"bar\");\n\nfoo();\n"
	assert.Equal(t, expected, out)
}

func TestRewritePrependsWhenNoDirectiveOrImports(t *testing.T) {
	t.Parallel()

	code := "foo();\n"
	tree := parse(t, code)

	out := rewrite.Rewrite(code, tree.Root, nil, `const bar = require("bar");`)

	expected := "const bar = require(\"bar\");\n\nfoo();\n"
	assert.Equal(t, expected, out)
}

func TestRewriteEmptyLibsAndNoImportsIsNoop(t *testing.T) {
	t.Parallel()

	code := "foo();\nbar();\n"
	tree := parse(t, code)

	out := rewrite.Rewrite(code, tree.Root, nil, "")

	assert.Equal(t, code, out)
}

func TestRewriteRemovesExistingImportAndTrailingBlank(t *testing.T) {
	t.Parallel()

	code := "const unused = require(\"unused\");\n\nfoo();\n"
	tree := parse(t, code)

	var node *jsast.Node

	tree.Root.Walk(func(n *jsast.Node) bool {
		if n.Type == "lexical_declaration" {
			node = n
		}

		return true
	})

	existing := []imports.Existing{{Node: node, DepID: "unused", Idents: []string{"unused"}}}

	out := rewrite.Rewrite(code, tree.Root, existing, "")

	assert.Equal(t, "foo();\n", out)
}

func TestRewriteReplacesExistingImportInPlace(t *testing.T) {
	t.Parallel()

	code := "const old = require(\"old\");\n\nfoo();\n"
	tree := parse(t, code)

	var node *jsast.Node

	tree.Root.Walk(func(n *jsast.Node) bool {
		if n.Type == "lexical_declaration" {
			node = n
		}

		return true
	})

	existing := []imports.Existing{{Node: node, DepID: "old", Idents: []string{"old"}}}

	out := rewrite.Rewrite(code, tree.Root, existing, `const bar = require("bar");`)

	expected := "const bar = require(\"bar\");\n\nfoo();\n"
	assert.Equal(t, expected, out)
}

func TestRewriteNormalizesTrailingNewlines(t *testing.T) {
	t.Parallel()

	code := "foo();\n\n\n"
	tree := parse(t, code)

	out := rewrite.Rewrite(code, tree.Root, nil, "")

	assert.Equal(t, "foo();\n", out)
}
