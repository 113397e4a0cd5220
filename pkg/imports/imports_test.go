package imports_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
)

func parse(t *testing.T, code string) *jsast.Tree {
	t.Helper()

	tree, err := jsast.NewParser().Parse(context.Background(), "file.js", []byte(code))
	require.NoError(t, err)

	return tree
}

func TestExtractRequireIdent(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const foo = require(\"bar\");\nfoo();\n")
	found := imports.ExtractAll(tree)

	require.Len(t, found, 1)
	assert.Equal(t, "bar", found[0].DepID)
	assert.Equal(t, []string{"foo"}, found[0].Idents)
	assert.Empty(t, found[0].Defaults)
	assert.Empty(t, found[0].Props)
}

func TestExtractRequireDefault(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const foo = require(\"bar\").default;\n")
	found := imports.ExtractAll(tree)

	require.Len(t, found, 1)
	assert.Equal(t, []string{"foo"}, found[0].Defaults)
}

func TestExtractRequireProps(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const { a, b } = require(\"bar\");\n")
	found := imports.ExtractAll(tree)

	require.Len(t, found, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, found[0].Props)
}

func TestExtractImportDefaultAndNamed(t *testing.T) {
	t.Parallel()

	tree := parse(t, "import Foo, { a, b as c } from \"bar\";\n")
	found := imports.ExtractAll(tree)

	require.Len(t, found, 1)
	assert.Equal(t, "bar", found[0].DepID)
	assert.Equal(t, []string{"Foo"}, found[0].Defaults)
	assert.ElementsMatch(t, []string{"a", "c"}, found[0].Props)
}

func TestExtractImportNamespace(t *testing.T) {
	t.Parallel()

	tree := parse(t, "import * as bar from \"bar\";\n")
	found := imports.ExtractAll(tree)

	require.Len(t, found, 1)
	assert.Equal(t, []string{"bar"}, found[0].Idents)
}

func TestExtractNoImports(t *testing.T) {
	t.Parallel()

	tree := parse(t, "function f() { return 1; }\n")
	found := imports.ExtractAll(tree)

	assert.Empty(t, found)
}

func TestUsedNamesMarksStillReferencedBinding(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const path = require(\"path\");\npath.join(\"a\", \"b\");\n")
	found := imports.ExtractAll(tree)

	used := imports.UsedNames(tree, found)

	assert.True(t, used["path"])
}

func TestUsedNamesOmitsBindingWithNoOtherOccurrence(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const path = require(\"path\");\n")
	found := imports.ExtractAll(tree)

	used := imports.UsedNames(tree, found)

	assert.False(t, used["path"])
}

func TestUsedNamesTracksEachPropIndependently(t *testing.T) {
	t.Parallel()

	tree := parse(t, "const { a, b } = require(\"bar\");\na();\n")
	found := imports.ExtractAll(tree)

	used := imports.UsedNames(tree, found)

	assert.True(t, used["a"])
	assert.False(t, used["b"])
}
