package compose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/compose"
	"github.com/depfix/depfix/pkg/resolver"
	"github.com/depfix/depfix/pkg/style"
)

func TestComposeEmptyLibsToAddReturnsEmptyString(t *testing.T) {
	t.Parallel()

	out := compose.Compose(style.Default(), "/project", resolver.LibsToAdd{})

	assert.Empty(t, out)
}

func TestComposeRequireFormSingleIdent(t *testing.T) {
	t.Parallel()

	st := style.Default()
	libs := resolver.LibsToAdd{
		"bar": {Idents: []string{"bar"}},
	}

	out := compose.Compose(st, "/project", libs)

	assert.Equal(t, `const bar = require("bar");`, out)
}

func TestComposeRequireFormDefault(t *testing.T) {
	t.Parallel()

	st := style.Default()
	libs := resolver.LibsToAdd{
		"bar": {Defaults: []string{"bar"}},
	}

	out := compose.Compose(st, "/project", libs)

	assert.Equal(t, `const bar = require("bar").default;`, out)
}

func TestComposeMultilineFallback(t *testing.T) {
	t.Parallel()

	st := style.Descriptor{
		RequireKeyword: "require",
		Kind:           "const",
		Quote:          "\"",
		Semi:           ";",
		Tab:            "  ",
		TrailingComma:  ",",
	}

	libs := resolver.LibsToAdd{
		"mod": {Props: []string{"aaa", "bbb", "ccc", "dddddddddd", "eeeeeeeeee", "ffffffffff"}},
	}

	out := compose.Compose(st, "/project", libs)

	expected := "const {\n" +
		"  aaa,\n" +
		"  bbb,\n" +
		"  ccc,\n" +
		"  dddddddddd,\n" +
		"  eeeeeeeeee,\n" +
		"  ffffffffff,\n" +
		"} = require(\"mod\");"

	assert.Equal(t, expected, out)
}

func TestComposeSortsByBasenameThenExternalBeforeLocal(t *testing.T) {
	t.Parallel()

	st := style.Default()
	libs := resolver.LibsToAdd{
		"/project/src/zeta.js": {Idents: []string{"zeta"}},
		"alpha":                {Idents: []string{"alpha"}},
		"beta":                 {Idents: []string{"beta"}},
	}

	out := compose.Compose(st, "/project", libs)

	expected := `const alpha = require("alpha");
const beta = require("beta");

const zeta = require("./src/zeta.js");`

	assert.Equal(t, expected, out)
}

func TestComposeImportFormDefaultAndNamespace(t *testing.T) {
	t.Parallel()

	st := style.Descriptor{RequireKeyword: "import", Kind: "const", Quote: "\"", Semi: ";", Tab: "  "}
	libs := resolver.LibsToAdd{
		"bar": {Defaults: []string{"Bar"}, Idents: []string{"BarNS"}},
	}

	out := compose.Compose(st, "/project", libs)

	assert.Equal(t, `import Bar, * as BarNS from "bar";`, out)
}

func TestComposeImportFormWithProps(t *testing.T) {
	t.Parallel()

	st := style.Descriptor{RequireKeyword: "import", Kind: "const", Quote: "\"", Semi: ";", Tab: "  "}
	libs := resolver.LibsToAdd{
		"bar": {Defaults: []string{"Bar"}, Props: []string{"a", "b"}},
	}

	out := compose.Compose(st, "/project", libs)

	assert.Equal(t, `import Bar, { a, b } from "bar";`, out)
}
