package jsast

import (
	"context"
	"testing"
)

func throughNames(scope *Scope) map[string]bool {
	names := make(map[string]bool)
	for _, ref := range scope.Through {
		names[ref.Name] = true
	}

	return names
}

func TestComputeGlobalScope_AliasedImportSpecifierRemoteNameNotThrough(t *testing.T) {
	t.Parallel()

	p := NewParser()

	code := `import { a as b } from "mod"; b();`

	tree, err := p.Parse(context.Background(), "index.js", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	scope := ComputeGlobalScope(tree.Root)
	through := throughNames(scope)

	if through["a"] {
		t.Error(`"a" (the pre-rename remote name) must not appear in Through`)
	}

	if through["b"] {
		t.Error(`"b" is bound by the import and used locally; it must not appear in Through`)
	}
}

func TestComputeGlobalScope_UnaliasedImportSpecifierIsBinding(t *testing.T) {
	t.Parallel()

	p := NewParser()

	code := `import { a } from "mod"; a();`

	tree, err := p.Parse(context.Background(), "index.js", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	scope := ComputeGlobalScope(tree.Root)
	through := throughNames(scope)

	if through["a"] {
		t.Error(`"a" is bound by the import; it must not appear in Through`)
	}
}

func TestComputeGlobalScope_RequireBoundNameNotThrough(t *testing.T) {
	t.Parallel()

	p := NewParser()

	code := `const path = require("path"); path.join("a", "b");`

	tree, err := p.Parse(context.Background(), "index.js", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	scope := ComputeGlobalScope(tree.Root)
	through := throughNames(scope)

	if through["path"] {
		t.Error(`"path" is bound by the require() declarator; it must not appear in Through`)
	}
}

func TestComputeGlobalScope_UndeclaredNameIsThrough(t *testing.T) {
	t.Parallel()

	p := NewParser()

	code := `mystery.doIt();`

	tree, err := p.Parse(context.Background(), "index.js", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	scope := ComputeGlobalScope(tree.Root)
	through := throughNames(scope)

	if !through["mystery"] {
		t.Error(`"mystery" is never declared; it must appear in Through`)
	}
}
