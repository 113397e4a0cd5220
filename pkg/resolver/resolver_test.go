package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/registry"
	"github.com/depfix/depfix/pkg/resolver"
)

func ref(name string) *jsast.Reference {
	return &jsast.Reference{Name: name}
}

func TestResolveCarriesForwardUsedExistingImport(t *testing.T) {
	t.Parallel()

	scope := &jsast.Scope{}
	existing := []imports.Existing{{DepID: "path", Idents: []string{"path"}}}
	used := map[string]bool{"path": true}

	add := resolver.Resolve(scope, existing, used, nil)

	want := resolver.LibsToAdd{"path": {Idents: []string{"path"}}}
	assert.Equal(t, want, add)
}

func TestResolveDropsUnusedExistingImport(t *testing.T) {
	t.Parallel()

	scope := &jsast.Scope{}
	existing := []imports.Existing{{DepID: "path", Idents: []string{"path"}}}

	// used has no entry for "path": its only occurrence was the binding
	// statement itself, so it is not carried forward.
	add := resolver.Resolve(scope, existing, nil, nil)

	assert.Empty(t, add)
}

func TestResolveDropsOnlyUnusedNamesFromPartialImport(t *testing.T) {
	t.Parallel()

	scope := &jsast.Scope{}
	existing := []imports.Existing{{DepID: "mod", Props: []string{"a", "b"}}}
	used := map[string]bool{"a": true} // "b" is never referenced again.

	add := resolver.Resolve(scope, existing, used, nil)

	want := resolver.LibsToAdd{"mod": {Props: []string{"a"}}}
	assert.Equal(t, want, add)
}

func TestResolveSkipsNamesAlreadyCarriedForward(t *testing.T) {
	t.Parallel()

	// "foo" is both an existing, still-used import and, synthetically, an
	// unresolved Through reference; it must not be looked up a second
	// time or duplicated in the output.
	scope := &jsast.Scope{Through: []*jsast.Reference{ref("foo")}}
	existing := []imports.Existing{{DepID: "./foo", Idents: []string{"foo"}}}
	used := map[string]bool{"foo": true}

	add := resolver.Resolve(scope, existing, used, nil)

	want := resolver.LibsToAdd{"./foo": {Idents: []string{"foo"}}}
	assert.Equal(t, want, add)
}

func TestResolveDeduplicatesRepeatedNames(t *testing.T) {
	t.Parallel()

	scope := &jsast.Scope{Through: []*jsast.Reference{ref("foo"), ref("foo")}}

	add := resolver.Resolve(scope, nil, nil, nil)

	assert.Empty(t, add)
}

func TestResolveUnknownNameIsSkipped(t *testing.T) {
	t.Parallel()

	scope := &jsast.Scope{Through: []*jsast.Reference{ref("mystery")}}

	var reg *registry.Registry // nil registry: Search always returns nil.

	add := resolver.Resolve(scope, nil, nil, reg)

	assert.Empty(t, add)
}
