// Package fixer wires the parser, import extractor, export analyzer,
// dependency registry, identifier resolver, import composer, and source
// rewriter into the single `run(dir, code, override)` library entrypoint
// described by spec.md §6.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/depfix/depfix/internal/config"
	"github.com/depfix/depfix/pkg/compose"
	"github.com/depfix/depfix/pkg/exports"
	"github.com/depfix/depfix/pkg/imports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/registry"
	"github.com/depfix/depfix/pkg/resolver"
	"github.com/depfix/depfix/pkg/rewrite"
	"github.com/depfix/depfix/pkg/style"
	"github.com/depfix/depfix/pkg/textutil"
)

// ErrBinaryInput is returned by Run when code sniffs as binary rather
// than source text; a tree-sitter parse of arbitrary binary data is
// meaningless and can be slow, so Run rejects it up front.
var ErrBinaryInput = errors.New("fixer: input looks binary, refusing to rewrite")

// Override is the partial manifest override accepted by Run, merged over
// whatever the project's own package.json declares.
type Override struct {
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// Fixer holds the long-lived Registry manager (memoized per project
// root for the process lifetime) that every Run call consults, plus the
// configured style fallback used for files with no detectable precedent.
type Fixer struct {
	manager      *registry.Manager
	styleDefault style.Descriptor
}

// New constructs a Fixer from cfg's registry settings, using style.Default()
// as the style fallback.
func New(cfg config.RegistryConfig, metrics registry.BuildMetricsRecorder) (*Fixer, error) {
	return NewWithStyle(cfg, style.Default(), metrics)
}

// NewWithStyle constructs a Fixer from cfg's registry settings, using
// styleFallback (typically derived from config.StyleConfig) for files
// with no detectable style precedent.
func NewWithStyle(cfg config.RegistryConfig, styleFallback style.Descriptor, metrics registry.BuildMetricsRecorder) (*Fixer, error) {
	timeout := cfg.SandboxTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	nodeBinary := cfg.NodeBinary
	if nodeBinary == "" {
		nodeBinary = "node"
	}

	manager, err := registry.NewManager(nodeBinary, timeout, cfg.MemCacheSize, metrics)
	if err != nil {
		return nil, fmt.Errorf("fixer: new manager: %w", err)
	}

	return &Fixer{manager: manager, styleDefault: styleFallback}, nil
}

// StyleFromConfig maps config.StyleConfig onto a style.Descriptor, the
// fallback NewWithStyle uses for files with no detectable precedent.
func StyleFromConfig(cfg config.StyleConfig) style.Descriptor {
	return style.Descriptor{
		RequireKeyword: cfg.RequireKeyword,
		Kind:           cfg.Kind,
		Quote:          cfg.Quote,
		Semi:           cfg.Semi,
		Tab:            cfg.Tab,
		TrailingComma:  cfg.TrailingComma,
	}
}

// Run implements spec.md §6's `run(dir, code, override)`: parses code,
// extracts existing imports and the unresolved global scope, populates
// the project's dependency registry, resolves every unresolved
// identifier against it, composes the import block, and splices it in.
// Per spec.md §7, rewriting is all-or-nothing: any surfaced error
// returns no rewritten output.
func (f *Fixer) Run(ctx context.Context, dir, filename, code string, override *Override) (string, error) {
	raw := []byte(code)

	if textutil.IsBinary(raw) {
		return "", ErrBinaryInput
	}

	if textutil.CountLines(raw) == 0 {
		return code, nil // nothing to parse; spec's all-or-nothing rewrite has nothing to do.
	}

	tree, err := jsast.NewParser().Parse(ctx, filename, raw)
	if err != nil {
		return "", fmt.Errorf("fixer: parse: %w", err)
	}

	existing := imports.ExtractAll(tree)
	scope := jsast.ComputeGlobalScope(tree.Root)

	reg, err := f.populateRegistry(ctx, dir, override)
	if err != nil {
		return "", fmt.Errorf("fixer: populate registry: %w", err)
	}

	used := imports.UsedNames(tree, existing)

	libsToAdd := resolver.Resolve(scope, existing, used, reg)

	st := style.DetectWithFallback(code, f.styleDefault)

	block := compose.Compose(st, dir, libsToAdd)

	return rewrite.Rewrite(code, tree.Root, existing, block), nil
}

// populateRegistry consults override's combined dependency map (if any
// fields are set) rather than the plain manifest-derived one.
func (f *Fixer) populateRegistry(ctx context.Context, dir string, override *Override) (*registry.Registry, error) {
	if override == nil {
		return f.manager.Populate(ctx, dir)
	}

	merged := make(map[string]string, len(override.Dependencies)+len(override.DevDependencies))

	for k, v := range override.Dependencies {
		merged[k] = v
	}

	for k, v := range override.DevDependencies {
		merged[k] = v
	}

	return f.manager.PopulateWithOverride(ctx, dir, merged)
}

// Ready reports whether the fixer's sandbox dependency (the configured
// Node binary) is currently runnable — suitable as an
// observability.ReadyCheck for an HTTP readiness probe.
func (f *Fixer) Ready(ctx context.Context) error {
	return f.manager.Ready(ctx)
}

// AnalyzeExports exposes the export analyzer (C5) standalone, outside a
// Run call.
func AnalyzeExports(tree *jsast.Tree) exports.Result {
	return exports.Analyze(tree)
}
