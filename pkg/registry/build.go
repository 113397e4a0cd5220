package registry

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/depfix/depfix/pkg/exports"
	"github.com/depfix/depfix/pkg/jsast"
	"github.com/depfix/depfix/pkg/sandbox"
)

// tracer names one span per project file scanned for static exports — a
// per-file hot path a filtering TracerProvider may want to suppress on a
// large project build.
var tracer = otel.Tracer("depfix.registry")

// skippedDirs are never descended into while walking a project root,
// per spec.md §4.1 step 3c.
var skippedDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
}

// Options configures a single build, threading through the runtime
// facts (builtin module version, sandbox runner) spec.md §4.1 assumes
// are supplied by the host environment.
type Options struct {
	RuntimeVersion string
	Sandbox        *sandbox.Runner
	Metrics        BuildMetricsRecorder

	// DepsOverride merges over (taking precedence on key conflict) the
	// manifest-declared dependencies, implementing spec.md §6's `run`
	// entrypoint override parameter.
	DepsOverride map[string]string
}

// BuildMetricsRecorder is the subset of observability.RegistryMetrics
// the build loop needs, kept as an interface so this package never
// imports internal/observability directly.
type BuildMetricsRecorder interface {
	RecordSandboxProbe(ctx context.Context, timedOut bool)
}

// build runs the full C7 construction algorithm for dir (spec.md §4.1
// steps 1-6) and returns the resulting Registry plus the merged entries
// to persist.
func build(ctx context.Context, dir string, opts Options) (*Registry, map[string]*RegistryEntry, error) {
	root, declaredDeps, err := locateManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	if len(opts.DepsOverride) > 0 {
		declaredDeps = merge(declaredDeps, opts.DepsOverride)
	}

	cached := loadCache(root)
	merged := make(map[string]*RegistryEntry)

	var ordered []sourceEntry

	for _, name := range builtinModules {
		entry := resolveEntry(cached, merged, name, opts.RuntimeVersion, func() *RegistryEntry {
			return fillExternal(ctx, name, opts.RuntimeVersion, opts)
		})
		ordered = append(ordered, sourceEntry{id: name, priority: PriorityBuiltin, entry: entry})
	}

	for name, version := range declaredDeps {
		entry := resolveEntry(cached, merged, name, version, func() *RegistryEntry {
			return fillExternal(ctx, name, version, opts)
		})
		ordered = append(ordered, sourceEntry{id: name, priority: PriorityDep, entry: entry})
	}

	if root != "" {
		files, walkErr := projectFiles(root)
		if walkErr != nil {
			return nil, nil, walkErr
		}

		for _, f := range files {
			version := fileVersion(f)
			entry := resolveEntry(cached, merged, f, version, func() *RegistryEntry {
				return fillFile(ctx, f, version)
			})
			ordered = append(ordered, sourceEntry{id: f, priority: PriorityFile, entry: entry})
		}
	}

	return &Registry{deps: computeDeps(ordered)}, merged, nil
}

// resolveEntry reuses the cached entry for id when its version matches,
// otherwise allocates and fills a fresh one — spec.md §4.1 step 3's
// cache-or-rescan rule. The freshly resolved entry is recorded into
// merged so the caller can persist exactly the set this build produced.
func resolveEntry(
	cached map[string]*RegistryEntry,
	merged map[string]*RegistryEntry,
	id, version string,
	fill func() *RegistryEntry,
) *RegistryEntry {
	if existing, ok := cached[id]; ok && existing.Version == version {
		merged[id] = existing

		return existing
	}

	entry := fill()
	merged[id] = entry

	return entry
}

// fillExternal derives idents from id and, when a sandbox runner is
// configured, probes the package's runtime exports inside it — spec.md
// §4.1 step 4's "external packages" branch, used for builtins and
// declared dependencies alike.
func fillExternal(ctx context.Context, id, version string, opts Options) *RegistryEntry {
	entry := NewEntry(version)

	for _, n := range identsFromID(id, false) {
		entry.Idents[n] = true
	}

	if opts.Sandbox == nil {
		return entry
	}

	result := opts.Sandbox.Probe(ctx, id)

	if opts.Metrics != nil {
		opts.Metrics.RecordSandboxProbe(ctx, false)
	}

	for _, p := range result.Props {
		entry.Props[p] = true
	}

	if result.HasDefault {
		promoteAll(entry)
	}

	return entry
}

// promoteAll moves every ident into defaults, used when the sandbox
// probe reports hasDefault but contributes no specific default name of
// its own — the module's whole value becomes the default binding.
func promoteAll(entry *RegistryEntry) {
	for name := range entry.Idents {
		entry.Defaults[name] = true
	}

	entry.Idents = make(map[string]bool)
}

// fillFile derives idents from id and statically analyzes the file via
// the export analyzer — spec.md §4.1 step 4's "project files" branch. A
// parse failure drops the file's exports silently; the id-derived
// idents are kept regardless, per the error table in spec.md §7.
func fillFile(ctx context.Context, id, version string) *RegistryEntry {
	ctx, span := tracer.Start(ctx, "depfix.registry.scan_file",
		trace.WithAttributes(attribute.String("file", id)))
	defer span.End()

	entry := NewEntry(version)

	for _, n := range identsFromID(id, true) {
		entry.Idents[n] = true
	}

	content, err := os.ReadFile(id)
	if err != nil {
		return entry
	}

	tree, err := jsast.NewParser().Parse(ctx, id, content)
	if err != nil {
		return entry
	}

	result := exports.Analyze(tree)

	for _, n := range result.Idents {
		entry.Idents[n] = true
	}

	for _, n := range result.Props {
		entry.Props[n] = true
	}

	if result.HasDefault {
		promoteAll(entry)
	}

	return entry
}

// projectFiles walks root collecting supported source files, skipping
// dotfiles/dot-directories and node_modules/bower_components — spec.md
// §4.1 step 3c.
func projectFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && (skippedDirs[name] || isDotted(name)) {
				return filepath.SkipDir
			}

			return nil
		}

		if isDotted(name) {
			return nil
		}

		if jsast.IsSupported(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func isDotted(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// fileVersion returns a file's mtime in integer milliseconds, the
// "version" string project files are keyed by per spec.md §4.1 step 3.
func fileVersion(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return strconv.FormatInt(info.ModTime().UnixMilli(), 10)
}
