package registry

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/depfix/depfix/pkg/sandbox"
)

// defaultMemCacheSize bounds the in-process Registry memoization cache;
// a depfix invocation typically touches one project root, but an MCP/LSP
// server process may serve several over its lifetime.
const defaultMemCacheSize = 32

// Manager is the process-lifetime Registry memoizer described by
// spec.md §3's Lifecycle note and §5's Memoization/Cancellation rules:
// Populate(dir) is idempotent and concurrent callers share one in-flight
// build via singleflight, with the resolved Registry cached afterward.
type Manager struct {
	group          singleflight.Group
	cache          *lru.Cache[string, *Registry]
	nodeBinary     string
	sandboxTimeout time.Duration
	metrics        BuildMetricsRecorder

	versionOnce sync.Once
	version     string
}

// NewManager constructs a Manager. nodeBinary and sandboxTimeout
// configure the per-build sandbox runner used to probe external
// packages (anchored at each build's own project root); memCacheSize
// <= 0 falls back to defaultMemCacheSize.
func NewManager(nodeBinary string, sandboxTimeout time.Duration, memCacheSize int, metrics BuildMetricsRecorder) (*Manager, error) {
	if memCacheSize <= 0 {
		memCacheSize = defaultMemCacheSize
	}

	cache, err := lru.New[string, *Registry](memCacheSize)
	if err != nil {
		return nil, fmt.Errorf("registry: new mem cache: %w", err)
	}

	return &Manager{
		cache:          cache,
		nodeBinary:     nodeBinary,
		sandboxTimeout: sandboxTimeout,
		metrics:        metrics,
	}, nil
}

// Populate implements C7's public `populate(dir)`: idempotent, memoized
// per dir, with concurrent callers sharing one in-flight build.
func (m *Manager) Populate(ctx context.Context, dir string) (*Registry, error) {
	return m.populate(ctx, dir, nil)
}

// PopulateWithOverride implements spec.md §6's `run` entrypoint override
// parameter: a caller-supplied partial manifest merged over the
// project's declared dependencies. An override changes the build's
// meaning for this one call, so it bypasses the dir-keyed memoization
// cache entirely rather than polluting it with an override-specific
// result under the plain dir key.
func (m *Manager) PopulateWithOverride(ctx context.Context, dir string, depsOverride map[string]string) (*Registry, error) {
	if len(depsOverride) == 0 {
		return m.populate(ctx, dir, nil)
	}

	opts := m.buildOptions(dir)
	opts.DepsOverride = depsOverride

	reg, _, err := build(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func (m *Manager) populate(ctx context.Context, dir string, depsOverride map[string]string) (*Registry, error) {
	if reg, ok := m.cache.Get(dir); ok {
		return reg, nil
	}

	result, err, _ := m.group.Do(dir, func() (any, error) {
		if reg, ok := m.cache.Get(dir); ok {
			return reg, nil
		}

		opts := m.buildOptions(dir)
		opts.DepsOverride = depsOverride

		reg, entries, buildErr := build(ctx, dir, opts)
		if buildErr != nil {
			return nil, buildErr
		}

		root, _, _ := locateManifest(dir)
		if saveErr := saveCache(root, entries); saveErr != nil {
			return nil, saveErr
		}

		m.cache.Add(dir, reg)

		return reg, nil
	})
	if err != nil {
		return nil, err
	}

	reg, _ := result.(*Registry)

	return reg, nil
}

// Ready reports whether the configured Node binary can actually run,
// the precondition every Populate call's export-probe sandbox depends
// on. It's cheap enough to call from an HTTP readiness check on every
// request.
func (m *Manager) Ready(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, m.nodeBinary, "--version")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("registry: node binary %q not runnable: %w", m.nodeBinary, err)
	}

	return nil
}

func (m *Manager) buildOptions(dir string) Options {
	return Options{
		RuntimeVersion: m.runtimeVersion(),
		Sandbox:        sandbox.NewRunner(m.nodeBinary, dir, m.sandboxTimeout),
		Metrics:        m.metrics,
	}
}

// runtimeVersion fingerprints the builtin module set's version by
// shelling out to the configured Node binary once per Manager lifetime
// — spec.md §4.1 step 3a. Failure (missing binary) falls back to a
// constant placeholder: builtins then simply always miss the on-disk
// cache and get re-derived, which is harmless since id-derivation and
// the builtin list are both fixed.
func (m *Manager) runtimeVersion() string {
	m.versionOnce.Do(func() {
		out, err := exec.Command(m.nodeBinary, "--version").Output()
		if err != nil {
			m.version = "unknown"

			return
		}

		m.version = strings.TrimSpace(string(out))
	})

	return m.version
}
