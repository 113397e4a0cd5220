// Package sandbox implements the runtime export probe (C6): it loads an
// installed external package inside a subprocess sandbox and introspects
// its exported property names and default presence, grounded on the
// teacher pack's plugin subprocess runner
// (albertocavalcante-sky/internal/plugins/runner_exec.go) rather than an
// embedded JS engine — see DESIGN.md.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer names one per-package probe span, letting an operator suppress
// this hot path (one span per external dependency, every Populate call)
// via a filtering TracerProvider without losing structural spans.
var tracer = otel.Tracer("depfix.sandbox")

// probeScript is evaluated by node -e with the package id as argv[1]. It
// never throws out of the subprocess: any load failure resolves to an
// empty result so the registry keeps the entry's id-derived idents only.
const probeScript = `
const id = process.argv[1];
let result = { props: [], hasDefault: false };
try {
  const mod = require(id);
  if (mod && typeof mod === "object") {
    result.props = Object.keys(mod);
    result.hasDefault = Object.prototype.hasOwnProperty.call(mod, "default");
  } else if (typeof mod === "function") {
    result.props = Object.keys(mod);
  }
} catch (e) {
  // swallowed: keep the empty result.
}
process.stdout.write(JSON.stringify(result));
`

// Result is C6's output: the package's own property names and whether
// it carries an ES-interop default.
type Result struct {
	Props      []string
	HasDefault bool
}

// Runner probes installed packages by shelling out to a Node.js binary.
// It never returns an error from package failures or timeouts: per
// spec.md §4.1/§5 both are swallowed, leaving Result zero-valued.
type Runner struct {
	NodeBinary string
	ProjectDir string
	Timeout    time.Duration
}

// NewRunner constructs a Runner. nodeBinary is typically "node" (resolved
// via PATH); projectDir anchors require() resolution against the
// package's own node_modules.
func NewRunner(nodeBinary, projectDir string, timeout time.Duration) *Runner {
	return &Runner{NodeBinary: nodeBinary, ProjectDir: projectDir, Timeout: timeout}
}

// Probe loads pkgID inside the sandbox and returns its exported shape.
// Any subprocess failure — missing binary, non-zero exit, malformed
// output, or timeout — yields a zero Result: the registry
// must keep building with id-derived idents only, never abort.
func (r *Runner) Probe(ctx context.Context, pkgID string) Result {
	ctx, span := tracer.Start(ctx, "depfix.sandbox.probe",
		trace.WithAttributes(attribute.String("package_id", pkgID)))
	defer span.End()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.NodeBinary, "-e", probeScript, "--", pkgID)
	cmd.Dir = r.ProjectDir

	var stdout bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = nil

	err := cmd.Run()

	if ctx.Err() != nil {
		return Result{}
	}

	if err != nil {
		return Result{}
	}

	var parsed struct {
		Props      []string `json:"props"`
		HasDefault bool     `json:"hasDefault"`
	}

	if jsonErr := json.Unmarshal(stdout.Bytes(), &parsed); jsonErr != nil {
		return Result{}
	}

	return Result{Props: parsed.Props, HasDefault: parsed.HasDefault}
}
