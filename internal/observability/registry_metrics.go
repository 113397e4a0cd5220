package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRegistryBuildsTotal  = "depfix.registry.builds.total"
	metricRegistryBuildSeconds = "depfix.registry.build.duration.seconds"
	metricRegistryCacheHits    = "depfix.registry.cache.hits.total"
	metricRegistryCacheMisses  = "depfix.registry.cache.misses.total"
	metricRegistryFilesScanned = "depfix.registry.files.scanned.total"
	metricSandboxProbesTotal   = "depfix.sandbox.probes.total"
	metricSandboxTimeoutsTotal = "depfix.sandbox.timeouts.total"

	attrSource = "source"
)

// RegistryMetrics holds OTel instruments for Dependency Registry (C7)
// builds and the sandboxed export probe (C6).
type RegistryMetrics struct {
	buildsTotal  metric.Int64Counter
	buildSeconds metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	filesScanned metric.Int64Counter
	probesTotal  metric.Int64Counter
	timeouts     metric.Int64Counter
}

// RegistryBuildStats summarizes a single populate(dir) run.
type RegistryBuildStats struct {
	Duration        time.Duration
	CacheHit        bool
	FilesScanned    int64
	SandboxCalls    int64
	SandboxTimeouts int64
}

// NewRegistryMetrics creates registry metric instruments from the given meter.
func NewRegistryMetrics(mt metric.Meter) (*RegistryMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &RegistryMetrics{
		buildsTotal:  b.counter(metricRegistryBuildsTotal, "Total Registry.populate invocations", "{build}"),
		buildSeconds: b.histogram(metricRegistryBuildSeconds, "Registry build duration in seconds", "s", durationBucketBoundaries...),
		cacheHits:    b.counter(metricRegistryCacheHits, "On-disk registry cache hits by source kind", "{hit}"),
		cacheMisses:  b.counter(metricRegistryCacheMisses, "On-disk registry cache misses by source kind", "{miss}"),
		filesScanned: b.counter(metricRegistryFilesScanned, "Project files scanned for static exports", "{file}"),
		probesTotal:  b.counter(metricSandboxProbesTotal, "Sandboxed package export probes", "{probe}"),
		timeouts:     b.counter(metricSandboxTimeoutsTotal, "Sandboxed package export probes that timed out", "{probe}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordBuild records statistics for a completed Registry.populate(dir) call.
// Safe to call on a nil receiver (no-op).
func (rm *RegistryMetrics) RecordBuild(ctx context.Context, stats RegistryBuildStats) {
	if rm == nil {
		return
	}

	rm.buildsTotal.Add(ctx, 1)
	rm.buildSeconds.Record(ctx, stats.Duration.Seconds())
	rm.filesScanned.Add(ctx, stats.FilesScanned)

	cacheAttrs := metric.WithAttributes(attribute.String(attrSource, "disk"))

	if stats.CacheHit {
		rm.cacheHits.Add(ctx, 1, cacheAttrs)
	} else {
		rm.cacheMisses.Add(ctx, 1, cacheAttrs)
	}
}

// RecordSandboxProbe records a single sandboxed export probe invocation.
// Safe to call on a nil receiver (no-op).
func (rm *RegistryMetrics) RecordSandboxProbe(ctx context.Context, timedOut bool) {
	if rm == nil {
		return
	}

	rm.probesTotal.Add(ctx, 1)

	if timedOut {
		rm.timeouts.Add(ctx, 1)
	}
}
