package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/depfix/depfix/internal/observability"
)

func setupRegistryMeter(t *testing.T) (*observability.RegistryMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	rm, err := observability.NewRegistryMetrics(meter)
	require.NoError(t, err)

	return rm, reader
}

func TestRegistryMetrics_RecordBuild(t *testing.T) {
	t.Parallel()
	rm, reader := setupRegistryMeter(t)
	ctx := context.Background()

	rm.RecordBuild(ctx, observability.RegistryBuildStats{
		Duration:     50 * time.Millisecond,
		CacheHit:     false,
		FilesScanned: 12,
	})

	collected := collectMetrics(t, reader)

	require.NotNil(t, findMetric(collected, "depfix.registry.builds.total"))
	require.NotNil(t, findMetric(collected, "depfix.registry.build.duration.seconds"))
	require.NotNil(t, findMetric(collected, "depfix.registry.cache.misses.total"))
	require.NotNil(t, findMetric(collected, "depfix.registry.files.scanned.total"))
}

func TestRegistryMetrics_RecordSandboxProbe(t *testing.T) {
	t.Parallel()
	rm, reader := setupRegistryMeter(t)
	ctx := context.Background()

	rm.RecordSandboxProbe(ctx, false)
	rm.RecordSandboxProbe(ctx, true)

	collected := collectMetrics(t, reader)

	require.NotNil(t, findMetric(collected, "depfix.sandbox.probes.total"))
	require.NotNil(t, findMetric(collected, "depfix.sandbox.timeouts.total"))
}

func TestRegistryMetrics_NilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var rm *observability.RegistryMetrics

	rm.RecordBuild(context.Background(), observability.RegistryBuildStats{})
	rm.RecordSandboxProbe(context.Background(), true)
}
