package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/sandbox"
)

func TestProbeMissingBinaryIsSwallowed(t *testing.T) {
	t.Parallel()

	r := sandbox.NewRunner("depfix-node-binary-does-not-exist", t.TempDir(), time.Second)
	result := r.Probe(context.Background(), "whatever")

	assert.Empty(t, result.Props)
	assert.False(t, result.HasDefault)
}

func TestProbeNonZeroExitIsSwallowed(t *testing.T) {
	t.Parallel()

	r := sandbox.NewRunner("false", t.TempDir(), time.Second)
	result := r.Probe(context.Background(), "whatever")

	assert.Empty(t, result.Props)
	assert.False(t, result.HasDefault)
}
