package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/registry"
)

func TestPriorityLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file", priorityLabel(registry.PriorityFile))
	assert.Equal(t, "dependency", priorityLabel(registry.PriorityDep))
	assert.Equal(t, "builtin", priorityLabel(registry.PriorityBuiltin))
	assert.Equal(t, "unknown", priorityLabel(registry.Priority(99)))
}

func TestRenderRegistryTable_EmptyRegistry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	renderRegistryTable(&buf, nil)
	assert.Contains(t, buf.String(), "0 identifiers")
}
