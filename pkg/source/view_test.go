package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depfix/depfix/pkg/source"
)

func TestNewIsOneIndexedWithSentinel(t *testing.T) {
	t.Parallel()

	v := source.New("foo();\nbar();\n")

	assert.Equal(t, 2, v.LineCount())
	assert.Equal(t, "", v.Lines()[0])
	assert.Equal(t, "foo();", v.GetLineText(1))
	assert.Equal(t, "bar();", v.GetLineText(2))
}

func TestGetLineTextOutOfRange(t *testing.T) {
	t.Parallel()

	v := source.New("foo();\n")

	assert.Equal(t, "", v.GetLineText(0))
	assert.Equal(t, "", v.GetLineText(5))
}

func TestEndsLine(t *testing.T) {
	t.Parallel()

	v := source.New("const x = 1;\n")

	assert.True(t, v.EndsLine(source.Point{Line: 1, Column: len("const x = 1;")}))
	assert.False(t, v.EndsLine(source.Point{Line: 1, Column: 3}))
}

func TestNoTrailingNewlineStillCountsLastLine(t *testing.T) {
	t.Parallel()

	v := source.New("foo();")

	assert.Equal(t, 1, v.LineCount())
	assert.Equal(t, "foo();", v.GetLineText(1))
}
