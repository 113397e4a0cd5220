package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depfix/depfix/cmd/depfix/commands"
)

func TestFixCommand_Exists(t *testing.T) {
	t.Parallel()

	var cfgFile string

	cmd := commands.NewFixCommand(&cfgFile)
	require.NotNil(t, cmd)
	assert.Equal(t, "fix [files...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestFixCommand_WriteFlag(t *testing.T) {
	t.Parallel()

	var cfgFile string

	cmd := commands.NewFixCommand(&cfgFile)
	flag := cmd.Flags().Lookup("write")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "w", flag.Shorthand)
}

func TestFixCommand_RequiresArgs(t *testing.T) {
	t.Parallel()

	var cfgFile string

	cmd := commands.NewFixCommand(&cfgFile)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
}
