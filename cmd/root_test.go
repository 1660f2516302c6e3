package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"campaigns", "predict", "whatif", "snapshots", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "donorpulse", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestPredictCommand_Flags(t *testing.T) {
	flag := predictCmd.Flags().Lookup("campaign")
	require.NotNil(t, flag, "predict command should have --campaign flag")

	allFlag := predictCmd.Flags().Lookup("all")
	require.NotNil(t, allFlag, "predict command should have --all flag")
	assert.Equal(t, "false", allFlag.DefValue)

	saveFlag := predictCmd.Flags().Lookup("save")
	require.NotNil(t, saveFlag, "predict command should have --save flag")
}

func TestWhatifCommand_Flags(t *testing.T) {
	velocity := whatifCmd.Flags().Lookup("velocity")
	require.NotNil(t, velocity, "whatif command should have --velocity flag")
	assert.Equal(t, "1", velocity.DefValue)

	extend := whatifCmd.Flags().Lookup("extend")
	require.NotNil(t, extend, "whatif command should have --extend flag")
	assert.Equal(t, "0", extend.DefValue)
}

func TestSnapshotsCommand_Flags(t *testing.T) {
	limit := snapshotsCmd.Flags().Lookup("limit")
	require.NotNil(t, limit, "snapshots command should have --limit flag")
	assert.Equal(t, "30", limit.DefValue)

	prune := snapshotsCmd.Flags().Lookup("prune-before")
	require.NotNil(t, prune, "snapshots command should have --prune-before flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
