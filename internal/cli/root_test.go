package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandHasGenerateAndBuildSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["generate"])
	assert.True(t, names["build"])
}

func TestGenerateCmdFlags(t *testing.T) {
	cmd := newGenerateCmd()
	assert.NotNil(t, cmd.Flags().Lookup("project-root"))
	assert.NotNil(t, cmd.Flags().Lookup("search-path"))
	assert.NotNil(t, cmd.Flags().Lookup("distro"))
	assert.NotNil(t, cmd.Flags().Lookup("output-dir"))
	assert.NotNil(t, cmd.Flags().ShorthandLookup("v"))
	assert.NotNil(t, cmd.Flags().Lookup("workspace"))
}

func TestBuildCmdFlags(t *testing.T) {
	cmd := newBuildCmd()
	assert.NotNil(t, cmd.Flags().Lookup("project-root"))
	assert.Equal(t, "build", cmd.Name())
}
