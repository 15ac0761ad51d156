package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/imagegate/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"validate", "registry", "stats", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "imagegate", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestValidateCommand_Flags(t *testing.T) {
	flag := validateCmd.Flags().Lookup("mime-type")
	require.NotNil(t, flag, "validate command should have --mime-type flag")

	conc := validateCmd.Flags().Lookup("concurrency")
	require.NotNil(t, conc, "validate command should have --concurrency flag")
	assert.Equal(t, "4", conc.DefValue)
}

func TestFanOutLimit(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero clamps to one", in: 0, want: 1},
		{name: "negative clamps to one", in: -3, want: 1},
		{name: "positive unchanged", in: 4, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fanOutLimit(tt.in))
		})
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRegistryCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range registryCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"show", "export", "check"} {
		assert.True(t, names[name], "expected registry subcommand %q not found", name)
	}
}

func TestInitPipeline(t *testing.T) {
	env := initPipeline(&config.Config{})

	require.NotNil(t, env.Registry)
	require.NotNil(t, env.Cache)
	require.NotNil(t, env.Declog)
	require.NotNil(t, env.Monitor)
	require.NotNil(t, env.Orchestrator)
	assert.Contains(t, env.Registry.SupportedNames(), "jpeg")
}
