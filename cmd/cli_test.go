package cmd

import (
	"testing"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments(t *testing.T) {
	testCases := []struct {
		name          string
		args          []string
		expectCommand string
		expectConfig  string
	}{
		{name: "empty", args: nil},
		{name: "command only", args: []string{"serve", "--stdio"}, expectCommand: "serve"},
		{name: "config before command", args: []string{"-f", "rc.yaml", "exec", "-n", "ping"}, expectCommand: "exec", expectConfig: "rc.yaml"},
		{name: "long config", args: []string{"--config", "rc.toml", "list-tools"}, expectCommand: "list-tools", expectConfig: "rc.toml"},
		{name: "config with equals", args: []string{"--config=rc.toml", "state", "-n", "x"}, expectCommand: "state", expectConfig: "rc.toml"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectCommand, firstCommand(tc.args))
			assert.Equal(t, tc.expectConfig, extractConfigPath(tc.args))
		})
	}
}

func TestReadOptions(t *testing.T) {
	input, err := readOptions(`{"count": 3, "name": "x", "ratio": 1.5}`, "")
	require.NoError(t, err)
	assert.Equal(t, command.Input{
		"count": command.Integer(3),
		"name":  command.String("x"),
		"ratio": command.Float(1.5),
	}, input)

	input, err = readOptions("", "")
	require.NoError(t, err)
	assert.Empty(t, input)

	_, err = readOptions(`[1]`, "")
	assert.Error(t, err)
}

func TestSamples(t *testing.T) {
	for _, name := range sampleNames() {
		data, err := samples.ReadFile(sampleFiles[name])
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	for name, ext := range map[string]string{"config": ".yaml", "config-toml": ".toml"} {
		data, err := samples.ReadFile(sampleFiles[name])
		require.NoError(t, err)
		cfg, err := config.Parse(data, ext)
		require.NoError(t, err, name)
		assert.Equal(t, 1995, cfg.Server.Port, name)
		assert.Equal(t, "./commands", cfg.Commands.RootDirectory, name)
		assert.Equal(t, "RestCommander", cfg.WWW.Configuration["title"], name)
	}
}
