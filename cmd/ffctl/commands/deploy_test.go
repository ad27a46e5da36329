package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	cmd := Deploy()

	require.NotNil(t, cmd)
	assert.Equal(t, "deploy", cmd.Use)
	assert.Equal(t, "Deploy or upgrade the control plane release", cmd.Short)
	assert.NotNil(t, cmd.RunE, "Deploy command should have RunE function")
}

func TestDeploy_Flags(t *testing.T) {
	cmd := Deploy()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"version", "v", ""},
		{"namespace", "n", "firefoundry-system"},
		{"release", "r", "ff-control-plane"},
		{"skip-crds", "", "false"},
		{"dry-run", "", "false"},
		{"debug", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag, "%s flag should exist", tt.name)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestDeploy_UnknownFlagRejected(t *testing.T) {
	cmd := Deploy()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--force"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestDeploy_HelpShortCircuits(t *testing.T) {
	cmd := Deploy()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "--skip-crds")
	assert.Contains(t, out.String(), "--dry-run")
}
