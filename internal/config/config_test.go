package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeployOptions(t *testing.T) {
	t.Parallel()
	opts := NewDeployOptions()
	assert.Equal(t, DefaultNamespace, opts.Namespace)
	assert.Equal(t, DefaultReleaseName, opts.ReleaseName)
	assert.Empty(t, opts.Version)
	assert.False(t, opts.SkipCRDs)
	assert.False(t, opts.DryRun)
	assert.False(t, opts.Debug)
}

func TestTemplateDestination(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dest, err := TemplateDestination()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".firefoundry", "templates", "starter-bot.json"), dest)
}
