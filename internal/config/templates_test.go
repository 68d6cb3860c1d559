package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfig_RoundTrips(t *testing.T) {
	t.Parallel()
	vars := DefaultTemplateVars(`my "quoted" plans`)

	data, err := RenderConfig(vars)
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), ConfigFileName, string(data))
	cfg, md, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded())
	assert.Equal(t, `my "quoted" plans`, cfg.Project.Name)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, DefaultFileStorePath, cfg.Store.Path)
	assert.Equal(t, 60, cfg.Schedule.DefaultDurationMinutes)

	rc := Resolve(NewDefaults(), cfg, noEnv, nil, nil)
	assert.False(t, Validate(rc.Config, &md).HasErrors())
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path, err := WriteConfig(dir, DefaultTemplateVars("first"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	_, err = WriteConfig(dir, DefaultTemplateVars("second"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigExists))

	_, err = WriteConfig(dir, DefaultTemplateVars("second"), true)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name = "second"`)
}
