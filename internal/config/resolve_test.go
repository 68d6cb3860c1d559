package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringPtr returns a pointer to the given string value.
func stringPtr(s string) *string {
	return &s
}

// mockEnvFunc creates an EnvFunc backed by a map.
func mockEnvFunc(vars map[string]string) EnvFunc {
	return func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
}

// noEnv is an EnvFunc that returns no environment variables.
func noEnv(_ string) (string, bool) {
	return "", false
}

// --- Resolve with only defaults ---

func TestResolve_OnlyDefaults(t *testing.T) {
	t.Parallel()
	rc := Resolve(NewDefaults(), nil, noEnv, nil, nil)

	require.NotNil(t, rc)
	c := rc.Config
	assert.Empty(t, c.Project.Name)
	assert.Equal(t, BackendFile, c.Store.Backend)
	assert.Equal(t, DefaultFileStorePath, c.Store.Path)
	assert.Empty(t, c.Store.Import)
	assert.Equal(t, "Local", c.Schedule.Timezone)
	assert.Equal(t, 60, c.Schedule.DefaultDurationMinutes)
	assert.Equal(t, 48, c.Display.LaneWidth)
	assert.Equal(t, "2006-01-02", c.Display.DateFormat)

	for key, src := range rc.Sources {
		assert.Equal(t, SourceDefault, src, "source of %s", key)
	}
}

func TestResolve_NilInputs(t *testing.T) {
	t.Parallel()
	rc := Resolve(nil, nil, nil, nil, nil)
	require.NotNil(t, rc.Config)
	assert.Equal(t, DefaultFileStorePath, rc.Config.Store.Path)
}

// --- File layer ---

func TestResolve_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	file := &Config{
		Project:  ProjectConfig{Name: "home"},
		Store:    StoreConfig{Import: []string{"tasks/*.json"}},
		Schedule: ScheduleConfig{DefaultDurationMinutes: 25},
	}

	rc := Resolve(NewDefaults(), file, noEnv, nil, nil)

	assert.Equal(t, "home", rc.Config.Project.Name)
	assert.Equal(t, SourceFile, rc.Sources["project.name"])
	assert.Equal(t, []string{"tasks/*.json"}, rc.Config.Store.Import)
	assert.Equal(t, SourceFile, rc.Sources["store.import"])
	assert.Equal(t, 25, rc.Config.Schedule.DefaultDurationMinutes)
	assert.Equal(t, SourceFile, rc.Sources["schedule.default_duration_minutes"])

	// Zero values in the file do not override.
	assert.Equal(t, 48, rc.Config.Display.LaneWidth)
	assert.Equal(t, SourceDefault, rc.Sources["display.lane_width"])
}

func TestResolve_ImportSliceIsCopied(t *testing.T) {
	t.Parallel()
	file := &Config{Store: StoreConfig{Import: []string{"a/*.json"}}}

	rc := Resolve(NewDefaults(), file, noEnv, nil, nil)
	file.Store.Import[0] = "mutated"

	assert.Equal(t, []string{"a/*.json"}, rc.Config.Store.Import)
}

func TestResolve_StorePathFollowsBackend(t *testing.T) {
	t.Parallel()
	file := &Config{Store: StoreConfig{Backend: BackendSQLite}}

	rc := Resolve(NewDefaults(), file, noEnv, nil, nil)
	assert.Equal(t, DefaultSQLiteStorePath, rc.Config.Store.Path)
	assert.Equal(t, SourceDefault, rc.Sources["store.path"])
}

// --- Environment layers ---

func TestResolve_EnvOverridesFile(t *testing.T) {
	t.Parallel()
	file := &Config{Store: StoreConfig{Path: "from-file.json"}, Schedule: ScheduleConfig{Timezone: "UTC"}}
	env := mockEnvFunc(map[string]string{
		EnvStorePath:       "from-env.json",
		EnvTimezone:        "Asia/Tokyo",
		EnvDefaultDuration: "15",
		EnvStoreBackend:    "file",
		EnvProjectName:     "env-project",
	})

	rc := Resolve(NewDefaults(), file, env, nil, nil)

	assert.Equal(t, "from-env.json", rc.Config.Store.Path)
	assert.Equal(t, "Asia/Tokyo", rc.Config.Schedule.Timezone)
	assert.Equal(t, 15, rc.Config.Schedule.DefaultDurationMinutes)
	assert.Equal(t, "env-project", rc.Config.Project.Name)
	assert.Equal(t, SourceEnv, rc.Sources["store.path"])
	assert.Equal(t, SourceEnv, rc.Sources["schedule.timezone"])
	assert.Equal(t, SourceEnv, rc.Sources["schedule.default_duration_minutes"])
	assert.Equal(t, SourceEnv, rc.Sources["store.backend"])
}

func TestResolve_NonNumericDurationIgnored(t *testing.T) {
	t.Parallel()
	env := mockEnvFunc(map[string]string{EnvDefaultDuration: "an hour"})

	rc := Resolve(NewDefaults(), nil, env, nil, nil)
	assert.Equal(t, 60, rc.Config.Schedule.DefaultDurationMinutes)
	assert.Equal(t, SourceDefault, rc.Sources["schedule.default_duration_minutes"])
}

func TestResolve_DotEnvBetweenFileAndEnv(t *testing.T) {
	t.Parallel()
	file := &Config{Store: StoreConfig{Path: "file.json"}, Schedule: ScheduleConfig{Timezone: "UTC"}}
	dotenv := map[string]string{
		EnvStorePath: "dotenv.json",
		EnvTimezone:  "Europe/Paris",
	}
	env := mockEnvFunc(map[string]string{EnvTimezone: "America/New_York"})

	rc := Resolve(NewDefaults(), file, env, dotenv, nil)

	assert.Equal(t, "dotenv.json", rc.Config.Store.Path)
	assert.Equal(t, SourceDotEnv, rc.Sources["store.path"])
	assert.Equal(t, "America/New_York", rc.Config.Schedule.Timezone)
	assert.Equal(t, SourceEnv, rc.Sources["schedule.timezone"])
}

func TestDotEnvVars(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	vars, err := DotEnvVars(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Empty(t, vars)

	path := writeFile(t, dir, ".env", "# comment\nPLOTLINE_STORE_PATH=custom.json\nPLOTLINE_TIMEZONE=\"UTC\"\n")
	vars, err = DotEnvVars(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.json", vars[EnvStorePath])
	assert.Equal(t, "UTC", vars[EnvTimezone])
}

// --- CLI layer ---

func TestResolve_CLIOverridesEverything(t *testing.T) {
	t.Parallel()
	env := mockEnvFunc(map[string]string{EnvStorePath: "env.json", EnvStoreBackend: "file"})
	overrides := &CLIOverrides{
		StorePath:    stringPtr("cli.db"),
		StoreBackend: stringPtr("sqlite"),
		Timezone:     stringPtr("UTC"),
		ProjectName:  stringPtr("cli"),
	}

	rc := Resolve(NewDefaults(), nil, env, nil, overrides)

	assert.Equal(t, "cli.db", rc.Config.Store.Path)
	assert.Equal(t, "sqlite", rc.Config.Store.Backend)
	assert.Equal(t, "UTC", rc.Config.Schedule.Timezone)
	assert.Equal(t, "cli", rc.Config.Project.Name)
	for _, key := range []string{"store.path", "store.backend", "schedule.timezone", "project.name"} {
		assert.Equal(t, SourceCLI, rc.Sources[key], key)
	}
}

func TestResolve_CLIEmptyStringOverride(t *testing.T) {
	t.Parallel()
	file := &Config{Project: ProjectConfig{Name: "home"}}

	rc := Resolve(NewDefaults(), file, noEnv, nil, &CLIOverrides{ProjectName: stringPtr("")})
	assert.Empty(t, rc.Config.Project.Name)
	assert.Equal(t, SourceCLI, rc.Sources["project.name"])
}
