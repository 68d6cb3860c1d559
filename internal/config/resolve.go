package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the plotline.toml config file.
	SourceFile ConfigSource = "file"
	// SourceDotEnv indicates the value came from a .env file.
	SourceDotEnv ConfigSource = "dotenv"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// Environment variables read during resolution.
const (
	EnvProjectName     = "PLOTLINE_PROJECT_NAME"
	EnvStorePath       = "PLOTLINE_STORE_PATH"
	EnvStoreBackend    = "PLOTLINE_STORE_BACKEND"
	EnvTimezone        = "PLOTLINE_TIMEZONE"
	EnvDefaultDuration = "PLOTLINE_DEFAULT_DURATION"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "store.path"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration. A nil
// pointer means "not set".
type CLIOverrides struct {
	ProjectName  *string
	StorePath    *string
	StoreBackend *string
	Timezone     *string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// envSource pairs a lookup with the source it reports.
type envSource struct {
	lookup EnvFunc
	source ConfigSource
}

// DotEnvVars reads the .env file at path. A missing file yields an empty map.
func DotEnvVars(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return vars, nil
}

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > .env file > config file > defaults.
//
// dotenv may be nil. When store.path is still empty after every layer it is
// derived from the resolved backend.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, dotenv map[string]string, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	// Layer 1: defaults.
	resolveFromDefaults(rc, defaults)

	// Layer 2: config file (non-zero values override).
	if fileConfig != nil {
		resolveFromFile(rc, fileConfig)
	}

	// Layers 3 and 4: .env then the process environment.
	dotenvFn := func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	}
	for _, es := range []envSource{{dotenvFn, SourceDotEnv}, {envFn, SourceEnv}} {
		resolveFromEnv(rc, es)
	}

	// Layer 5: CLI flags.
	resolveFromCLI(rc, overrides)

	if rc.Config.Store.Path == "" {
		rc.Config.Store.Path = DefaultStorePath(rc.Config.Store.Backend)
		rc.Sources["store.path"] = SourceDefault
	}

	return rc
}

// --- Layer 1: Defaults ---

func resolveFromDefaults(rc *ResolvedConfig, d *Config) {
	c := rc.Config

	setString(&c.Project.Name, d.Project.Name, "project.name", SourceDefault, rc.Sources)
	setString(&c.Store.Backend, d.Store.Backend, "store.backend", SourceDefault, rc.Sources)
	setString(&c.Store.Path, d.Store.Path, "store.path", SourceDefault, rc.Sources)
	c.Store.Import = copyStrings(d.Store.Import)
	rc.Sources["store.import"] = SourceDefault
	setString(&c.Schedule.Timezone, d.Schedule.Timezone, "schedule.timezone", SourceDefault, rc.Sources)
	setInt(&c.Schedule.DefaultDurationMinutes, d.Schedule.DefaultDurationMinutes, "schedule.default_duration_minutes", SourceDefault, rc.Sources)
	setInt(&c.Display.LaneWidth, d.Display.LaneWidth, "display.lane_width", SourceDefault, rc.Sources)
	setString(&c.Display.DateFormat, d.Display.DateFormat, "display.date_format", SourceDefault, rc.Sources)
}

// --- Layer 2: File ---

func resolveFromFile(rc *ResolvedConfig, f *Config) {
	c := rc.Config

	mergeString(&c.Project.Name, f.Project.Name, "project.name", SourceFile, rc.Sources)
	mergeString(&c.Store.Backend, f.Store.Backend, "store.backend", SourceFile, rc.Sources)
	mergeString(&c.Store.Path, f.Store.Path, "store.path", SourceFile, rc.Sources)
	if len(f.Store.Import) > 0 {
		c.Store.Import = copyStrings(f.Store.Import)
		rc.Sources["store.import"] = SourceFile
	}
	mergeString(&c.Schedule.Timezone, f.Schedule.Timezone, "schedule.timezone", SourceFile, rc.Sources)
	mergeInt(&c.Schedule.DefaultDurationMinutes, f.Schedule.DefaultDurationMinutes, "schedule.default_duration_minutes", SourceFile, rc.Sources)
	mergeInt(&c.Display.LaneWidth, f.Display.LaneWidth, "display.lane_width", SourceFile, rc.Sources)
	mergeString(&c.Display.DateFormat, f.Display.DateFormat, "display.date_format", SourceFile, rc.Sources)
}

// --- Layers 3 and 4: Environment ---

// Environment variable mapping:
//
//	PLOTLINE_PROJECT_NAME       -> project.name
//	PLOTLINE_STORE_PATH         -> store.path
//	PLOTLINE_STORE_BACKEND      -> store.backend
//	PLOTLINE_TIMEZONE           -> schedule.timezone
//	PLOTLINE_DEFAULT_DURATION   -> schedule.default_duration_minutes
func resolveFromEnv(rc *ResolvedConfig, es envSource) {
	c := rc.Config

	if val, ok := es.lookup(EnvProjectName); ok {
		c.Project.Name = val
		rc.Sources["project.name"] = es.source
	}
	if val, ok := es.lookup(EnvStorePath); ok {
		c.Store.Path = val
		rc.Sources["store.path"] = es.source
	}
	if val, ok := es.lookup(EnvStoreBackend); ok {
		c.Store.Backend = val
		rc.Sources["store.backend"] = es.source
	}
	if val, ok := es.lookup(EnvTimezone); ok {
		c.Schedule.Timezone = val
		rc.Sources["schedule.timezone"] = es.source
	}
	if val, ok := es.lookup(EnvDefaultDuration); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			logging.New("config").Warn("ignoring non-numeric duration",
				"var", EnvDefaultDuration, "value", val, "source", string(es.source))
		} else {
			c.Schedule.DefaultDurationMinutes = n
			rc.Sources["schedule.default_duration_minutes"] = es.source
		}
	}
}

// --- Layer 5: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	c := rc.Config

	if overrides.ProjectName != nil {
		c.Project.Name = *overrides.ProjectName
		rc.Sources["project.name"] = SourceCLI
	}
	if overrides.StorePath != nil {
		c.Store.Path = *overrides.StorePath
		rc.Sources["store.path"] = SourceCLI
	}
	if overrides.StoreBackend != nil {
		c.Store.Backend = *overrides.StoreBackend
		rc.Sources["store.backend"] = SourceCLI
	}
	if overrides.Timezone != nil {
		c.Schedule.Timezone = *overrides.Timezone
		rc.Sources["schedule.timezone"] = SourceCLI
	}
}

// --- Helpers ---

// setString unconditionally sets the target to the given value and records the source.
func setString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeString overwrites the target only if value is non-empty. An empty
// string in the file means "not set in file".
func mergeString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	if value != "" {
		*target = value
		sources[path] = source
	}
}

func setInt(target *int, value int, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeInt overwrites the target only if value is non-zero.
func mergeInt(target *int, value int, path string, source ConfigSource, sources map[string]ConfigSource) {
	if value != 0 {
		*target = value
		sources[path] = source
	}
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
