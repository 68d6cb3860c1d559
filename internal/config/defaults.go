package config

// Store backends understood by the store package.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default store locations, relative to the project directory.
const (
	DefaultFileStorePath   = ".plotline/tasks.json"
	DefaultSQLiteStorePath = ".plotline/tasks.db"
)

// DefaultStorePath returns the default store location for backend.
func DefaultStorePath(backend string) string {
	if backend == BackendSQLite {
		return DefaultSQLiteStorePath
	}
	return DefaultFileStorePath
}

// NewDefaults returns a Config populated with all default values. Store.Path
// is left empty so that it can follow the resolved backend.
func NewDefaults() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
		},
		Schedule: ScheduleConfig{
			Timezone:               "Local",
			DefaultDurationMinutes: 60,
		},
		Display: DisplayConfig{
			LaneWidth:  48,
			DateFormat: "2006-01-02",
		},
	}
}
