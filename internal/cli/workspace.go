package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/AbdelazizMoustafa10m/plotline/internal/config"
	"github.com/AbdelazizMoustafa10m/plotline/internal/hierarchy"
	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/schedule"
	"github.com/AbdelazizMoustafa10m/plotline/internal/store"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// nowFunc is the clock used by every command. Tests replace it.
var nowFunc = time.Now

// dotEnvFile is read from the working directory during config resolution.
const dotEnvFile = ".env"

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, .env, env, CLI flags). It returns the resolved config, the TOML
// metadata (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig() (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)

	cfgPath, err := config.Locate(".", flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("finding config file: %w", err)
	}
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg = fc
		meta = &md
	}

	dotenv, err := config.DotEnvVars(dotEnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", dotEnvFile, err)
	}

	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, dotenv, cliOverrides())
	resolved.Path = cfgPath

	return resolved, meta, nil
}

// cliOverrides maps the global flags onto config overrides.
func cliOverrides() *config.CLIOverrides {
	o := &config.CLIOverrides{}
	if flagStore != "" {
		o.StorePath = &flagStore
	}
	if flagBackend != "" {
		o.StoreBackend = &flagBackend
	}
	if flagTZ != "" {
		o.Timezone = &flagTZ
	}
	return o
}

// workspace bundles what a command needs once configuration is resolved: the
// config, the open store, the working location and the project root that
// relative paths are anchored to.
type workspace struct {
	cfg      *config.Config
	resolved *config.ResolvedConfig
	store    store.Store
	loc      *time.Location
	root     string

	// storePath is the store location anchored at root.
	storePath string
}

// openWorkspace resolves configuration, validates it, and opens the store.
// Callers must Close the workspace.
func openWorkspace() (*workspace, error) {
	resolved, meta, err := loadAndResolveConfig()
	if err != nil {
		return nil, err
	}
	cfg := resolved.Config

	result := config.Validate(cfg, meta)
	if result.HasErrors() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("invalid configuration: [%s] %s (run 'plotline config validate' for details)",
			first.Field, first.Message)
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	root := "."
	if resolved.Path != "" {
		root = filepath.Dir(resolved.Path)
	}
	storePath := cfg.Store.Path
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(root, storePath)
	}

	s, err := store.Open(cfg.Store.Backend, storePath, afero.NewOsFs())
	if err != nil {
		return nil, err
	}

	logging.New("cli").Debug("workspace opened",
		"config", resolved.Path, "backend", cfg.Store.Backend, "store", storePath, "tz", loc.String())

	return &workspace{cfg: cfg, resolved: resolved, store: s, loc: loc, root: root, storePath: storePath}, nil
}

// Close releases the store.
func (w *workspace) Close() error {
	return w.store.Close()
}

// tasks returns the stored tasks followed by any imported task files. Stored
// tasks win over imported tasks with the same id.
func (w *workspace) tasks(ctx context.Context) ([]task.Task, error) {
	stored, err := w.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if len(w.cfg.Store.Import) == 0 {
		return stored, nil
	}
	imported, err := store.Import(ctx, os.DirFS(w.root), w.cfg.Store.Import)
	if err != nil {
		return nil, err
	}
	return store.Merge(stored, imported), nil
}

// scheduleOptions returns resolver options for this workspace.
func (w *workspace) scheduleOptions(include func(task.Task) bool) schedule.Options {
	return schedule.Options{
		Now:             nowFunc(),
		Location:        w.loc,
		DefaultDuration: w.cfg.Schedule.DefaultDuration(),
		Include:         include,
	}
}

// hierarchyOptions returns hierarchy options for this workspace.
func (w *workspace) hierarchyOptions(include func(task.Task) bool) hierarchy.Options {
	return hierarchy.Options{
		Location: w.loc,
		Include:  include,
	}
}

// errAmbiguousID is returned by findTask when a prefix matches several tasks.
var errAmbiguousID = errors.New("ambiguous task id prefix")

// findTask returns the task whose id equals ref or, failing that, the only
// task whose id starts with ref. Short prefixes keep UUIDs usable on the
// command line.
func findTask(tasks []task.Task, ref string) (task.Task, error) {
	var match *task.Task
	for i := range tasks {
		if tasks[i].ID == ref {
			return tasks[i], nil
		}
	}
	for i := range tasks {
		if len(ref) > 0 && len(tasks[i].ID) >= len(ref) && tasks[i].ID[:len(ref)] == ref {
			if match != nil {
				return task.Task{}, fmt.Errorf("%w %q", errAmbiguousID, ref)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return task.Task{}, fmt.Errorf("task %q: %w", ref, store.ErrNotFound)
	}
	return *match, nil
}
