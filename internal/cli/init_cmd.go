package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/config"
	"github.com/AbdelazizMoustafa10m/plotline/internal/store"
)

// initFlagName and initFlagForce are the flag values for the init subcommand.
var (
	initFlagName  string
	initFlagForce bool
)

// initCmd implements "plotline init". It writes plotline.toml into the
// working directory without requiring an existing configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a plotline.toml in the current directory",
	Long: `Write a plotline.toml for a new planner. The global --backend, --store and
--tz flags choose the store backend, store path and timezone written to the
file. An existing plotline.toml is preserved unless --force is supplied.`,
	Example: `  plotline init
  plotline init --name home --backend sqlite
  plotline init --tz Europe/Berlin --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initFlagName, "name", "n", "", "Project name (defaults to current directory name)")
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite an existing plotline.toml")
	rootCmd.AddCommand(initCmd)
}

// runInit is the RunE handler for the init command.
func runInit(cmd *cobra.Command, _ []string) error {
	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	projectName := initFlagName
	if projectName == "" {
		projectName = filepath.Base(destDir)
	}
	if strings.ContainsAny(projectName, "\n\r") {
		return fmt.Errorf("invalid project name %q: must be a single line", projectName)
	}

	vars := config.DefaultTemplateVars(projectName)
	if flagBackend != "" {
		vars.Backend = flagBackend
		vars.StorePath = config.DefaultStorePath(flagBackend)
	}
	if flagStore != "" {
		vars.StorePath = flagStore
	}
	if flagTZ != "" {
		vars.Timezone = flagTZ
	}

	// Validate before writing so a typo never lands on disk.
	cfg := config.NewDefaults()
	cfg.Project.Name = vars.ProjectName
	cfg.Store.Backend = vars.Backend
	cfg.Store.Path = vars.StorePath
	cfg.Schedule.Timezone = vars.Timezone
	if result := config.Validate(cfg, nil); result.HasErrors() {
		first := result.Errors()[0]
		return fmt.Errorf("invalid settings: [%s] %s", first.Field, first.Message)
	}

	path, err := config.WriteConfig(destDir, vars, initFlagForce)
	if err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.ConfigFileName, destDir)
		}
		return err
	}

	storePath := vars.StorePath
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(destDir, storePath)
	}
	s, err := store.Open(vars.Backend, storePath, afero.NewOsFs())
	if err != nil {
		return err
	}
	if _, err := s.List(cmd.Context()); err != nil {
		_ = s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "%s %s\n", styleSuccess.Render("Created"), path)
	fmt.Fprintf(out, "Store: %s (%s)\n\n", vars.StorePath, vars.Backend)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Add a task:   plotline add \"Write report\" --estimate 60")
	fmt.Fprintln(out, "  2. See the plan: plotline schedule")
	fmt.Fprintln(out, "  3. Browse it:    plotline tree --interactive")

	return nil
}
