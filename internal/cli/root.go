package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
	flagStore   string
	flagBackend string
	flagTZ      string
)

// rootCmd is the base command for plotline.
var rootCmd = &cobra.Command{
	Use:   "plotline",
	Short: "Dependency-aware personal task planner",
	Long: `plotline keeps a list of personal tasks with dependencies between them and
turns it into a schedule: every task gets a concrete time interval that starts
after its prerequisites end, tasks are packed into non-overlapping lanes for a
timeline view, and the plan is shown as a tree grouped by creation day.

Completing a task is refused while any of its dependencies is unfinished.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("PLOTLINE_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("PLOTLINE_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("PLOTLINE_NO_COLOR") != "") {
			flagNoColor = true
		}

		jsonFormat := os.Getenv("PLOTLINE_LOG_FORMAT") == "json"
		logging.Setup(flagVerbose, flagQuiet, jsonFormat)

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}

		return nil
	},
}

func init() {
	registerPersistentFlags(rootCmd, true)
}

// registerPersistentFlags declares the global flags on cmd. When bind is
// true the flags write to the package-level variables.
func registerPersistentFlags(cmd *cobra.Command, bind bool) {
	pf := cmd.PersistentFlags()
	if bind {
		pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: PLOTLINE_VERBOSE)")
		pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: PLOTLINE_QUIET)")
		pf.StringVar(&flagConfig, "config", "", "Path to plotline.toml config file")
		pf.StringVar(&flagDir, "dir", "", "Override working directory")
		pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: PLOTLINE_NO_COLOR, NO_COLOR)")
		pf.StringVar(&flagStore, "store", "", "Task store path (env: PLOTLINE_STORE_PATH)")
		pf.StringVar(&flagBackend, "backend", "", "Task store backend: file or sqlite (env: PLOTLINE_STORE_BACKEND)")
		pf.StringVar(&flagTZ, "tz", "", "Timezone for day boundaries, e.g. Europe/Berlin (env: PLOTLINE_TIMEZONE)")
		return
	}
	pf.BoolP("verbose", "v", false, "Enable verbose (debug) output (env: PLOTLINE_VERBOSE)")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors (env: PLOTLINE_QUIET)")
	pf.String("config", "", "Path to plotline.toml config file")
	pf.String("dir", "", "Override working directory")
	pf.Bool("no-color", false, "Disable colored output (env: PLOTLINE_NO_COLOR, NO_COLOR)")
	pf.String("store", "", "Task store path (env: PLOTLINE_STORE_PATH)")
	pf.String("backend", "", "Task store backend: file or sqlite (env: PLOTLINE_STORE_BACKEND)")
	pf.String("tz", "", "Timezone for day boundaries, e.g. Europe/Berlin (env: PLOTLINE_TIMEZONE)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleErrorLbl.Render("Error:"), err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. The
// persistent flags are declared on fresh variables so the exported command
// is safe for concurrent use by generators.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	registerPersistentFlags(cmd, false)

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
