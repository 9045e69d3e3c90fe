package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gnodet/hnvm/pkg/config"
	"github.com/gnodet/hnvm/pkg/executor"
	"github.com/gnodet/hnvm/pkg/output"
	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/gnodet/hnvm/pkg/util"
	"github.com/spf13/cobra"
)

var (
	// Version information set from main
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// Global flags
	verbose bool
	quiet   bool

	// current is the session of the running command, used to report its errors
	current *session

	// launcher replaces the process with the wrapped binary
	launcher = defaultLauncher
)

var defaultLauncher executor.LaunchFunc = executor.Launch

// stderr is the inherited error stream, the default diagnostic destination
var stderr = os.Stderr

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hnvm",
	Short: "Hermetic Node.js version manager",
	Long: `hnvm runs the Node.js, npm and pnpm versions a project declares in the
"engines" field of its package.json, downloading them on demand into a local cache.

Install hnvm under the names node, npm, npx, pnpm and pnpx (symlinks or copies)
to use it transparently, or call it explicitly:

  hnvm exec node --version     # Run node with the project's version
  hnvm install                 # Download everything the project needs
  hnvm resolve pnpm            # Print the pnpm version the project resolves to
  hnvm cache list              # Show installed versions

For more information, visit: https://github.com/gnodet/hnvm`,
	SilenceErrors: true,
	SilenceUsage:  true,

	// Show help if no command is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and reports the error, if any,
// on the diagnostic destination. This is called by main.main().
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(err)
	}
	endSession()
	return err
}

// SetVersionInfo sets the version information from main
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (warnings and errors only)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(envCmd)
}

// session holds what every command needs: settings, the diagnostic destination and the tools
type session struct {
	settings *config.Settings
	dest     output.Destination
	printer  *output.Printer
	manager  *tools.Manager
}

// newSession loads the configuration and routes diagnostics. The returned session
// becomes the one errors are reported through.
func newSession() (*session, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, &tools.ConfigError{Msg: "failed to load configuration", Err: err}
	}

	dest := output.ResolveDestination(settings.OutputDestination, stderr)
	printer := output.NewPrinter(dest)
	printer.SetQuiet(quiet)
	util.SetOutput(dest.Writer)
	util.SetVerbose(verbose || settings.Verbose || util.IsVerbose())

	manager := tools.NewManager(tools.URLConfig{
		NodeDistURL:        settings.NodeDistURL,
		NodeVariantDistURL: settings.NodeVariantDistURL,
		RegistryURL:        settings.RegistryURL,
	}, settings)

	s := &session{settings: settings, dest: dest, printer: printer, manager: manager}
	current = s

	replacer, err := tools.NewURLReplacer(settings.URLReplacements)
	if err != nil {
		return nil, err
	}
	if replacer.Len() > 0 {
		util.LogVerbose("Loaded %d URL replacement rules", replacer.Len())
	}
	manager.SetURLReplacer(replacer)
	return s, nil
}

// executor creates an executor working on behalf of the project in the current directory
func (s *session) executor() (*executor.Executor, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine the working directory: %w", err)
	}
	e := executor.NewExecutor(s.settings, s.manager, s.dest, s.printer, wd)
	e.SetLauncher(launcher)
	return e, nil
}

// endSession releases the destination of the current session, once errors are reported
func endSession() {
	if current == nil {
		return
	}
	if err := current.dest.Close(); err != nil {
		fmt.Fprintf(stderr, "WARNING: failed to close %s: %v\n", current.dest.Name, err)
	}
	util.SetOutput(stderr)
	current = nil
}

// reportError prints err once, on the diagnostic destination when one was set up
func reportError(err error) {
	if current != nil {
		current.printer.Error("%v", err)
		return
	}
	fmt.Fprintf(stderr, "ERROR: %v\n", err)
}
