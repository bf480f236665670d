package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/unitfile"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeStartupFailure indicates the command could not come up at all —
	// a path it needs could not be opened or read (such as the unit directory
	// or the controlling terminal), a unit file error, or a config.yaml that
	// could not be read or parsed.
	ExitCodeStartupFailure = 2
)

// rootCmd represents the base command for the cfti application. It is the
// entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cfti",
	Short: "Run a common factory test infrastructure jig",
	Long: `cfti loads a directory of unit files describing a jig, its tests,
scenarios, loggers, interfaces, and triggers, then supervises their
execution and exposes control over the running test set to connected
interfaces.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command, injected at build time
// from main.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cfti version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type,
// looking through the wrapping the subcommands add.
func getExitCode(err error) int {
	var (
		notFound *unitfile.NotFoundError
		readErr  *unitfile.ReadError
		parseErr *unitfile.ParseError
		cfgErr   *config.LoadError
		pathErr  *fs.PathError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &readErr), errors.As(err, &parseErr),
		errors.As(err, &cfgErr), errors.As(err, &pathErr):
		return ExitCodeStartupFailure
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newListCmd())
}
