package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cshake",
	Short: "cshake - extract the minimal C sources reachable from entry symbols",
	Long: `cshake parses a C project, follows every function, variable, type, macro and
include that a set of entry symbols needs, and writes just those lines into a
new tree that mirrors the original layout.

Settings come from .cshake/config.yml in the project directory, CSHAKE_*
environment variables and command-line flags, in increasing priority.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project directory holding .cshake/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initLogging configures the standard logger for the chosen verbosity.
func initLogging() {
	log.SetFlags(0)
	if verbose {
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	}
}

// resolveProjectDir returns the absolute project directory.
func resolveProjectDir() (string, error) {
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	return absPath(projectDir)
}
