// Package cli implements the response command line.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/response.report/internal/adapter"
	"github.com/banshee-data/response.report/internal/fsutil"
	"github.com/banshee-data/response.report/internal/monitoring"
	"github.com/banshee-data/response.report/internal/pipeline"
	"github.com/banshee-data/response.report/internal/timeutil"
	"github.com/banshee-data/response.report/internal/version"
)

// App holds the side-effecting dependencies of the commands.
type App struct {
	FS     fsutil.FileSystem
	Clock  timeutil.Clock
	Stdout io.Writer
	Stderr io.Writer
	// Open is called with the rendered file when --open is set.
	Open func(path string)
}

// DefaultApp uses the real filesystem, clock and terminal.
func DefaultApp() *App {
	return &App{
		FS:     fsutil.OSFileSystem{},
		Clock:  timeutil.RealClock{},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Open:   openBrowser,
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "response",
		Short: "Plot normalized sensor response against exposure cycles",
		Long: `response reads optical power or resistance recordings from a series of
experiment files, normalizes each to its first sample, and plots them
against time with the gas exposure periods shaded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			quiet, _ := cmd.Flags().GetBool("quiet")
			verbose, _ := cmd.Flags().GetBool("verbose")
			if quiet {
				monitoring.SetLogger(nil)
			} else {
				monitoring.SetLogger(log.New(app.Stderr, "", log.LstdFlags).Printf)
			}
			monitoring.SetVerbose(verbose && !quiet)
		},
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.PersistentFlags().StringP("config", "c", "", "Experiment config file (.json, .yaml or .yml)")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress log output")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log per-file detail")

	root.AddCommand(
		newSignalCmd(app, pipeline.Optical),
		newSignalCmd(app, pipeline.Resistance),
		newRunCmd(app),
		newFormatsCmd(app),
		newVersionCmd(app),
	)
	return root
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	app := DefaultApp()
	if err := NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(app.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newFormatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input layouts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range adapter.Formats() {
				fmt.Fprintf(app.Stdout, "%-14s %s\n", f.Tag, f.Description)
			}
		},
	}
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(app.Stdout, version.String())
		},
	}
}
