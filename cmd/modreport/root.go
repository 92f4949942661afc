// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/modreport/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modreport",
		Short: "Inspect module descriptors and what their imports make available",
		Long: TitleStyle.Render("modreport") + SubtitleStyle.Render(" - Inspect module descriptors and their imports") + `

modreport loads a module descriptor (module.cue), resolves its imports
through a repository index (repository.toml) and reports the targets,
extension points, properties and parameters visible from the module.

` + SubtitleStyle.Render("Examples:") + `
  modreport show ./app                    Summarize a module and its imports
  modreport targets ./app --unbound       List targets not bound to extension points
  modreport target ./app lib.compile      Describe one target
  modreport import ./app lib              Show how an import was resolved
  modreport config show                   Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/modreport/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.repository, "repository", "", "repository index used to resolve imports (default \"repository.toml\")")

	rootCmd.AddCommand(
		newShowCommand(app),
		newTargetsCommand(app),
		newTargetCommand(app),
		newExtensionPointsCommand(app),
		newPropertiesCommand(app),
		newParametersCommand(app),
		newImportCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with process defaults. It is called by main.main().
func Execute() {
	os.Exit(run(context.Background(), NewApp(Dependencies{}), os.Args[1:]))
}

// run executes the command tree with args and returns the process exit code.
func run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			writeError(w, app, err)
		}),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}

// writeError prints err for the user. Actionable errors carry suggestions;
// in verbose mode the full error chain and the catalog guidance follow.
func writeError(w io.Writer, app *App, err error) {
	verbose := app.Verbose()
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !verbose || !errors.As(err, &ae) || ae.Issue() == nil {
		return
	}
	guide, renderErr := ae.Issue().Render(app.glamourStyle())
	if renderErr != nil {
		app.logger.Debug("issue guidance not rendered", "err", renderErr)
		return
	}
	fmt.Fprint(w, guide)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
