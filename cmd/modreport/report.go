// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/modreport/internal/config"
	"github.com/invowk/modreport/internal/issue"
	"github.com/invowk/modreport/internal/repository"
	"github.com/invowk/modreport/internal/summary"
	"github.com/invowk/modreport/pkg/report"
)

var (
	errTargetNotFound = errors.New("target not found")
	errImportNotFound = errors.New("no import matches")
)

type (
	// viewFlags are the flags shared by report commands.
	viewFlags struct {
		format string
		local  bool
	}

	// view is a loaded module with the scope and format a command prints it in.
	view struct {
		root           *report.ModuleReport
		summary        *summary.Summary
		format         config.OutputFormat
		includeImports bool
	}

	// importView is the printable form of a resolved import.
	importView struct {
		Alias      string                    `json:"alias,omitempty" yaml:"alias,omitempty"`
		Module     string                    `json:"module" yaml:"module"`
		Declared   string                    `json:"declared,omitempty" yaml:"declared,omitempty"`
		Resolved   bool                      `json:"resolved" yaml:"resolved"`
		Resolution *repository.ResolveReport `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	}
)

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: text, json or yaml (default from config)")
	cmd.Flags().BoolVar(&f.local, "local", false, "only list the module's own declarations")
}

// loadView loads the module at path and summarizes it in the scope selected
// by --local, falling back to the report.include_imports config key.
func (a *App) loadView(cmd *cobra.Command, path string, flags *viewFlags) (*view, error) {
	result, err := a.load(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	format := cfg.Report.Format
	if flags.format != "" {
		format = config.OutputFormat(flags.format)
	}
	if valid, errs := format.IsValid(); !valid {
		return nil, errs[0]
	}

	includeImports := cfg.Report.IncludeImports
	if cmd.Flags().Changed("local") {
		includeImports = !flags.local
	}

	s, err := summary.Build(result.Root, includeImports)
	if err != nil {
		return nil, err
	}
	return &view{root: result.Root, summary: s, format: format, includeImports: includeImports}, nil
}

// writeRows prints rows as an aligned list, or a muted "none".
func writeRows(w io.Writer, rows [][2]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SubtitleStyle.Render("none"))
		return err
	}
	_, err := io.WriteString(w, summary.Table(rows))
	return err
}

func newShowCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "show <module>",
		Short: "Summarize a module and its imports",
		Long: `Summarize a module: its targets, unbound targets, extension points with the
targets bound to them, properties, parameters and the import tree.

<module> is a module.cue file or a directory containing one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return summary.Write(cmd.OutOrStdout(), v.summary, v.format)
		},
	}
	flags.register(cmd)
	return cmd
}

func newTargetsCommand(app *App) *cobra.Command {
	var (
		flags   viewFlags
		unbound bool
	)
	cmd := &cobra.Command{
		Use:   "targets <module>",
		Short: "List the targets visible from a module",
		Long: `List the targets visible from a module. Targets reached through an import
carry the import alias as a prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}

			targets := v.summary.Targets
			if unbound {
				targets = make([]summary.Target, 0, len(v.summary.UnboundTargets))
				for _, t := range v.summary.Targets {
					if t.ExtensionPoint == "" {
						targets = append(targets, t)
					}
				}
			}

			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), targets, v.format)
			}
			rows := make([][2]string, len(targets))
			for i, t := range targets {
				rows[i] = [2]string{t.Name, summary.TargetDetail(t)}
			}
			return writeRows(cmd.OutOrStdout(), rows)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&unbound, "unbound", false, "only list targets not bound to an extension point")
	return cmd
}

func newTargetCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "target <module> <name>",
		Short: "Describe one target",
		Long: `Describe one target. The name is looked up among the module's own targets
first, then among the targets available through imports (e.g. "lib.compile").`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}

			name := args[1]
			t, err := v.root.FindTarget(name, v.includeImports)
			if err != nil {
				return err
			}
			if t == nil {
				return &ExitError{
					Code: exitNotFound,
					Err: issue.NewErrorContext().
						WithOperation("find target").
						WithResource(name).
						WithIssue(issue.TargetNotFoundId).
						WithSuggestion("List visible targets with `modreport targets " + args[0] + "`").
						Wrap(errTargetNotFound).
						BuildError(),
				}
			}

			target := summary.NewTarget(t)
			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), target, v.format)
			}
			return writeTarget(cmd.OutOrStdout(), target)
		},
	}
	flags.register(cmd)
	return cmd
}

func writeTarget(w io.Writer, t summary.Target) error {
	rows := [][2]string{}
	if t.Description != "" {
		rows = append(rows, [2]string{"description", t.Description})
	}
	if len(t.Depends) > 0 {
		rows = append(rows, [2]string{"depends", strings.Join(t.Depends, ", ")})
	}
	if t.ExtensionPoint != "" {
		rows = append(rows, [2]string{"extends", t.ExtensionPoint})
	}
	if t.If != "" {
		rows = append(rows, [2]string{"if", t.If})
	}
	if t.Unless != "" {
		rows = append(rows, [2]string{"unless", t.Unless})
	}

	if _, err := fmt.Fprintln(w, TitleStyle.Render(t.Name)); err != nil {
		return err
	}
	_, err := io.WriteString(w, summary.Table(rows))
	return err
}

func newExtensionPointsCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:     "extension-points <module>",
		Aliases: []string{"eps"},
		Short:   "List extension points and the targets bound to them",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), v.summary.ExtensionPoints, v.format)
			}
			rows := make([][2]string, len(v.summary.ExtensionPoints))
			for i, e := range v.summary.ExtensionPoints {
				rows[i] = [2]string{e.Name, summary.ExtensionPointDetail(e)}
			}
			return writeRows(cmd.OutOrStdout(), rows)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPropertiesCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "properties <module>",
		Short: "List the properties a module and its imports document",
		Long: `List the properties a module and its imports document, sorted by name.
When several modules describe the same property the first description found
wins; properties nobody describes are marked undocumented.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), v.summary.Properties, v.format)
			}
			rows := make([][2]string, len(v.summary.Properties))
			for i, p := range v.summary.Properties {
				rows[i] = [2]string{p.Name, summary.PropertyDetail(p)}
			}
			return writeRows(cmd.OutOrStdout(), rows)
		},
	}
	flags.register(cmd)
	return cmd
}

func newParametersCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "parameters <module>",
		Short: "List the parameters a module and its imports accept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), v.summary.Parameters, v.format)
			}
			rows := make([][2]string, len(v.summary.Parameters))
			for i, p := range v.summary.Parameters {
				rows[i] = [2]string{p.Name, summary.ParameterDetail(p)}
			}
			return writeRows(cmd.OutOrStdout(), rows)
		},
	}
	flags.register(cmd)
	return cmd
}

func newImportCommand(app *App) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "import <module> <identifier>",
		Short: "Show how an import was resolved",
		Long: `Find an import anywhere in the module's import closure and show how it was
resolved. The identifier may be a module reference ("org#name" or
"org#name;1.0"), a bare module name or an import alias.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}

			imp, err := v.root.ImportedModule(args[1])
			if err != nil {
				return err
			}
			if imp == nil {
				return &ExitError{
					Code: exitNotFound,
					Err: issue.NewErrorContext().
						WithOperation("find import").
						WithResource(args[1]).
						WithSuggestion("Print the import tree with `modreport show " + args[0] + "`").
						Wrap(errImportNotFound).
						BuildError(),
				}
			}

			iv := newImportView(imp)
			if v.format != config.FormatText {
				return summary.Encode(cmd.OutOrStdout(), iv, v.format)
			}
			return writeImport(cmd.OutOrStdout(), iv)
		},
	}
	flags.register(cmd)
	return cmd
}

func newImportView(imp *report.ImportedModuleReport) importView {
	iv := importView{
		Alias:    imp.Alias,
		Module:   imp.ModuleRevisionID.String(),
		Declared: imp.DeclaredRevision,
		Resolved: imp.IsResolved(),
	}
	if imp.Report != nil {
		if rr, ok := imp.Report.ResolveReport().(*repository.ResolveReport); ok {
			iv.Resolution = rr
		}
	}
	return iv
}

func writeImport(w io.Writer, iv importView) error {
	state := SuccessStyle.Render("resolved")
	if !iv.Resolved {
		state = WarningStyle.Render("unresolved")
	}
	rows := [][2]string{{"state", state}}
	if iv.Alias != "" {
		rows = append(rows, [2]string{"alias", iv.Alias})
	}
	if iv.Declared != "" {
		rows = append(rows, [2]string{"declared", iv.Declared})
	}
	if rr := iv.Resolution; rr != nil {
		rows = append(rows,
			[2]string{"requested", rr.Requested.String()},
			[2]string{"descriptor", rr.DescriptorPath},
		)
		if rr.Dynamic {
			rows = append(rows, [2]string{"dynamic", "latest indexed revision"})
		}
	}

	if _, err := fmt.Fprintln(w, TitleStyle.Render(iv.Module)); err != nil {
		return err
	}
	_, err := io.WriteString(w, summary.Table(rows))
	return err
}
