// SPDX-License-Identifier: MPL-2.0

package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/invowk/modreport/internal/config"
)

// Write prints s to w in the given format.
func Write(w io.Writer, s *Summary, format config.OutputFormat) error {
	if format == config.FormatText || format == "" {
		_, err := io.WriteString(w, Text(s))
		return err
	}
	return Encode(w, s, format)
}

// Encode writes v to w as JSON or YAML. Any other format is rejected with
// an *config.InvalidOutputFormatError.
func Encode(w io.Writer, v any, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return &config.InvalidOutputFormatError{Value: format}
	}
}

// Text renders s for the terminal.
func Text(s *Summary) string {
	var sb strings.Builder

	sb.WriteString(moduleStyle.Render(s.Module))
	if s.Description != "" {
		sb.WriteString("  " + s.Description)
	}
	sb.WriteString("\n")
	if s.Path != "" {
		sb.WriteString(mutedStyle.Render(s.Path) + "\n")
	}

	section(&sb, fmt.Sprintf("Targets (%s)", s.Scope), len(s.Targets))
	rows := make([][2]string, len(s.Targets))
	for i, t := range s.Targets {
		rows[i] = [2]string{t.Name, TargetDetail(t)}
	}
	table(&sb, rows)

	if len(s.UnboundTargets) > 0 {
		section(&sb, "Unbound targets", len(s.UnboundTargets))
		for _, name := range s.UnboundTargets {
			sb.WriteString("  " + nameStyle.Render(name) + "\n")
		}
	}

	section(&sb, "Extension points", len(s.ExtensionPoints))
	rows = make([][2]string, len(s.ExtensionPoints))
	for i, e := range s.ExtensionPoints {
		rows[i] = [2]string{e.Name, ExtensionPointDetail(e)}
	}
	table(&sb, rows)

	section(&sb, "Properties", len(s.Properties))
	rows = make([][2]string, len(s.Properties))
	for i, p := range s.Properties {
		rows[i] = [2]string{p.Name, PropertyDetail(p)}
	}
	table(&sb, rows)

	if len(s.Parameters) > 0 {
		section(&sb, "Parameters", len(s.Parameters))
		rows = make([][2]string, len(s.Parameters))
		for i, p := range s.Parameters {
			rows[i] = [2]string{p.Name, ParameterDetail(p)}
		}
		table(&sb, rows)
	}

	section(&sb, "Imports", len(s.Imports))
	writeImports(&sb, s.Imports, 1)

	return sb.String()
}

// TargetDetail is the one-line description of a target.
func TargetDetail(t Target) string {
	parts := []string{}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	var meta []string
	if t.ExtensionPoint != "" {
		meta = append(meta, "extends "+t.ExtensionPoint)
	}
	if len(t.Depends) > 0 {
		meta = append(meta, "depends "+strings.Join(t.Depends, ", "))
	}
	if t.If != "" {
		meta = append(meta, "if "+t.If)
	}
	if t.Unless != "" {
		meta = append(meta, "unless "+t.Unless)
	}
	if len(meta) > 0 {
		parts = append(parts, mutedStyle.Render("("+strings.Join(meta, "; ")+")"))
	}
	return strings.Join(parts, " ")
}

// ExtensionPointDetail is the one-line description of an extension point.
func ExtensionPointDetail(e ExtensionPoint) string {
	bound := mutedStyle.Render("no targets")
	if len(e.Targets) > 0 {
		bound = "← " + strings.Join(e.Targets, ", ")
	}
	if e.Description == "" {
		return bound
	}
	return e.Description + " " + bound
}

// PropertyDetail is the one-line description of a property.
func PropertyDetail(p Property) string {
	desc := p.Description
	if desc == "" {
		desc = warningStyle.Render("undocumented")
	}
	var meta []string
	if p.Default != "" {
		meta = append(meta, "default "+p.Default)
	}
	if p.Required {
		meta = append(meta, "required")
	}
	if len(meta) > 0 {
		desc += " " + mutedStyle.Render("("+strings.Join(meta, ", ")+")")
	}
	return desc
}

// ParameterDetail is the one-line description of a parameter.
func ParameterDetail(p Parameter) string {
	var meta []string
	if p.Default != "" {
		meta = append(meta, "default "+p.Default)
	}
	if p.Required {
		meta = append(meta, "required")
	}
	parts := []string{}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(meta) > 0 {
		parts = append(parts, mutedStyle.Render("("+strings.Join(meta, ", ")+")"))
	}
	if p.Type != "" {
		parts = append(parts, mutedStyle.Render("["+p.Type+"]"))
	}
	return strings.Join(parts, " ")
}

func section(sb *strings.Builder, title string, n int) {
	sb.WriteString("\n" + sectionStyle.Render(title) + "\n")
	if n == 0 {
		sb.WriteString("  " + mutedStyle.Render("none") + "\n")
	}
}

// Table renders name/detail rows with the names aligned.
func Table(rows [][2]string) string {
	var sb strings.Builder
	table(&sb, rows)
	return sb.String()
}

// table writes name/detail rows with the names padded to a common width.
func table(sb *strings.Builder, rows [][2]string) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}
	for _, row := range rows {
		line := "  " + nameStyle.Render(row[0])
		if row[1] != "" {
			line += strings.Repeat(" ", width-len(row[0])+2) + row[1]
		}
		sb.WriteString(line + "\n")
	}
}

func writeImports(sb *strings.Builder, imports []Import, depth int) {
	for _, imp := range imports {
		line := strings.Repeat("  ", depth)
		if imp.Alias != "" {
			line += nameStyle.Render(imp.Alias) + " "
		}
		line += imp.Module
		if !imp.Resolved {
			line += " " + warningStyle.Render("(unresolved)")
		}
		sb.WriteString(line + "\n")
		writeImports(sb, imp.Imports, depth+1)
	}
}
