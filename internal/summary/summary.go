// SPDX-License-Identifier: MPL-2.0

// Package summary turns a module report into a flat, serializable view and
// prints it as styled text, JSON or YAML.
package summary

import (
	"cmp"
	"slices"

	"github.com/invowk/modreport/pkg/report"
)

const (
	// ScopeAvailable marks views aggregated over the import closure.
	ScopeAvailable = "available"
	// ScopeLocal marks views of the module's own declarations.
	ScopeLocal = "local"
)

type (
	// Summary is the printable view of a module report.
	Summary struct {
		Module          string           `json:"module" yaml:"module"`
		Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
		Path            string           `json:"path,omitempty" yaml:"path,omitempty"`
		Scope           string           `json:"scope" yaml:"scope"`
		Targets         []Target         `json:"targets" yaml:"targets"`
		UnboundTargets  []string         `json:"unbound_targets" yaml:"unbound_targets"`
		ExtensionPoints []ExtensionPoint `json:"extension_points" yaml:"extension_points"`
		Properties      []Property       `json:"properties" yaml:"properties"`
		Parameters      []Parameter      `json:"parameters" yaml:"parameters"`
		Imports         []Import         `json:"imports" yaml:"imports"`
	}

	// Target is a target as seen from the summarized module.
	Target struct {
		Name           string   `json:"name" yaml:"name"`
		Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
		Depends        []string `json:"depends,omitempty" yaml:"depends,omitempty"`
		If             string   `json:"if,omitempty" yaml:"if,omitempty"`
		Unless         string   `json:"unless,omitempty" yaml:"unless,omitempty"`
		ExtensionPoint string   `json:"extension_point,omitempty" yaml:"extension_point,omitempty"`
	}

	// ExtensionPoint lists the names of the targets bound to it.
	ExtensionPoint struct {
		Name        string   `json:"name" yaml:"name"`
		Description string   `json:"description,omitempty" yaml:"description,omitempty"`
		Depends     []string `json:"depends,omitempty" yaml:"depends,omitempty"`
		Targets     []string `json:"targets" yaml:"targets"`
	}

	// Property is a documented property.
	Property struct {
		Name        string `json:"name" yaml:"name"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		Required    bool   `json:"required" yaml:"required"`
		Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	}

	// Parameter is a module parameter.
	Parameter struct {
		Name        string `json:"name" yaml:"name"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		Type        string `json:"type,omitempty" yaml:"type,omitempty"`
		Required    bool   `json:"required" yaml:"required"`
		Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	}

	// Import is a node of the import tree.
	Import struct {
		Alias    string   `json:"alias,omitempty" yaml:"alias,omitempty"`
		Module   string   `json:"module" yaml:"module"`
		Resolved bool     `json:"resolved" yaml:"resolved"`
		Imports  []Import `json:"imports,omitempty" yaml:"imports,omitempty"`
	}
)

// Build summarizes r. With includeImports the targets, extension points,
// properties and parameters are the available ones; otherwise only r's own
// declarations are listed. The import tree is always included.
func Build(r *report.ModuleReport, includeImports bool) (*Summary, error) {
	s := &Summary{Scope: ScopeLocal}
	if md := r.ModuleDescriptor(); md != nil {
		s.Module = md.ID.String()
		s.Description = md.Description
		s.Path = md.Path
	}

	var (
		targets []*report.Target
		points  []*report.ExtensionPoint
		props   map[string]*report.PropertyDescriptor
		params  []*report.Parameter
		err     error
	)
	if includeImports {
		s.Scope = ScopeAvailable
		if targets, err = r.AvailableTargets(); err != nil {
			return nil, err
		}
		if points, err = r.AvailableExtensionPoints(); err != nil {
			return nil, err
		}
		if props, err = r.AvailableProperties(); err != nil {
			return nil, err
		}
		if params, err = r.AvailableParameters(); err != nil {
			return nil, err
		}
	} else {
		targets = r.Targets()
		points = r.ExtensionPoints()
		props = r.PropertyDescriptors()
		params = r.Parameters()
	}

	s.Targets = make([]Target, 0, len(targets))
	s.UnboundTargets = make([]string, 0)
	for _, t := range targets {
		s.Targets = append(s.Targets, NewTarget(t))
		if !t.IsBound() {
			s.UnboundTargets = append(s.UnboundTargets, t.Name)
		}
	}

	s.ExtensionPoints = make([]ExtensionPoint, 0, len(points))
	for _, e := range points {
		s.ExtensionPoints = append(s.ExtensionPoints, ExtensionPoint{
			Name:        e.Name,
			Description: e.Description,
			Depends:     e.Depends,
			Targets:     nonNil(e.TargetNames()),
		})
	}

	s.Properties = make([]Property, 0, len(props))
	for name, p := range props {
		s.Properties = append(s.Properties, Property{
			Name:        name,
			Description: p.Description,
			Required:    p.Required,
			Default:     p.DefaultValue,
		})
	}
	slices.SortFunc(s.Properties, func(a, b Property) int { return cmp.Compare(a.Name, b.Name) })

	s.Parameters = make([]Parameter, 0, len(params))
	for _, p := range params {
		s.Parameters = append(s.Parameters, Parameter{
			Name:        p.Name,
			Description: p.Description,
			Type:        p.Type,
			Required:    p.Required,
			Default:     p.Default,
		})
	}

	s.Imports = importTree(r, []*report.ModuleReport{r})
	return s, nil
}

// NewTarget converts a report target.
func NewTarget(t *report.Target) Target {
	return Target{
		Name:           t.Name,
		Description:    t.Description,
		Depends:        t.Depends,
		If:             t.If,
		Unless:         t.Unless,
		ExtensionPoint: t.ExtensionPoint,
	}
}

// importTree lists r's imports recursively. path holds the reports on the
// current branch; a report already on it is listed without its children.
func importTree(r *report.ModuleReport, path []*report.ModuleReport) []Import {
	links := r.ImportedModules()
	out := make([]Import, 0, len(links))
	for _, link := range links {
		imp := Import{
			Alias:    link.Alias,
			Module:   link.ModuleRevisionID.String(),
			Resolved: link.IsResolved(),
		}
		if link.IsResolved() && !slices.Contains(path, link.Report) {
			imp.Imports = importTree(link.Report, append(slices.Clone(path), link.Report))
		}
		out = append(out, imp)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
