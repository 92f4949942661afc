// SPDX-License-Identifier: MPL-2.0

package moduledesc

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/modreport/pkg/cueutil"
	"github.com/invowk/modreport/pkg/report"
)

// FileName is the conventional descriptor file name inside a module directory.
const FileName = "module.cue"

var (
	//go:embed module_schema.cue
	moduleSchema string

	// ErrDescriptorNotFound is returned when no descriptor exists at the given location.
	ErrDescriptorNotFound = errors.New("module descriptor not found")
)

type (
	// Descriptor is the decoded content of a module.cue file.
	Descriptor struct {
		// Module is the module reference, "organisation#name;revision".
		Module          string                  `json:"module"`
		Description     string                  `json:"description,omitempty"`
		Targets         []TargetDecl            `json:"targets,omitempty"`
		ExtensionPoints []ExtensionPointDecl    `json:"extension_points,omitempty"`
		Parameters      []ParameterDecl         `json:"parameters,omitempty"`
		Properties      map[string]PropertyDecl `json:"properties,omitempty"`
		Imports         []ImportDecl            `json:"imports,omitempty"`

		// FilePath is where the descriptor was read from (not in CUE).
		FilePath string `json:"-"`
	}

	// TargetDecl declares a target.
	TargetDecl struct {
		Name           string   `json:"name"`
		Description    string   `json:"description,omitempty"`
		Depends        []string `json:"depends,omitempty"`
		IfProperty     string   `json:"if_property,omitempty"`
		UnlessProperty string   `json:"unless_property,omitempty"`
		ExtensionPoint string   `json:"extension_point,omitempty"`
	}

	// ExtensionPointDecl declares an extension point.
	ExtensionPointDecl struct {
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Depends     []string `json:"depends,omitempty"`
	}

	// ParameterDecl declares a parameter.
	ParameterDecl struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Type        string `json:"type,omitempty"`
		Required    bool   `json:"required"`
		Default     string `json:"default,omitempty"`
	}

	// PropertyDecl documents a property. The map key is the property name.
	PropertyDecl struct {
		Description string `json:"description,omitempty"`
		Required    bool   `json:"required"`
		Default     string `json:"default,omitempty"`
	}

	// ImportDecl declares an import of another module.
	ImportDecl struct {
		// Module is the imported module reference. A missing or
		// "latest.integration" revision lets the repository pick the newest.
		Module string `json:"module"`
		// As is the alias prepended to the imported targets (optional).
		As string `json:"as,omitempty"`
		// Mandatory imports must resolve; optional ones are linked unresolved
		// when they cannot be found.
		Mandatory bool `json:"mandatory"`
	}
)

// Parse reads and validates the descriptor at path. When path is a
// directory, FileName inside it is read.
func Parse(path string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDescriptorNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Parse(filepath.Join(path, FileName))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module descriptor at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses descriptor content. path is used in error messages and
// recorded as FilePath.
func ParseBytes(data []byte, path string) (*Descriptor, error) {
	result, err := cueutil.ParseAndDecodeString[Descriptor](
		moduleSchema,
		data,
		"#Module",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	desc := result.Value
	desc.FilePath = path

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// ID returns the parsed module reference.
func (d *Descriptor) ID() (report.ModuleRevisionID, error) {
	return report.ParseModuleRevisionID(d.Module)
}

// ID returns the parsed module reference of the import.
func (i ImportDecl) ID() (report.ModuleRevisionID, error) {
	return report.ParseModuleRevisionID(i.Module)
}

// Validate checks the rules the CUE schema cannot express. All problems
// are reported, joined.
func (d *Descriptor) Validate() error {
	var errs []error
	fail := func(cuePath, format string, args ...any) {
		errs = append(errs, &cueutil.ValidationError{
			FilePath: d.FilePath,
			CUEPath:  cuePath,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if _, err := d.ID(); err != nil {
		fail("module", "%v", err)
	}

	targets := make(map[string]int, len(d.Targets))
	for i, t := range d.Targets {
		if first, dup := targets[t.Name]; dup {
			fail(fmt.Sprintf("targets[%d].name", i), "duplicate target %q (first declared at targets[%d])", t.Name, first)
			continue
		}
		targets[t.Name] = i
	}

	points := make(map[string]int, len(d.ExtensionPoints))
	for i, e := range d.ExtensionPoints {
		if first, dup := points[e.Name]; dup {
			fail(fmt.Sprintf("extension_points[%d].name", i), "duplicate extension point %q (first declared at extension_points[%d])", e.Name, first)
			continue
		}
		points[e.Name] = i
	}

	aliases := make(map[string]int, len(d.Imports))
	for i, imp := range d.Imports {
		if _, err := imp.ID(); err != nil {
			fail(fmt.Sprintf("imports[%d].module", i), "%v", err)
		}
		if imp.As == "" {
			continue
		}
		if first, dup := aliases[imp.As]; dup {
			fail(fmt.Sprintf("imports[%d].as", i), "alias %q already used by imports[%d]", imp.As, first)
			continue
		}
		aliases[imp.As] = i
	}

	return errors.Join(errs...)
}

// ModuleDescriptor returns the identity to attach to the module's report.
func (d *Descriptor) ModuleDescriptor() (*report.ModuleDescriptor, error) {
	id, err := d.ID()
	if err != nil {
		return nil, err
	}
	return &report.ModuleDescriptor{ID: id, Description: d.Description, Path: d.FilePath}, nil
}

// Populate adds the descriptor's local declarations to r: targets,
// extension points and parameters in declaration order, and properties.
// Imports are not linked.
func (d *Descriptor) Populate(r *report.ModuleReport) error {
	for _, t := range d.Targets {
		if err := r.AddTarget(&report.Target{
			Name:           t.Name,
			Description:    t.Description,
			Depends:        t.Depends,
			If:             t.IfProperty,
			Unless:         t.UnlessProperty,
			ExtensionPoint: t.ExtensionPoint,
		}); err != nil {
			return err
		}
	}

	for _, e := range d.ExtensionPoints {
		if err := r.AddExtensionPoint(&report.ExtensionPoint{
			Name:        e.Name,
			Description: e.Description,
			Depends:     e.Depends,
		}); err != nil {
			return err
		}
	}

	for _, p := range d.Parameters {
		if err := r.AddParameter(&report.Parameter{
			Name:        p.Name,
			Description: p.Description,
			Type:        p.Type,
			Required:    p.Required,
			Default:     p.Default,
		}); err != nil {
			return err
		}
	}

	props := make(map[string]*report.PropertyDescriptor, len(d.Properties))
	for name, p := range d.Properties {
		props[name] = &report.PropertyDescriptor{
			Name:         name,
			Description:  p.Description,
			Required:     p.Required,
			DefaultValue: p.Default,
		}
	}
	return r.AddAllPropertyDescriptors(props)
}
