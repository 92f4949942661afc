// SPDX-License-Identifier: MPL-2.0

package report

import (
	"maps"
	"slices"
)

// ModuleReport describes one module: what it declares locally and which
// modules it imports. The zero value is not usable; call New.
//
// A report is populated with the Add* methods while its descriptor is
// loaded and is treated as immutable once its imports are linked.
type ModuleReport struct {
	targets         []*Target
	extensionPoints []*ExtensionPoint
	parameters      []*Parameter
	imports         []*ImportedModuleReport
	properties      map[string]*PropertyDescriptor

	resolveReport ResolveReport
	module        *ModuleDescriptor
}

// New creates an empty ModuleReport.
func New() *ModuleReport {
	return &ModuleReport{
		properties: make(map[string]*PropertyDescriptor),
	}
}

// AddTarget appends a target declared by this module.
func (r *ModuleReport) AddTarget(t *Target) error {
	if t == nil {
		return cannotBeNil("target")
	}
	r.targets = append(r.targets, t)
	return nil
}

// AddExtensionPoint appends an extension point declared by this module.
func (r *ModuleReport) AddExtensionPoint(e *ExtensionPoint) error {
	if e == nil {
		return cannotBeNil("extension point")
	}
	r.extensionPoints = append(r.extensionPoints, e)
	return nil
}

// AddParameter appends a parameter declared by this module.
func (r *ModuleReport) AddParameter(p *Parameter) error {
	if p == nil {
		return cannotBeNil("parameter")
	}
	r.parameters = append(r.parameters, p)
	return nil
}

// AddImportedModule appends an import link.
func (r *ModuleReport) AddImportedModule(i *ImportedModuleReport) error {
	if i == nil {
		return cannotBeNil("imported module")
	}
	r.imports = append(r.imports, i)
	return nil
}

// AddPropertyDescriptor registers a property, replacing any existing
// descriptor with the same name.
func (r *ModuleReport) AddPropertyDescriptor(name string, d *PropertyDescriptor) error {
	if name == "" {
		return cannotBeEmpty("property name")
	}
	if d == nil {
		return cannotBeNil("property descriptor")
	}
	r.properties[name] = d
	return nil
}

// AddAllPropertyDescriptors registers every entry of m, replacing existing
// descriptors on name collisions.
func (r *ModuleReport) AddAllPropertyDescriptors(m map[string]*PropertyDescriptor) error {
	if m == nil {
		return cannotBeNil("property descriptors")
	}
	for name, d := range m {
		if err := r.AddPropertyDescriptor(name, d); err != nil {
			return err
		}
	}
	return nil
}

// Targets returns the targets declared by this module, in declaration order.
func (r *ModuleReport) Targets() []*Target {
	return slices.Clone(r.targets)
}

// ExtensionPoints returns the extension points declared by this module.
func (r *ModuleReport) ExtensionPoints() []*ExtensionPoint {
	return slices.Clone(r.extensionPoints)
}

// Parameters returns the parameters declared by this module.
func (r *ModuleReport) Parameters() []*Parameter {
	return slices.Clone(r.parameters)
}

// ImportedModules returns the direct imports of this module.
func (r *ModuleReport) ImportedModules() []*ImportedModuleReport {
	return slices.Clone(r.imports)
}

// PropertyDescriptors returns the properties declared by this module.
func (r *ModuleReport) PropertyDescriptors() map[string]*PropertyDescriptor {
	return maps.Clone(r.properties)
}

// Target returns the local target with the given name, or nil if this
// module declares no such target.
//
//nolint:nilnil // an absent target is a normal lookup result
func (r *ModuleReport) Target(name string) (*Target, error) {
	if name == "" {
		return nil, cannotBeEmpty("target name")
	}
	for _, t := range r.targets {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

// FindTarget looks the name up locally and, if includeImports is set and
// nothing was found, among the available targets using their aliased names.
// It returns nil when no target matches.
func (r *ModuleReport) FindTarget(name string, includeImports bool) (*Target, error) {
	t, err := r.Target(name)
	if err != nil || t != nil || !includeImports {
		return t, err
	}

	available, err := r.AvailableTargets()
	if err != nil {
		return nil, err
	}
	for _, t := range available {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

// ExtensionPoint returns the local extension point with the given name, or
// nil if this module declares none.
//
//nolint:nilnil // an absent extension point is a normal lookup result
func (r *ModuleReport) ExtensionPoint(name string) (*ExtensionPoint, error) {
	if name == "" {
		return nil, cannotBeEmpty("extension point name")
	}
	for _, e := range r.extensionPoints {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, nil
}

// FindExtensionPoint looks the name up locally and, if includeImports is set
// and nothing was found, among the available extension points. Points found
// through imports carry their bound targets.
func (r *ModuleReport) FindExtensionPoint(name string, includeImports bool) (*ExtensionPoint, error) {
	e, err := r.ExtensionPoint(name)
	if err != nil || e != nil || !includeImports {
		return e, err
	}

	available, err := r.AvailableExtensionPoints()
	if err != nil {
		return nil, err
	}
	for _, e := range available {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, nil
}

// ResolveReport returns the resolution result attached by the loader.
func (r *ModuleReport) ResolveReport() ResolveReport {
	return r.resolveReport
}

// SetResolveReport attaches a resolution result.
func (r *ModuleReport) SetResolveReport(rr ResolveReport) {
	r.resolveReport = rr
}

// ModuleDescriptor returns the identity attached by the loader, or nil.
func (r *ModuleReport) ModuleDescriptor() *ModuleDescriptor {
	return r.module
}

// SetModuleDescriptor attaches the module identity.
func (r *ModuleReport) SetModuleDescriptor(md *ModuleDescriptor) {
	r.module = md
}

// label names the report in error messages.
func (r *ModuleReport) label() string {
	if r.module != nil && !r.module.ID.IsZero() {
		return r.module.ID.String()
	}
	return "<unnamed module>"
}
