// SPDX-License-Identifier: MPL-2.0

package report

import "slices"

// importPath tracks the reports on the current recursion path. A report
// reached twice through different branches (a diamond) is fine; a report
// reached again while it is still on the path is a cycle.
type importPath struct {
	stack []*ModuleReport
}

func (p *importPath) enter(r *ModuleReport) error {
	if i := slices.Index(p.stack, r); i >= 0 {
		cycle := make([]string, 0, len(p.stack)-i+1)
		for _, m := range p.stack[i:] {
			cycle = append(cycle, m.label())
		}
		cycle = append(cycle, r.label())
		return &CyclicImportError{Cycle: cycle}
	}
	p.stack = append(p.stack, r)
	return nil
}

func (p *importPath) leave() {
	p.stack = p.stack[:len(p.stack)-1]
}

// AvailableProperties returns the properties of this module merged with
// those of every module in its import closure. Imports are merged in
// declaration order, depth first, using [MergePropertyDescriptor] when a
// name is seen again. Property names are never aliased.
//
// The returned descriptors are copies; merging never touches the
// descriptors stored in any report.
func (r *ModuleReport) AvailableProperties() (map[string]*PropertyDescriptor, error) {
	return r.availableProperties(&importPath{})
}

func (r *ModuleReport) availableProperties(p *importPath) (map[string]*PropertyDescriptor, error) {
	if err := p.enter(r); err != nil {
		return nil, err
	}
	defer p.leave()

	props := make(map[string]*PropertyDescriptor, len(r.properties))
	for name, d := range r.properties {
		props[name] = d.Clone()
	}

	for _, imp := range r.imports {
		if imp.Report == nil {
			continue
		}
		imported, err := imp.Report.availableProperties(p)
		if err != nil {
			return nil, err
		}
		for name, incoming := range imported {
			existing, ok := props[name]
			if !ok {
				props[name] = incoming
				continue
			}
			MergePropertyDescriptor(existing, incoming)
		}
	}

	return props, nil
}

// MergePropertyDescriptor applies the first-description-wins policy used
// when a property is visible through several modules: existing keeps its
// values unless it has no description and incoming has one, in which case
// description, required flag and default value are copied from incoming.
// It reports whether existing was changed.
func MergePropertyDescriptor(existing, incoming *PropertyDescriptor) bool {
	if existing.Description != "" || incoming.Description == "" {
		return false
	}
	existing.Description = incoming.Description
	existing.Required = incoming.Required
	existing.DefaultValue = incoming.DefaultValue
	return true
}

// AvailableTargets returns this module's targets followed by the targets
// of each import, in declaration order and depth first. Targets reached
// through an aliased import are copies named alias+name; aliases nest, so
// a target two aliased imports away carries both prefixes, the outermost
// first.
func (r *ModuleReport) AvailableTargets() ([]*Target, error) {
	return r.availableTargets(&importPath{})
}

func (r *ModuleReport) availableTargets(p *importPath) ([]*Target, error) {
	if err := p.enter(r); err != nil {
		return nil, err
	}
	defer p.leave()

	targets := make([]*Target, 0, len(r.targets))
	for _, t := range r.targets {
		targets = append(targets, t.Clone())
	}

	for _, imp := range r.imports {
		if imp.Report == nil {
			continue
		}
		imported, err := imp.Report.availableTargets(p)
		if err != nil {
			return nil, err
		}
		if imp.Alias != "" {
			// imported holds fresh copies, renaming them is safe.
			for _, t := range imported {
				t.Name = imp.Alias + t.Name
			}
		}
		targets = append(targets, imported...)
	}

	return targets, nil
}

// UnboundTargets returns the available targets that bind to no extension
// point, in AvailableTargets order.
func (r *ModuleReport) UnboundTargets() ([]*Target, error) {
	available, err := r.AvailableTargets()
	if err != nil {
		return nil, err
	}
	unbound := make([]*Target, 0, len(available))
	for _, t := range available {
		if !t.IsBound() {
			unbound = append(unbound, t)
		}
	}
	return unbound, nil
}

// AvailableExtensionPoints returns the extension points of this module and
// of its import closure, each carrying every available target bound to it.
//
// Extension points are not de-duplicated: two modules declaring the same
// name yield two entries, and both collect the same targets.
func (r *ModuleReport) AvailableExtensionPoints() ([]*ExtensionPoint, error) {
	points, err := r.availableExtensionPoints(&importPath{})
	if err != nil {
		return nil, err
	}

	// Binding runs once over the fully aliased target list, so targets bind
	// regardless of which module declared the extension point.
	targets, err := r.AvailableTargets()
	if err != nil {
		return nil, err
	}
	for _, e := range points {
		for _, t := range targets {
			if t.IsBound() && t.ExtensionPoint == e.Name {
				e.bind(t.Clone())
			}
		}
	}

	return points, nil
}

// availableExtensionPoints collects extension points without binding targets.
func (r *ModuleReport) availableExtensionPoints(p *importPath) ([]*ExtensionPoint, error) {
	if err := p.enter(r); err != nil {
		return nil, err
	}
	defer p.leave()

	points := make([]*ExtensionPoint, 0, len(r.extensionPoints))
	for _, e := range r.extensionPoints {
		points = append(points, e.unbound())
	}

	for _, imp := range r.imports {
		if imp.Report == nil {
			continue
		}
		imported, err := imp.Report.availableExtensionPoints(p)
		if err != nil {
			return nil, err
		}
		points = append(points, imported...)
	}

	return points, nil
}

// AvailableParameters returns this module's parameters followed by those of
// its import closure, depth first. Parameters are neither renamed nor
// de-duplicated.
func (r *ModuleReport) AvailableParameters() ([]*Parameter, error) {
	return r.availableParameters(&importPath{})
}

func (r *ModuleReport) availableParameters(p *importPath) ([]*Parameter, error) {
	if err := p.enter(r); err != nil {
		return nil, err
	}
	defer p.leave()

	params := make([]*Parameter, 0, len(r.parameters))
	for _, param := range r.parameters {
		params = append(params, param.Clone())
	}

	for _, imp := range r.imports {
		if imp.Report == nil {
			continue
		}
		imported, err := imp.Report.availableParameters(p)
		if err != nil {
			return nil, err
		}
		params = append(params, imported...)
	}

	return params, nil
}
