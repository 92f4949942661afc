// SPDX-License-Identifier: MPL-2.0

package report

import (
	"slices"
	"strings"
)

const (
	// organisationSeparator separates organisation and name in the string
	// form of a ModuleRevisionID.
	organisationSeparator = "#"
	// revisionSeparator separates the module from its revision.
	revisionSeparator = ";"
)

type (
	// ModuleRevisionID identifies one revision of a module.
	// Its string form is "organisation#name;revision"; the organisation
	// and revision parts are omitted when empty.
	ModuleRevisionID struct {
		Organisation string `json:"organisation,omitempty" yaml:"organisation,omitempty"`
		Name         string `json:"name" yaml:"name"`
		Revision     string `json:"revision,omitempty" yaml:"revision,omitempty"`
	}

	// Target is a named unit of work declared by a module.
	Target struct {
		Name        string
		Description string
		// Depends lists the names of targets that must run first.
		Depends []string
		// If and Unless name properties gating execution. They are carried
		// through aggregation but never evaluated here.
		If     string
		Unless string
		// ExtensionPoint is the name of the extension point this target binds
		// to. Empty means the target is unbound.
		ExtensionPoint string
	}

	// ExtensionPoint is a named hook that targets bind to.
	ExtensionPoint struct {
		Name        string
		Description string
		Depends     []string

		// targets holds the targets bound during aggregation. It is only
		// populated on values returned by AvailableExtensionPoints.
		targets []*Target
	}

	// Parameter describes an input a module accepts.
	Parameter struct {
		Name        string
		Description string
		Type        string
		Required    bool
		Default     string
	}

	// PropertyDescriptor documents a property a module reads.
	// An empty Description means the property is undocumented.
	PropertyDescriptor struct {
		Name         string
		Description  string
		Required     bool
		DefaultValue string
	}

	// ModuleDescriptor is the identity of the module a report was built
	// from. It is provenance only and never used during aggregation.
	ModuleDescriptor struct {
		ID          ModuleRevisionID
		Description string
		// Path is where the module descriptor was read from (optional).
		Path string
	}

	// ResolveReport is the opaque result of resolving a module. The loader
	// attaches it for provenance; this package never inspects it.
	ResolveReport any

	// ImportedModuleReport links a report to one of its imports.
	// The linked report is not owned: the same child may be imported by
	// several parents.
	ImportedModuleReport struct {
		// Alias is prepended to the names of all targets visible through
		// this import (optional).
		Alias string
		// ModuleRevisionID is the identity of the imported module.
		ModuleRevisionID ModuleRevisionID
		// DeclaredRevision is the module reference as written by the
		// importer (e.g. "org#name;1.0"). When empty, ModuleRevisionID's
		// string form is used for identifier lookups.
		DeclaredRevision string
		// Report is the imported module's report, or nil if the import could
		// not be resolved.
		Report *ModuleReport
	}
)

// ParseModuleRevisionID parses the "organisation#name;revision" form.
// The organisation and revision parts are optional.
func ParseModuleRevisionID(s string) (ModuleRevisionID, error) {
	var id ModuleRevisionID
	rest := strings.TrimSpace(s)
	if rest == "" {
		return id, &InvalidArgumentError{Argument: "module revision id", Reason: "cannot be empty"}
	}

	if org, after, found := strings.Cut(rest, organisationSeparator); found {
		id.Organisation = org
		rest = after
	}
	if name, rev, found := strings.Cut(rest, revisionSeparator); found {
		rest = name
		id.Revision = rev
	}
	id.Name = rest

	if id.Name == "" {
		return ModuleRevisionID{}, &InvalidArgumentError{Argument: "module revision id", Reason: "missing module name in " + s}
	}
	if strings.ContainsAny(id.Name, organisationSeparator+revisionSeparator) ||
		strings.ContainsAny(id.Revision, organisationSeparator+revisionSeparator) {
		return ModuleRevisionID{}, &InvalidArgumentError{Argument: "module revision id", Reason: "malformed value " + s}
	}
	return id, nil
}

// String returns the "organisation#name;revision" form.
func (id ModuleRevisionID) String() string {
	var sb strings.Builder
	if id.Organisation != "" {
		sb.WriteString(id.Organisation)
		sb.WriteString(organisationSeparator)
	}
	sb.WriteString(id.Name)
	if id.Revision != "" {
		sb.WriteString(revisionSeparator)
		sb.WriteString(id.Revision)
	}
	return sb.String()
}

// Module returns the id without its revision.
func (id ModuleRevisionID) Module() ModuleRevisionID {
	return ModuleRevisionID{Organisation: id.Organisation, Name: id.Name}
}

// IsZero reports whether the id is unset.
func (id ModuleRevisionID) IsZero() bool {
	return id == ModuleRevisionID{}
}

// IsBound reports whether the target binds to an extension point.
func (t *Target) IsBound() bool {
	return t.ExtensionPoint != ""
}

// Clone returns a deep copy of the target.
func (t *Target) Clone() *Target {
	c := *t
	c.Depends = slices.Clone(t.Depends)
	return &c
}

// Targets returns the targets bound to this extension point.
// The list is empty for extension points obtained from local accessors.
func (e *ExtensionPoint) Targets() []*Target {
	return slices.Clone(e.targets)
}

// TargetNames returns the names of the bound targets, in binding order.
func (e *ExtensionPoint) TargetNames() []string {
	names := make([]string, 0, len(e.targets))
	for _, t := range e.targets {
		names = append(names, t.Name)
	}
	return names
}

// Clone returns a deep copy of the extension point, bound targets included.
func (e *ExtensionPoint) Clone() *ExtensionPoint {
	c := *e
	c.Depends = slices.Clone(e.Depends)
	c.targets = make([]*Target, 0, len(e.targets))
	for _, t := range e.targets {
		c.targets = append(c.targets, t.Clone())
	}
	return &c
}

// unbound returns a copy of the extension point without bound targets.
func (e *ExtensionPoint) unbound() *ExtensionPoint {
	c := *e
	c.Depends = slices.Clone(e.Depends)
	c.targets = nil
	return &c
}

func (e *ExtensionPoint) bind(t *Target) {
	e.targets = append(e.targets, t)
}

// Clone returns a copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	c := *p
	return &c
}

// Clone returns a copy of the descriptor.
func (d *PropertyDescriptor) Clone() *PropertyDescriptor {
	c := *d
	return &c
}

// revisionString is the string identifier lookups match prefixes against.
func (i *ImportedModuleReport) revisionString() string {
	if i.DeclaredRevision != "" {
		return i.DeclaredRevision
	}
	return i.ModuleRevisionID.String()
}

// IsResolved reports whether the import is linked to a report.
func (i *ImportedModuleReport) IsResolved() bool {
	return i.Report != nil
}
