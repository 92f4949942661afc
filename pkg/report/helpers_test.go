// SPDX-License-Identifier: MPL-2.0

package report

import "testing"

// newModule creates a report identified by the given "org#name;rev" string.
func newModule(t *testing.T, id string) *ModuleReport {
	t.Helper()
	mrid, err := ParseModuleRevisionID(id)
	if err != nil {
		t.Fatalf("ParseModuleRevisionID(%q): %v", id, err)
	}
	r := New()
	r.SetModuleDescriptor(&ModuleDescriptor{ID: mrid})
	return r
}

func addTargets(t *testing.T, r *ModuleReport, targets ...*Target) {
	t.Helper()
	for _, target := range targets {
		if err := r.AddTarget(target); err != nil {
			t.Fatalf("AddTarget(%q): %v", target.Name, err)
		}
	}
}

func addExtensionPoints(t *testing.T, r *ModuleReport, points ...*ExtensionPoint) {
	t.Helper()
	for _, e := range points {
		if err := r.AddExtensionPoint(e); err != nil {
			t.Fatalf("AddExtensionPoint(%q): %v", e.Name, err)
		}
	}
}

func addProperty(t *testing.T, r *ModuleReport, name string, d *PropertyDescriptor) {
	t.Helper()
	if err := r.AddPropertyDescriptor(name, d); err != nil {
		t.Fatalf("AddPropertyDescriptor(%q): %v", name, err)
	}
}

// link imports child into parent under alias and returns the import.
func link(t *testing.T, parent, child *ModuleReport, alias string) *ImportedModuleReport {
	t.Helper()
	imp := &ImportedModuleReport{
		Alias:            alias,
		ModuleRevisionID: child.ModuleDescriptor().ID,
		Report:           child,
	}
	if err := parent.AddImportedModule(imp); err != nil {
		t.Fatalf("AddImportedModule: %v", err)
	}
	return imp
}

func targetNames(targets []*Target) []string {
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Name)
	}
	return names
}

func extensionPointNames(points []*ExtensionPoint) []string {
	names := make([]string, 0, len(points))
	for _, e := range points {
		names = append(names, e.Name)
	}
	return names
}
