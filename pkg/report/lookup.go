// SPDX-License-Identifier: MPL-2.0

package report

import "strings"

type (
	// importMatcher is one way an identifier can designate an import.
	importMatcher struct {
		name  string
		match func(imp *ImportedModuleReport, identifier string) bool
	}
)

// importMatchers are tried in order against each import. The order is the
// tie-break: an import matching any of them is selected.
var importMatchers = []importMatcher{
	{name: "revision", match: matchesRevisionPrefix},
	{name: "module name", match: matchesModuleName},
	{name: "alias", match: matchesAlias},
}

// matchesRevisionPrefix matches identifiers like "org#name" or
// "org#name;1.0" against the import's revision string.
func matchesRevisionPrefix(imp *ImportedModuleReport, identifier string) bool {
	revision := imp.revisionString()
	return revision != "" && strings.HasPrefix(revision, identifier)
}

func matchesModuleName(imp *ImportedModuleReport, identifier string) bool {
	return imp.ModuleRevisionID.Name == identifier
}

func matchesAlias(imp *ImportedModuleReport, identifier string) bool {
	return imp.Alias != "" && imp.Alias == identifier
}

// lookupIdentifier drops the revision part of identifier, if any.
// A leading ';' is kept as part of the identifier.
func lookupIdentifier(identifier string) string {
	if i := strings.Index(identifier, revisionSeparator); i > 0 {
		return identifier[:i]
	}
	return identifier
}

// ImportedModule finds an import anywhere in the import closure.
//
// The identifier may be a module reference ("org#name" or "org#name;rev",
// matched as a prefix of the import's revision string once the revision is
// dropped), a bare module name, or an alias. Imports are searched in
// declaration order and each import's own imports are searched before its
// next sibling. It returns nil when nothing matches.
//
//nolint:nilnil // an absent import is a normal lookup result
func (r *ModuleReport) ImportedModule(identifier string) (*ImportedModuleReport, error) {
	if identifier == "" {
		return nil, cannotBeEmpty("module identifier")
	}
	imp, err := r.importedModule(lookupIdentifier(identifier), &importPath{})
	if err != nil {
		return nil, err
	}
	return imp, nil
}

func (r *ModuleReport) importedModule(identifier string, p *importPath) (*ImportedModuleReport, error) {
	if err := p.enter(r); err != nil {
		return nil, err
	}
	defer p.leave()

	for _, imp := range r.imports {
		if matchImport(imp, identifier) {
			return imp, nil
		}
		if imp.Report == nil {
			continue
		}
		found, err := imp.Report.importedModule(identifier, p)
		if err != nil || found != nil {
			return found, err
		}
	}
	return nil, nil
}

func matchImport(imp *ImportedModuleReport, identifier string) bool {
	for _, m := range importMatchers {
		if m.match(imp, identifier) {
			return true
		}
	}
	return false
}
