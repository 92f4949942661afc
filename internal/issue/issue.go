// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry. The zero Id means "no issue".
type Id int

const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorParseErrorId
	RepositoryIndexInvalidId
	ModuleNotFoundId
	CyclicImportId
	TargetNotFoundId
	ConfigLoadFailedId
)

type (
	// MarkdownMsg is guidance text in Markdown.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry with long-form guidance.
	Issue struct {
		id       Id
		title    string
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

// Title is a short heading for the issue.
func (i *Issue) Title() string {
	return i.title
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Markdown returns the full Markdown document, links included.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# " + i.title + "\n")
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- " + string(link) + "\n")
		}
	}
	return sb.String()
}

// Render renders the issue for the terminal with a glamour style
// ("dark", "light", "notty", "auto").
func (i *Issue) Render(style string) (string, error) {
	return render(i.Markdown(), style)
}

var (
	render = glamour.Render

	descriptorNotFoundIssue = &Issue{
		id:    DescriptorNotFoundId,
		title: "Module descriptor not found",
		mdMsg: `
The path given does not lead to a module descriptor.

## Things you can try
- Pass the descriptor file itself, or the directory containing ` + "`module.cue`" + `
- Check the ` + "`descriptor`" + ` path of the module in ` + "`repository.toml`" + `; it is relative to the index file`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#module-descriptors"},
	}

	descriptorParseErrorIssue = &Issue{
		id:    DescriptorParseErrorId,
		title: "Invalid module descriptor",
		mdMsg: `
The descriptor does not match the module schema.

## A minimal descriptor
~~~cue
module: "org.example#build;1.0.0"
targets: [{name: "compile"}]
~~~

## Common mistakes
- Target or extension point names containing spaces
- The same target or extension point declared twice
- Two imports using the same ` + "`as`" + ` alias
- Unknown fields (the schema is closed)`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#module-descriptors"},
	}

	repositoryIndexInvalidIssue = &Issue{
		id:    RepositoryIndexInvalidId,
		title: "Invalid repository index",
		mdMsg: `
The repository index could not be read.

## Expected layout
~~~toml
[[modules]]
organisation = "org.example"
name         = "build"
revision     = "1.0.0"
descriptor   = "build/1.0.0/module.cue"
~~~

## Things you can try
- Point ` + "`--repository`" + ` or the ` + "`repository`" + ` config key at the right file
- Remove fields other than organisation, name, revision and descriptor`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#repository-index"},
	}

	moduleNotFoundIssue = &Issue{
		id:    ModuleNotFoundId,
		title: "Imported module not found",
		mdMsg: `
An import names a module revision the repository does not index.

## Things you can try
- Add the module to ` + "`repository.toml`" + `
- Drop the revision, or use ` + "`latest.integration`" + `, to take the newest indexed revision
- Mark the import ` + "`mandatory: false`" + ` if the module is optional`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#imports"},
	}

	cyclicImportIssue = &Issue{
		id:    CyclicImportId,
		title: "Cyclic import",
		mdMsg: `
Modules import each other in a loop, so no report can be assembled.

## Things you can try
- Move the shared targets into a module both sides import
- Remove one of the imports along the reported path`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#imports"},
	}

	targetNotFoundIssue = &Issue{
		id:    TargetNotFoundId,
		title: "Target not found",
		mdMsg: `
No target with that name is visible from the module.

## Things you can try
- List visible names with ` + "`modreport targets <module>`" + `
- Imported targets carry their import alias as a prefix, e.g. ` + "`std.compile`",
		docLinks: []HttpLink{"https://github.com/invowk/modreport#aliases"},
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "Configuration could not be loaded",
		mdMsg: `
The configuration file is missing or invalid.

## Things you can try
- Print the effective configuration with ` + "`modreport config show`" + `
- Write a default file with ` + "`modreport config init`" + `
- Valid values: ` + "`report.format`" + ` is text, json or yaml; ` + "`ui.color_scheme`" + ` is auto, dark or light`,
		docLinks: []HttpLink{"https://github.com/invowk/modreport#configuration"},
	}

	issues = map[Id]*Issue{
		descriptorNotFoundIssue.Id():     descriptorNotFoundIssue,
		descriptorParseErrorIssue.Id():   descriptorParseErrorIssue,
		repositoryIndexInvalidIssue.Id(): repositoryIndexInvalidIssue,
		moduleNotFoundIssue.Id():         moduleNotFoundIssue,
		cyclicImportIssue.Id():           cyclicImportIssue,
		targetNotFoundIssue.Id():         targetNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
	}
)

// Values returns all catalog entries ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
