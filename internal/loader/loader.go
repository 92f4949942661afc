// SPDX-License-Identifier: MPL-2.0

// Package loader builds linked module reports. Starting from a root
// descriptor it resolves imports through a repository, orders the import
// graph leaves-first and populates one report per module, so that every
// report is complete before it is linked into its importers.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/invowk/modreport/internal/dag"
	"github.com/invowk/modreport/internal/issue"
	"github.com/invowk/modreport/internal/repository"
	"github.com/invowk/modreport/pkg/moduledesc"
	"github.com/invowk/modreport/pkg/report"
)

// ErrNoRepository is returned when a module declares imports but the loader
// has no repository to resolve them.
var ErrNoRepository = errors.New("no repository configured")

type (
	// Resolver maps a requested module id to an indexed descriptor.
	Resolver interface {
		Resolve(ctx context.Context, id report.ModuleRevisionID) (*repository.ResolveReport, error)
	}

	// Loader loads module reports.
	Loader struct {
		resolver Resolver
		logger   *log.Logger
	}

	// Option configures a Loader.
	Option func(*Loader)

	// Result is a loaded module graph.
	Result struct {
		// Root is the report of the module the load started from.
		Root *report.ModuleReport
		// Modules maps module ids to their reports.
		Modules map[string]*report.ModuleReport
		// Order lists module ids leaves-first, the order reports were built in.
		Order []string
		// Unresolved lists optional imports that could not be resolved.
		Unresolved []UnresolvedImport
	}

	// UnresolvedImport is an optional import left without a report.
	UnresolvedImport struct {
		Importer string
		Module   string
		Err      error
	}

	// node is one module discovered while walking imports.
	node struct {
		key     string
		desc    *moduledesc.Descriptor
		resolve *repository.ResolveReport
		// imports holds, per import declaration, how it was resolved; nil
		// marks an unresolved import.
		imports []*repository.ResolveReport
	}

	// session holds the state of a single Load call.
	session struct {
		*Loader
		nodes    map[string]*node
		resolved map[string]*repository.ResolveReport
		graph    *dag.Graph
		result   *Result
	}
)

// WithResolver sets the resolver used for imports.
func WithResolver(r Resolver) Option {
	return func(l *Loader) {
		l.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "loader"}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the report of the module described at path (a descriptor
// file or a module directory) and of every module it imports.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	desc, err := l.parse(path, "")
	if err != nil {
		return nil, err
	}
	id, err := desc.ID()
	if err != nil {
		return nil, err
	}

	s := &session{
		Loader:   l,
		nodes:    make(map[string]*node),
		resolved: make(map[string]*repository.ResolveReport),
		graph:    dag.New(),
		result:   &Result{Modules: make(map[string]*report.ModuleReport)},
	}

	rootKey := id.String()
	if err := s.discover(ctx, &node{key: rootKey, desc: desc}); err != nil {
		return nil, err
	}

	order, err := s.graph.BuildOrder()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			return nil, issue.NewErrorContext().
				WithOperation("load module").
				WithResource(rootKey).
				WithIssue(issue.CyclicImportId).
				Wrap(&report.CyclicImportError{Cycle: cycleErr.Cycle}).
				BuildError()
		}
		return nil, err
	}

	if err := s.build(order); err != nil {
		return nil, err
	}
	s.result.Root = s.result.Modules[rootKey]
	s.result.Order = order
	return s.result, nil
}

// discover walks imports breadth-first from root, parsing each module once.
func (s *session) discover(ctx context.Context, root *node) error {
	s.nodes[root.key] = root
	s.graph.AddNode(root.key)

	queue := []*node{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := queue[0]
		queue = queue[1:]

		for _, imp := range n.desc.Imports {
			rr, err := s.resolve(ctx, imp)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				if imp.Mandatory {
					return issue.NewErrorContext().
						WithOperation("resolve import of " + n.key).
						WithResource(imp.Module).
						WithIssue(issue.ModuleNotFoundId).
						WithSuggestion("Add the module to the repository index, or mark the import 'mandatory: false'").
						Wrap(err).
						BuildError()
				}
				s.logger.Warn("optional import not resolved", "importer", n.key, "module", imp.Module, "err", err)
				s.result.Unresolved = append(s.result.Unresolved, UnresolvedImport{Importer: n.key, Module: imp.Module, Err: err})
				n.imports = append(n.imports, nil)
				continue
			}

			key := rr.Resolved.String()
			n.imports = append(n.imports, rr)
			s.graph.AddImport(n.key, key)

			if _, seen := s.nodes[key]; seen {
				continue
			}
			desc, err := s.parse(rr.DescriptorPath, key)
			if err != nil {
				return err
			}
			child := &node{key: key, desc: desc, resolve: rr}
			s.nodes[key] = child
			queue = append(queue, child)
		}
	}
	return nil
}

// resolve resolves an import, once per distinct module reference.
func (s *session) resolve(ctx context.Context, imp moduledesc.ImportDecl) (*repository.ResolveReport, error) {
	if rr, ok := s.resolved[imp.Module]; ok {
		return rr, nil
	}
	if s.resolver == nil {
		return nil, ErrNoRepository
	}
	id, err := imp.ID()
	if err != nil {
		return nil, err
	}
	rr, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolved[imp.Module] = rr
	return rr, nil
}

// build creates the reports in order, linking each module's imports to
// the already built reports of the modules it imports.
func (s *session) build(order []string) error {
	for _, key := range order {
		n := s.nodes[key]
		r := report.New()

		if err := n.desc.Populate(r); err != nil {
			return fmt.Errorf("populate report of %s: %w", key, err)
		}
		md, err := n.desc.ModuleDescriptor()
		if err != nil {
			return err
		}
		r.SetModuleDescriptor(md)
		if n.resolve != nil {
			r.SetResolveReport(n.resolve)
		}

		for i, imp := range n.desc.Imports {
			link := &report.ImportedModuleReport{Alias: imp.As}
			if rr := n.imports[i]; rr != nil {
				link.ModuleRevisionID = rr.Resolved
				link.Report = s.result.Modules[rr.Resolved.String()]
			} else {
				// The module reference was validated when the descriptor was parsed.
				link.ModuleRevisionID, _ = imp.ID()
				link.DeclaredRevision = imp.Module
			}
			if err := r.AddImportedModule(link); err != nil {
				return err
			}
		}

		s.result.Modules[key] = r
		s.logger.Debug("built module report", "module", key, "imports", len(n.desc.Imports))
	}
	return nil
}

// parse reads a descriptor, wrapping failures as actionable errors.
func (l *Loader) parse(path, module string) (*moduledesc.Descriptor, error) {
	desc, err := moduledesc.Parse(path)
	if err == nil {
		return desc, nil
	}

	ctx := issue.NewErrorContext().WithResource(path).Wrap(err)
	if module != "" {
		ctx.WithOperation("load module " + module)
	} else {
		ctx.WithOperation("load module")
	}
	if errors.Is(err, moduledesc.ErrDescriptorNotFound) {
		ctx.WithIssue(issue.DescriptorNotFoundId)
	} else {
		ctx.WithIssue(issue.DescriptorParseErrorId)
	}
	return nil, ctx.BuildError()
}
