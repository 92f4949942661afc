// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/semver"

	"github.com/invowk/modreport/pkg/report"
)

// LatestIntegration is the dynamic revision selecting the newest module revision.
const LatestIntegration = "latest.integration"

var (
	// ErrModuleNotFound is returned when no indexed module matches a request.
	ErrModuleNotFound = errors.New("module not found in repository")

	// ErrInvalidIndex is returned when the repository index cannot be used.
	ErrInvalidIndex = errors.New("invalid repository index")
)

type (
	// Entry is one indexed module revision.
	Entry struct {
		Organisation string `toml:"organisation"`
		Name         string `toml:"name"`
		Revision     string `toml:"revision"`
		// Descriptor is the descriptor path, relative to the index directory.
		Descriptor string `toml:"descriptor"`
	}

	index struct {
		Modules []Entry `toml:"modules"`
	}

	// Repository is a loaded repository index.
	Repository struct {
		path    string
		root    string
		entries []Entry
		logger  *log.Logger
	}

	// Option configures a Repository.
	Option func(*Repository)

	// ResolveReport records how a module request was satisfied. It is
	// attached to module reports as their resolve report.
	ResolveReport struct {
		// Requested is the id as declared by the importer.
		Requested report.ModuleRevisionID `json:"requested" yaml:"requested"`
		// Resolved is the indexed revision selected.
		Resolved report.ModuleRevisionID `json:"resolved" yaml:"resolved"`
		// DescriptorPath is the absolute or index-relative descriptor location.
		DescriptorPath string `json:"descriptor_path" yaml:"descriptor_path"`
		// Dynamic is true when the requested revision was absent or
		// LatestIntegration.
		Dynamic bool `json:"dynamic" yaml:"dynamic"`
	}

	// ModuleNotFoundError reports an unresolvable request and the revisions
	// of the same module that the index does know about.
	ModuleNotFoundError struct {
		Requested report.ModuleRevisionID
		Available []string
	}
)

func (e *ModuleNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("module %s not found in repository", e.Requested)
	}
	return fmt.Sprintf("module %s not found in repository (available revisions: %s)",
		e.Requested, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrModuleNotFound for errors.Is() compatibility.
func (e *ModuleNotFoundError) Unwrap() error { return ErrModuleNotFound }

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Open reads the index at path.
func Open(path string, opts ...Option) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIndex, err)
	}
	defer func() { _ = f.Close() }()

	var idx index
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidIndex, path, describeDecodeError(err))
	}

	r, err := New(filepath.Dir(path), idx.Modules, opts...)
	if err != nil {
		return nil, err
	}
	r.path = path
	return r, nil
}

// New builds a Repository from in-memory entries. root is the directory
// descriptor paths are relative to.
func New(root string, entries []Entry, opts ...Option) (*Repository, error) {
	for i, e := range entries {
		switch {
		case strings.TrimSpace(e.Name) == "":
			return nil, fmt.Errorf("%w: modules[%d]: name cannot be empty", ErrInvalidIndex, i)
		case strings.TrimSpace(e.Descriptor) == "":
			return nil, fmt.Errorf("%w: modules[%d] (%s): descriptor cannot be empty", ErrInvalidIndex, i, e.ID())
		case e.Revision == LatestIntegration:
			return nil, fmt.Errorf("%w: modules[%d] (%s): %s is not a concrete revision", ErrInvalidIndex, i, e.ID(), LatestIntegration)
		}
	}

	r := &Repository{
		root:    root,
		entries: entries,
		logger:  log.New(os.Stderr),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the index file path, empty for in-memory repositories.
func (r *Repository) Path() string { return r.path }

// Entries returns the indexed module revisions in index order.
func (r *Repository) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ID returns the entry's module revision id.
func (e Entry) ID() report.ModuleRevisionID {
	return report.ModuleRevisionID{Organisation: e.Organisation, Name: e.Name, Revision: e.Revision}
}

// Resolve selects the indexed revision satisfying requested. An empty
// requested organisation matches any organisation.
func (r *Repository) Resolve(ctx context.Context, requested report.ModuleRevisionID) (*ResolveReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dynamic := requested.Revision == "" || requested.Revision == LatestIntegration

	var (
		best      *Entry
		available []string
	)
	for i := range r.entries {
		e := &r.entries[i]
		if e.Name != requested.Name {
			continue
		}
		if requested.Organisation != "" && e.Organisation != requested.Organisation {
			continue
		}
		available = append(available, e.Revision)

		if !dynamic {
			if e.Revision == requested.Revision {
				best = e
				break
			}
			continue
		}
		if best == nil || compareRevisions(e.Revision, best.Revision) > 0 {
			best = e
		}
	}

	if best == nil {
		return nil, &ModuleNotFoundError{Requested: requested, Available: available}
	}

	rr := &ResolveReport{
		Requested:      requested,
		Resolved:       best.ID(),
		DescriptorPath: r.descriptorPath(best.Descriptor),
		Dynamic:        dynamic,
	}
	r.logger.Debug("resolved module", "requested", requested, "resolved", rr.Resolved, "descriptor", rr.DescriptorPath)
	return rr, nil
}

func (r *Repository) descriptorPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.root, filepath.FromSlash(p))
}

// compareRevisions orders revisions by semantic version. Revisions that are
// not valid semantic versions sort below every valid one.
func compareRevisions(a, b string) int {
	return semver.Compare(canonicalRevision(a), canonicalRevision(b))
}

// canonicalRevision adds the "v" prefix golang.org/x/mod/semver expects.
func canonicalRevision(rev string) string {
	if strings.HasPrefix(rev, "v") {
		return rev
	}
	return "v" + rev
}

func describeDecodeError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("line %d, column %d: %s", row, col, decodeErr.Error())
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return "unknown field: " + strictErr.Error()
	}
	return err.Error()
}
