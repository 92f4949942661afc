// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/invowk/modreport/internal/issue"
	"github.com/invowk/modreport/internal/repository"
	"github.com/invowk/modreport/pkg/report"
)

const fixtureIndex = `
[[modules]]
organisation = "org"
name = "std"
revision = "1.0.0"
descriptor = "std/module.cue"

[[modules]]
organisation = "org"
name = "lib"
revision = "2.0.0"
descriptor = "lib/module.cue"
`

var fixtureModules = map[string]string{
	"std/module.cue": `
module: "org#std;1.0.0"
extension_points: [{name: "package"}]
targets: [{name: "compile"}, {name: "clean"}]
properties: "src.dir": {description: "Source directory", default: "src"}
`,
	"lib/module.cue": `
module: "org#lib;2.0.0"
targets: [{name: "jar", extension_point: "package"}]
imports: [{module: "org#std", as: "std."}]
`,
	"app/module.cue": `
module: "org#app;0.1.0"
targets: [{name: "dist"}]
properties: "src.dir": {}
imports: [
	{module: "org#lib;2.0.0", as: "lib."},
	{module: "org#std;latest.integration"},
]
`,
}

// writeFixture lays out files under a temp dir and opens its index.
func writeFixture(t *testing.T, index string, files map[string]string) (string, *repository.Repository) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	indexPath := filepath.Join(dir, "repository.toml")
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := repository.Open(indexPath, repository.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatalf("repository.Open() error = %v", err)
	}
	return dir, repo
}

func quietLoader(repo Resolver) *Loader {
	return New(WithResolver(repo), WithLogger(log.New(io.Discard)))
}

func availableTargetNames(t *testing.T, r *report.ModuleReport) []string {
	t.Helper()
	targets, err := r.AvailableTargets()
	if err != nil {
		t.Fatalf("AvailableTargets() error = %v", err)
	}
	names := make([]string, len(targets))
	for i, tgt := range targets {
		names[i] = tgt.Name
	}
	return names
}

func TestLoad_LinksImportGraph(t *testing.T) {
	t.Parallel()

	dir, repo := writeFixture(t, fixtureIndex, fixtureModules)

	res, err := quietLoader(repo).Load(context.Background(), filepath.Join(dir, "app"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantOrder := []string{"org#std;1.0.0", "org#lib;2.0.0", "org#app;0.1.0"}
	if diff := cmp.Diff(wantOrder, res.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	wantTargets := []string{"dist", "lib.jar", "lib.std.compile", "lib.std.clean", "compile", "clean"}
	if diff := cmp.Diff(wantTargets, availableTargetNames(t, res.Root)); diff != "" {
		t.Errorf("AvailableTargets() mismatch (-want +got):\n%s", diff)
	}

	// std is shared by app and lib.
	imports := res.Root.ImportedModules()
	libImports := imports[0].Report.ImportedModules()
	if imports[1].Report != libImports[0].Report {
		t.Error("shared import was built twice")
	}
	if imports[1].Report != res.Modules["org#std;1.0.0"] {
		t.Error("Modules does not hold the linked std report")
	}

	// The local description is empty, so the imported one fills it in.
	props, err := res.Root.AvailableProperties()
	if err != nil {
		t.Fatalf("AvailableProperties() error = %v", err)
	}
	if got := props["src.dir"].Description; got != "Source directory" {
		t.Errorf("src.dir description = %q, want back-filled", got)
	}

	// std is reached twice, so its extension point is listed twice.
	points, err := res.Root.AvailableExtensionPoints()
	if err != nil {
		t.Fatalf("AvailableExtensionPoints() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(AvailableExtensionPoints()) = %d, want 2", len(points))
	}
	for _, p := range points {
		if p.Name != "package" || !cmp.Equal(p.TargetNames(), []string{"lib.jar"}) {
			t.Errorf("extension point %s bound %v, want package bound to [lib.jar]", p.Name, p.TargetNames())
		}
	}
}

func TestLoad_AttachesProvenance(t *testing.T) {
	t.Parallel()

	dir, repo := writeFixture(t, fixtureIndex, fixtureModules)

	res, err := quietLoader(repo).Load(context.Background(), filepath.Join(dir, "app", "module.cue"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if res.Root.ResolveReport() != nil {
		t.Errorf("root ResolveReport() = %v, want nil", res.Root.ResolveReport())
	}
	if got := res.Root.ModuleDescriptor().Path; got != filepath.Join(dir, "app", "module.cue") {
		t.Errorf("root descriptor path = %q", got)
	}

	std := res.Modules["org#std;1.0.0"]
	rr, ok := std.ResolveReport().(*repository.ResolveReport)
	if !ok {
		t.Fatalf("std ResolveReport() = %T, want *repository.ResolveReport", std.ResolveReport())
	}
	if rr.Resolved.String() != "org#std;1.0.0" {
		t.Errorf("resolved = %s", rr.Resolved)
	}

	link, err := res.Root.ImportedModule("std")
	if err != nil || link == nil {
		t.Fatalf("ImportedModule(std) = %v, %v", link, err)
	}
	if link.ModuleRevisionID.Revision != "1.0.0" {
		t.Errorf("link revision = %q, want the resolved 1.0.0", link.ModuleRevisionID.Revision)
	}
}

func TestLoad_MandatoryImportMissing(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"app/module.cue": "module: \"org#app\"\nimports: [{module: \"org#ghost;9\"}]\n",
	}
	dir, repo := writeFixture(t, fixtureIndex, files)

	_, err := quietLoader(repo).Load(context.Background(), filepath.Join(dir, "app"))
	if !errors.Is(err, repository.ErrModuleNotFound) {
		t.Fatalf("Load() error = %v, want ErrModuleNotFound", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueID != issue.ModuleNotFoundId {
		t.Errorf("Load() error = %#v, want ModuleNotFoundId issue", err)
	}
}

func TestLoad_OptionalImportMissing(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"app/module.cue": `
module: "org#app"
targets: [{name: "dist"}]
imports: [
	{module: "org#ghost", as: "g.", mandatory: false},
	{module: "org#std"},
]
`,
		"std/module.cue": fixtureModules["std/module.cue"],
	}
	dir, repo := writeFixture(t, fixtureIndex, files)

	var logs bytes.Buffer
	l := New(WithResolver(repo), WithLogger(log.New(&logs)))
	res, err := l.Load(context.Background(), filepath.Join(dir, "app"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	imports := res.Root.ImportedModules()
	if imports[0].IsResolved() || imports[0].DeclaredRevision != "org#ghost" || imports[0].Alias != "g." {
		t.Errorf("unresolved link = %+v", imports[0])
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].Module != "org#ghost" {
		t.Errorf("Unresolved = %+v", res.Unresolved)
	}
	if !strings.Contains(logs.String(), "optional import not resolved") {
		t.Errorf("expected a warning, got logs:\n%s", logs.String())
	}

	want := []string{"dist", "compile", "clean"}
	if diff := cmp.Diff(want, availableTargetNames(t, res.Root)); diff != "" {
		t.Errorf("AvailableTargets() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CyclicImport(t *testing.T) {
	t.Parallel()

	index := fixtureIndex + `
[[modules]]
organisation = "org"
name = "app"
revision = "1"
descriptor = "app/module.cue"
`
	files := map[string]string{
		"app/module.cue": "module: \"org#app;1\"\nimports: [{module: \"org#lib\"}]\n",
		"lib/module.cue": "module: \"org#lib;2.0.0\"\nimports: [{module: \"org#app;1\"}]\n",
	}
	dir, repo := writeFixture(t, index, files)

	_, err := quietLoader(repo).Load(context.Background(), filepath.Join(dir, "app"))
	var cycleErr *report.CyclicImportError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Load() error = %v, want *report.CyclicImportError", err)
	}
	want := []string{"org#app;1", "org#lib;2.0.0", "org#app;1"}
	if diff := cmp.Diff(want, cycleErr.Cycle); diff != "" {
		t.Errorf("Cycle mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, report.ErrCyclicImport) {
		t.Error("errors.Is(err, ErrCyclicImport) = false")
	}
}

func TestLoad_DescriptorErrors(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"broken/module.cue": "module: \"org#broken\"\ntargets: [{name: \"a b\"}]\n",
		"app/module.cue":    "module: \"org#app\"\nimports: [{module: \"org#std\"}]\n",
		// std/module.cue is deliberately missing.
	}
	dir, repo := writeFixture(t, fixtureIndex, files)

	tests := []struct {
		name   string
		path   string
		wantID issue.Id
	}{
		{name: "missing root", path: filepath.Join(dir, "nowhere"), wantID: issue.DescriptorNotFoundId},
		{name: "invalid root", path: filepath.Join(dir, "broken"), wantID: issue.DescriptorParseErrorId},
		{name: "missing imported descriptor", path: filepath.Join(dir, "app"), wantID: issue.DescriptorNotFoundId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := quietLoader(repo).Load(context.Background(), tt.path)
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
			}
			if ae.IssueID != tt.wantID {
				t.Errorf("IssueID = %d, want %d (%v)", ae.IssueID, tt.wantID, err)
			}
		})
	}
}

func TestLoad_NoRepository(t *testing.T) {
	t.Parallel()

	dir, _ := writeFixture(t, fixtureIndex, fixtureModules)

	_, err := New(WithLogger(log.New(io.Discard))).Load(context.Background(), filepath.Join(dir, "app"))
	if !errors.Is(err, ErrNoRepository) {
		t.Errorf("Load() error = %v, want ErrNoRepository", err)
	}

	res, err := New(WithLogger(log.New(io.Discard))).Load(context.Background(), filepath.Join(dir, "std"))
	if err != nil {
		t.Fatalf("Load() of a module without imports error = %v", err)
	}
	if diff := cmp.Diff([]string{"org#std;1.0.0"}, res.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	dir, repo := writeFixture(t, fixtureIndex, fixtureModules)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietLoader(repo).Load(ctx, filepath.Join(dir, "app"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
