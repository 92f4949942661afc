// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var cmpExtensionPoints = cmp.AllowUnexported(ExtensionPoint{})

func TestAvailable_NoImportsEqualsLocal(t *testing.T) {
	t.Parallel()

	r := newModule(t, "org#solo;1")
	addTargets(t, r,
		&Target{Name: "compile", Depends: []string{"init"}, If: "has.src"},
		&Target{Name: "jar", ExtensionPoint: "package"},
	)
	addExtensionPoints(t, r, &ExtensionPoint{Name: "package", Depends: []string{"compile"}})
	addProperty(t, r, "src.dir", &PropertyDescriptor{Name: "src.dir", Description: "sources", DefaultValue: "src"})

	targets, err := r.AvailableTargets()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r.Targets(), targets); diff != "" {
		t.Errorf("AvailableTargets() mismatch (-local +available):\n%s", diff)
	}

	props, err := r.AvailableProperties()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r.PropertyDescriptors(), props); diff != "" {
		t.Errorf("AvailableProperties() mismatch (-local +available):\n%s", diff)
	}

	points, err := r.AvailableExtensionPoints()
	if err != nil {
		t.Fatal(err)
	}
	unbound := make([]*ExtensionPoint, 0, len(points))
	for _, e := range points {
		unbound = append(unbound, e.unbound())
	}
	if diff := cmp.Diff(r.ExtensionPoints(), unbound, cmpExtensionPoints); diff != "" {
		t.Errorf("AvailableExtensionPoints() ignoring binding mismatch (-local +available):\n%s", diff)
	}
}

func TestAvailableTargets_Alias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		alias string
		want  string
	}{
		{"aliased import", "b.", "b.compile"},
		{"unaliased import", "", "compile"},
		{"alias without separator", "lib", "libcompile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newModule(t, "org#a;1")
			b := newModule(t, "org#b;1")
			addTargets(t, b, &Target{
				Name:           "compile",
				Depends:        []string{"init", "resources"},
				If:             "src.present",
				Unless:         "skip.compile",
				ExtensionPoint: "build",
			})
			link(t, a, b, tt.alias)

			targets, err := a.AvailableTargets()
			if err != nil {
				t.Fatal(err)
			}
			want := []*Target{{
				Name:           tt.want,
				Depends:        []string{"init", "resources"},
				If:             "src.present",
				Unless:         "skip.compile",
				ExtensionPoint: "build",
			}}
			if diff := cmp.Diff(want, targets); diff != "" {
				t.Errorf("AvailableTargets() mismatch (-want +got):\n%s", diff)
			}

			// The imported module keeps its original name.
			if got := b.Targets()[0].Name; got != "compile" {
				t.Errorf("child target renamed to %q", got)
			}
		})
	}
}

func TestAvailableTargets_NestedAliasesAccumulate(t *testing.T) {
	t.Parallel()

	a := newModule(t, "org#a;1")
	b := newModule(t, "org#b;1")
	c := newModule(t, "org#c;1")
	d := newModule(t, "org#d;1")
	addTargets(t, c, &Target{Name: "compile"})
	addTargets(t, d, &Target{Name: "lint"})
	link(t, a, b, "b.")
	link(t, b, c, "c.")
	link(t, b, d, "")

	targets, err := a.AvailableTargets()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := targetNames(targets), []string{"b.c.compile", "b.lint"}; !slices.Equal(got, want) {
		t.Errorf("AvailableTargets() = %v, want %v", got, want)
	}

	bTargets, err := b.AvailableTargets()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := targetNames(bTargets), []string{"c.compile", "lint"}; !slices.Equal(got, want) {
		t.Errorf("b.AvailableTargets() = %v, want %v", got, want)
	}
}

func TestAvailableTargets_PreOrderDepthFirst(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	one := newModule(t, "org#one;1")
	oneChild := newModule(t, "org#one-child;1")
	two := newModule(t, "org#two;1")
	addTargets(t, root, &Target{Name: "r1"}, &Target{Name: "r2"})
	addTargets(t, one, &Target{Name: "o1"})
	addTargets(t, oneChild, &Target{Name: "oc1"})
	addTargets(t, two, &Target{Name: "t1"})
	link(t, root, one, "")
	link(t, one, oneChild, "")
	link(t, root, two, "")

	targets, err := root.AvailableTargets()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := targetNames(targets), []string{"r1", "r2", "o1", "oc1", "t1"}; !slices.Equal(got, want) {
		t.Errorf("AvailableTargets() = %v, want %v", got, want)
	}
}

func TestAvailableTargets_SharedChildIsVisitedPerPath(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	left := newModule(t, "org#left;1")
	right := newModule(t, "org#right;1")
	common := newModule(t, "org#common;1")
	addTargets(t, common, &Target{Name: "init"})
	link(t, root, left, "l.")
	link(t, root, right, "r.")
	link(t, left, common, "")
	link(t, right, common, "")

	targets, err := root.AvailableTargets()
	if err != nil {
		t.Fatalf("diamond import reported as error: %v", err)
	}
	if got, want := targetNames(targets), []string{"l.init", "r.init"}; !slices.Equal(got, want) {
		t.Errorf("AvailableTargets() = %v, want %v", got, want)
	}
}

func TestAvailable_SkipsUnresolvedImports(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	addTargets(t, root, &Target{Name: "build"})
	if err := root.AddImportedModule(&ImportedModuleReport{
		Alias:            "missing.",
		ModuleRevisionID: ModuleRevisionID{"org", "missing", "1"},
	}); err != nil {
		t.Fatal(err)
	}

	targets, err := root.AvailableTargets()
	if err != nil {
		t.Fatal(err)
	}
	if got := targetNames(targets); !slices.Equal(got, []string{"build"}) {
		t.Errorf("AvailableTargets() = %v", got)
	}
	if _, err := root.AvailableProperties(); err != nil {
		t.Error(err)
	}
	if _, err := root.AvailableExtensionPoints(); err != nil {
		t.Error(err)
	}
}

func TestUnboundTargets(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	lib := newModule(t, "org#lib;1")
	addTargets(t, root, &Target{Name: "hello"}, &Target{Name: "jar", ExtensionPoint: "package"})
	addTargets(t, lib, &Target{Name: "report"}, &Target{Name: "javac", ExtensionPoint: "compile"})
	link(t, root, lib, "lib.")

	unbound, err := root.UnboundTargets()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := targetNames(unbound), []string{"hello", "lib.report"}; !slices.Equal(got, want) {
		t.Errorf("UnboundTargets() = %v, want %v", got, want)
	}
}

func TestAvailableExtensionPoints_BindingAcrossModules(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	phases := newModule(t, "org#phases;1")
	plugin := newModule(t, "org#plugin;1")
	addExtensionPoints(t, phases, &ExtensionPoint{Name: "ep1"}, &ExtensionPoint{Name: "ep2"})
	addTargets(t, root, &Target{Name: "local", ExtensionPoint: "ep1"})
	addTargets(t, plugin,
		&Target{Name: "first", ExtensionPoint: "ep1"},
		&Target{Name: "other", ExtensionPoint: "ep3"},
		&Target{Name: "free"},
	)
	link(t, root, phases, "ph.")
	link(t, root, plugin, "pl.")

	points, err := root.AvailableExtensionPoints()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := extensionPointNames(points), []string{"ep1", "ep2"}; !slices.Equal(got, want) {
		t.Fatalf("AvailableExtensionPoints() = %v, want %v", got, want)
	}
	if got, want := points[0].TargetNames(), []string{"local", "pl.first"}; !slices.Equal(got, want) {
		t.Errorf("ep1 bound targets = %v, want %v", got, want)
	}
	if got := points[1].TargetNames(); len(got) != 0 {
		t.Errorf("ep2 bound targets = %v, want none", got)
	}
}

func TestAvailableExtensionPoints_DuplicatesAreKept(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	a := newModule(t, "org#a;1")
	b := newModule(t, "org#b;1")
	addExtensionPoints(t, a, &ExtensionPoint{Name: "package", Description: "from a"})
	addExtensionPoints(t, b, &ExtensionPoint{Name: "package", Description: "from b"})
	addTargets(t, root, &Target{Name: "jar", ExtensionPoint: "package"})
	link(t, root, a, "")
	link(t, root, b, "")

	points, err := root.AvailableExtensionPoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d extension points, want 2 (no de-duplication)", len(points))
	}
	for _, e := range points {
		if got := e.TargetNames(); !slices.Equal(got, []string{"jar"}) {
			t.Errorf("%s (%s) bound targets = %v, want [jar]", e.Name, e.Description, got)
		}
	}
}

func TestAvailableExtensionPoints_FreshPerCall(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	addExtensionPoints(t, root, &ExtensionPoint{Name: "package"})
	addTargets(t, root, &Target{Name: "jar", ExtensionPoint: "package"})

	first, err := root.AvailableExtensionPoints()
	if err != nil {
		t.Fatal(err)
	}
	second, err := root.AvailableExtensionPoints()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second, cmpExtensionPoints); diff != "" {
		t.Errorf("repeated calls differ (-first +second):\n%s", diff)
	}
	if got := second[0].TargetNames(); !slices.Equal(got, []string{"jar"}) {
		t.Errorf("second call bound targets = %v, want [jar] (no accumulation)", got)
	}
}

func TestAvailableProperties_BackFillPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fromB    *PropertyDescriptor
		fromC    *PropertyDescriptor
		want     *PropertyDescriptor
		onlyInC  bool
		changedB bool
	}{
		{
			name:  "empty description is back-filled by a later import",
			fromB: &PropertyDescriptor{Required: false, DefaultValue: "b-default"},
			fromC: &PropertyDescriptor{Description: "desc", Required: true, DefaultValue: "c-default"},
			want:  &PropertyDescriptor{Description: "desc", Required: true, DefaultValue: "c-default"},
		},
		{
			name:  "first non-empty description wins",
			fromB: &PropertyDescriptor{Description: "from b", DefaultValue: "b-default"},
			fromC: &PropertyDescriptor{Description: "from c", Required: true, DefaultValue: "c-default"},
			want:  &PropertyDescriptor{Description: "from b", DefaultValue: "b-default"},
		},
		{
			name:  "later empty description changes nothing",
			fromB: &PropertyDescriptor{DefaultValue: "b-default"},
			fromC: &PropertyDescriptor{Required: true, DefaultValue: "c-default"},
			want:  &PropertyDescriptor{DefaultValue: "b-default"},
		},
		{
			name:    "missing names are inserted",
			fromC:   &PropertyDescriptor{Description: "only c"},
			want:    &PropertyDescriptor{Description: "only c"},
			onlyInC: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newModule(t, "org#a;1")
			b := newModule(t, "org#b;1")
			c := newModule(t, "org#c;1")
			if !tt.onlyInC {
				addProperty(t, b, "p", tt.fromB)
			}
			addProperty(t, c, "p", tt.fromC)
			link(t, a, b, "b.")
			link(t, a, c, "c.")

			props, err := a.AvailableProperties()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, props["p"]); diff != "" {
				t.Errorf("AvailableProperties()[p] mismatch (-want +got):\n%s", diff)
			}
			if _, ok := props["b.p"]; ok {
				t.Error("property names must not be aliased")
			}
		})
	}
}

func TestAvailableProperties_LocalTakesPrecedence(t *testing.T) {
	t.Parallel()

	a := newModule(t, "org#a;1")
	b := newModule(t, "org#b;1")
	addProperty(t, a, "p", &PropertyDescriptor{Description: "local", DefaultValue: "x"})
	addProperty(t, b, "p", &PropertyDescriptor{Description: "imported", DefaultValue: "y"})
	link(t, a, b, "")

	props, err := a.AvailableProperties()
	if err != nil {
		t.Fatal(err)
	}
	if got := props["p"]; got.Description != "local" || got.DefaultValue != "x" {
		t.Errorf("AvailableProperties()[p] = %+v, want the local descriptor", got)
	}
}

func TestAvailableProperties_DoesNotMutateStoredDescriptors(t *testing.T) {
	t.Parallel()

	a := newModule(t, "org#a;1")
	b := newModule(t, "org#b;1")
	stored := &PropertyDescriptor{DefaultValue: "a"}
	addProperty(t, a, "p", stored)
	addProperty(t, b, "p", &PropertyDescriptor{Description: "from b", Required: true})
	link(t, a, b, "")

	props, err := a.AvailableProperties()
	if err != nil {
		t.Fatal(err)
	}
	if props["p"].Description != "from b" {
		t.Fatalf("merge not applied: %+v", props["p"])
	}
	if stored.Description != "" || stored.Required {
		t.Errorf("stored descriptor was patched: %+v", stored)
	}

	props["p"].Description = "caller edit"
	again, err := a.AvailableProperties()
	if err != nil {
		t.Fatal(err)
	}
	if again["p"].Description != "from b" {
		t.Errorf("caller edits leaked into the next query: %+v", again["p"])
	}
}

func TestMergePropertyDescriptor(t *testing.T) {
	t.Parallel()

	existing := &PropertyDescriptor{Name: "p", DefaultValue: "old"}
	if !MergePropertyDescriptor(existing, &PropertyDescriptor{Description: "d", Required: true, DefaultValue: "new"}) {
		t.Fatal("expected merge to apply")
	}
	want := &PropertyDescriptor{Name: "p", Description: "d", Required: true, DefaultValue: "new"}
	if diff := cmp.Diff(want, existing); diff != "" {
		t.Errorf("merged descriptor mismatch (-want +got):\n%s", diff)
	}
	if MergePropertyDescriptor(existing, &PropertyDescriptor{Description: "other"}) {
		t.Error("a described descriptor must not be overwritten")
	}
}

func TestAvailableParameters(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	lib := newModule(t, "org#lib;1")
	if err := root.AddParameter(&Parameter{Name: "target.dir"}); err != nil {
		t.Fatal(err)
	}
	if err := lib.AddParameter(&Parameter{Name: "javac.debug", Default: "true"}); err != nil {
		t.Fatal(err)
	}
	link(t, root, lib, "lib.")

	params, err := root.AvailableParameters()
	if err != nil {
		t.Fatal(err)
	}
	want := []*Parameter{{Name: "target.dir"}, {Name: "javac.debug", Default: "true"}}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("AvailableParameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailable_Idempotent(t *testing.T) {
	t.Parallel()

	root := newModule(t, "org#root;1")
	b := newModule(t, "org#b;1")
	c := newModule(t, "org#c;1")
	addTargets(t, root, &Target{Name: "all", Depends: []string{"b.compile"}})
	addTargets(t, b, &Target{Name: "compile", ExtensionPoint: "build"})
	addExtensionPoints(t, c, &ExtensionPoint{Name: "build"})
	addProperty(t, b, "p", &PropertyDescriptor{})
	addProperty(t, c, "p", &PropertyDescriptor{Description: "c"})
	link(t, root, b, "b.")
	link(t, root, c, "")

	for range 3 {
		t1, err := root.AvailableTargets()
		if err != nil {
			t.Fatal(err)
		}
		t2, _ := root.AvailableTargets()
		if diff := cmp.Diff(t1, t2); diff != "" {
			t.Errorf("AvailableTargets() not idempotent:\n%s", diff)
		}

		p1, _ := root.AvailableProperties()
		p2, _ := root.AvailableProperties()
		if diff := cmp.Diff(p1, p2); diff != "" {
			t.Errorf("AvailableProperties() not idempotent:\n%s", diff)
		}

		e1, _ := root.AvailableExtensionPoints()
		e2, _ := root.AvailableExtensionPoints()
		if diff := cmp.Diff(e1, e2, cmpExtensionPoints); diff != "" {
			t.Errorf("AvailableExtensionPoints() not idempotent:\n%s", diff)
		}
	}
}

func TestAvailable_CyclicImport(t *testing.T) {
	t.Parallel()

	a := newModule(t, "org#a;1")
	b := newModule(t, "org#b;1")
	c := newModule(t, "org#c;1")
	link(t, a, b, "")
	link(t, b, c, "")
	link(t, c, a, "")

	queries := map[string]func() error{
		"targets":          func() error { _, err := a.AvailableTargets(); return err },
		"unbound":          func() error { _, err := a.UnboundTargets(); return err },
		"extension points": func() error { _, err := a.AvailableExtensionPoints(); return err },
		"properties":       func() error { _, err := a.AvailableProperties(); return err },
		"parameters":       func() error { _, err := a.AvailableParameters(); return err },
		"find target":      func() error { _, err := a.FindTarget("x", true); return err },
		"imported module":  func() error { _, err := a.ImportedModule("nothing"); return err },
	}

	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := query()
			if !errors.Is(err, ErrCyclicImport) {
				t.Fatalf("error = %v, want ErrCyclicImport", err)
			}
			var cycleErr *CyclicImportError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("error %T is not a *CyclicImportError", err)
			}
			want := []string{"org#a;1", "org#b;1", "org#c;1", "org#a;1"}
			if !slices.Equal(cycleErr.Cycle, want) {
				t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, want)
			}
		})
	}
}

func TestAvailable_SelfImport(t *testing.T) {
	t.Parallel()

	a := newModule(t, "org#a;1")
	link(t, a, a, "self.")

	_, err := a.AvailableTargets()
	var cycleErr *CyclicImportError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("error = %v, want *CyclicImportError", err)
	}
	if want := []string{"org#a;1", "org#a;1"}; !slices.Equal(cycleErr.Cycle, want) {
		t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, want)
	}
}
