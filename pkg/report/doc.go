// SPDX-License-Identifier: MPL-2.0

// Package report models what a module exposes to the task runner and
// computes the flattened view of everything visible through its imports.
//
// A [ModuleReport] holds a module's own targets, extension points,
// parameters and property descriptors, plus links to the reports of the
// modules it imports. Two families of accessors exist:
//
//   - Local accessors ([ModuleReport.Targets], [ModuleReport.Target], ...)
//     only look at what was added to this report.
//   - Available accessors ([ModuleReport.AvailableTargets],
//     [ModuleReport.AvailableExtensionPoints], [ModuleReport.AvailableProperties],
//     [ModuleReport.UnboundTargets]) walk the transitive import closure,
//     rewrite target names with import aliases and merge the results.
//
// # Aliases
//
// An import alias is a plain prefix. A target "compile" imported under
// alias "b." is visible as "b.compile". Aliases stack: each level only
// prepends its own alias to whatever the levels below produced.
//
// # Extension points
//
// Extension points are never renamed. A target binds to an extension point
// by name through its ExtensionPoint field, so a point declared in one
// module collects targets declared anywhere in the closure.
//
// # Properties
//
// Property names are never renamed either. When the same property is seen
// more than once, the first descriptor wins unless it has no description
// and a later one does, in which case the later description, required flag
// and default value are copied over ([MergePropertyDescriptor]).
//
// Reports are built once by a loader and then only queried. Every available
// accessor returns freshly allocated values, so queries never mutate the
// stored graph and may run concurrently once construction is complete.
package report
