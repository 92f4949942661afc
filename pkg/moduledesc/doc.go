// SPDX-License-Identifier: MPL-2.0

// Package moduledesc parses module descriptors (module.cue).
//
// A descriptor declares a module's identity, its targets, extension points,
// parameters and properties, and the modules it imports:
//
//	module:      "org.example#build-java;1.2.0"
//	description: "Java build"
//
//	extension_points: [{name: "package", depends: ["compile"]}]
//	targets: [
//		{name: "compile"},
//		{name: "jar", depends: ["compile"], extension_point: "package"},
//	]
//	properties: "src.dir": {description: "Source directory", default: "src"}
//	imports: [{module: "org.example#std-phases;1.0", as: "phases."}]
//
// Descriptors are validated against an embedded CUE schema, then against
// the rules the schema cannot express (unique target, extension point and
// alias names). [Descriptor.Populate] copies the local declarations into a
// [report.ModuleReport]; linking imports is left to the loader.
package moduledesc
