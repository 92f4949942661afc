// SPDX-License-Identifier: MPL-2.0

// Package repository resolves module ids to descriptor files through a
// repository index (repository.toml):
//
//	[[modules]]
//	organisation = "org.example"
//	name         = "build-java"
//	revision     = "1.2.0"
//	descriptor   = "build-java/1.2.0/module.cue"
//
// Descriptor paths are relative to the directory holding the index. A
// request without a revision, or with the dynamic revision
// "latest.integration", selects the highest revision by semantic version
// ordering.
package repository
