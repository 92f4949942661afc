// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the modreport CLI commands.
//
// Every report command takes a module descriptor (a module.cue file or a
// directory holding one), loads it together with its imports through the
// configured repository index and prints one view of the resulting report.
package cmd
