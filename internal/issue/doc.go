// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into user-facing messages: an
// ActionableError states what was attempted, on what, and how to fix it,
// and may point at a catalog Issue carrying longer Markdown guidance
// rendered for the terminal.
package issue
