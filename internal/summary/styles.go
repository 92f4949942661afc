// SPDX-License-Identifier: MPL-2.0

package summary

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorHighlight = lipgloss.Color("#3B82F6")
	colorWarning   = lipgloss.Color("#F59E0B")
)

var (
	// moduleStyle renders the module id heading.
	moduleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	// sectionStyle renders section headings such as "Targets".
	sectionStyle = lipgloss.NewStyle().Bold(true)

	nameStyle    = lipgloss.NewStyle().Foreground(colorHighlight)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
)
