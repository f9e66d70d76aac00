package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Accent color for CANVAS branding
const canvasBlue = "#4285F4"

// CANVAS ASCII art (filled block style)
var canvasArt = []string{
	" ██████╗ █████╗ ███╗   ██╗██╗   ██╗ █████╗ ███████╗",
	"██╔════╝██╔══██╗████╗  ██║██║   ██║██╔══██╗██╔════╝",
	"██║     ███████║██╔██╗ ██║██║   ██║███████║███████╗",
	"██║     ██╔══██║██║╚██╗██║╚██╗ ██╔╝██╔══██║╚════██║",
	"╚██████╗██║  ██║██║ ╚████║ ╚████╔╝ ██║  ██║███████║",
	" ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝  ╚═══╝  ╚═╝  ╚═╝╚══════╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Header    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style // White color for tips (more visible)
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style // Horizontal line separator
	StatusBar lipgloss.Style

	// Canvas panel
	PanelBorder  lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelMeta    lipgloss.Style // Kind/language badge
	PanelDivider lipgloss.Style
	VersionBar   lipgloss.Style
	DiffInsert   lipgloss.Style
	DiffDelete   lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(canvasBlue)),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(canvasBlue)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")), // White for visibility
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray separator line
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")), // Light gray, no background

		PanelBorder:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		PanelTitle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(canvasBlue)),
		PanelMeta:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		PanelDivider: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		VersionBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		DiffInsert:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		DiffDelete:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true),
	}
}

// RenderBanner returns the CANVAS ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range canvasArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Ask for a document, some code, or an essay - it streams into the canvas panel",
	"  • Use /help to see available commands",
	"  • Press Ctrl+O to toggle the panel, Ctrl+V for version history",
	"  • Press Ctrl+C to cancel, Ctrl+D to exit",
}

// RenderWelcomeTips returns styled welcome tips (white for visibility).
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
