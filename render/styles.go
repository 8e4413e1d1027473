package render

import "github.com/charmbracelet/lipgloss"

// Semantic colors, adapting to light and dark terminal backgrounds.
var (
	successColor = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#8BC34A"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#e53935"}
	warningColor = lipgloss.AdaptiveColor{Light: "#b26a00", Dark: "#FFC107"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#2196F3"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	accentColor  = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
)

// Styles groups the lipgloss styles shared by all terminal output.
type Styles struct {
	// Text
	Prompt lipgloss.Style
	Bold   lipgloss.Style
	Muted  lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Panels
	Banner     lipgloss.Style
	ToolPanel  lipgloss.Style
	ThinkPanel lipgloss.Style
	WarnPanel  lipgloss.Style
	ErrorPanel lipgloss.Style
}

// DefaultStyles returns the standard style set. In a non-terminal context
// lipgloss degrades every style to plain text on its own.
func DefaultStyles() Styles {
	panel := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(infoColor).Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(mutedColor),
		Success: lipgloss.NewStyle().Foreground(successColor),
		Error:   lipgloss.NewStyle().Foreground(errorColor),
		Warning: lipgloss.NewStyle().Foreground(warningColor),

		Banner:     panel.BorderForeground(accentColor),
		ToolPanel:  panel.BorderForeground(mutedColor),
		ThinkPanel: panel.BorderForeground(mutedColor).Foreground(mutedColor),
		WarnPanel:  panel.BorderForeground(warningColor).Foreground(warningColor),
		ErrorPanel: panel.BorderForeground(errorColor).Foreground(errorColor),
	}
}
