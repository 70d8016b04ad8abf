// Package styles holds the lipgloss palette and styles shared by the TUI views.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Effect kinds
	EffectStart  = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	EffectChange = lipgloss.NewStyle().Foreground(BlueColor)
	EffectSet    = lipgloss.NewStyle().Foreground(WarningColor)
	EffectStop   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Counter value
	Value = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 2)

	// Content area
	ContentBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// Effect log
	EffectLog = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	// Prompt for the set-value input
	Prompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(WarningColor)

	// Error banner
	ErrorBanner = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(ErrorColor).
			Padding(0, 1)
)
