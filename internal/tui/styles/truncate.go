package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis is appended to truncated lines.
const Ellipsis = "…"

// Truncate shortens s to maxWidth terminal columns, keeping ANSI escape
// sequences intact and appending Ellipsis when anything was cut. A
// non-positive maxWidth means unlimited.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}
