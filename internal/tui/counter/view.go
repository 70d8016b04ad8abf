package counter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/refract/internal/tui/styles"
)

// View renders the counter value.
func View(p Props) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Muted.Render("value "),
		styles.Value.Render(fmt.Sprintf("%d", p.Value)),
	)
}

// renderLog renders the effect log, oldest first.
func renderLog(entries []Effect, total int) string {
	if len(entries) == 0 {
		return styles.EffectLog.Render(styles.Subtitle.Render("no effects yet"))
	}
	lines := make([]string, 0, len(entries)+1)
	if hidden := total - len(entries); hidden > 0 {
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("… %d earlier", hidden)))
	}
	for _, e := range entries {
		lines = append(lines, effectStyle(e).Render(e.String()))
	}
	return styles.EffectLog.Render(strings.Join(lines, "\n"))
}

func effectStyle(e Effect) lipgloss.Style {
	switch e.(type) {
	case Start:
		return styles.EffectStart
	case ValueChange:
		return styles.EffectChange
	case ValueSet:
		return styles.EffectSet
	case Stop:
		return styles.EffectStop
	default:
		return styles.Text
	}
}
