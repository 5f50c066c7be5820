package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var banner = []string{
	`┌─┐┌┬┐┌┬┐┌─┐┌┐┌┌┬┐┬ ┬┌─┐┌┬┐┌─┐┬ ┬`,
	`├─┤ │  │ ├┤ │││ ││││││├─┤ │ │  ├─┤`,
	`┴ ┴ ┴  ┴ └─┘┘└┘─┴┘└┴┘┴ ┴ ┴ └─┘┴ ┴`,
}

// renderWelcome is shown until the first successful fetch.
func renderWelcome(width, height int, configured bool) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string
	for _, l := range banner {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "", "")

	if configured {
		lines = append(lines, "    "+keyStyle.Render("[r]")+"  "+labelStyle.Render("Fetch attendance now"))
	} else {
		lines = append(lines, "    "+helpDimStyle.Render("Set username and password in the config file first"))
	}
	lines = append(lines, "    "+keyStyle.Render("[o]")+"  "+labelStyle.Render("Open the portal"))
	lines = append(lines, "")
	lines = append(lines, "    "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
