package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(entryCount int, lastFetched string, width int, running bool) string {
	accent := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %d days", entryCount)
	if lastFetched != "" {
		left += " · fetched " + lastFetched
	}
	if running {
		left += " · " + accent.Render("fetching")
	}

	right := " r fetch  o portal  ? help  q quit "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
