package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(e attendance.Entry, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	date := e.Date
	if t, err := time.Parse(attendance.DateLayout, e.Date); err == nil {
		date = t.Format("Mon Jan 2")
	}

	var line string
	if selected {
		line = itemSelectedStyle.Render("> " + truncateStr(date, width-4))
	} else {
		line = itemDateStyle.Render("  " + truncateStr(date, width-4))
	}

	meta := "  " + statusStyle(e.DayStatus).Render(string(e.DayStatus)) + " " + itemTimeStyle.Render("· "+relativeTime(e.FetchedAt))

	return line + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(entries attendance.Series, cursor int, height int, width int) string {
	if len(entries) == 0 {
		return lipglossCenter("No attendance yet", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(entries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
