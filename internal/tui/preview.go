package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/stats"
)

func renderDetail(e *attendance.Entry, month stats.Monthly, calendarOnly bool, width, height, scroll int) string {
	if e == nil {
		return lipglossCenter("Select a day", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := detailTitleStyle.Width(contentWidth).Render(e.Date + "  " + statusStyle(e.DayStatus).Render(string(e.DayStatus)))

	rows := []string{title}
	if e.Name != "" {
		rows = append(rows, detailRow("Student", e.Name))
	}
	if e.Counters != nil && !calendarOnly {
		rows = append(rows,
			detailRow("Working days", fmt.Sprint(e.Counters.WorkingDays)),
			detailRow("Present", fmt.Sprint(e.Counters.Present)),
			detailRow("Absent", fmt.Sprint(e.Counters.Absent)),
			detailRow("Leave", fmt.Sprint(e.Counters.Leave)),
		)
	}
	rows = append(rows, detailRow("Fetched", e.FetchedAt.Format("Jan 2, 15:04")))

	sent := "no"
	if e.NotificationSent {
		sent = "yes"
		if e.NotificationSentAt != nil {
			sent += " · " + e.NotificationSentAt.Format("15:04")
		}
	}
	rows = append(rows, detailRow("Notified", sent))

	if e.Error != "" {
		rows = append(rows, "", bannerHintStyle.Width(contentWidth).Render(wrapText(e.Error, contentWidth-2)))
	}

	if !calendarOnly {
		rows = append(rows, "", renderMonth(month, contentWidth))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + detailValueStyle.Render(value)
}

func renderMonth(m stats.Monthly, width int) string {
	if m.Month == "" {
		return ""
	}
	header := detailTitleStyle.MarginBottom(0).Render("Month " + m.Month)
	line := fmt.Sprintf("%s %d  %s %d  %s %d  of %d",
		statusStyle(attendance.Present).Render("P"), m.Present,
		statusStyle(attendance.Absent).Render("A"), m.Absent,
		statusStyle(attendance.Leave).Render("L"), m.Leave,
		m.WorkingDays,
	)
	rate := detailValueStyle.Render(fmt.Sprintf("%.0f%% present", m.Rate()))
	return lipgloss.NewStyle().Width(width).Render(header + "\n" + line + "\n" + rate)
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
