package cmd

import (
	"fmt"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
	"github.com/matheuskafuri/attendwatch/internal/progress"
)

// parseMonth validates a YYYY-MM flag, defaulting to the month of now.
func parseMonth(s string, now time.Time) (string, error) {
	if s == "" {
		return now.Format("2006-01"), nil
	}
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return s, nil
}

func formatEntry(e attendance.Entry) string {
	line := fmt.Sprintf("%s  %-12s", e.Date, e.DayStatus)
	if e.Counters != nil {
		c := e.Counters
		line += fmt.Sprintf("  P %d  A %d  L %d  of %d", c.Present, c.Absent, c.Leave, c.WorkingDays)
	}
	if e.NotificationSent {
		line += "  notified"
	}
	if e.Error != "" {
		line += "  " + e.Error
	}
	return line
}

func formatProgress(s progress.State) string {
	switch {
	case s.Progress == progress.Failed:
		return "failed  " + s.Message
	case s.Progress >= progress.Done:
		return fmt.Sprintf("done    %s (%s)", s.Message, formatAge(time.Since(s.Timestamp)))
	default:
		return fmt.Sprintf("%3d%%    %s", s.Progress, s.Message)
	}
}

func formatHoliday(h holiday.Holiday) string {
	if h.IsRange {
		return fmt.Sprintf("%s  %s (%d-day range)", h.Date, h.Name, h.TotalDays)
	}
	return fmt.Sprintf("%s  %s", h.Date, h.Name)
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
