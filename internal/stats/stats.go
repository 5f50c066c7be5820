package stats

import (
	"fmt"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// Monthly is the tally of classified days in one month.
type Monthly struct {
	Month       string `json:"month"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
	Leave       int    `json:"leave"`
	WorkingDays int    `json:"workingDays"`
}

// Rate is the share of working days marked present, in percent.
func (m Monthly) Rate() float64 {
	if m.WorkingDays == 0 {
		return 0
	}
	return float64(m.Present) * 100 / float64(m.WorkingDays)
}

// Month tallies entries in month (YYYY-MM). Failed pulls, weekend days and
// holidays are not counted.
func Month(series attendance.Series, month string, holidays map[string]bool, weekend []time.Weekday) (Monthly, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return Monthly{}, fmt.Errorf("invalid month %q: want YYYY-MM", month)
	}
	m := Monthly{Month: month}
	for _, e := range series {
		if len(e.Date) < 7 || e.Date[:7] != month || e.DayStatus == attendance.Error {
			continue
		}
		d, err := time.Parse(attendance.DateLayout, e.Date)
		if err != nil || holidays[e.Date] || isWeekend(d.Weekday(), weekend) {
			continue
		}
		switch e.DayStatus {
		case attendance.Present:
			m.Present++
		case attendance.Absent:
			m.Absent++
		case attendance.Leave:
			m.Leave++
		}
	}
	m.WorkingDays = m.Present + m.Absent + m.Leave
	return m, nil
}

func isWeekend(wd time.Weekday, weekend []time.Weekday) bool {
	for _, w := range weekend {
		if w == wd {
			return true
		}
	}
	return false
}
