package notify

import (
	"fmt"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// Decision is the gate's verdict for one pull.
type Decision struct {
	Should bool
	Reason string
}

// Decide reports whether a notification should fire for newStatus on today.
// At most one notification goes out per (date, status) pair.
func Decide(newStatus attendance.Status, today string, history attendance.Series) Decision {
	existing, ok := history.Find(today)
	switch {
	case !ok:
		return Decision{Should: true, Reason: "first fetch for today"}
	case existing.DayStatus != newStatus:
		return Decision{Should: true, Reason: fmt.Sprintf("status changed from %s to %s", existing.DayStatus, newStatus)}
	case !existing.NotificationSent:
		return Decision{Should: true, Reason: "not sent previously"}
	default:
		return Decision{Should: false, Reason: "already sent and unchanged"}
	}
}
