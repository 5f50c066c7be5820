package notify

import (
	"fmt"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// Notification is what a Notifier delivers.
type Notification struct {
	Date   string
	Status attendance.Status
	Title  string
	Body   string
}

// Message builds the notification for a classified day.
func Message(date string, status attendance.Status, name string) Notification {
	n := Notification{Date: date, Status: status}
	switch status {
	case attendance.Present:
		n.Title, n.Body = "✅ Attendance Status", "You are marked PRESENT today!"
	case attendance.Absent:
		n.Title, n.Body = "❌ Attendance Alert", "You are marked ABSENT today!"
	case attendance.Leave:
		n.Title, n.Body = "🏖️ Attendance Status", "You are on LEAVE today!"
	case attendance.NoChange:
		n.Title, n.Body = "📊 Attendance Status", "No attendance change detected today."
	default:
		n.Title, n.Body = "📝 Attendance Update", "Attendance data updated successfully."
	}
	if name != "" {
		n.Body = fmt.Sprintf("%s (%s, %s)", n.Body, name, date)
	}
	return n
}
