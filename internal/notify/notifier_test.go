package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/logging"
)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestMessage(t *testing.T) {
	tests := []struct {
		status attendance.Status
		title  string
		body   string
	}{
		{attendance.Present, "✅ Attendance Status", "You are marked PRESENT today!"},
		{attendance.Absent, "❌ Attendance Alert", "You are marked ABSENT today!"},
		{attendance.Leave, "🏖️ Attendance Status", "You are on LEAVE today!"},
		{attendance.NoChange, "📊 Attendance Status", "No attendance change detected today."},
		{attendance.InitialData, "📝 Attendance Update", "Attendance data updated successfully."},
	}
	for _, tt := range tests {
		n := Message("2025-03-02", tt.status, "")
		if n.Title != tt.title || n.Body != tt.body {
			t.Errorf("Message(%s) = %q/%q, want %q/%q", tt.status, n.Title, n.Body, tt.title, tt.body)
		}
	}

	n := Message("2025-03-02", attendance.Present, "Rahim")
	if !strings.Contains(n.Body, "Rahim") || !strings.Contains(n.Body, "2025-03-02") {
		t.Errorf("expected name and date in body, got %q", n.Body)
	}
}

func TestMultiAttemptsAll(t *testing.T) {
	failing := &recorder{err: errors.New("no display")}
	ok := &recorder{}
	m := Multi{failing, ok, Log{Logger: logging.Nop()}}

	err := m.Notify(context.Background(), Message("2025-03-02", attendance.Present, ""))
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(ok.got) != 1 {
		t.Errorf("expected second notifier to run, got %d calls", len(ok.got))
	}
	if !Delivered(err) {
		t.Errorf("one channel delivered, Delivered(%v) = false", err)
	}
}

func TestMultiDelivered(t *testing.T) {
	log := Log{Logger: logging.Nop()}
	tests := []struct {
		name string
		m    Multi
		want bool
	}{
		{"all ok", Multi{log, &recorder{}}, true},
		{"one channel fails", Multi{log, &recorder{}, &recorder{err: errors.New("smtp")}}, true},
		{"only log succeeds", Multi{log, &recorder{err: errors.New("no display")}}, false},
		{"log only", Multi{log}, true},
		{"all fail", Multi{&recorder{err: errors.New("a")}, &recorder{err: errors.New("b")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Notify(context.Background(), Message("2025-03-02", attendance.Absent, ""))
			if got := Delivered(err); got != tt.want {
				t.Errorf("Delivered(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestDesktopAvailable(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if (Desktop{goos: "linux"}).Available() {
		t.Error("linux without notify-send should be unavailable")
	}

	lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	if !(Desktop{goos: "linux"}).Available() {
		t.Error("linux with notify-send should be available")
	}
	if (Desktop{goos: "windows"}).Available() {
		t.Error("windows has no desktop notifier")
	}
}

func TestDesktopCommand(t *testing.T) {
	n := Notification{Title: "T", Body: `say "hi"`}

	cmd, err := Desktop{goos: "linux"}.command(context.Background(), n)
	if err != nil {
		t.Fatalf("linux: %v", err)
	}
	if got := cmd.Args[len(cmd.Args)-1]; got != n.Body {
		t.Errorf("expected body as last arg, got %q", got)
	}

	cmd, err = Desktop{goos: "darwin"}.command(context.Background(), n)
	if err != nil {
		t.Fatalf("darwin: %v", err)
	}
	if !strings.Contains(cmd.Args[2], `"say \"hi\""`) {
		t.Errorf("expected quoted body in script, got %q", cmd.Args[2])
	}

	if _, err := (Desktop{goos: "plan9"}).command(context.Background(), n); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestEmailPrepare(t *testing.T) {
	e := NewEmail("key", "bot@example.com", "me@example.com")
	m := e.prepare(Message("2025-03-02", attendance.Absent, ""))

	if len(m.Personalizations) != 1 {
		t.Fatalf("expected one personalization, got %d", len(m.Personalizations))
	}
	p := m.Personalizations[0]
	if !strings.Contains(p.Subject, "Attendance Alert") || !strings.Contains(p.Subject, "2025-03-02") {
		t.Errorf("unexpected subject %q", p.Subject)
	}
	if len(p.To) != 1 || p.To[0].Address != "me@example.com" {
		t.Errorf("unexpected recipients %+v", p.To)
	}
	if len(m.Content) != 2 {
		t.Errorf("expected plain and html content, got %d", len(m.Content))
	}
}
