package logging

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
)

// Logger is the logging surface used across the app.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options configure Rollbar forwarding. An empty token disables it.
type Options struct {
	RollbarToken string
	Environment  string
	CodeVersion  string
	Debug        bool
}

// StdLogger writes to a std logger and forwards warnings and errors to
// Rollbar when enabled.
type StdLogger struct {
	std     *log.Logger
	debug   bool
	rollbar bool
}

var _ Logger = (*StdLogger)(nil)

func New(std *log.Logger, opts Options) *StdLogger {
	l := &StdLogger{std: std, debug: opts.Debug}
	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Environment)
		rollbar.SetCodeVersion(opts.CodeVersion)
		rollbar.SetEnabled(true)
		l.rollbar = true
	} else {
		rollbar.SetEnabled(false)
	}
	return l
}

// NewWriter returns a StdLogger without Rollbar writing to w.
func NewWriter(w io.Writer, prefix string) *StdLogger {
	return &StdLogger{std: log.New(w, prefix, log.LstdFlags)}
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, arg := range args {
		fmt.Fprintf(&b, " %+v", arg)
	}
	l.std.Println(b.String())
}

func (l *StdLogger) forward(fn func(...interface{}), msg string, args []interface{}) {
	if !l.rollbar {
		return
	}
	fn(append([]interface{}{msg}, args...)...)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.print("INFO", msg, args)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.forward(rollbar.Warning, msg, args)
	l.print("WARN", msg, args)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.forward(rollbar.Error, msg, args)
	l.print("ERROR", msg, args)
}

// Flush waits for queued Rollbar items to be delivered.
func (l *StdLogger) Flush() {
	if l.rollbar {
		rollbar.Wait()
	}
}

type nop struct{}

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Warn(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}

// Nop discards everything.
func Nop() Logger { return nop{} }
