package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
)

// Desktop shows a native desktop notification.
type Desktop struct {
	goos string
}

func NewDesktop() Desktop {
	return Desktop{goos: runtime.GOOS}
}

// binary is the notifier program for goos, or "" when there is none.
func binary(goos string) string {
	switch goos {
	case "darwin":
		return "osascript"
	case "linux", "freebsd", "openbsd":
		return "notify-send"
	default:
		return ""
	}
}

// Available reports whether this host can show desktop notifications.
func (d Desktop) Available() bool {
	bin := binary(d.goos)
	if bin == "" {
		return false
	}
	_, err := lookPath(bin)
	return err == nil
}

// lookPath is exec.LookPath; tests replace it.
var lookPath = exec.LookPath

func (d Desktop) command(ctx context.Context, n Notification) (*exec.Cmd, error) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(n.Body), strconv.Quote(n.Title))
		return exec.CommandContext(ctx, "osascript", "-e", script), nil
	case "linux", "freebsd", "openbsd":
		return exec.CommandContext(ctx, "notify-send", "--app-name=attendwatch", n.Title, n.Body), nil
	default:
		return nil, fmt.Errorf("desktop notifications are not supported on %s", d.goos)
	}
}

func (d Desktop) Notify(ctx context.Context, n Notification) error {
	cmd, err := d.command(ctx, n)
	if err != nil {
		return err
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (%s)", cmd.Path, err, out)
	}
	return nil
}
