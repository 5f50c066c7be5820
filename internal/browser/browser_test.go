package browser

import (
	"os/exec"
	"testing"
)

func stubStart(t *testing.T) *[]*exec.Cmd {
	t.Helper()
	var launched []*exec.Cmd
	orig := start
	start = func(c *exec.Cmd) error {
		launched = append(launched, c)
		return nil
	}
	t.Cleanup(func() { start = orig })
	return &launched
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	launched := stubStart(t)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://ac.ncpsc.edu.bd", false},
		{"http://example.com/index.php", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error: %v", tt.url, err)
		}
	}

	if len(*launched) != 2 {
		t.Errorf("launched %d commands, want 2", len(*launched))
	}
}

func TestCommandPerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		c := command(tt.goos, "https://example.com")
		if c.Args[0] != tt.want {
			t.Errorf("command(%q) runs %q, want %q", tt.goos, c.Args[0], tt.want)
		}
		if last := c.Args[len(c.Args)-1]; last != "https://example.com" {
			t.Errorf("command(%q) last arg = %q", tt.goos, last)
		}
	}
}
