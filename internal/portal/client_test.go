package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

const loginPage = `<html><body><div id="content"><div class="contentright1">
<form method="post" action="/index.php/login/check">
<table>
<tr><td colspan="2">Login</td></tr>
<tr><td colspan="2"><input type="hidden" name="token" value="abc"></td></tr>
<tr><td>User</td><td><input type="text" name="uname"></td></tr>
<tr><td>Password</td><td><input type="password" name="pass"></td></tr>
<tr><td></td><td><input class="button" type="submit" name="login" value="Login"></td></tr>
</table></form></div></div></body></html>`

const attendancePage = `<html><body><div id="content"><div class="contentright1"><div>
<table class="profile"><tr><td>Name</td><td>:</td><td><b>Rahim Uddin</b></td></tr></table>
<table class="list_table">
<tr><th>Working Days</th><th>Present</th><th>Leave</th><th>Absent</th></tr>
<tr><td>42</td><td>38 days</td><td>1</td><td>3</td></tr>
</table></div></div></div></body></html>`

func portalServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/index.php/login/check", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("token") != "abc" || r.PostForm.Get("login") != "Login" {
			t.Errorf("hidden fields not forwarded: %v", r.PostForm)
		}
		if r.PostForm.Get("uname") != "student" || r.PostForm.Get("pass") != "secret" {
			http.Redirect(w, r, "/index.php/login?error=1", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/index.php/home", http.StatusFound)
	})
	mux.HandleFunc("/index.php/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/index.php/home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>Welcome</body></html>")
	})
	mux.HandleFunc("/index.php/attendance", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sess"); err != nil || c.Value != "ok" {
			http.Redirect(w, r, "/index.php/login", http.StatusFound)
			return
		}
		fmt.Fprint(w, page)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeSuccess(t *testing.T) {
	srv := portalServer(t, attendancePage)
	c, err := NewHTTPClient(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var stages []Stage
	snap, err := c.Scrape(context.Background(), Credentials{Username: "student", Password: "secret"}, func(s Stage) {
		stages = append(stages, s)
	})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	want := attendance.Counters{WorkingDays: 42, Present: 38, Leave: 1, Absent: 3}
	if snap.Counters != want {
		t.Errorf("counters = %+v, want %+v", snap.Counters, want)
	}
	if snap.StudentName != "Rahim Uddin" {
		t.Errorf("name = %q", snap.StudentName)
	}
	if len(stages) != 1 || stages[0] != StageAuthenticated {
		t.Errorf("expected authenticated stage, got %v", stages)
	}
}

func TestScrapeAuthRejected(t *testing.T) {
	srv := portalServer(t, attendancePage)
	c, _ := NewHTTPClient(srv.URL, 5*time.Second)

	_, err := c.Scrape(context.Background(), Credentials{Username: "student", Password: "wrong"}, nil)
	if attendance.KindOf(err) != attendance.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestScrapeStructureChanged(t *testing.T) {
	srv := portalServer(t, "<html><body><table class=\"list_table\"><tr><td>x</td></tr></table></body></html>")
	c, _ := NewHTTPClient(srv.URL, 5*time.Second)

	_, err := c.Scrape(context.Background(), Credentials{Username: "student", Password: "secret"}, nil)
	if attendance.KindOf(err) != attendance.KindStructure {
		t.Errorf("expected structure error, got %v", err)
	}
}

func TestScrapeTimeoutIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, _ := NewHTTPClient(srv.URL, 50*time.Millisecond)
	_, err := c.Scrape(context.Background(), Credentials{Username: "a", Password: "b"}, nil)
	kind := attendance.KindOf(err)
	if kind != attendance.KindNetwork || !kind.Retryable() {
		t.Errorf("expected retryable network error, got %v", err)
	}
}

func TestScrapeUnreachableIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewHTTPClient(url, time.Second)
	_, err := c.Scrape(context.Background(), Credentials{Username: "a", Password: "b"}, nil)
	if attendance.KindOf(err) != attendance.KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestNewHTTPClientRejectsScheme(t *testing.T) {
	if _, err := NewHTTPClient("file:///etc/passwd", time.Second); err == nil {
		t.Error("expected error for file scheme")
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12", 12}, {"38 days", 38}, {"", 0}, {"n/a", 0}, {"007", 7},
	}
	for _, tt := range tests {
		if got := leadingInt(tt.in); got != tt.want {
			t.Errorf("leadingInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMock(t *testing.T) {
	m := &Mock{Name: "A", Counters: attendance.Counters{Present: 1}}
	var called bool
	snap, err := m.Scrape(context.Background(), Credentials{}, func(Stage) { called = true })
	if err != nil || snap.Counters.Present != 1 || !called {
		t.Errorf("unexpected mock result %+v, %v, stage=%v", snap, err, called)
	}
}
