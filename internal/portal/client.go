package portal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

const (
	loginPath      = "/index.php"
	attendancePath = "/index.php/attendance"
	userAgent      = "attendwatch/1.0"
)

// HTTPClient scrapes the portal over plain HTTP with a cookie session.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid portal url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("portal url scheme must be http or https, got %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}, nil
}

func (c *HTTPClient) Scrape(ctx context.Context, creds Credentials, onStage StageFunc) (attendance.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindUnknown, err)
	}
	hc := &http.Client{Jar: jar}

	loginURL := c.baseURL + loginPath
	doc, _, err := c.get(ctx, hc, loginURL)
	if err != nil {
		return attendance.Snapshot{}, err
	}

	form := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(`input[type="password"]`).Length() > 0
	}).First()
	if form.Length() == 0 {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindStructure, errors.New("login form not found"))
	}
	action, values := loginForm(form, creds)
	target, err := resolve(loginURL, action)
	if err != nil {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindStructure, err)
	}

	doc, finalURL, err := c.post(ctx, hc, target, values)
	if err != nil {
		return attendance.Snapshot{}, err
	}
	if rejected(finalURL, doc) {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindAuth, fmt.Errorf("login rejected at %s", finalURL))
	}
	if onStage != nil {
		onStage(StageAuthenticated)
	}

	doc, _, err = c.get(ctx, hc, c.baseURL+attendancePath)
	if err != nil {
		return attendance.Snapshot{}, err
	}
	return extract(doc)
}

func (c *HTTPClient) get(ctx context.Context, hc *http.Client, target string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", attendance.NewError(attendance.KindUnknown, err)
	}
	return c.do(hc, req)
}

func (c *HTTPClient) post(ctx context.Context, hc *http.Client, target string, values url.Values) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, "", attendance.NewError(attendance.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(hc, req)
}

func (c *HTTPClient) do(hc *http.Client, req *http.Request) (*goquery.Document, string, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, "", attendance.NewError(attendance.KindNetwork, fmt.Errorf("%s: status %d", req.URL, resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", attendance.NewError(attendance.KindUnknown, fmt.Errorf("%s: status %d", req.URL, resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", classifyTransport(err)
	}
	return doc, resp.Request.URL.String(), nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return attendance.NewError(attendance.KindNetwork, err)
	case errors.Is(err, context.Canceled):
		return attendance.NewError(attendance.KindNetwork, err)
	default:
		return attendance.NewError(attendance.KindUnknown, err)
	}
}

// loginForm fills the first text input with the username and the password
// input with the password, keeping hidden fields and the submit button.
func loginForm(form *goquery.Selection, creds Credentials) (string, url.Values) {
	values := url.Values{}
	userSet := false
	form.Find("input").Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		typ := strings.ToLower(in.AttrOr("type", "text"))
		switch {
		case typ == "password":
			values.Set(name, creds.Password)
		case (typ == "text" || typ == "email") && !userSet:
			values.Set(name, creds.Username)
			userSet = true
		case typ == "hidden" || typ == "submit":
			values.Set(name, in.AttrOr("value", ""))
		}
	})
	return form.AttrOr("action", ""), values
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid form action %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

func rejected(finalURL string, doc *goquery.Document) bool {
	lower := strings.ToLower(finalURL)
	if strings.Contains(lower, "login") || strings.Contains(lower, "error") {
		return true
	}
	return doc.Find(`input[type="password"]`).Length() > 0
}

func extract(doc *goquery.Document) (attendance.Snapshot, error) {
	row := doc.Find("table.list_table tr").Eq(1)
	cells := row.Find("td")
	cell := func(i int) (string, bool) {
		s := strings.TrimSpace(cells.Eq(i).Text())
		return s, s != ""
	}

	wd, ok1 := cell(0)
	present, ok2 := cell(1)
	leave, ok3 := cell(2)
	absent, ok4 := cell(3)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindStructure, errors.New("attendance counters not found"))
	}

	name := strings.TrimSpace(doc.Find("table.profile tr").First().Find("td").Eq(2).Find("b").Text())
	return attendance.Snapshot{
		StudentName: name,
		Counters: attendance.Counters{
			WorkingDays: leadingInt(wd),
			Present:     leadingInt(present),
			Absent:      leadingInt(absent),
			Leave:       leadingInt(leave),
		},
	}, nil
}

// leadingInt parses the leading digits of s, or 0 if there are none.
func leadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
