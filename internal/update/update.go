// Package update checks GitHub releases for a newer attendwatch build on the
// configured channel.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Channels a user can follow.
const (
	ChannelStable     = "stable"
	ChannelPrerelease = "prerelease"
)

// releasesURL lists published releases, newest first.
var releasesURL = "https://api.github.com/repos/matheuskafuri/attendwatch/releases?per_page=20"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	Prerelease    bool
	URL           string
}

type ghRelease struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Checker looks for releases newer than the running build.
type Checker struct {
	Channel string
	Client  *http.Client
}

func New(channel string) *Checker {
	if channel == "" {
		channel = ChannelStable
	}
	return &Checker{Channel: channel, Client: http.DefaultClient}
}

// ValidChannel reports whether name is a known channel.
func ValidChannel(name string) bool {
	return name == ChannelStable || name == ChannelPrerelease
}

// Check returns the newest release on the channel when it is newer than
// currentVersion. Dev builds and any error yield nil.
func (c *Checker) Check(ctx context.Context, currentVersion string) *Result {
	current, ok := parseVersion(currentVersion)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var releases []ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil
	}

	var best *Result
	var bestV version
	for _, r := range releases {
		if r.Draft || (r.Prerelease && c.Channel != ChannelPrerelease) {
			continue
		}
		v, ok := parseVersion(r.TagName)
		if !ok || !v.newer(current) {
			continue
		}
		if best == nil || v.newer(bestV) {
			bestV = v
			best = &Result{LatestVersion: strings.TrimPrefix(r.TagName, "v"), Prerelease: r.Prerelease, URL: r.HTMLURL}
		}
	}
	return best
}

// Notice formats r for display, or "" when there is nothing to show.
func (r *Result) Notice() string {
	if r == nil {
		return ""
	}
	if r.Prerelease {
		return fmt.Sprintf("Pre-release v%s available", r.LatestVersion)
	}
	return fmt.Sprintf("Update available: v%s", r.LatestVersion)
}

// version is major, minor, patch and a final slot that is 1 for releases and
// 0 for pre-releases, so 1.3.0-rc.1 sorts below 1.3.0.
type version [4]int

// parseVersion reads vMAJOR.MINOR.PATCH with an optional -pre suffix.
func parseVersion(s string) (version, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	var v version
	v[3] = 1
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
		v[3] = 0
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return version{}, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return version{}, false
		}
		v[i] = n
	}
	return v, true
}

func (v version) newer(than version) bool {
	for i := range v {
		if v[i] != than[i] {
			return v[i] > than[i]
		}
	}
	return false
}
