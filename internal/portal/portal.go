package portal

import (
	"context"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// Credentials for the student portal.
type Credentials struct {
	Username string
	Password string
}

// Stage marks a milestone reached inside a scrape.
type Stage int

const (
	StageAuthenticated Stage = iota + 1
)

// StageFunc is called as a scrape reaches each Stage.
type StageFunc func(Stage)

// Scraper pulls the current counters from the portal. Returned errors carry
// an attendance.Kind. The snapshot's Date is left for the caller to set.
type Scraper interface {
	Scrape(ctx context.Context, creds Credentials, onStage StageFunc) (attendance.Snapshot, error)
}

// Mock returns a fixed snapshot, or Err when set.
type Mock struct {
	Name     string
	Counters attendance.Counters
	Err      error
	Calls    int
}

func (m *Mock) Scrape(ctx context.Context, _ Credentials, onStage StageFunc) (attendance.Snapshot, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return attendance.Snapshot{}, attendance.NewError(attendance.KindNetwork, err)
	}
	if m.Err != nil {
		return attendance.Snapshot{}, m.Err
	}
	if onStage != nil {
		onStage(StageAuthenticated)
	}
	return attendance.Snapshot{StudentName: m.Name, Counters: m.Counters}, nil
}
