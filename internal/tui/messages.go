package tui

import (
	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/progress"
	"github.com/matheuskafuri/attendwatch/internal/stats"
)

type entriesLoadedMsg struct {
	series attendance.Series
	month  stats.Monthly
}

type progressMsg struct {
	state progress.State
}

type pollTickMsg struct{}

type runStartedMsg struct{}

type updateMsg struct {
	notice string
}

type errMsg struct {
	err error
}
