package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/browser"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/progress"
	"github.com/matheuskafuri/attendwatch/internal/stats"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

const pollInterval = time.Second

type focusPane int

const (
	focusList focusPane = iota
	focusDetail
)

type mode int

const (
	modeNormal mode = iota
	modeHelp
)

// Runner starts an ingestion in the background.
type Runner interface {
	Start(ctx context.Context) (<-chan ingest.Result, error)
	Running() bool
}

// HolidaySource lists holiday dates for the monthly tally.
type HolidaySource interface {
	Dates() (map[string]bool, error)
}

type App struct {
	store     store.Store
	progress  progress.Source
	holidays  HolidaySource
	runner    Runner
	portalURL string
	loc       *time.Location
	weekend   []time.Weekday

	entries attendance.Series
	month   stats.Monthly
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	spinner spinner.Model
	bar     bprogress.Model

	running      bool
	state        progress.State
	configured   bool
	calendarOnly bool
	checkUpdate  func(context.Context) string
	updateNotice string
	detailScroll int
	err          error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Store      store.Store
	Progress   progress.Source
	Holidays   HolidaySource
	Runner     Runner
	PortalURL  string
	Location   *time.Location
	Weekend    []time.Weekday
	Configured bool
	// CalendarOnly hides counters and monthly totals.
	CalendarOnly bool
	// CheckUpdate returns a release notice, or "" when up to date.
	CheckUpdate func(context.Context) string
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &App{
		store:        opts.Store,
		progress:     opts.Progress,
		holidays:     opts.Holidays,
		runner:       opts.Runner,
		portalURL:    opts.PortalURL,
		loc:          loc,
		weekend:      opts.Weekend,
		configured:   opts.Configured,
		calendarOnly: opts.CalendarOnly,
		checkUpdate:  opts.CheckUpdate,
		spinner:      sp,
		bar:          bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithoutPercentage()),
		state:        progress.Idle(),
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadEntriesCmd(), a.loadProgressCmd()}
	if a.runner != nil && a.runner.Running() {
		a.running = true
		cmds = append(cmds, a.spinner.Tick, pollCmd())
	}
	if a.checkUpdate != nil {
		cmds = append(cmds, a.checkUpdateCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) checkUpdateCmd() tea.Cmd {
	check := a.checkUpdate
	return func() tea.Msg {
		return updateMsg{notice: check(context.Background())}
	}
}

func (a *App) loadEntriesCmd() tea.Cmd {
	st := a.store
	hs := a.holidays
	weekend := a.weekend
	month := time.Now().In(a.loc).Format("2006-01")
	return func() tea.Msg {
		series, err := st.ReadAll(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		var days map[string]bool
		if hs != nil {
			if days, err = hs.Dates(); err != nil {
				return errMsg{err: err}
			}
		}
		m, err := stats.Month(series, month, days, weekend)
		if err != nil {
			return errMsg{err: err}
		}
		sorted := series.Sorted()
		// newest first
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
		return entriesLoadedMsg{series: sorted, month: m}
	}
}

func (a *App) loadProgressCmd() tea.Cmd {
	src := a.progress
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := src.Load(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return progressMsg{state: s}
	}
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (a *App) startRunCmd() tea.Cmd {
	r := a.runner
	return func() tea.Msg {
		if _, err := r.Start(context.Background()); err != nil && !errors.Is(err, ingest.ErrAlreadyRunning) {
			return errMsg{err: err}
		}
		return runStartedMsg{}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.bar.Width = msg.Width / 3
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case entriesLoadedMsg:
		a.entries = msg.series
		a.month = msg.month
		if a.cursor >= len(a.entries) {
			a.cursor = max(0, len(a.entries)-1)
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case updateMsg:
		a.updateNotice = msg.notice
		return a, nil

	case runStartedMsg:
		return a, pollCmd()

	case pollTickMsg:
		return a, a.loadProgressCmd()

	case progressMsg:
		a.state = msg.state
		if !a.running {
			return a, nil
		}
		if a.state.Terminal() && !a.runner.Running() {
			a.running = false
			return a, a.loadEntriesCmd()
		}
		return a, pollCmd()

	case spinner.TickMsg:
		if a.running {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.mode == modeHelp {
		switch msg.String() {
		case "?", "esc":
			a.mode = modeNormal
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.entries)-1 {
			a.cursor++
			a.detailScroll = 0
		} else if a.focus == focusDetail {
			a.detailScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.detailScroll = 0
		} else if a.focus == focusDetail && a.detailScroll > 0 {
			a.detailScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusDetail
		} else {
			a.focus = focusList
		}
		return a, nil
	case "r":
		if a.runner == nil || a.running {
			return a, nil
		}
		a.running = true
		a.state = progress.State{Message: ingest.Init.Message()}
		return a, tea.Batch(a.startRunCmd(), a.spinner.Tick)
	case "o":
		if a.portalURL != "" {
			return a, openBrowserCmd(a.portalURL)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

// banner returns the error line for a failed last run, or "".
func (a *App) banner() string {
	if a.running || a.state.Progress != progress.Failed {
		return ""
	}
	msg := strings.TrimPrefix(a.state.Message, "Error: ")
	line := bannerStyle.Render(" " + msg + " ")
	if msg == attendance.KindConfig.Message() {
		line += bannerHintStyle.Render("edit username and password in the config file")
	}
	return line
}

func (a *App) progressLine() string {
	if !a.running {
		return ""
	}
	pct := float64(a.state.Progress) / float64(progress.Done)
	if pct < 0 {
		pct = 0
	}
	return a.spinner.View() + " " + a.bar.ViewAs(pct) + progressMsgStyle.Render(a.state.Message)
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  attendwatch")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	if len(a.entries) == 0 && !a.running {
		content := renderWelcome(a.width, a.height-2, a.configured)
		if b := a.banner(); b != "" {
			content = b + "\n" + content
		}
		if a.updateNotice != "" {
			content = updateNoticeStyle.Render(a.updateNotice) + "\n" + content
		}
		return a.withBottomBar(content, "r fetch  o portal  q quit")
	}

	// Layout calculations
	headerHeight := 1
	lineHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - lineHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	detailWidth := a.width - listWidth - 1 // gap

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("attendwatch")
	headerRight := headerDateStyle.Render(time.Now().In(a.loc).Format("Mon Jan 2"))
	if a.updateNotice != "" {
		headerRight = updateNoticeStyle.Render(a.updateNotice) + "  " + headerRight
	}
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Progress or error line
	line := a.progressLine()
	if line == "" {
		line = a.banner()
	}

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.entries, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var selected *attendance.Entry
	if len(a.entries) > 0 && a.cursor < len(a.entries) {
		selected = &a.entries[a.cursor]
	}
	innerDetailW := detailWidth - 4
	detailContent := renderDetail(selected, a.month, a.calendarOnly, innerDetailW, contentHeight, a.detailScroll)

	var detailPane string
	if a.focus == focusDetail {
		detailPane = detailPaneActiveStyle.Width(detailWidth - 2).Height(contentHeight).Render(detailContent)
	} else {
		detailPane = detailPaneStyle.Width(detailWidth - 2).Height(contentHeight).Render(detailContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	lastFetched := ""
	if t := a.entries.LastFetched(); t != nil {
		lastFetched = relativeTime(*t)
	}
	status := renderStatusBar(len(a.entries), lastFetched, a.width, a.running)

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, line, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("attendwatch")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move between days\n" +
		"  tab           Switch focus between list and detail\n\n" +
		dim.Render("Actions") + "\n" +
		"  r             Fetch attendance now\n" +
		"  o             Open the portal in a browser\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
