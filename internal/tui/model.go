// Package tui is the terminal front end: a bubbletea program whose screens
// are the views of the presenters.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
	"github.com/diegolucasb/lockbox/internal/presenter"
)

// Deps are the collaborators of the terminal UI.
type Deps struct {
	Dispatcher presenter.Dispatcher
	Records    flux.Observable[[]model.ServerPassword]
	Security   presenter.SecurityStatus
	Routes     flux.Observable[action.Route]
	Metrics    presenter.Metrics
	Logger     *slog.Logger
}

// runMsg carries work scheduled onto the UI loop.
type runMsg struct{ fn func() }

// Model is the root bubbletea model.
//
// Presenters and stores may emit from any goroutine. Their view work goes
// through the inbox and runs inside Update, so screens are only touched by
// the program loop.
type Model struct {
	deps   Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	inbox  *flux.Queue[func()]
	sched  flux.Scheduler
	bag    *flux.Bag

	screens ScreenStack
	dialog  *flux.Promise[presenter.AlertState]

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// New creates the model. Nothing is attached until Init.
func New(deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		deps:   deps,
		logger: deps.Logger.With("component", "tui"),
		ctx:    ctx,
		cancel: cancel,
		inbox:  flux.NewQueue[func()](),
		bag:    flux.NewBag(),
		width:  80,
		height: 24,
	}
	m.sched = flux.SchedulerFunc(func(fn func()) {
		if !m.inbox.Enqueue(fn) {
			m.logger.Debug("dropping ui work after close")
		}
	})
	return m
}

// Run starts a full-screen program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	m := New(deps)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init subscribes to routes and opens the record list.
func (m *Model) Init() tea.Cmd {
	m.bag.Add(flux.ObserveOn(m.deps.Routes, m.sched).Subscribe(m.navigate))
	m.reset(m.newItemList())
	return m.listen()
}

// Close tears down every screen and stops the inbox.
func (m *Model) Close() {
	m.bag.Dispose()
	for m.screens.Len() > 0 {
		m.screens.Pop().Close()
	}
	m.inbox.Close()
	m.cancel()
}

// Scheduler runs work on the UI loop.
func (m *Model) Scheduler() flux.Scheduler {
	return m.sched
}

// Quitting reports whether the program is exiting.
func (m *Model) Quitting() bool {
	return m.quitting
}

// listen waits for the next piece of scheduled work.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		fn, err := m.inbox.Dequeue(m.ctx)
		if err != nil {
			return nil
		}
		return runMsg{fn: fn}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case runMsg:
		msg.fn()
		if m.quitting {
			return m, tea.Quit
		}
		return m, m.listen()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.dialog != nil && !m.dialog.Pending() {
			m.dialog = nil
		}
		if m.dialog != nil {
			m.answer(msg)
			return m, nil
		}
		if top := m.screens.Top(); top != nil {
			return m, top.Update(msg)
		}
	}
	return m, nil
}

// answer resolves the open dialog. Other keys are ignored.
func (m *Model) answer(msg tea.KeyMsg) {
	var outcome presenter.AlertState
	switch {
	case key.Matches(msg, keys.Yes):
		outcome = presenter.AlertPositive
	case key.Matches(msg, keys.No):
		outcome = presenter.AlertNegative
	default:
		return
	}
	p := m.dialog
	m.dialog = nil
	p.Resolve(outcome)
}

// confirm shows the security dialog. A newer dialog replaces an open one.
func (m *Model) confirm(p *flux.Promise[presenter.AlertState]) {
	m.dialog = p
}

// navigate applies a route action to the screen stack.
func (m *Model) navigate(r action.Route) {
	m.logger.Debug("route", "action", r.Name())
	switch r := r.(type) {
	case action.ItemList:
		m.reset(m.newItemList())
	case action.LockScreen:
		m.reset(newLockedScreen(m))
	case action.ItemDetail:
		m.push(newDetailScreen(m, r.ID))
	case action.Filter:
		m.push(newFilterScreen(m))
	case action.SettingList:
		m.push(newSettingsScreen(m))
	case action.SystemSetting:
		m.push(newSystemSettingScreen(m, r.Intent))
	case action.Back:
		m.pop()
	default:
		m.logger.Warn("unhandled route", "action", r.Name())
	}
}

func (m *Model) push(s Screen) {
	if err := s.Open(); err != nil {
		m.setError(err)
		return
	}
	m.screens.Push(s)
	m.setStatus("")
}

// pop closes the top screen. Popping the last screen quits.
func (m *Model) pop() {
	if top := m.screens.Pop(); top != nil {
		top.Close()
	}
	if m.screens.Len() == 0 {
		m.quitting = true
	}
}

// reset replaces the whole stack with s.
func (m *Model) reset(s Screen) {
	for m.screens.Len() > 0 {
		m.screens.Pop().Close()
	}
	m.dialog = nil
	m.push(s)
}

func (m *Model) dispatch(a action.Action) {
	m.deps.Dispatcher.Dispatch(a)
}

func (m *Model) presenterOptions() []presenter.Option {
	opts := []presenter.Option{
		presenter.WithScheduler(m.sched),
		presenter.WithLogger(m.deps.Logger),
	}
	if m.deps.Metrics != nil {
		opts = append(opts, presenter.WithMetrics(m.deps.Metrics))
	}
	return opts
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.logger.Error("screen failed", "error", err)
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	top := m.screens.Top()
	if top == nil {
		return ""
	}

	header := headerStyle.Render("lockbox") + mutedStyle.Render(" · ") + titleStyle.Render(top.Title())
	bodyHeight := max(m.height-4, 1)

	var body string
	if m.dialog != nil && m.dialog.Pending() {
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, dialogView())
	} else {
		body = top.View(m.width, bodyHeight)
	}

	status := statusStyle.Render(m.status)
	if m.statusErr {
		status = statusErrStyle.Render(m.status)
	}

	return strings.Join([]string{header, "", body, status}, "\n")
}

func dialogView() string {
	text := strings.Join([]string{
		titleStyle.Render("This device is not secured"),
		"",
		"Anyone with access to it can open your saved logins.",
		"Set up a screen lock or fingerprint first.",
		"",
		helpLine(keys.Yes, keys.No),
	}, "\n")
	return dialogStyle.Render(text)
}
