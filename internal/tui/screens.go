package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
	"github.com/diegolucasb/lockbox/internal/presenter"
)

// itemList is a cursor over list rows, shared by the list and filter screens.
type itemList struct {
	items  []model.ItemViewModel
	cursor int
}

func (l *itemList) set(items []model.ItemViewModel) {
	l.items = items
	if l.cursor >= len(items) {
		l.cursor = max(len(items)-1, 0)
	}
}

func (l *itemList) move(msg tea.KeyMsg, up, down key.Binding) bool {
	switch {
	case key.Matches(msg, up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, down):
		if l.cursor < len(l.items)-1 {
			l.cursor++
		}
	default:
		return false
	}
	return true
}

func (l *itemList) selected() (model.ItemViewModel, bool) {
	if len(l.items) == 0 {
		return model.ItemViewModel{}, false
	}
	return l.items[l.cursor], true
}

func (l *itemList) view(height int, empty string) string {
	if len(l.items) == 0 {
		return mutedStyle.Render(empty)
	}
	start := 0
	if l.cursor >= height {
		start = l.cursor - height + 1
	}
	end := min(start+height, len(l.items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		it := l.items[i]
		prefix, title := "  ", itemStyle.Render(it.Title)
		if i == l.cursor {
			prefix, title = selectedStyle.Render("> "), selectedStyle.Render(it.Title)
		}
		row := prefix + title
		if it.Subtitle != "" {
			row += mutedStyle.Render("  " + it.Subtitle)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

// itemListScreen is the record list.
type itemListScreen struct {
	m         *Model
	presenter *presenter.ItemListPresenter

	selection *flux.Subject[model.ItemViewModel]
	filter    *flux.Subject[struct{}]
	menu      *flux.Subject[presenter.MenuItem]

	list itemList
}

func (m *Model) newItemList() *itemListScreen {
	s := &itemListScreen{
		m:         m,
		selection: flux.NewSubject[model.ItemViewModel]("tui.item_selection"),
		filter:    flux.NewSubject[struct{}]("tui.filter_clicks"),
		menu:      flux.NewSubject[presenter.MenuItem]("tui.menu_items"),
	}
	s.presenter = presenter.NewItemListPresenter(s, m.deps.Dispatcher, m.deps.Records, m.deps.Security,
		m.presenterOptions()...)
	return s
}

func (s *itemListScreen) ItemSelection() flux.Observable[model.ItemViewModel] { return s.selection }
func (s *itemListScreen) FilterClicks() flux.Observable[struct{}]             { return s.filter }
func (s *itemListScreen) MenuItemSelections() flux.Observable[presenter.MenuItem] {
	return s.menu
}

func (s *itemListScreen) UpdateItems(items []model.ItemViewModel) { s.list.set(items) }

func (s *itemListScreen) ShowSecurityConfirmation(p *flux.Promise[presenter.AlertState]) {
	s.m.confirm(p)
}

func (s *itemListScreen) Title() string { return "Logins" }
func (s *itemListScreen) Open() error   { return s.presenter.OnViewReady() }
func (s *itemListScreen) Close()        { s.presenter.OnDestroy() }

func (s *itemListScreen) Update(msg tea.KeyMsg) tea.Cmd {
	if s.list.move(msg, keys.Up, keys.Down) {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Open):
		if it, ok := s.list.selected(); ok {
			s.selection.Emit(it)
		}
	case key.Matches(msg, keys.Filter):
		s.filter.Emit(struct{}{})
	case key.Matches(msg, keys.Lock):
		s.menu.Emit(presenter.MenuLocked)
	case key.Matches(msg, keys.Settings):
		s.menu.Emit(presenter.MenuSetting)
	}
	return nil
}

func (s *itemListScreen) View(width, height int) string {
	body := s.list.view(max(height-2, 1), "No saved logins.")
	return body + "\n\n" + helpLine(keys.Open, keys.Filter, keys.Lock, keys.Settings, keys.Quit)
}

// lockedScreen hides the records until the user unlocks.
type lockedScreen struct {
	presenter *presenter.LockedPresenter
	unlock    *flux.Subject[struct{}]
}

func newLockedScreen(m *Model) *lockedScreen {
	s := &lockedScreen{unlock: flux.NewSubject[struct{}]("tui.unlock_clicks")}
	s.presenter = presenter.NewLockedPresenter(s, m.deps.Dispatcher, m.presenterOptions()...)
	return s
}

func (s *lockedScreen) UnlockClicks() flux.Observable[struct{}] { return s.unlock }

func (s *lockedScreen) Title() string { return "Locked" }
func (s *lockedScreen) Open() error   { return s.presenter.OnViewReady() }
func (s *lockedScreen) Close()        { s.presenter.OnDestroy() }

func (s *lockedScreen) Update(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Open) {
		s.unlock.Emit(struct{}{})
	}
	return nil
}

func (s *lockedScreen) View(width, height int) string {
	return panelStyle.Render("Lockbox is locked.") + "\n\n" +
		helpLine(key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "unlock")), keys.Quit)
}

// filterScreen narrows the record list as the user types.
type filterScreen struct {
	presenter *presenter.FilterPresenter
	input     textinput.Model

	text      *flux.Subject[string]
	selection *flux.Subject[model.ItemViewModel]
	cancel    *flux.Subject[struct{}]

	list itemList
}

func newFilterScreen(m *Model) *filterScreen {
	input := textinput.New()
	input.Prompt = "filter: "
	input.Placeholder = "host or username"
	input.Focus()

	s := &filterScreen{
		input:     input,
		text:      flux.NewSubject[string]("tui.filter_text"),
		selection: flux.NewSubject[model.ItemViewModel]("tui.filter_selection"),
		cancel:    flux.NewSubject[struct{}]("tui.filter_cancel"),
	}
	s.presenter = presenter.NewFilterPresenter(s, m.deps.Dispatcher, m.deps.Records, m.presenterOptions()...)
	return s
}

func (s *filterScreen) FilterText() flux.Observable[string]                 { return s.text }
func (s *filterScreen) ItemSelection() flux.Observable[model.ItemViewModel] { return s.selection }
func (s *filterScreen) CancelClicks() flux.Observable[struct{}]             { return s.cancel }
func (s *filterScreen) UpdateItems(items []model.ItemViewModel)             { s.list.set(items) }

func (s *filterScreen) Title() string { return "Filter" }
func (s *filterScreen) Open() error   { return s.presenter.OnViewReady() }
func (s *filterScreen) Close()        { s.presenter.OnDestroy() }

func (s *filterScreen) Update(msg tea.KeyMsg) tea.Cmd {
	if s.list.move(msg, keys.ArrowUp, keys.ArrowDown) {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		s.cancel.Emit(struct{}{})
		return nil
	case key.Matches(msg, keys.Open):
		if it, ok := s.list.selected(); ok {
			s.selection.Emit(it)
		}
		return nil
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != before {
		s.text.Emit(v)
	}
	return cmd
}

func (s *filterScreen) View(width, height int) string {
	s.input.Width = max(width-len(s.input.Prompt)-1, 10)
	body := s.list.view(max(height-4, 1), "No matches.")
	return s.input.View() + "\n\n" + body + "\n\n" +
		helpLine(keys.Open, keys.Back, keys.Quit) + mutedStyle.Render(fmt.Sprintf("  %d shown", len(s.list.items)))
}
