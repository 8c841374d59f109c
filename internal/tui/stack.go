package tui

import tea "github.com/charmbracelet/bubbletea"

// Screen is one entry of the navigation stack.
//
// Open attaches the screen's presenter; Close tears it down. A closed
// screen is never reopened.
type Screen interface {
	Title() string
	Open() error
	Close()
	Update(msg tea.KeyMsg) tea.Cmd
	View(width, height int) string
}

// ScreenStack is the navigation history. The top screen receives input.
type ScreenStack struct {
	items []Screen
}

func (s *ScreenStack) Push(screen Screen) {
	if screen == nil {
		return
	}
	s.items = append(s.items, screen)
}

func (s *ScreenStack) Pop() Screen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s ScreenStack) Top() Screen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}
