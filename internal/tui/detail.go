package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// detailScreen shows one record. It follows the record list, so a lock or
// a removal while it is open is reflected.
type detailScreen struct {
	m   *Model
	id  string
	sub flux.Disposable

	record *model.ServerPassword
	reveal bool
}

func newDetailScreen(m *Model, id string) *detailScreen {
	return &detailScreen{m: m, id: id}
}

func (s *detailScreen) Title() string {
	if s.record == nil {
		return "Login"
	}
	return model.TitleFromHostname(s.record.Hostname)
}

func (s *detailScreen) Open() error {
	s.sub = flux.ObserveOn(s.m.deps.Records, s.m.sched).Subscribe(func(ps []model.ServerPassword) {
		s.record = nil
		for i := range ps {
			if ps[i].ID == s.id {
				p := ps[i]
				s.record = &p
				break
			}
		}
	})
	return nil
}

func (s *detailScreen) Close() {
	if s.sub != nil {
		s.sub.Dispose()
	}
}

func (s *detailScreen) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		s.m.dispatch(action.Back{})
	case key.Matches(msg, keys.Reveal):
		s.reveal = !s.reveal
	}
	return nil
}

func (s *detailScreen) View(width, height int) string {
	if s.record == nil {
		return mutedStyle.Render("This login is not available.") + "\n\n" + helpLine(keys.Back)
	}
	r := s.record

	username := ""
	if r.Username != nil {
		username = *r.Username
	}
	password := strings.Repeat("•", 8)
	if s.reveal {
		password = r.Password
	}

	rows := [][2]string{
		{"Host", r.Hostname},
		{"Username", username},
		{"Password", password},
		{"Used", fmt.Sprintf("%d times", r.TimesUsed)},
		{"Created", formatMillis(r.TimeCreated)},
		{"Last used", formatMillis(r.TimeLastUsed)},
		{"Changed", formatMillis(r.TimePasswordChanged)},
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%-10s", row[0]))+" "+row[1])
	}
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n\n" + helpLine(keys.Reveal, keys.Back)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// settingsScreen lists app settings.
type settingsScreen struct {
	m *Model
}

func newSettingsScreen(m *Model) *settingsScreen {
	return &settingsScreen{m: m}
}

func (s *settingsScreen) Title() string { return "Settings" }
func (s *settingsScreen) Open() error   { return nil }
func (s *settingsScreen) Close()        {}

func (s *settingsScreen) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		s.m.dispatch(action.Back{})
	case key.Matches(msg, keys.Security):
		s.m.dispatch(action.SystemSetting{Intent: action.IntentSecurity})
	}
	return nil
}

func (s *settingsScreen) View(width, height int) string {
	secure := "not secured"
	if s.m.deps.Security != nil && s.m.deps.Security.IsDeviceSecure() {
		secure = "secured"
	}
	body := mutedStyle.Render("Device security  ") + secure
	return panelStyle.Render(body) + "\n\n" + helpLine(keys.Security, keys.Back)
}

// systemSettingScreen stands in for the operating system settings page.
// Device security is read from the configuration file.
type systemSettingScreen struct {
	m      *Model
	intent action.SettingIntent
}

func newSystemSettingScreen(m *Model, intent action.SettingIntent) *systemSettingScreen {
	return &systemSettingScreen{m: m, intent: intent}
}

func (s *systemSettingScreen) Title() string { return "System settings" }
func (s *systemSettingScreen) Open() error   { return nil }
func (s *systemSettingScreen) Close()        {}

func (s *systemSettingScreen) Update(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Back) {
		s.m.dispatch(action.Back{})
	}
	return nil
}

func (s *systemSettingScreen) View(width, height int) string {
	var body string
	switch s.intent {
	case action.IntentSecurity:
		body = strings.Join([]string{
			"Device security is read from the lockbox config file:",
			"",
			"  security.fingerprint_hardware",
			"  security.fingerprint_enrolled",
			"  security.keyguard_secure",
			"",
			"Changes are picked up while lockbox is running.",
		}, "\n")
	default:
		body = fmt.Sprintf("No settings page for %q.", s.intent)
	}
	return panelStyle.Render(body) + "\n\n" + helpLine(keys.Back)
}
