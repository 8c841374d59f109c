// Package model holds the password record and its list projection.
package model

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// ServerPassword is a stored login for one origin.
// Times are Unix milliseconds.
type ServerPassword struct {
	ID                  string
	Hostname            string
	Username            *string
	Password            string
	TimesUsed           int64
	TimeCreated         int64
	TimeLastUsed        int64
	TimePasswordChanged int64
}

// ItemViewModel is one row of the record list.
type ItemViewModel struct {
	Title    string
	Subtitle string
	ID       string
}

// NewItemViewModel projects a record into a list row.
func NewItemViewModel(p ServerPassword) ItemViewModel {
	subtitle := ""
	if p.Username != nil {
		subtitle = *p.Username
	}
	return ItemViewModel{
		Title:    TitleFromHostname(p.Hostname),
		Subtitle: subtitle,
		ID:       p.ID,
	}
}

// ItemViewModels projects records one to one, preserving order.
func ItemViewModels(ps []ServerPassword) []ItemViewModel {
	out := make([]ItemViewModel, len(ps))
	for i, p := range ps {
		out[i] = NewItemViewModel(p)
	}
	return out
}

// TitleFromHostname returns the display host of an origin URL.
//
// Scheme, userinfo, port, path, query and fragment are removed, as is a
// leading "www." or "wwwN." label. Punycode labels are shown as Unicode in
// NFC. An origin with no recognizable host is returned unchanged.
func TitleFromHostname(origin string) string {
	host := strings.TrimSpace(origin)

	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	host = stripPort(host)
	host = stripWWW(host)

	if host == "" {
		return origin
	}

	if u, err := idna.ToUnicode(host); err == nil {
		host = u
	}
	return norm.NFC.String(host)
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i >= 0 {
			return host[:i+1]
		}
		return host
	}
	i := strings.LastIndex(host, ":")
	if i < 0 {
		return host
	}
	for _, r := range host[i+1:] {
		if r < '0' || r > '9' {
			return host
		}
	}
	return host[:i]
}

func stripWWW(host string) string {
	lower := strings.ToLower(host)
	if !strings.HasPrefix(lower, "www") {
		return host
	}
	rest := host[3:]
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j < len(rest) && rest[j] == '.' && j+1 < len(rest) {
		return rest[j+1:]
	}
	return host
}
