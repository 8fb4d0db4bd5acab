package palette

import (
	"net/url"
	"strings"
)

// QueryParam carries the palette state across full page loads
const QueryParam = "palette"

// State is the command palette's open/closed state for one page render.
// Transitions return new values; a State is never shared between requests.
type State struct {
	open  bool
	query string
}

// Closed is the initial state
func Closed() State {
	return State{}
}

func (s State) IsOpen() bool  { return s.open }
func (s State) Query() string { return s.query }

// Open returns an open palette, keeping any search text
func (s State) Open() State {
	return State{open: true, query: s.query}
}

// Close returns a closed palette and clears the search text
func (s State) Close() State {
	return State{}
}

func (s State) Toggle() State {
	if s.open {
		return s.Close()
	}
	return s.Open()
}

// Search returns an open palette filtering on q
func (s State) Search(q string) State {
	return State{open: true, query: strings.TrimSpace(q)}
}

// FromQuery derives the state from request query values: palette=open opens it
// and q pre-fills the search box.
func FromQuery(values url.Values) State {
	s := Closed()
	if strings.EqualFold(values.Get(QueryParam), "open") {
		s = s.Open()
	}
	if q := strings.TrimSpace(values.Get("q")); q != "" && s.IsOpen() {
		s = s.Search(q)
	}
	return s
}

// ToggleHref returns a link to u that renders the toggled state. Other query
// values, such as a pager offset, are kept.
func (s State) ToggleHref(u *url.URL) string {
	values := u.Query()
	values.Del("q")
	if s.Toggle().IsOpen() {
		values.Set(QueryParam, "open")
	} else {
		values.Del(QueryParam)
	}
	if len(values) == 0 {
		return u.Path
	}
	return u.Path + "?" + values.Encode()
}

// Command is one entry listed by an open palette
type Command struct {
	Label string
	Href  string
}

// Filter returns the commands whose label contains the search text
func (s State) Filter(commands []Command) []Command {
	if !s.open {
		return nil
	}
	if s.query == "" {
		return commands
	}
	q := strings.ToLower(s.query)
	out := make([]Command, 0, len(commands))
	for _, c := range commands {
		if strings.Contains(strings.ToLower(c.Label), q) {
			out = append(out, c)
		}
	}
	return out
}
