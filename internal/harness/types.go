package harness

import (
	"fmt"
	"strings"

	"github.com/diegolucasb/lockbox/internal/action"
)

// EventKind classifies trace events.
type EventKind string

const (
	EventInput  EventKind = "input"
	EventAction EventKind = "action"
	EventItems  EventKind = "items"
	EventDialog EventKind = "dialog"
	EventError  EventKind = "error"
)

// TraceEvent is one line of a scenario trace.
//
// Action events carry the dispatch sequence number, name and args. Other
// kinds carry a rendered Detail.
type TraceEvent struct {
	Kind   EventKind         `json:"kind"`
	Seq    int64             `json:"seq,omitempty"`
	Name   string            `json:"name,omitempty"`
	Args   map[string]string `json:"args,omitempty"`
	Detail string            `json:"detail,omitempty"`
}

// String renders the event as a trace line.
func (e TraceEvent) String() string {
	switch e.Kind {
	case EventInput:
		return "> " + e.Detail
	case EventAction:
		return fmt.Sprintf("#%d %s", e.Seq, action.Record{Name: e.Name, Args: e.Args})
	case EventItems:
		return "  items: " + e.Detail
	default:
		return fmt.Sprintf("  %s %s", e.Kind, e.Detail)
	}
}

// Final is the observable state after the last step.
type Final struct {
	Routing string   `json:"routing"`
	Data    string   `json:"data"`
	Route   string   `json:"route,omitempty"`
	Items   []string `json:"items"`
	Journal int      `json:"journal"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`
	Session  string `json:"session"`

	// Pass is true when every step ran and every assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
	Final  Final        `json:"final"`
}

// NewResult creates a passing result.
func NewResult(scenario, session string) *Result {
	return &Result{
		Scenario: scenario,
		Session:  session,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) add(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// Actions returns the action events of the trace.
func (r *Result) Actions() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Kind == EventAction {
			out = append(out, e)
		}
	}
	return out
}

// Format renders the trace as text: a header, one line per event and a
// closing line with the final state.
func (r *Result) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&b, "session: %s\n", r.Session)
	for _, e := range r.Trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	route := r.Final.Route
	if route == "" {
		route = "none"
	}
	fmt.Fprintf(&b, "= routing=%s data=%s route=%s\n", r.Final.Routing, r.Final.Data, route)
	return b.String()
}
