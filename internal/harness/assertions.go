package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// assertTraceContains checks that an action with matching args (subset
// match) was dispatched.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Kind == EventAction && event.Name == assertion.Action && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions appear as a subsequence of the
// dispatched actions. Intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Actions) {
			break
		}
		if event.Kind == EventAction && event.Name == assertion.Actions[next] {
			next++
		}
	}
	if next == len(assertion.Actions) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
		Actual:   fmt.Sprintf("no %s after %v", assertion.Actions[next], assertion.Actions[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the action was dispatched exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == EventAction && event.Name == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertFinal(kind, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{Type: kind, Expected: expected, Actual: actual}
}

// assertItems checks the titles of the last list update.
func assertItems(final Final, assertion Assertion) error {
	if slices.Equal(final.Items, assertion.Titles) || (len(final.Items) == 0 && len(assertion.Titles) == 0) {
		return nil
	}
	return &AssertionError{
		Type:     AssertItems,
		Expected: fmt.Sprintf("%q", assertion.Titles),
		Actual:   fmt.Sprintf("%q", final.Items),
	}
}

// matchArgs checks that actual contains every expected key with the same
// value. Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]string) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the result and returns
// the messages of the failed ones.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertRoutingState:
			err = assertFinal(AssertRoutingState, assertion.State, result.Final.Routing)
		case AssertDataState:
			err = assertFinal(AssertDataState, assertion.State, result.Final.Data)
		case AssertRoute:
			err = assertFinal(AssertRoute, assertion.Action, result.Final.Route)
		case AssertItems:
			err = assertItems(result.Final, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
