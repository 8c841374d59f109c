package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func insecureDevice() Device {
	return Device{
		FingerprintHardware: boolPtr(false),
		FingerprintEnrolled: boolPtr(false),
		KeyguardSecure:      boolPtr(false),
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Attach only",
		Steps:       []Step{{Attach: true}},
		Expect: []Assertion{
			{Type: AssertTraceContains, Action: "data.unlock"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "test-session-default", result.Session)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, EventInput, result.Trace[0].Kind)
	assert.Equal(t, EventAction, result.Trace[1].Kind)
	assert.Equal(t, int64(1), result.Trace[1].Seq)
	assert.Equal(t, "data.unlock", result.Trace[1].Name)

	assert.Equal(t, "idle", result.Final.Routing)
	assert.Equal(t, "unlocked", result.Final.Data)
	assert.Empty(t, result.Final.Route)
	assert.Empty(t, result.Final.Items)
	assert.Equal(t, 1, result.Final.Journal)
}

func TestRun_ProjectsRecords(t *testing.T) {
	scenario := &Scenario{
		Name:        "projection",
		Description: "Records become rows",
		Records: []Record{
			{ID: "a", Hostname: "https://www2.example.org/path", Username: "alice"},
			{ID: "b", Hostname: "http://user@example.net:8443"},
		},
		Steps: []Step{{Attach: true}, {Select: "a"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{"example.org", "example.net"}, result.Final.Items)

	actions := result.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "route.item_detail", actions[1].Name)
	assert.Equal(t, map[string]string{"id": "a"}, actions[1].Args)
	assert.Equal(t, "route.item_detail", result.Final.Route)
}

func TestRun_SessionFromScenario(t *testing.T) {
	scenario := &Scenario{
		Name:    "session",
		Session: "s-42",
		Steps:   []Step{{Attach: true}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, "s-42", result.Session)
	assert.Equal(t, 1, result.Final.Journal)
}

func TestRun_InsecureLockAsksFirst(t *testing.T) {
	scenario := &Scenario{
		Name:   "insecure",
		Device: insecureDevice(),
		Steps:  []Step{{Attach: true}, {Menu: "locked"}},
		Expect: []Assertion{
			{Type: AssertRoutingState, State: "awaiting_confirmation"},
			{Type: AssertTraceCount, Action: "route.lock_screen", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventDialog, last.Kind)
	assert.Equal(t, "shown", last.Detail)
}

func TestRun_DeviceStepReevaluates(t *testing.T) {
	scenario := &Scenario{
		Name:   "device",
		Device: insecureDevice(),
		Steps: []Step{
			{Attach: true},
			{Device: &Device{FingerprintHardware: boolPtr(true), FingerprintEnrolled: boolPtr(true)}},
			{Menu: "locked"},
		},
		Expect: []Assertion{
			{Type: AssertRoute, Action: "route.lock_screen"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "device secure=true", result.Trace[2].Detail)
}

func TestRun_UnknownMenuItemIsTraced(t *testing.T) {
	scenario := &Scenario{
		Name:  "unknown_menu",
		Steps: []Step{{Attach: true}, {Menu: "help"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventError, last.Kind)
	assert.Equal(t, "routing item=help", last.Detail)
	assert.Len(t, result.Actions(), 1)
}

func TestRun_DialogWithoutPromptFails(t *testing.T) {
	scenario := &Scenario{
		Name:  "no_prompt",
		Steps: []Step{{Attach: true}, {Dialog: "positive"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[1] dialog positive")
	assert.Contains(t, result.Errors[0], "no confirmation was shown")
}

func TestRun_DoubleAttachFails(t *testing.T) {
	scenario := &Scenario{
		Name:  "double_attach",
		Steps: []Step{{Attach: true}, {Attach: true}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "already attached")
	assert.Len(t, result.Actions(), 1)
}

func TestRun_ReattachAfterTeardown(t *testing.T) {
	scenario := &Scenario{
		Name:  "reattach",
		Steps: []Step{{Attach: true}, {Teardown: true}, {Attach: true}},
		Expect: []Assertion{
			{Type: AssertTraceCount, Action: "data.unlock", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_DispatchStep(t *testing.T) {
	scenario := &Scenario{
		Name: "dispatch",
		Steps: []Step{
			{Dispatch: &DispatchStep{Action: "route.item_detail", Args: map[string]string{"id": "the_guid"}}},
			{Dispatch: &DispatchStep{Action: "route.back"}},
		},
		Expect: []Assertion{
			{Type: AssertTraceOrder, Actions: []string{"route.item_detail", "route.back"}},
			{Type: AssertTraceContains, Action: "route.item_detail", Args: map[string]string{"id": "the_guid"}},
			{Type: AssertRoute, Action: "route.back"},
			{Type: AssertDataState, State: "locked"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, 2, result.Final.Journal)
}

func TestRun_DispatchUnknownActionFails(t *testing.T) {
	scenario := &Scenario{
		Name:  "bad_dispatch",
		Steps: []Step{{Dispatch: &DispatchStep{Action: "route.nowhere"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unknown action")
	assert.Empty(t, result.Actions())
}

func TestRun_FailedAssertionsReported(t *testing.T) {
	scenario := &Scenario{
		Name:  "failing",
		Steps: []Step{{Attach: true}},
		Expect: []Assertion{
			{Type: AssertTraceContains, Action: "route.lock_screen"},
			{Type: AssertDataState, State: "locked"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:    "deterministic",
		Device:  insecureDevice(),
		Records: []Record{{ID: "a", Hostname: "https://www.mozilla.org"}},
		Steps: []Step{
			{Attach: true},
			{Menu: "locked"},
			{Dialog: "positive"},
			{Filter: true},
		},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Format(), second.Format())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult("x", "s")
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestResult_Format(t *testing.T) {
	r := NewResult("fmt", "s1")
	r.add(TraceEvent{Kind: EventInput, Detail: "attach"})
	r.add(TraceEvent{Kind: EventAction, Seq: 1, Name: "data.unlock"})
	r.add(TraceEvent{Kind: EventItems, Detail: "a.com, b.com"})
	r.add(TraceEvent{Kind: EventAction, Seq: 2, Name: "route.system_setting", Args: map[string]string{"intent": "settings.security"}})
	r.add(TraceEvent{Kind: EventDialog, Detail: "ignored"})
	r.add(TraceEvent{Kind: EventError, Detail: "routing item=x"})
	r.Final = Final{Routing: "idle", Data: "unlocked"}

	want := "scenario: fmt\n" +
		"session: s1\n" +
		"> attach\n" +
		"#1 data.unlock\n" +
		"  items: a.com, b.com\n" +
		"#2 route.system_setting intent=settings.security\n" +
		"  dialog ignored\n" +
		"  error routing item=x\n" +
		"= routing=idle data=unlocked route=none\n"
	assert.Equal(t, want, r.Format())
}
