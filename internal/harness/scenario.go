package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/diegolucasb/lockbox/internal/action"
)

//go:embed schema.cue
var schemaSource string

// Scenario is a scripted session against the item list screen.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Session is the journal session id. Defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Device holds the initial sensor readings. Missing readings are false.
	Device Device `yaml:"device,omitempty"`

	// Records are staged in the record source before the first step.
	Records []Record `yaml:"records,omitempty"`

	Steps  []Step      `yaml:"steps"`
	Expect []Assertion `yaml:"expect"`
}

// Device is a set of sensor readings. Nil fields are left unchanged.
type Device struct {
	FingerprintHardware *bool `yaml:"fingerprint_hardware,omitempty"`
	FingerprintEnrolled *bool `yaml:"fingerprint_enrolled,omitempty"`
	KeyguardSecure      *bool `yaml:"keyguard_secure,omitempty"`
}

// Record is a password record seeded into the source.
type Record struct {
	ID       string `yaml:"id"`
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Step is one user input. Exactly one field is set.
type Step struct {
	Attach   bool          `yaml:"attach,omitempty"`
	Menu     string        `yaml:"menu,omitempty"`
	Dialog   string        `yaml:"dialog,omitempty"`
	Select   string        `yaml:"select,omitempty"`
	Filter   bool          `yaml:"filter,omitempty"`
	Device   *Device       `yaml:"device,omitempty"`
	Teardown bool          `yaml:"teardown,omitempty"`
	Dispatch *DispatchStep `yaml:"dispatch,omitempty"`
}

// DispatchStep dispatches an action by name.
type DispatchStep struct {
	Action string            `yaml:"action"`
	Args   map[string]string `yaml:"args,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is used by trace_contains, trace_count and route.
	Action string `yaml:"action,omitempty"`

	// Args are matched as a subset by trace_contains.
	Args map[string]string `yaml:"args,omitempty"`

	// Actions is the expected order for trace_order.
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected occurrences for trace_count.
	Count int `yaml:"count,omitempty"`

	// State is used by routing_state and data_state.
	State string `yaml:"state,omitempty"`

	// Titles are the expected rows for items.
	Titles []string `yaml:"titles,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRoutingState  = "routing_state"
	AssertDataState     = "data_state"
	AssertItems         = "items"
	AssertRoute         = "route"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ParseScenario validates data against the scenario schema and decodes it.
func ParseScenario(data []byte) (*Scenario, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid scenario: empty document")
	}
	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &scenario, nil
}

// validateSchema unifies raw with #Scenario and requires a concrete result.
// A CUE context is not safe for concurrent use, so each call builds its own.
func validateSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	v := def.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	return nil
}

// String renders the step as it appears in a trace.
func (s Step) String() string {
	switch {
	case s.Attach:
		return "attach"
	case s.Menu != "":
		return "menu " + s.Menu
	case s.Dialog != "":
		return "dialog " + s.Dialog
	case s.Select != "":
		return "select " + s.Select
	case s.Filter:
		return "filter"
	case s.Device != nil:
		return "device"
	case s.Teardown:
		return "teardown"
	case s.Dispatch != nil:
		return "dispatch " + action.Record{Name: s.Dispatch.Action, Args: s.Dispatch.Args}.String()
	default:
		return "empty"
	}
}
