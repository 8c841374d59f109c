// Package harness runs scripted scenarios against the real action bus.
//
// A scenario seeds a record source and device sensors, attaches an item list
// presenter to a fake view, and replays user input. Every dispatched action,
// view update and dialog is captured in a trace that assertions and golden
// files check.
//
// # Scenario Format
//
//	name: locked_insecure_confirm
//	description: "Lock menu on an insecure device asks for confirmation"
//	session: test-session-default
//	device:
//	  fingerprint_hardware: false
//	  fingerprint_enrolled: false
//	  keyguard_secure: false
//	records:
//	  - { id: a, hostname: "https://www.mozilla.org", username: alice, password: x }
//	steps:
//	  - attach: true
//	  - menu: locked
//	  - dialog: positive
//	expect:
//	  - type: trace_contains
//	    action: route.system_setting
//	    args: { intent: settings.security }
//	  - type: routing_state
//	    state: idle
//
// Scenarios are checked against an embedded CUE schema before they are
// decoded, so a misspelled step or assertion is reported with its path.
//
// # Steps
//
//   - attach: calls OnViewReady on the presenter
//   - menu: selects a menu item
//   - dialog: resolves the last confirmation with positive or negative
//   - select: selects the row with the given record id
//   - filter: clicks the filter button
//   - device: changes sensor readings
//   - teardown: calls OnDestroy on the presenter
//   - dispatch: dispatches an action directly
//
// # Assertion Types
//
//   - trace_contains: an action with matching args was dispatched
//   - trace_order: actions were dispatched in the given order
//   - trace_count: an action was dispatched exactly N times
//   - routing_state: state of the menu state machine at the end
//   - data_state: lock state of the data store at the end
//   - items: titles of the last list update
//   - route: last route action
package harness
