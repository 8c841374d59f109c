// Package flux implements the unidirectional data-flow primitives shared by
// stores and presenters.
//
// ARCHITECTURE:
//
// Dispatcher:
// A single broadcast bus. Every action reaches every current subscriber, in
// the same total order. Delivery is serialized through a trampoline: an
// action dispatched while another is being delivered (re-entrant dispatch)
// is queued and delivered once the current action has reached every
// subscriber. Each delivered action is stamped with a sequence number from a
// logical clock before hooks and subscribers see it.
//
// Streams:
// Subject publishes values to current subscribers only. Relay additionally
// remembers the latest value and replays it to late subscribers before any
// newer value. Both serialize delivery per stream.
//
// Ownership:
// Every subscription returns a Disposable. Presenters collect them in a Bag
// and dispose the bag on teardown; the bag is marked disposed before its
// members are released, so nothing scheduled during teardown runs.
//
// Delivery loops log and continue: a panicking subscriber is recovered and
// logged, and the remaining subscribers still receive the value.
package flux
