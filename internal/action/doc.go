// Package action defines the closed set of events that flow through the
// dispatcher.
//
// Every action is an immutable, comparable value. Two actions are equal when
// their variant and payload are equal, so tests and the routing state machine
// compare them with ==.
//
// Actions fall into two families:
//   - data-store actions (Unlock, Lock, Sync) consumed by store.DataStore
//   - route actions (ItemList, ItemDetail, Filter, ...) consumed by
//     store.RouteStore and the terminal router
//
// Each action has a stable dotted Name used by logs, metrics and the journal.
// ToRecord/FromRecord convert actions to and from the flat Record form that
// the journal persists.
package action
