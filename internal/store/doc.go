// Package store holds the long-lived state containers.
//
// Stores are constructed once by the composition root and live for the
// process. They mutate only in reaction to actions reaching them through the
// dispatcher, one action at a time, and expose state as replay-latest
// flux.Relay streams:
//
//   - DataStore: lock state and the record list
//   - FingerprintStore: device security status from two sensors
//   - RouteStore: route actions for the router
package store

import (
	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
)

// ActionSource is the subscribe side of the dispatcher.
type ActionSource interface {
	Subscribe(fn func(action.Action)) flux.Disposable
}
