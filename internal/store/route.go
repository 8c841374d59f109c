package store

import (
	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
)

// RouteStore exposes route actions to the router.
type RouteStore struct {
	routes  *flux.Relay[action.Route]
	actions flux.Disposable
}

// NewRouteStore subscribes to actions and keeps the route ones.
func NewRouteStore(actions ActionSource) *RouteStore {
	s := &RouteStore{routes: flux.NewRelay[action.Route]("routes")}
	s.actions = actions.Subscribe(func(a action.Action) {
		if r, ok := a.(action.Route); ok {
			s.routes.Emit(r)
		}
	})
	return s
}

// Routes streams route actions; the latest is replayed to new subscribers.
func (s *RouteStore) Routes() *flux.Relay[action.Route] {
	return s.routes
}

// Close stops listening for actions.
func (s *RouteStore) Close() {
	s.actions.Dispose()
}
