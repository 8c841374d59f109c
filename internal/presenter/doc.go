// Package presenter holds the per-screen mediators.
//
// A presenter is created when its screen attaches. OnViewReady wires view
// events to actions and store streams to view updates; OnDestroy releases
// every subscription at once. After teardown a presenter dispatches nothing
// and updates nothing, including view updates already handed to the UI
// scheduler.
//
// ItemListPresenter also runs the routing state machine for the list menu:
//
//	Idle --locked, insecure--> AwaitingConfirmation
//	AwaitingConfirmation --positive--> Idle (dispatch SystemSetting)
//	AwaitingConfirmation --negative--> Idle
//	AwaitingConfirmation --locked, insecure--> AwaitingConfirmation (previous prompt invalidated)
//	any --teardown--> Idle (prompt invalidated)
package presenter
