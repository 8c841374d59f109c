package presenter

import (
	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// MenuItem identifies an entry of the list menu.
type MenuItem string

// Known menu items.
const (
	MenuLocked  MenuItem = "locked"
	MenuSetting MenuItem = "setting"
)

// AlertState is the outcome of a confirmation dialog.
type AlertState int

const (
	AlertPositive AlertState = iota + 1
	AlertNegative
)

func (s AlertState) String() string {
	switch s {
	case AlertPositive:
		return "positive"
	case AlertNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// RoutingState is the state of the list menu state machine.
type RoutingState int

const (
	RoutingIdle RoutingState = iota
	RoutingAwaitingConfirmation
)

func (s RoutingState) String() string {
	if s == RoutingAwaitingConfirmation {
		return "awaiting_confirmation"
	}
	return "idle"
}

// ItemListView is the record list screen.
type ItemListView interface {
	ItemSelection() flux.Observable[model.ItemViewModel]
	FilterClicks() flux.Observable[struct{}]
	MenuItemSelections() flux.Observable[MenuItem]

	UpdateItems(items []model.ItemViewModel)
	// ShowSecurityConfirmation presents the "no device security" dialog.
	// The view resolves p with the user's choice.
	ShowSecurityConfirmation(p *flux.Promise[AlertState])
}

// SecurityStatus answers whether the device is secured.
type SecurityStatus interface {
	IsDeviceSecure() bool
}

// ItemListPresenter mediates the record list screen.
type ItemListPresenter struct {
	base
	view     ItemListView
	records  flux.Observable[[]model.ServerPassword]
	security SecurityStatus

	state   RoutingState
	pending *flux.Promise[AlertState]
}

// NewItemListPresenter creates a presenter. records is the data store list
// stream.
func NewItemListPresenter(
	view ItemListView,
	dispatcher Dispatcher,
	records flux.Observable[[]model.ServerPassword],
	security SecurityStatus,
	opts ...Option,
) *ItemListPresenter {
	return &ItemListPresenter{
		base:     newBase("item_list", dispatcher, opts),
		view:     view,
		records:  records,
		security: security,
	}
}

// OnViewReady wires the view and dispatches Unlock.
func (p *ItemListPresenter) OnViewReady() error {
	bag, err := p.begin()
	if err != nil {
		return err
	}

	nonEmpty := flux.Filter(p.records, func(ps []model.ServerPassword) bool { return len(ps) > 0 })
	items := flux.Map(nonEmpty, model.ItemViewModels)
	bag.Add(flux.ObserveOn(items, p.scheduler).Subscribe(func(vms []model.ItemViewModel) {
		if bag.Disposed() {
			return
		}
		p.view.UpdateItems(vms)
		p.metrics.ViewUpdated(p.screen)
	}))

	bag.Add(p.view.ItemSelection().Subscribe(func(vm model.ItemViewModel) {
		p.dispatch(bag, action.ItemDetail{ID: vm.ID})
	}))

	bag.Add(p.view.FilterClicks().Subscribe(func(struct{}) {
		p.dispatch(bag, action.Filter{})
	}))

	bag.Add(p.view.MenuItemSelections().Subscribe(func(item MenuItem) {
		if bag.Disposed() {
			return
		}
		if err := p.onMenuItem(bag, item); err != nil {
			p.logger.Error("routing failed", "error", err)
			p.metrics.RoutingError(string(item))
		}
	}))

	bag.Add(flux.NewDisposable(p.cancelConfirmation))

	// Explicit bootstrap until lock handling moves out of the list screen.
	p.dispatch(bag, action.Unlock{})
	return nil
}

// OnDestroy releases every subscription and invalidates a pending dialog.
func (p *ItemListPresenter) OnDestroy() {
	p.end()
}

// RoutingState returns the state of the menu state machine.
func (p *ItemListPresenter) RoutingState() RoutingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *ItemListPresenter) onMenuItem(bag *flux.Bag, item MenuItem) error {
	switch item {
	case MenuSetting:
		p.dispatch(bag, action.SettingList{})
	case MenuLocked:
		if p.security.IsDeviceSecure() {
			p.dispatch(bag, action.LockScreen{})
			return nil
		}
		p.confirm(bag, action.SecurityDisclaimer())
	default:
		return newUnknownMenuItemError(item)
	}
	return nil
}

// confirm presents the dialog and waits for its outcome. A newer prompt
// supersedes an unresolved one.
func (p *ItemListPresenter) confirm(bag *flux.Bag, dialog action.SecurityDisclaimerDialog) {
	var promise *flux.Promise[AlertState]
	promise = flux.NewPromise(func(outcome AlertState) {
		p.mu.Lock()
		if p.pending == promise {
			p.pending = nil
			p.state = RoutingIdle
		}
		p.mu.Unlock()

		p.logger.Debug("confirmation resolved", "outcome", outcome.String())
		if outcome == AlertPositive {
			p.dispatch(bag, dialog.Positive)
		}
	})

	p.mu.Lock()
	previous := p.pending
	p.pending = promise
	p.state = RoutingAwaitingConfirmation
	p.mu.Unlock()

	if previous != nil {
		previous.Dispose()
	}
	p.view.ShowSecurityConfirmation(promise)
}

func (p *ItemListPresenter) cancelConfirmation() {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.state = RoutingIdle
	p.mu.Unlock()

	if pending != nil {
		pending.Dispose()
	}
}
