package presenter

import (
	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
)

// LockedView is the lock screen.
type LockedView interface {
	UnlockClicks() flux.Observable[struct{}]
}

// LockedPresenter locks the data store while the lock screen is shown.
type LockedPresenter struct {
	base
	view LockedView
}

// NewLockedPresenter creates a presenter.
func NewLockedPresenter(view LockedView, dispatcher Dispatcher, opts ...Option) *LockedPresenter {
	return &LockedPresenter{
		base: newBase("locked", dispatcher, opts),
		view: view,
	}
}

// OnViewReady dispatches Lock and waits for an unlock tap.
func (p *LockedPresenter) OnViewReady() error {
	bag, err := p.begin()
	if err != nil {
		return err
	}

	bag.Add(p.view.UnlockClicks().Subscribe(func(struct{}) {
		p.dispatch(bag, action.Unlock{})
		p.dispatch(bag, action.ItemList{})
	}))

	p.dispatch(bag, action.Lock{})
	return nil
}

// OnDestroy releases every subscription.
func (p *LockedPresenter) OnDestroy() {
	p.end()
}
