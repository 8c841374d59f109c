package presenter

import (
	"sync"

	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

type fakeItemListView struct {
	itemSelection *flux.Subject[model.ItemViewModel]
	filterClicks  *flux.Subject[struct{}]
	menuItems     *flux.Subject[MenuItem]

	mu      sync.Mutex
	updates [][]model.ItemViewModel
	prompts []*flux.Promise[AlertState]
}

func newFakeItemListView() *fakeItemListView {
	return &fakeItemListView{
		itemSelection: flux.NewSubject[model.ItemViewModel]("test.item_selection"),
		filterClicks:  flux.NewSubject[struct{}]("test.filter_clicks"),
		menuItems:     flux.NewSubject[MenuItem]("test.menu_items"),
	}
}

func (v *fakeItemListView) ItemSelection() flux.Observable[model.ItemViewModel] {
	return v.itemSelection
}
func (v *fakeItemListView) FilterClicks() flux.Observable[struct{}] { return v.filterClicks }
func (v *fakeItemListView) MenuItemSelections() flux.Observable[MenuItem] {
	return v.menuItems
}

func (v *fakeItemListView) UpdateItems(items []model.ItemViewModel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.updates = append(v.updates, items)
}

func (v *fakeItemListView) ShowSecurityConfirmation(p *flux.Promise[AlertState]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompts = append(v.prompts, p)
}

// lastUpdate returns the latest item list, or nil if UpdateItems was never
// called.
func (v *fakeItemListView) lastUpdate() []model.ItemViewModel {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.updates) == 0 {
		return nil
	}
	return v.updates[len(v.updates)-1]
}

func (v *fakeItemListView) lastPrompt() *flux.Promise[AlertState] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.prompts) == 0 {
		return nil
	}
	return v.prompts[len(v.prompts)-1]
}

type fakeSecurity struct{ secure bool }

func (s *fakeSecurity) IsDeviceSecure() bool { return s.secure }

type fakeMetrics struct {
	routingErrors []string
	viewUpdates   []string
}

func (m *fakeMetrics) RoutingError(item string)  { m.routingErrors = append(m.routingErrors, item) }
func (m *fakeMetrics) ViewUpdated(screen string) { m.viewUpdates = append(m.viewUpdates, screen) }

type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) Schedule(fn func()) { m.pending = append(m.pending, fn) }

func (m *manualScheduler) flush() {
	p := m.pending
	m.pending = nil
	for _, fn := range p {
		fn()
	}
}
