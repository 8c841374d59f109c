package presenter

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// FilterView is the search screen.
type FilterView interface {
	FilterText() flux.Observable[string]
	ItemSelection() flux.Observable[model.ItemViewModel]
	CancelClicks() flux.Observable[struct{}]

	UpdateItems(items []model.ItemViewModel)
}

// FilterPresenter narrows the record list to a query.
type FilterPresenter struct {
	base
	view    FilterView
	records flux.Observable[[]model.ServerPassword]

	items []model.ItemViewModel
	query string
}

// NewFilterPresenter creates a presenter over the data store list stream.
func NewFilterPresenter(
	view FilterView,
	dispatcher Dispatcher,
	records flux.Observable[[]model.ServerPassword],
	opts ...Option,
) *FilterPresenter {
	return &FilterPresenter{
		base:    newBase("filter", dispatcher, opts),
		view:    view,
		records: records,
	}
}

// OnViewReady wires the view.
//
// The view is updated whenever the query or the record list changes, but
// only while the record list is non-empty. A query matching nothing yields
// an empty update.
func (p *FilterPresenter) OnViewReady() error {
	bag, err := p.begin()
	if err != nil {
		return err
	}

	bag.Add(p.records.Subscribe(func(ps []model.ServerPassword) {
		p.mu.Lock()
		p.items = model.ItemViewModels(ps)
		p.mu.Unlock()
		p.refresh(bag)
	}))

	bag.Add(p.view.FilterText().Subscribe(func(q string) {
		p.mu.Lock()
		p.query = q
		p.mu.Unlock()
		p.refresh(bag)
	}))

	bag.Add(p.view.ItemSelection().Subscribe(func(vm model.ItemViewModel) {
		p.dispatch(bag, action.ItemDetail{ID: vm.ID})
	}))

	bag.Add(p.view.CancelClicks().Subscribe(func(struct{}) {
		p.dispatch(bag, action.Back{})
	}))

	return nil
}

// OnDestroy releases every subscription.
func (p *FilterPresenter) OnDestroy() {
	p.end()
}

func (p *FilterPresenter) refresh(bag *flux.Bag) {
	p.mu.Lock()
	items, query := p.items, p.query
	p.mu.Unlock()

	if len(items) == 0 {
		return
	}
	matched := MatchItems(items, query)
	p.schedule(bag, func() {
		p.view.UpdateItems(matched)
		p.metrics.ViewUpdated(p.screen)
	})
}

// MatchItems returns the items whose title or subtitle contains query,
// ignoring case. When nothing contains the query, items whose title has a
// label within a small edit distance of it are returned instead. An empty
// query matches everything.
func MatchItems(items []model.ItemViewModel, query string) []model.ItemViewModel {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := []model.ItemViewModel{}
	for _, it := range items {
		if strings.Contains(fold.String(it.Title), q) || strings.Contains(fold.String(it.Subtitle), q) {
			out = append(out, it)
		}
	}
	if len(out) > 0 || len([]rune(q)) < 3 {
		return out
	}

	limit := 1
	if len([]rune(q)) > 5 {
		limit = 2
	}
	for _, it := range items {
		for _, label := range strings.Split(fold.String(it.Title), ".") {
			if levenshtein.ComputeDistance(q, label) <= limit {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
