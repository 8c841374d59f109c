package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
	"github.com/diegolucasb/lockbox/internal/presenter"
	"github.com/diegolucasb/lockbox/internal/storage"
	"github.com/diegolucasb/lockbox/internal/store"
	"github.com/diegolucasb/lockbox/internal/testutil"
)

// Option configures a run.
type Option func(*harness)

// WithLogger sets the logger handed to the dispatcher, stores and presenter.
// Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *harness) { h.logger = l }
}

// harness holds the collaborators of one run.
type harness struct {
	logger *slog.Logger
	result *Result

	dispatcher *flux.Dispatcher
	security   *store.FingerprintStore
	list       *presenter.ItemListPresenter
	view       *scenarioView

	hardware, enrolled, keyguard bool
}

// Run executes a scenario and returns its result.
//
// Each run gets a fresh in-memory database for the action journal, a
// deterministic clock and a fixed session id, so the same scenario always
// yields the same trace. The returned error reports infrastructure failures;
// failed steps and assertions are reported in the result.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	h := &harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := storage.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session := testutil.NewFixedSessionGenerator(s.Session).Generate()
	h.result = NewResult(s.Name, session)

	journal := storage.NewJournal(st, session,
		storage.WithJournalLogger(h.logger),
		storage.WithNow(func() time.Time { return time.UnixMilli(0) }),
	)
	h.dispatcher = flux.NewDispatcher(
		flux.WithClock(testutil.NewDeterministicClock()),
		flux.WithLogger(h.logger),
		flux.WithHook(journal),
		flux.WithHook(flux.HookFunc(h.actionDispatched)),
	)
	defer h.dispatcher.Close()

	records := make([]model.ServerPassword, len(s.Records))
	for i, r := range s.Records {
		records[i] = testutil.Record(r.ID, r.Hostname, r.Username, r.Password)
	}
	data := store.NewDataStore(h.dispatcher, testutil.NewMemorySource(records...),
		store.WithDataLogger(h.logger),
		store.WithRefreshScheduler(flux.Immediate),
	)
	defer data.Close()

	routes := store.NewRouteStore(h.dispatcher)
	defer routes.Close()

	h.applyDevice(s.Device)
	h.security = store.NewFingerprintStore(h.sensors())

	h.view = newScenarioView(h.result)
	h.list = presenter.NewItemListPresenter(h.view, h.dispatcher, data.List(), h.security,
		presenter.WithLogger(h.logger),
		presenter.WithMetrics(h),
	)

	for i, step := range s.Steps {
		if err := h.step(step); err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step, err))
		}
	}

	h.result.Final = Final{
		Routing: h.list.RoutingState().String(),
		Data:    data.Current().String(),
		Items:   h.view.lastTitles(),
	}
	if r, ok := routes.Routes().Value(); ok {
		h.result.Final.Route = r.Name()
	}
	h.list.OnDestroy()

	entries, err := storage.ReadJournal(context.Background(), st, session)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	h.result.Final.Journal = len(entries)
	if n := len(h.result.Actions()); n != len(entries) {
		h.result.AddError(fmt.Sprintf("journal has %d entries, trace has %d actions", len(entries), n))
	}

	for _, msg := range EvaluateAssertions(h.result, s.Expect) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *harness) step(s Step) error {
	switch {
	case s.Attach:
		h.input(s.String())
		return h.list.OnViewReady()

	case s.Menu != "":
		h.input(s.String())
		h.view.menuItems.Emit(presenter.MenuItem(s.Menu))

	case s.Dialog != "":
		h.input(s.String())
		prompt := h.view.lastPrompt()
		if prompt == nil {
			return errors.New("no confirmation was shown")
		}
		outcome := presenter.AlertNegative
		if s.Dialog == "positive" {
			outcome = presenter.AlertPositive
		}
		if !prompt.Resolve(outcome) {
			h.result.add(TraceEvent{Kind: EventDialog, Detail: "ignored"})
		}

	case s.Select != "":
		h.input(s.String())
		h.view.itemSelection.Emit(h.view.item(s.Select))

	case s.Filter:
		h.input(s.String())
		h.view.filterClicks.Emit(struct{}{})

	case s.Device != nil:
		h.applyDevice(*s.Device)
		h.security.Apply(h.sensors())
		h.input(fmt.Sprintf("device secure=%t", h.security.IsDeviceSecure()))

	case s.Teardown:
		h.input(s.String())
		h.list.OnDestroy()

	case s.Dispatch != nil:
		h.input(s.String())
		a, err := action.FromRecord(action.Record{Name: s.Dispatch.Action, Args: s.Dispatch.Args})
		if err != nil {
			return err
		}
		h.dispatcher.Dispatch(a)

	default:
		return errors.New("empty step")
	}
	return nil
}

func (h *harness) input(detail string) {
	h.result.add(TraceEvent{Kind: EventInput, Detail: detail})
}

func (h *harness) applyDevice(d Device) {
	if d.FingerprintHardware != nil {
		h.hardware = *d.FingerprintHardware
	}
	if d.FingerprintEnrolled != nil {
		h.enrolled = *d.FingerprintEnrolled
	}
	if d.KeyguardSecure != nil {
		h.keyguard = *d.KeyguardSecure
	}
}

func (h *harness) sensors() (store.FingerprintSensor, store.KeyguardSensor) {
	return testutil.StaticFingerprint{Hardware: h.hardware, Enrolled: h.enrolled},
		testutil.StaticKeyguard(h.keyguard)
}

// actionDispatched records every action in dispatch order.
func (h *harness) actionDispatched(seq int64, a action.Action) {
	rec := action.ToRecord(a)
	h.result.add(TraceEvent{Kind: EventAction, Seq: seq, Name: rec.Name, Args: rec.Args})
}

// RoutingError records rejected menu input.
func (h *harness) RoutingError(item string) {
	h.result.add(TraceEvent{Kind: EventError, Detail: "routing item=" + item})
}

// ViewUpdated is a no-op; the view records its own updates.
func (h *harness) ViewUpdated(string) {}

// scenarioView is the item list view driven by scenario steps.
type scenarioView struct {
	result *Result

	itemSelection *flux.Subject[model.ItemViewModel]
	filterClicks  *flux.Subject[struct{}]
	menuItems     *flux.Subject[presenter.MenuItem]

	items   []model.ItemViewModel
	prompts []*flux.Promise[presenter.AlertState]
}

func newScenarioView(result *Result) *scenarioView {
	return &scenarioView{
		result:        result,
		itemSelection: flux.NewSubject[model.ItemViewModel]("scenario.item_selection"),
		filterClicks:  flux.NewSubject[struct{}]("scenario.filter_clicks"),
		menuItems:     flux.NewSubject[presenter.MenuItem]("scenario.menu_items"),
	}
}

func (v *scenarioView) ItemSelection() flux.Observable[model.ItemViewModel] {
	return v.itemSelection
}

func (v *scenarioView) FilterClicks() flux.Observable[struct{}] {
	return v.filterClicks
}

func (v *scenarioView) MenuItemSelections() flux.Observable[presenter.MenuItem] {
	return v.menuItems
}

func (v *scenarioView) UpdateItems(items []model.ItemViewModel) {
	v.items = items
	v.result.add(TraceEvent{Kind: EventItems, Detail: strings.Join(v.lastTitles(), ", ")})
}

func (v *scenarioView) ShowSecurityConfirmation(p *flux.Promise[presenter.AlertState]) {
	v.prompts = append(v.prompts, p)
	v.result.add(TraceEvent{Kind: EventDialog, Detail: "shown"})
}

func (v *scenarioView) lastPrompt() *flux.Promise[presenter.AlertState] {
	if len(v.prompts) == 0 {
		return nil
	}
	return v.prompts[len(v.prompts)-1]
}

// item returns the displayed row for id, or a bare row if none is shown.
func (v *scenarioView) item(id string) model.ItemViewModel {
	for _, it := range v.items {
		if it.ID == id {
			return it
		}
	}
	return model.ItemViewModel{ID: id}
}

// lastTitles returns the titles of the last update. It is empty, not nil,
// when the view was never updated.
func (v *scenarioView) lastTitles() []string {
	titles := make([]string, len(v.items))
	for i, it := range v.items {
		titles[i] = it.Title
	}
	return titles
}
