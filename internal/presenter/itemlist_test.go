package presenter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
	"github.com/diegolucasb/lockbox/internal/store"
	"github.com/diegolucasb/lockbox/internal/testutil"
)

type itemListFixture struct {
	view       *fakeItemListView
	dispatcher *testutil.ActionRecorder
	records    *flux.Relay[[]model.ServerPassword]
	security   *fakeSecurity
	metrics    *fakeMetrics
	presenter  *ItemListPresenter
}

func setupItemList(t *testing.T, opts ...Option) *itemListFixture {
	t.Helper()
	f := &itemListFixture{
		view:       newFakeItemListView(),
		dispatcher: testutil.NewActionRecorder(),
		records:    flux.NewRelay[[]model.ServerPassword]("test.records"),
		security:   &fakeSecurity{},
		metrics:    &fakeMetrics{},
	}
	opts = append([]Option{WithMetrics(f.metrics)}, opts...)
	f.presenter = NewItemListPresenter(f.view, f.dispatcher, f.records, f.security, opts...)
	require.NoError(t, f.presenter.OnViewReady())
	t.Cleanup(f.presenter.OnDestroy)
	return f
}

func TestItemList_DispatchesUnlockOnViewReady(t *testing.T) {
	f := setupItemList(t)
	assert.Equal(t, []action.Action{action.Unlock{}}, f.dispatcher.All())
}

func TestItemList_UpdatesItemsFromRecords(t *testing.T) {
	f := setupItemList(t)

	f.records.Emit([]model.ServerPassword{
		testutil.Record("fdsfda", "https://www.mozilla.org", "dogs@dogs.com", "woof"),
		testutil.Record("ghfdhg", "https://www.cats.org", "cats@cats.com", "meow"),
		testutil.Record("ioupiouiuy", "www.dogs.org", "", "baaaaa"),
	})

	assert.Equal(t, []model.ItemViewModel{
		{Title: "mozilla.org", Subtitle: "dogs@dogs.com", ID: "fdsfda"},
		{Title: "cats.org", Subtitle: "cats@cats.com", ID: "ghfdhg"},
		{Title: "dogs.org", Subtitle: "", ID: "ioupiouiuy"},
	}, f.view.lastUpdate())
	assert.Equal(t, []string{"item_list"}, f.metrics.viewUpdates)
}

func TestItemList_EmptyListDoesNotUpdate(t *testing.T) {
	f := setupItemList(t)

	f.records.Emit([]model.ServerPassword{})
	f.records.Emit(nil)

	assert.Nil(t, f.view.lastUpdate())
}

func TestItemList_ItemSelectionDispatchesDetail(t *testing.T) {
	f := setupItemList(t)

	f.view.itemSelection.Emit(model.ItemViewModel{Title: "mozilla", Subtitle: "lol", ID: "the_guid"})

	assert.Equal(t, action.Action(action.ItemDetail{ID: "the_guid"}), f.dispatcher.Last())
}

func TestItemList_FilterClickDispatchesFilter(t *testing.T) {
	f := setupItemList(t)

	f.view.filterClicks.Emit(struct{}{})

	assert.Equal(t, action.Action(action.Filter{}), f.dispatcher.Last())
}

func TestItemList_SettingMenuItem(t *testing.T) {
	for _, secure := range []bool{true, false} {
		t.Run(fmt.Sprintf("secure=%v", secure), func(t *testing.T) {
			f := setupItemList(t)
			f.security.secure = secure

			f.view.menuItems.Emit(MenuSetting)

			assert.Equal(t, action.Action(action.SettingList{}), f.dispatcher.Last())
			assert.Nil(t, f.view.lastPrompt())
		})
	}
}

func TestItemList_LockedMenuItem_SecureDevice(t *testing.T) {
	f := setupItemList(t)
	f.security.secure = true

	f.view.menuItems.Emit(MenuLocked)

	assert.Equal(t, action.Action(action.LockScreen{}), f.dispatcher.Last())
	assert.Nil(t, f.view.lastPrompt())
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())
}

func TestItemList_LockedMenuItem_InsecureDevice_Positive(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuLocked)

	prompt := f.view.lastPrompt()
	require.NotNil(t, prompt)
	assert.Equal(t, 1, f.dispatcher.Count(), "nothing dispatched while awaiting confirmation")
	assert.Equal(t, RoutingAwaitingConfirmation, f.presenter.RoutingState())

	require.True(t, prompt.Resolve(AlertPositive))

	assert.Equal(t, action.Action(action.SystemSetting{Intent: action.IntentSecurity}), f.dispatcher.Last())
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())
}

func TestItemList_LockedMenuItem_InsecureDevice_Negative(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuLocked)
	require.True(t, f.view.lastPrompt().Resolve(AlertNegative))

	assert.Equal(t, []action.Action{action.Unlock{}}, f.dispatcher.All())
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())

	// The machine is back in Idle and routes normally.
	f.view.menuItems.Emit(MenuSetting)
	assert.Equal(t, action.Action(action.SettingList{}), f.dispatcher.Last())
}

func TestItemList_ConfirmationResolvesOnce(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuLocked)
	prompt := f.view.lastPrompt()

	assert.True(t, prompt.Resolve(AlertPositive))
	assert.False(t, prompt.Resolve(AlertPositive))

	assert.Equal(t, 2, f.dispatcher.Count())
}

func TestItemList_NewerConfirmationSupersedesPending(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuLocked)
	first := f.view.lastPrompt()
	f.view.menuItems.Emit(MenuLocked)
	second := f.view.lastPrompt()
	require.NotSame(t, first, second)

	assert.False(t, first.Pending())
	assert.False(t, first.Resolve(AlertPositive))
	assert.Equal(t, RoutingAwaitingConfirmation, f.presenter.RoutingState())

	assert.True(t, second.Resolve(AlertPositive))
	assert.Equal(t, 2, f.dispatcher.Count())
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())
}

func TestItemList_UnknownMenuItemIsLoggedAndIgnored(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuItem("help"))

	assert.Equal(t, 1, f.dispatcher.Count())
	assert.Equal(t, []string{"help"}, f.metrics.routingErrors)
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())
}

func TestItemList_NothingAfterTeardown(t *testing.T) {
	f := setupItemList(t)

	f.view.menuItems.Emit(MenuLocked)
	prompt := f.view.lastPrompt()

	f.presenter.OnDestroy()

	f.view.itemSelection.Emit(model.ItemViewModel{ID: "the_guid"})
	f.view.filterClicks.Emit(struct{}{})
	f.view.menuItems.Emit(MenuSetting)
	f.records.Emit([]model.ServerPassword{testutil.Record("a", "https://a.example", "", "p")})

	assert.False(t, prompt.Resolve(AlertPositive), "teardown invalidates the pending dialog")
	assert.Equal(t, []action.Action{action.Unlock{}}, f.dispatcher.All())
	assert.Nil(t, f.view.lastUpdate())
	assert.Equal(t, RoutingIdle, f.presenter.RoutingState())
	assert.False(t, f.presenter.Attached())
}

func TestItemList_ScheduledUpdateDroppedAfterTeardown(t *testing.T) {
	sched := &manualScheduler{}
	f := setupItemList(t, WithScheduler(sched))

	f.records.Emit([]model.ServerPassword{testutil.Record("a", "https://a.example", "", "p")})
	require.Len(t, sched.pending, 1)

	f.presenter.OnDestroy()
	sched.flush()

	assert.Nil(t, f.view.lastUpdate())
}

func TestItemList_ReattachAfterTeardown(t *testing.T) {
	f := setupItemList(t)

	assert.ErrorIs(t, f.presenter.OnViewReady(), ErrAlreadyAttached)

	f.presenter.OnDestroy()
	require.NoError(t, f.presenter.OnViewReady())

	assert.Equal(t, []action.Action{action.Unlock{}, action.Unlock{}}, f.dispatcher.All())
	f.view.filterClicks.Emit(struct{}{})
	assert.Equal(t, 3, f.dispatcher.Count(), "old subscriptions stay released")
}

func TestItemList_WithRealStores(t *testing.T) {
	d := flux.NewDispatcher()
	recorder := testutil.NewActionRecorder()
	recorder.Attach(d)

	src := testutil.NewMemorySource(testutil.Record("the_guid", "https://www.mozilla.org", "dogs@dogs.com", "woof"))
	ds := store.NewDataStore(d, src, store.WithRefreshScheduler(flux.Immediate))
	defer ds.Close()

	view := newFakeItemListView()
	p := NewItemListPresenter(view, d, ds.List(), &fakeSecurity{})
	require.NoError(t, p.OnViewReady())
	defer p.OnDestroy()

	assert.Equal(t, []model.ItemViewModel{{Title: "mozilla.org", Subtitle: "dogs@dogs.com", ID: "the_guid"}}, view.lastUpdate())

	view.itemSelection.Emit(view.lastUpdate()[0])
	assert.Equal(t, []string{action.NameUnlock, action.NameItemDetail}, recorder.Names())
}

func TestRoutingError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newUnknownMenuItemError("help"))
	assert.True(t, IsRoutingError(err))
	assert.False(t, IsRoutingError(errors.New("other")))
	assert.Contains(t, err.Error(), "UNKNOWN_MENU_ITEM")
	assert.Contains(t, err.Error(), `item="help"`)
}

func TestAlertStateString(t *testing.T) {
	assert.Equal(t, "positive", AlertPositive.String())
	assert.Equal(t, "negative", AlertNegative.String())
	assert.Equal(t, "awaiting_confirmation", RoutingAwaitingConfirmation.String())
}
