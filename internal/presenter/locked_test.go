package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/testutil"
)

type fakeLockedView struct {
	unlock *flux.Subject[struct{}]
}

func (v *fakeLockedView) UnlockClicks() flux.Observable[struct{}] { return v.unlock }

func TestLocked_LocksOnAttachAndUnlocksOnTap(t *testing.T) {
	view := &fakeLockedView{unlock: flux.NewSubject[struct{}]("test.unlock")}
	rec := testutil.NewActionRecorder()
	p := NewLockedPresenter(view, rec)

	require.NoError(t, p.OnViewReady())
	assert.Equal(t, []action.Action{action.Lock{}}, rec.All())

	view.unlock.Emit(struct{}{})
	assert.Equal(t, []action.Action{action.Lock{}, action.Unlock{}, action.ItemList{}}, rec.All())

	p.OnDestroy()
	view.unlock.Emit(struct{}{})
	assert.Equal(t, 3, rec.Count())
	assert.Equal(t, 0, view.unlock.Subscribers())
}
