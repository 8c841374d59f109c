package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionEquality(t *testing.T) {
	assert.Equal(t, Action(ItemDetail{ID: "the_guid"}), Action(ItemDetail{ID: "the_guid"}))
	assert.True(t, Action(ItemDetail{ID: "a"}) == Action(ItemDetail{ID: "a"}))
	assert.False(t, Action(ItemDetail{ID: "a"}) == Action(ItemDetail{ID: "b"}))
	assert.False(t, Action(Lock{}) == Action(Unlock{}))
	assert.True(t, Action(SecurityDisclaimer()) == Action(SecurityDisclaimerDialog{
		Positive: SystemSetting{Intent: IntentSecurity},
	}))
}

func TestIsRoute(t *testing.T) {
	routes := []Action{
		ItemList{}, ItemDetail{ID: "x"}, Filter{}, SettingList{},
		LockScreen{}, Back{}, SystemSetting{Intent: IntentSecurity}, SecurityDisclaimer(),
	}
	for _, a := range routes {
		assert.True(t, IsRoute(a), a.Name())
	}

	for _, a := range []Action{Unlock{}, Lock{}, Sync{}} {
		assert.False(t, IsRoute(a), a.Name())
	}
}

func TestNamesAreUnique(t *testing.T) {
	all := []Action{
		Unlock{}, Lock{}, Sync{}, ItemList{}, ItemDetail{}, Filter{}, SettingList{},
		LockScreen{}, Back{}, SystemSetting{}, SecurityDisclaimerDialog{},
	}
	seen := make(map[string]bool)
	for _, a := range all {
		require.False(t, seen[a.Name()], "duplicate name %s", a.Name())
		seen[a.Name()] = true
	}
}

func TestToRecord_Payload(t *testing.T) {
	r := ToRecord(ItemDetail{ID: "the_guid"})
	assert.Equal(t, NameItemDetail, r.Name)
	assert.Equal(t, map[string]string{"id": "the_guid"}, r.Args)

	r = ToRecord(SecurityDisclaimer())
	assert.Equal(t, map[string]string{"positive": "settings.security"}, r.Args)

	r = ToRecord(Unlock{})
	assert.Nil(t, r.Args)
}

func TestFromRecord_RebuildsPayload(t *testing.T) {
	a, err := FromRecord(Record{Name: NameSystemSetting, Args: map[string]string{"intent": "settings.security"}})
	require.NoError(t, err)
	assert.Equal(t, Action(SystemSetting{Intent: IntentSecurity}), a)

	a, err = FromRecord(ToRecord(SecurityDisclaimer()))
	require.NoError(t, err)
	assert.Equal(t, Action(SecurityDisclaimer()), a)
}

func TestFromRecord_Errors(t *testing.T) {
	_, err := FromRecord(Record{Name: "route.nowhere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")

	_, err = FromRecord(Record{Name: NameItemDetail})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing arg")
}

func TestEncodeArgs(t *testing.T) {
	s, err := EncodeArgs(Record{Name: NameLock})
	require.NoError(t, err)
	assert.Equal(t, "{}", s)

	s, err = EncodeArgs(ToRecord(ItemDetail{ID: "g1"}))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"g1"}`, s)

	args, err := DecodeArgs(s)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "g1"}, args)

	args, err = DecodeArgs("{}")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = DecodeArgs("{not json")
	assert.Error(t, err)
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, "data.unlock", ToRecord(Unlock{}).String())
	assert.Equal(t, "route.item_detail id=the_guid", ToRecord(ItemDetail{ID: "the_guid"}).String())
}
