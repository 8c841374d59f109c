package action

// Action is a tagged, immutable event value.
//
// The set of implementations is closed: only types in this package satisfy
// it because isAction is unexported.
type Action interface {
	// Name returns the stable dotted identifier of the variant.
	Name() string
	isAction()
}

// Route is an action that asks the router to change screens.
type Route interface {
	Action
	isRoute()
}

// Action names.
const (
	NameUnlock                   = "data.unlock"
	NameLock                     = "data.lock"
	NameSync                     = "data.sync"
	NameItemList                 = "route.item_list"
	NameItemDetail               = "route.item_detail"
	NameFilter                   = "route.filter"
	NameSettingList              = "route.setting_list"
	NameLockScreen               = "route.lock_screen"
	NameBack                     = "route.back"
	NameSystemSetting            = "route.system_setting"
	NameSecurityDisclaimerDialog = "route.security_disclaimer_dialog"
)

// SettingIntent identifies a platform settings screen.
type SettingIntent string

// IntentSecurity opens the device security settings.
const IntentSecurity SettingIntent = "settings.security"

// Unlock asks the data store to open the record source.
type Unlock struct{}

// Lock asks the data store to drop the record source and clear the list.
type Lock struct{}

// Sync asks the data store to refresh the record source.
type Sync struct{}

// ItemList routes to the record list.
type ItemList struct{}

// ItemDetail routes to the detail screen of a single record.
type ItemDetail struct {
	ID string
}

// Filter routes to the filter screen.
type Filter struct{}

// SettingList routes to the application settings.
type SettingList struct{}

// LockScreen routes to the lock screen.
type LockScreen struct{}

// Back pops the current screen.
type Back struct{}

// SystemSetting opens a platform settings screen.
type SystemSetting struct {
	Intent SettingIntent
}

// SecurityDisclaimerDialog asks the router to show the "no device security"
// dialog. Positive is the route taken when the user accepts.
type SecurityDisclaimerDialog struct {
	Positive SystemSetting
}

func (Unlock) Name() string                   { return NameUnlock }
func (Lock) Name() string                     { return NameLock }
func (Sync) Name() string                     { return NameSync }
func (ItemList) Name() string                 { return NameItemList }
func (ItemDetail) Name() string               { return NameItemDetail }
func (Filter) Name() string                   { return NameFilter }
func (SettingList) Name() string              { return NameSettingList }
func (LockScreen) Name() string               { return NameLockScreen }
func (Back) Name() string                     { return NameBack }
func (SystemSetting) Name() string            { return NameSystemSetting }
func (SecurityDisclaimerDialog) Name() string { return NameSecurityDisclaimerDialog }

func (Unlock) isAction()                   {}
func (Lock) isAction()                     {}
func (Sync) isAction()                     {}
func (ItemList) isAction()                 {}
func (ItemDetail) isAction()               {}
func (Filter) isAction()                   {}
func (SettingList) isAction()              {}
func (LockScreen) isAction()               {}
func (Back) isAction()                     {}
func (SystemSetting) isAction()            {}
func (SecurityDisclaimerDialog) isAction() {}

func (ItemList) isRoute()                 {}
func (ItemDetail) isRoute()               {}
func (Filter) isRoute()                   {}
func (SettingList) isRoute()              {}
func (LockScreen) isRoute()               {}
func (Back) isRoute()                     {}
func (SystemSetting) isRoute()            {}
func (SecurityDisclaimerDialog) isRoute() {}

// IsRoute reports whether a is a route action.
func IsRoute(a Action) bool {
	_, ok := a.(Route)
	return ok
}

// SecurityDisclaimer returns the dialog shown when the lock screen is
// requested on a device without security configured.
func SecurityDisclaimer() SecurityDisclaimerDialog {
	return SecurityDisclaimerDialog{Positive: SystemSetting{Intent: IntentSecurity}}
}
