package action

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is the flat, serializable form of an action.
//
// Args holds the payload fields by name; variants without payload have a
// nil map.
type Record struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args,omitempty"`
}

// ToRecord converts an action into its flat form.
func ToRecord(a Action) Record {
	switch v := a.(type) {
	case ItemDetail:
		return Record{Name: v.Name(), Args: map[string]string{"id": v.ID}}
	case SystemSetting:
		return Record{Name: v.Name(), Args: map[string]string{"intent": string(v.Intent)}}
	case SecurityDisclaimerDialog:
		return Record{Name: v.Name(), Args: map[string]string{"positive": string(v.Positive.Intent)}}
	default:
		return Record{Name: a.Name()}
	}
}

// FromRecord rebuilds an action from its flat form.
func FromRecord(r Record) (Action, error) {
	switch r.Name {
	case NameUnlock:
		return Unlock{}, nil
	case NameLock:
		return Lock{}, nil
	case NameSync:
		return Sync{}, nil
	case NameItemList:
		return ItemList{}, nil
	case NameItemDetail:
		id, ok := r.Args["id"]
		if !ok {
			return nil, fmt.Errorf("action %s: missing arg %q", r.Name, "id")
		}
		return ItemDetail{ID: id}, nil
	case NameFilter:
		return Filter{}, nil
	case NameSettingList:
		return SettingList{}, nil
	case NameLockScreen:
		return LockScreen{}, nil
	case NameBack:
		return Back{}, nil
	case NameSystemSetting:
		intent, ok := r.Args["intent"]
		if !ok {
			return nil, fmt.Errorf("action %s: missing arg %q", r.Name, "intent")
		}
		return SystemSetting{Intent: SettingIntent(intent)}, nil
	case NameSecurityDisclaimerDialog:
		positive, ok := r.Args["positive"]
		if !ok {
			return nil, fmt.Errorf("action %s: missing arg %q", r.Name, "positive")
		}
		return SecurityDisclaimerDialog{Positive: SystemSetting{Intent: SettingIntent(positive)}}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", r.Name)
	}
}

// EncodeArgs returns the JSON form of r.Args with sorted keys.
// A record without args encodes as "{}".
func EncodeArgs(r Record) (string, error) {
	if len(r.Args) == 0 {
		return "{}", nil
	}
	// encoding/json sorts map keys, so output is stable.
	b, err := json.Marshal(r.Args)
	if err != nil {
		return "", fmt.Errorf("encode args: %w", err)
	}
	return string(b), nil
}

// DecodeArgs parses the JSON produced by EncodeArgs.
func DecodeArgs(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var args map[string]string
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	return args, nil
}

// String renders a record as "name key=value ..." with sorted keys.
func (r Record) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	keys := make([]string, 0, len(r.Args))
	for k := range r.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := r.Name
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%s", k, r.Args[k])
	}
	return s
}
