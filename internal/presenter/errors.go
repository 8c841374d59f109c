package presenter

import (
	"errors"
	"fmt"
)

// RoutingError reports menu input the routing state machine cannot handle.
// It is logged and counted, never returned to the view.
type RoutingError struct {
	Code    RoutingErrorCode
	Message string
	Item    string
}

// RoutingErrorCode categorizes routing errors.
type RoutingErrorCode string

// ErrCodeUnknownMenuItem indicates a menu item with no route.
const ErrCodeUnknownMenuItem RoutingErrorCode = "UNKNOWN_MENU_ITEM"

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s: %s (item=%q)", e.Code, e.Message, e.Item)
}

// IsRoutingError reports whether err wraps a RoutingError.
func IsRoutingError(err error) bool {
	var re *RoutingError
	return errors.As(err, &re)
}

func newUnknownMenuItemError(item MenuItem) *RoutingError {
	return &RoutingError{
		Code:    ErrCodeUnknownMenuItem,
		Message: "cannot route from item list menu",
		Item:    string(item),
	}
}
