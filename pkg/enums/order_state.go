package enums

import "fmt"

// OrderState tracks the active order through the register flow. An order
// is built up, sent to the kitchen exactly once, then checked out, which
// resets the register to an empty building order.
type OrderState string

const (
	OrderStateBuilding OrderState = "building"
	OrderStateSent     OrderState = "sent"
)

var validOrderStates = []OrderState{
	OrderStateBuilding,
	OrderStateSent,
}

// String implements fmt.Stringer.
func (s OrderState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderState.
func (s OrderState) IsValid() bool {
	for _, candidate := range validOrderStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderState converts raw input into an OrderState.
func ParseOrderState(value string) (OrderState, error) {
	for _, candidate := range validOrderStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order state %q", value)
}
