package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusInProcess OrderStatus = "in_process"
	StatusDelayed   OrderStatus = "delayed"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Transitions maps each status to the set of statuses it may move to.
// Delivered and cancelled are terminal.
var Transitions = map[OrderStatus][]OrderStatus{
	StatusInProcess: {StatusDelayed, StatusDelivered, StatusCancelled},
	StatusDelayed:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ValidStatuses lists every status, in lifecycle order.
var ValidStatuses = []OrderStatus{StatusInProcess, StatusDelayed, StatusDelivered, StatusCancelled}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := Transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return len(Transitions[s]) == 0
}

// IsMutable reports whether the order's contents (line items) may still change.
func (s OrderStatus) IsMutable() bool {
	return s == StatusInProcess
}

// CanTransition reports whether moving from s to target is a legal edge.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, allowed := range Transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s. The slice is never
// nil so callers can embed it directly in error details.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	allowed := Transitions[s]
	if allowed == nil {
		return []OrderStatus{}
	}
	return allowed
}
