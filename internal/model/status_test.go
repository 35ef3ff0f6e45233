package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"In process can be delayed", StatusInProcess, StatusDelayed, true},
		{"In process can be delivered", StatusInProcess, StatusDelivered, true},
		{"In process can be cancelled", StatusInProcess, StatusCancelled, true},
		{"Delayed can be delivered", StatusDelayed, StatusDelivered, true},
		{"Delayed can be cancelled", StatusDelayed, StatusCancelled, true},
		{"Delayed cannot go back to in process", StatusDelayed, StatusInProcess, false},
		{"Delivered is terminal", StatusDelivered, StatusCancelled, false},
		{"Cancelled is terminal", StatusCancelled, StatusInProcess, false},
		{"No self transition", StatusInProcess, StatusInProcess, false},
		{"Delivered cannot be re-delivered", StatusDelivered, StatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusInProcess.IsTerminal())
	assert.False(t, StatusDelayed.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestOrderStatus_IsMutable(t *testing.T) {
	assert.True(t, StatusInProcess.IsMutable())
	assert.False(t, StatusDelayed.IsMutable())
	assert.False(t, StatusDelivered.IsMutable())
	assert.False(t, StatusCancelled.IsMutable())
}

func TestOrderStatus_IsValid(t *testing.T) {
	for _, s := range ValidStatuses {
		assert.True(t, s.IsValid())
	}
	assert.False(t, OrderStatus("shipped").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatus_AllowedTransitionsNeverNil(t *testing.T) {
	assert.NotNil(t, StatusDelivered.AllowedTransitions())
	assert.Empty(t, StatusDelivered.AllowedTransitions())
	assert.ElementsMatch(t,
		[]OrderStatus{StatusDelayed, StatusDelivered, StatusCancelled},
		StatusInProcess.AllowedTransitions())
}
