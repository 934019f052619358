package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderConfirmed, OrderPending, false},
		{OrderDelivered, OrderShipped, false},
		{OrderPending, OrderPending, false},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderPending, OrderStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, PaymentRefunded.Valid())
	assert.False(t, PaymentStatus("completed").Valid())
	assert.True(t, UserTypeBusinessOwner.Valid())
	assert.False(t, UserType("admin").Valid())
}
