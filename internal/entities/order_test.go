package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopmind/shop-api/internal/entities"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		name string
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{"pending to confirmed", entities.StatusPending, entities.StatusConfirmed, true},
		{"pending to cancelled", entities.StatusPending, entities.StatusCancelled, true},
		{"pending to shipped", entities.StatusPending, entities.StatusShipped, false},
		{"pending to delivered", entities.StatusPending, entities.StatusDelivered, false},
		{"confirmed to shipped", entities.StatusConfirmed, entities.StatusShipped, true},
		{"confirmed to cancelled", entities.StatusConfirmed, entities.StatusCancelled, true},
		{"confirmed to pending", entities.StatusConfirmed, entities.StatusPending, false},
		{"shipped to delivered", entities.StatusShipped, entities.StatusDelivered, true},
		{"shipped to cancelled", entities.StatusShipped, entities.StatusCancelled, true},
		{"shipped to confirmed", entities.StatusShipped, entities.StatusConfirmed, false},
		{"delivered to cancelled", entities.StatusDelivered, entities.StatusCancelled, false},
		{"delivered to pending", entities.StatusDelivered, entities.StatusPending, false},
		{"cancelled to pending", entities.StatusCancelled, entities.StatusPending, false},
		{"cancelled to confirmed", entities.StatusCancelled, entities.StatusConfirmed, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, entities.StatusPending.Terminal())
	assert.False(t, entities.StatusConfirmed.Terminal())
	assert.False(t, entities.StatusShipped.Terminal())
	assert.True(t, entities.StatusDelivered.Terminal())
	assert.True(t, entities.StatusCancelled.Terminal())
	assert.False(t, entities.OrderStatus("UNKNOWN").Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := entities.ParseOrderStatus("CONFIRMED")
	assert.True(t, ok)
	assert.Equal(t, entities.StatusConfirmed, status)

	_, ok = entities.ParseOrderStatus("confirmed")
	assert.False(t, ok)

	_, ok = entities.ParseOrderStatus("REFUNDED")
	assert.False(t, ok)
}
