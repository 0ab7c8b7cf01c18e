package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantRole(t *testing.T) {
	order := &Order{
		BuyerID: "buyer-1",
		Sellers: []SellerGroup{
			{SellerID: "seller-1", Items: []OrderItem{{ItemID: "item-a", Quantity: 1}}},
			{SellerID: "seller-2", Items: []OrderItem{{ItemID: "item-b", Quantity: 2}}},
		},
	}

	t.Run("buyer", func(t *testing.T) {
		assert.Equal(t, ParticipantBuyer, order.ParticipantRole("buyer-1"))
	})

	t.Run("any seller group matches", func(t *testing.T) {
		assert.Equal(t, ParticipantSeller, order.ParticipantRole("seller-1"))
		assert.Equal(t, ParticipantSeller, order.ParticipantRole("seller-2"))
	})

	t.Run("stranger", func(t *testing.T) {
		assert.Equal(t, ParticipantNone, order.ParticipantRole("someone-else"))
	})

	t.Run("empty id never matches", func(t *testing.T) {
		assert.Equal(t, ParticipantNone, order.ParticipantRole(""))
	})
}

func TestOrderJSONHidesOTPHash(t *testing.T) {
	order := Order{
		ID:        "order-1",
		HashedOTP: "$2a$10$secret",
		Status:    OrderStatusPending,
	}

	data, err := json.Marshal(order)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"status":"Pending"`)
}
