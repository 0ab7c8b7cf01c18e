package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	// Cancelled exists in the lifecycle but no endpoint sets it yet.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderItem is one purchased line inside a seller group.
type OrderItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// SellerGroup holds the part of an order belonging to a single seller.
// A seller appears at most once per order.
type SellerGroup struct {
	SellerID string      `json:"sellerId"`
	Items    []OrderItem `json:"items"`
}

type Order struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transactionId"`
	BuyerID       string        `json:"buyerId"`
	Sellers       []SellerGroup `json:"sellers"`
	Amount        float64       `json:"amount"`
	HashedOTP     string        `json:"-"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Participant is the capability a user has on an order.
type Participant int

const (
	ParticipantNone Participant = iota
	ParticipantBuyer
	ParticipantSeller
)

// ParticipantRole tells whether userID is the buyer, one of the sellers,
// or a stranger to this order. Every read/confirm path goes through this.
func (o *Order) ParticipantRole(userID string) Participant {
	if userID == "" {
		return ParticipantNone
	}
	if o.BuyerID == userID {
		return ParticipantBuyer
	}
	for _, group := range o.Sellers {
		if group.SellerID == userID {
			return ParticipantSeller
		}
	}
	return ParticipantNone
}

// DailySales is one calendar-day bucket of the sales report.
type DailySales struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"totalSales"`
	OrderCount int     `json:"orderCount"`
}
