package models

// CartItem is one pending line in a user's cart. Prices are NOT stored
// here: they are resolved from the catalog when the order is placed.
type CartItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CartSnapshotEntry is a cart line resolved against the catalog at
// order-creation time. Transient: consumed by the order aggregator.
type CartSnapshotEntry struct {
	ItemID    string
	Quantity  int
	UnitPrice float64
	SellerID  string
}
