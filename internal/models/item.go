package models

import "time"

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SellerID    string    `json:"sellerId"`
	ImageURLs   []string  `json:"imageUrls,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemCategories are the only categories an item may be listed under.
var ItemCategories = []string{"clothing", "grocery", "electronics", "furniture", "books", "others"}

func IsValidCategory(category string) bool {
	for _, c := range ItemCategories {
		if c == category {
			return true
		}
	}
	return false
}
