package models

import "time"

type User struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Age           int       `json:"age"`
	ContactNumber string    `json:"contactNumber"`
	Password      string    `json:"-"`
	Role          string    `json:"role,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
