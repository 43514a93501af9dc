package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a shop account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone" db:"phone"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	Street       string    `json:"street" db:"street"`
	Apartment    string    `json:"apartment" db:"apartment"`
	Postcode     string    `json:"postcode" db:"postcode"`
	City         string    `json:"city" db:"city"`
	Country      string    `json:"country" db:"country"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// UserSummary is the populated user reference embedded in orders.
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
