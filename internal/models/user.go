package models

import "time"

// User represents an account owner in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate holds the optional fields of a profile update
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	UpdatedAt    time.Time
}
