package domain

import "time"

// User represents a registered account together with its payment
// provider customer reference.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CustomerID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
