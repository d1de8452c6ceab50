package auth

import "time"

// Account is a back-office operator login.
type Account struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
