package entity

import (
	"time"
)

// Operator is an account allowed to send campaigns.
// Passwords are stored as bcrypt hashes in Password field
type Operator struct {
	ID        string
	Email     string
	Password  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
