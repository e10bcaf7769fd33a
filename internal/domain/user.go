// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder. Authentication happens upstream; the
// ledger only needs a verified user ID and creates a wallet alongside the
// account.
type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance.
func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
