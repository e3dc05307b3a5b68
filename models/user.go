package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an account that can hold memberships in organizations
type User struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Email              string          `json:"email" db:"email"`
	Name               string          `json:"name" db:"name"`
	Premium            bool            `json:"premium" db:"premium"`
	TwoFactorProviders json.RawMessage `json:"two_factor_providers,omitempty" db:"two_factor_providers"` // JSONB
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, name string) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TwoFactorProvider describes one configured two-factor method
type TwoFactorProvider struct {
	Enabled bool `json:"enabled"`
}

// HasTwoFactorEnabled reports whether the user has at least one enabled
// two-factor provider configured.
func (u *User) HasTwoFactorEnabled() bool {
	if len(u.TwoFactorProviders) == 0 {
		return false
	}
	var providers map[string]TwoFactorProvider
	if err := json.Unmarshal(u.TwoFactorProviders, &providers); err != nil {
		return false
	}
	for _, p := range providers {
		if p.Enabled {
			return true
		}
	}
	return false
}
