package models

import "time"

// APIKey is a client credential stored in the api_keys table.
type APIKey struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Key       string     `json:"api_key" db:"api_key"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	LastUsed  *time.Time `json:"last_used" db:"last_used"`
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the key has an expiry in the past.
func (k APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// Masked returns the key with the middle elided for listings.
func (k APIKey) Masked() string {
	if len(k.Key) <= 12 {
		return "***"
	}
	return k.Key[:8] + "..." + k.Key[len(k.Key)-4:]
}
