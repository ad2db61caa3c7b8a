// internal/models/account.go
package models

import "time"

// Account is a registered user. Accounts are self-keyed in the remote
// store (the id comes from the auth provider, not the store).
// LastActiveAt is bumped on every successful session start; accounts
// that never recorded one are exempt from inactivity cleanup.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}
