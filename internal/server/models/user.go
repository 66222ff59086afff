// Package models holds the server-side persistent entities.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt digest and must
// never leave the server.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
