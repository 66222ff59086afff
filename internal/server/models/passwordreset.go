package models

import "time"

// PasswordReset is a single-use reset code issued to a user. Code values are
// not unique over time; a record only matters while it is unused and
// unexpired.
type PasswordReset struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Active reports whether the reset can still be redeemed at now. Expiry is
// exclusive: a code stops working at ExpiresAt.
func (p *PasswordReset) Active(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}
