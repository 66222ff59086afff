// Package passwordresets declares the store contract for password reset
// codes and its PostgreSQL implementation.
package passwordresets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists password reset records.
type Repository interface {
	// Create stores a new, unused reset record.
	Create(ctx context.Context, reset *models.PasswordReset) error

	// FindActive returns the most recently created record with the given code
	// that is unused and expires strictly after now. Implementations lock the
	// row when called inside a transaction. Returns common.ErrorNotFound when
	// nothing matches.
	FindActive(ctx context.Context, code string, now time.Time) (*models.PasswordReset, error)

	// MarkUsed flips used from false to true. It returns common.ErrorNotFound
	// if the record does not exist or was already used.
	MarkUsed(ctx context.Context, id string) error
}
