package passwordresets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query :=
		`INSERT INTO password_resets (id, user_id, code, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING used, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, reset.ID, reset.UserID, reset.Code, reset.ExpiresAt).
		Scan(&reset.Used, &reset.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, code string, now time.Time) (*models.PasswordReset, error) {
	query :=
		`SELECT id, user_id, code, expires_at, used, created_at FROM password_resets
		 WHERE code = $1 AND used = FALSE AND expires_at > $2
		 ORDER BY created_at DESC
		 LIMIT 1
		 FOR UPDATE
		 `

	pr := &models.PasswordReset{}
	err := r.db.QueryRowContext(ctx, query, code, now).
		Scan(&pr.ID, &pr.UserID, &pr.Code, &pr.ExpiresAt, &pr.Used, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return pr, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query :=
		`UPDATE password_resets SET used = TRUE
		 WHERE id = $1 AND used = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
