package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/passwordresets"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// countingHasher is bcrypt at the minimum cost, counting Verify calls.
type countingHasher struct {
	*passwords.Hasher
	mu       sync.Mutex
	verifies int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{Hasher: passwords.NewHasher(bcrypt.MinCost)}
}

func (h *countingHasher) Verify(plain, digest string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.Hasher.Verify(plain, digest)
}

type fakeIssuer struct {
	err error
}

func (f *fakeIssuer) Issue(subjectID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok:" + subjectID, nil
}

// fakeMailer records messages. When block is set, Send waits for it to be
// closed or for ctx to end.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	ctxErrs []error
	err     error
	block   chan struct{}
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			f.mu.Lock()
			f.ctxErrs = append(f.ctxErrs, ctx.Err())
			f.mu.Unlock()
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

// brokenManager fails selected repository calls on top of the in-memory store.
type brokenManager struct {
	*memory.RepositoryManager
	usersErr    error
	markUsedErr error
}

func (m *brokenManager) Users(db dbx.DBTX) users.Repository {
	return &brokenUsers{Repository: m.RepositoryManager.Users(db), err: m.usersErr}
}

func (m *brokenManager) PasswordResets(db dbx.DBTX) passwordresets.Repository {
	return &brokenResets{Repository: m.RepositoryManager.PasswordResets(db), markUsedErr: m.markUsedErr}
}

type brokenUsers struct {
	users.Repository
	err error
}

func (r *brokenUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.Create(ctx, u)
}

func (r *brokenUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.GetByEmail(ctx, email)
}

type brokenResets struct {
	passwordresets.Repository
	markUsedErr error
}

func (r *brokenResets) MarkUsed(ctx context.Context, id string) error {
	if r.markUsedErr != nil {
		return r.markUsedErr
	}
	return r.Repository.MarkUsed(ctx, id)
}

var errDB = errors.New("db error: connection reset")
