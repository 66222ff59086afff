// Package memory is an in-process RepositoryManager. It keeps everything in
// maps guarded by a mutex and ignores the DBTX it is handed, so writes made
// inside a transaction are not rolled back. It backs tests and local
// experiments; production uses PostgreSQL.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/passwordresets"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type store struct {
	mu      sync.Mutex
	users   map[string]models.User
	resets  map[string]models.PasswordReset
	nowFunc func() time.Time
}

// RepositoryManager satisfies repomanager.RepositoryManager.
type RepositoryManager struct {
	s *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{s: &store{
		users:   make(map[string]models.User),
		resets:  make(map[string]models.PasswordReset),
		nowFunc: time.Now,
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.s) }

func (m *RepositoryManager) PasswordResets(dbx.DBTX) passwordresets.Repository {
	return (*resetRepo)(m.s)
}

// Resets returns a snapshot of every stored reset record, oldest first.
func (m *RepositoryManager) Resets() []models.PasswordReset {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	out := make([]models.PasswordReset, 0, len(m.s.resets))
	for _, r := range m.s.resets {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// UserCount returns the number of stored users.
func (m *RepositoryManager) UserCount() int {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.users)
}

// SetClock replaces the clock used for created/updated timestamps.
func (m *RepositoryManager) SetClock(now func() time.Time) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nowFunc = now
}

type userRepo store

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	now := r.nowFunc()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.nowFunc()
	r.users[id] = u
	return nil
}

type resetRepo store

func (r *resetRepo) Create(_ context.Context, reset *models.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset.Used = false
	reset.CreatedAt = r.nowFunc()
	r.resets[reset.ID] = *reset
	return nil
}

func (r *resetRepo) FindActive(_ context.Context, code string, now time.Time) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *models.PasswordReset
	for _, pr := range r.resets {
		if pr.Code != code || !pr.Active(now) {
			continue
		}
		if found == nil || pr.CreatedAt.After(found.CreatedAt) {
			pr := pr
			found = &pr
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *resetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pr, ok := r.resets[id]
	if !ok || pr.Used {
		return common.ErrorNotFound
	}
	pr.Used = true
	r.resets[id] = pr
	return nil
}
