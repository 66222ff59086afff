package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserSvc(t *testing.T) (*UserService, *memory.RepositoryManager, *countingHasher) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := memory.NewRepositoryManager()
	h := newCountingHasher()
	return NewUserService(db, rm, h, &fakeIssuer{}, discardLogger()), rm, h
}

func TestRegister_Success(t *testing.T) {
	svc, rm, h := newUserSvc(t)

	u, err := svc.Register(context.Background(), "  Alice@Example.COM ", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, h.Hasher.Verify("secret123", u.PasswordHash))
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, 1, rm.UserCount())
}

func TestRegister_Duplicate(t *testing.T) {
	svc, rm, _ := newUserSvc(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.com", "other-pass")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Equal(t, 1, rm.UserCount())
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, rm, _ := newUserSvc(t)

	_, err := svc.Register(context.Background(), "a@b.com", strings.Repeat("€", 30))
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, 0, rm.UserCount())
}

func TestRegister_StoreFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &brokenManager{RepositoryManager: memory.NewRepositoryManager(), usersErr: errDB}
	svc := NewUserService(db, rm, newCountingHasher(), &fakeIssuer{}, discardLogger())

	_, err := svc.Register(context.Background(), "a@b.com", "secret123")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin(t *testing.T) {
	svc, _, h := newUserSvc(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	tok, err := svc.Login(ctx, "A@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok:"+u.ID, tok)

	before := h.verifies
	_, errWrong := svc.Login(ctx, "a@b.com", "wrong-pass")
	_, errUnknown := svc.Login(ctx, "nobody@b.com", "secret123")

	require.ErrorIs(t, errWrong, common.ErrorUnauthorized)
	require.ErrorIs(t, errUnknown, common.ErrorUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, before+2, h.verifies, "unknown email still runs a bcrypt comparison")
}

func TestLogin_MissingSecret(t *testing.T) {
	db, _ := newSQLMockDB(t)
	svc := NewUserService(db, memory.NewRepositoryManager(), newCountingHasher(), auth.NewTokenCodec("", 0), discardLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.com", "secret123")
	require.ErrorIs(t, err, common.ErrMissingSecret)
}

func TestLogin_IssuerFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	svc := NewUserService(db, memory.NewRepositoryManager(), newCountingHasher(), &fakeIssuer{err: fmt.Errorf("sign token: boom")}, discardLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.com", "secret123")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_StoreFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &brokenManager{RepositoryManager: memory.NewRepositoryManager(), usersErr: errDB}
	svc := NewUserService(db, rm, newCountingHasher(), &fakeIssuer{}, discardLogger())

	_, err := svc.Login(context.Background(), "a@b.com", "secret123")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestMe(t *testing.T) {
	svc, _, _ := newUserSvc(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	got, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Me(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
