package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DefaultResetCodeValidity is how long a reset code can be redeemed.
const DefaultResetCodeValidity = 15 * time.Minute

// DefaultMailTimeout bounds a single reset mail delivery.
const DefaultMailTimeout = 30 * time.Second

// ResetService issues single-use reset codes and redeems them for a new
// password. Reset mail is delivered in the background.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	mail        mailer.Sender
	mailFrom    string
	validity    time.Duration
	mailTimeout time.Duration
	metrics     *metrics.Metrics
	log         logging.Logger

	now          func() time.Time
	generateCode func() (string, error)

	deliveries sync.WaitGroup
}

// ResetOption customises a ResetService.
type ResetOption func(*ResetService)

// WithResetClock replaces time.Now for issuing and redeeming codes.
func WithResetClock(now func() time.Time) ResetOption {
	return func(s *ResetService) { s.now = now }
}

// WithCodeGenerator replaces the crypto/rand code generator.
func WithCodeGenerator(gen func() (string, error)) ResetOption {
	return func(s *ResetService) { s.generateCode = gen }
}

// WithMetrics counts issued codes on m.
func WithMetrics(m *metrics.Metrics) ResetOption {
	return func(s *ResetService) { s.metrics = m }
}

// WithMailTimeout sets the deadline for one reset mail delivery.
func WithMailTimeout(d time.Duration) ResetOption {
	return func(s *ResetService) {
		if d > 0 {
			s.mailTimeout = d
		}
	}
}

// NewResetService creates a ResetService. A non-positive validity falls back
// to DefaultResetCodeValidity.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, mail mailer.Sender, mailFrom string, validity time.Duration, log logging.Logger, opts ...ResetOption) *ResetService {
	if validity <= 0 {
		validity = DefaultResetCodeValidity
	}
	s := &ResetService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		mail:        mail,
		mailFrom:    mailFrom,
		validity:    validity,
		mailTimeout: DefaultMailTimeout,
		log:         log,
		now:         time.Now,
		generateCode: func() (string, error) {
			return common.GenerateNumericCode(common.ResetCodeLength)
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RequestReset issues a reset code for email and mails it to the owner. An
// unknown email returns an empty code and no error, so callers can answer
// the same way in both cases. The mail is sent in the background with its
// own deadline; delivery failures are logged, not returned.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset for unknown email")
			return "", nil
		}
		s.log.Error(ctx, "get user by email", "error", err)
		return "", common.ErrorInternal
	}

	code, err := s.generateCode()
	if err != nil {
		s.log.Error(ctx, "generate reset code", "error", err)
		return "", common.ErrorInternal
	}

	reset := &models.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: s.now().Add(s.validity),
	}
	if err := s.repomanager.PasswordResets(s.db).Create(ctx, reset); err != nil {
		s.log.Error(ctx, "create password reset", "error", err)
		return "", common.ErrorInternal
	}
	s.metrics.ResetCodeIssued()
	s.log.Info(ctx, "password reset issued", "user_id", user.ID, "reset_id", reset.ID)

	msg, err := mailer.ResetCodeMessage(s.mailFrom, user.Email, code, s.validity)
	if err != nil {
		s.log.Error(ctx, "render reset mail", "user_id", user.ID, "error", err)
		return code, nil
	}
	s.deliver(ctx, user.ID, msg)

	return code, nil
}

func (s *ResetService) deliver(ctx context.Context, userID string, msg mailer.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mailTimeout)

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		defer cancel()

		if err := s.mail.Send(ctx, msg); err != nil {
			s.log.Error(ctx, "send reset mail", "user_id", userID, "error", err)
		}
	}()
}

// Wait blocks until every reset mail started so far has been delivered or
// has failed.
func (s *ResetService) Wait() {
	s.deliveries.Wait()
}

// ConfirmReset redeems code and sets newPassword on its owner. The lookup,
// the password update and the used flag commit together or not at all.
func (s *ResetService) ConfirmReset(ctx context.Context, code, newPassword string) error {
	if !common.IsNumericCode(code, common.ResetCodeLength) {
		return common.ErrInvalidOrExpiredCode
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return common.ErrorValidation
		}
		s.log.Error(ctx, "hash password", "error", err)
		return common.ErrorInternal
	}

	var userID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		resets := s.repomanager.PasswordResets(tx)

		pr, err := resets.FindActive(ctx, code, s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredCode
			}
			return err
		}

		if err := s.repomanager.Users(tx).UpdatePassword(ctx, pr.UserID, digest); err != nil {
			return err
		}

		if err := resets.MarkUsed(ctx, pr.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredCode
			}
			return err
		}

		userID = pr.UserID
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredCode) {
			return common.ErrInvalidOrExpiredCode
		}
		s.log.Error(ctx, "confirm password reset", "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "password reset completed", "user_id", userID)
	return nil
}
