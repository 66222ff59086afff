// Package handlers implements the JSON endpoints under /auth.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/http/respond"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Operation labels used for metrics.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpMe             = "me"
	OpForgotPassword = "forgot_password"
	OpResetPassword  = "reset_password"
)

// Public success messages.
const (
	MsgResetRequested = "if the email is registered, a reset code has been sent"
	MsgPasswordReset  = "password updated"
)

// UserService is the account use-case surface the handlers need.
type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// ResetService issues and redeems password reset codes.
type ResetService interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, code, newPassword string) error
}

// AuthHandler serves the /auth endpoints and records per-operation metrics.
type AuthHandler struct {
	users   UserService
	resets  ResetService
	metrics *metrics.Metrics
	// devMode echoes reset codes in the forgot-password response.
	devMode bool
}

// NewAuthHandler creates an AuthHandler. m may be nil.
func NewAuthHandler(users UserService, resets ResetService, m *metrics.Metrics, devMode bool) *AuthHandler {
	return &AuthHandler{users: users, resets: resets, metrics: m, devMode: devMode}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// RegisterResponse is the public projection of a new account.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginResponse carries the bearer token for /auth/me.
type LoginResponse struct {
	Token string `json:"token"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordResponse is identical for known and unknown emails. Code is
// set only in dev mode.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

// MessageResponse is a body with a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and answers 201 with its public projection.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, OpRegister, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, OpRegister, err)
		return
	}

	h.metrics.ObserveAuth(OpRegister, metrics.OutcomeSuccess)
	c.JSON(http.StatusCreated, RegisterResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
}

// Login answers a bearer token for valid credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, OpLogin, err)
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, OpLogin, err)
		return
	}

	h.metrics.ObserveAuth(OpLogin, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// ForgotPassword always answers 200 with the same message.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, OpForgotPassword, err)
		return
	}

	code, err := h.resets.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, OpForgotPassword, err)
		return
	}

	resp := ForgotPasswordResponse{Message: MsgResetRequested}
	if h.devMode {
		resp.Code = code
	}

	h.metrics.ObserveAuth(OpForgotPassword, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, resp)
}

// ResetPassword redeems a reset code for a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, OpResetPassword, err)
		return
	}

	if err := h.resets.ConfirmReset(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		h.fail(c, OpResetPassword, err)
		return
	}

	h.metrics.ObserveAuth(OpResetPassword, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, MessageResponse{Message: MsgPasswordReset})
}

func (h *AuthHandler) invalid(c *gin.Context, op string, err error) {
	h.metrics.ObserveAuth(op, metrics.OutcomeRejected)
	respond.Validation(c, err)
}

func (h *AuthHandler) fail(c *gin.Context, op string, err error) {
	appErr := respond.FromError(err)
	outcome := metrics.OutcomeRejected
	if appErr.Status >= http.StatusInternalServerError {
		outcome = metrics.OutcomeError
	}
	h.metrics.ObserveAuth(op, outcome)
	respond.Error(c, appErr)
}
