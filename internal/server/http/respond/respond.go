// Package respond writes JSON error and success bodies for the HTTP API.
// Every error body carries a human-readable message; validation failures add
// a field-to-rule breakdown.
package respond

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Public error messages.
const (
	MsgInvalidInput       = "invalid input"
	MsgEmailExists        = "email already registered"
	MsgInvalidCredentials = "invalid credentials"
	MsgMissingToken       = "missing token"
	MsgInvalidToken       = "invalid token"
	MsgUserNotFound       = "user not found"
	MsgMisconfigured      = "server misconfigured"
	MsgInvalidCode        = "invalid or expired code"
	MsgInternal           = "internal error"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type AppError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string, fields map[string]string) *AppError {
	return &AppError{Status: status, Message: message, Fields: fields}
}

// FromError maps a service or auth error to its public form. Anything not
// recognised becomes a bare 500 so internal detail never reaches clients.
func FromError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, common.ErrorValidation):
		return NewAppError(http.StatusBadRequest, MsgInvalidInput, nil)
	case errors.Is(err, common.ErrorAlreadyExists):
		return NewAppError(http.StatusConflict, MsgEmailExists, nil)
	case errors.Is(err, common.ErrorUnauthorized):
		return NewAppError(http.StatusUnauthorized, MsgInvalidCredentials, nil)
	case errors.Is(err, common.ErrMissingToken):
		return NewAppError(http.StatusUnauthorized, MsgMissingToken, nil)
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, MsgInvalidToken, nil)
	case errors.Is(err, common.ErrorNotFound):
		return NewAppError(http.StatusNotFound, MsgUserNotFound, nil)
	case errors.Is(err, common.ErrInvalidOrExpiredCode):
		return NewAppError(http.StatusBadRequest, MsgInvalidCode, nil)
	case errors.Is(err, common.ErrMissingSecret):
		return NewAppError(http.StatusInternalServerError, MsgMisconfigured, nil)
	default:
		return NewAppError(http.StatusInternalServerError, MsgInternal, nil)
	}
}

func Error(c *gin.Context, err error) {
	appErr := FromError(err)
	c.JSON(appErr.Status, ErrorResponse{Message: appErr.Message, Errors: appErr.Fields})
}

// Validation answers 400 for a binding failure.
func Validation(c *gin.Context, err error) {
	Error(c, ValidationError(err))
}

// ValidationError turns a gin binding error into a 400 AppError. Field keys
// are JSON names, values the failed rule, e.g. {"password": "min=6"}.
func ValidationError(err error) *AppError {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[fe.Field()] = rule
		}
	} else {
		fields["body"] = "malformed"
	}

	return NewAppError(http.StatusBadRequest, MsgInvalidInput, fields)
}

var jsonNamesOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json tag.
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
