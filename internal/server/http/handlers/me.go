package handlers

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

// MeResponse is the public projection of the authenticated account.
type MeResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Me must run behind middleware.Auth.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := auth.SubjectFromContext(c.Request.Context())
	if !ok {
		h.fail(c, OpMe, common.ErrMissingToken)
		return
	}

	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, OpMe, err)
		return
	}

	h.metrics.ObserveAuth(OpMe, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}
