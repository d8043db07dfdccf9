package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/session"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
)

// SessionHandler bootstraps and ends user sessions.
type SessionHandler struct {
	profile  *app.ProfileService
	sessions *session.Manager
}

// NewSessionHandler creates the handler.
func NewSessionHandler(profile *app.ProfileService, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{profile: profile, sessions: sessions}
}

// SignIn handles POST /api/v1/session
// It creates the user record on first sign-in, stamps the login time, and
// announces the sign-in. The body is optional; its email overrides the one
// from the session.
func (h *SessionHandler) SignIn(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req dto.SessionRequest
	if c.Request.ContentLength != 0 {
		if err := dto.BindAndValidate(c, &req); err != nil {
			dto.HandleBindError(c, err)
			return
		}
	}

	email := req.Email
	if email == "" {
		email = id.Email
	}

	user, err := h.profile.Bootstrap(c.Request.Context(), email)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	h.sessions.SignIn(c.Request.Context(), id.UserID)

	c.JSON(http.StatusOK, user)
}

// SignOut handles DELETE /api/v1/session
// Live like streams for the user end.
func (h *SessionHandler) SignOut(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)
	h.sessions.SignOut(c.Request.Context(), id.UserID)

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers session routes on an authenticated group.
func (h *SessionHandler) RegisterRoutes(authed *gin.RouterGroup) {
	authed.POST("/session", h.SignIn)
	authed.DELETE("/session", h.SignOut)
}
