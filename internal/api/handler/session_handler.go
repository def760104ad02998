package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionManager
}

func NewSessionHandler(sessions ports.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListMine handles GET /api/sessions/user.
//
// @Summary      List the caller's sessions, newest first
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Session
// @Router       /api/sessions/user [get]
func (h *SessionHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	sessions, err := h.sessions.ListForUser(c.Request().Context(), p.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

// ListAll handles GET /api/sessions. Admin only.
//
// @Summary      List every session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Session
// @Failure      403  {object}  map[string]string
// @Router       /api/sessions [get]
func (h *SessionHandler) ListAll(c echo.Context) error {
	sessions, err := h.sessions.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}
