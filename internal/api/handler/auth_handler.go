package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	UserRole  string `json:"userRole"`
	UserName  string `json:"userName"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "User registered successfully", UserID: user.ID})
}

// Login authenticates a user, opens a session and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message:   "Login successful",
		UserID:    res.User.ID,
		SessionID: res.Session.ID,
		Token:     res.Token,
		UserRole:  string(res.User.Role),
		UserName:  res.User.Name,
	})
}

// Logout ends the current session and revokes the bearer token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}
