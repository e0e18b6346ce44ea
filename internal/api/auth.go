package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/types"
)

// AuthResponse is returned by login and registration
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthHandler struct {
	auth          service.IAuthService
	users         service.IUserService
	secureCookies bool
}

func NewAuthHandler(auth service.IAuthService, users service.IUserService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, secureCookies: secureCookies}
}

func (h *AuthHandler) startSession(c *gin.Context, status int, user *models.User) {
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.SetSessionCookie(c, token, int(service.TokenTTL.Seconds()), h.secureCookies)
	c.JSON(status, AuthResponse{User: user, Token: token})
}

// Login handles POST /api/auth
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	loaded, err := h.users.GetByID(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, loaded)
}

// Logout handles DELETE /api/auth
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.secureCookies)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}
