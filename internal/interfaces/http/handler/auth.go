package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sanable/backend/internal/application/identity"
	"github.com/sanable/backend/internal/infrastructure/config"
	"github.com/sanable/backend/internal/interfaces/http/middleware"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token
// for browser clients. API clients may send the token in the JSON body
// instead.
const refreshCookieName = "refresh_token"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookieCfg   config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookieCfg config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieCfg:   cookieCfg,
	}
}

func (h *AuthHandler) sameSiteMode() http.SameSite {
	switch h.cookieCfg.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	path := h.cookieCfg.Path
	if path == "" {
		path = "/"
	}
	c.SetSameSite(h.sameSiteMode())
	c.SetCookie(refreshCookieName, token, int(time.Until(expiresAt).Seconds()), path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	path := h.cookieCfg.Path
	if path == "" {
		path = "/"
	}
	c.SetSameSite(h.sameSiteMode())
	c.SetCookie(refreshCookieName, "", -1, path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

// Register godoc
// @Summary      Register administrator account
// @Description  Create a new administrator account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Account details"
// @Success      201 {object} dto.Response{data=identity.UserInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	// Client IP is recorded on the account after a successful login
	req.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)
	h.Success(c, result)
}

// Refresh godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.RefreshResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Browser clients keep the refresh token in an HTTP-only cookie
		token, cookieErr := c.Cookie(refreshCookieName)
		if cookieErr != nil || token == "" {
			h.BadRequest(c, "Refresh token is required")
			return
		}
		req.RefreshToken = token
	}

	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)
	h.Success(c, result)
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID in token")
		return
	}

	err = h.authService.Logout(c.Request.Context(), identity.LogoutRequest{
		UserID: userID,
		JTI:    claims.ID,
		TTL:    claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	h.Success(c, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser godoc
// @Summary      Get current user
// @Description  Get the currently authenticated user's information
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID in token")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// RegisterRoutes registers auth routes on the given router group
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.GetCurrentUser)
	}
}
