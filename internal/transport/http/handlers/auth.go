package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/oauth"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/sanitize"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/security"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/transport/http/middleware"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/usecase"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * 60
)

// CookieSettings controls session cookie emission.
type CookieSettings struct {
	// MaxAge in seconds; matches the token TTL.
	MaxAge int
	// Secure is enabled on the production profile.
	Secure bool
}

// AuthHandler serves registration, login, logout and the Google OAuth flow.
type AuthHandler struct {
	auth        *usecase.AuthService
	google      *oauth.GoogleProvider
	cookies     CookieSettings
	frontendURL string
	log         *zap.Logger
}

// NewAuthHandler builds the auth endpoint handler. The google provider may
// be nil when OAuth is not configured.
func NewAuthHandler(auth *usecase.AuthService, google *oauth.GoogleProvider, cookies CookieSettings, frontendURL string, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		auth:        auth,
		google:      google,
		cookies:     cookies,
		frontendURL: frontendURL,
		log:         log,
	}
}

// GoogleEnabled reports whether the OAuth routes should be registered.
func (h *AuthHandler) GoogleEnabled() bool {
	return h.google != nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		FullName: sanitize.Clean(req.FullName),
		Password: req.Password,
		IsSeller: req.IsSeller,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailConflict, Status: http.StatusConflict, Message: "email is already registered"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	h.setSessionCookie(c, result.AccessToken)

	c.JSON(http.StatusCreated, AuthResponse{
		Success:     true,
		Message:     "registration successful",
		AccessToken: result.AccessToken,
		User:        newUserSummary(result.User),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	h.setSessionCookie(c, result.AccessToken)

	c.JSON(http.StatusOK, AuthResponse{
		Success:     true,
		Message:     "login successful",
		AccessToken: result.AccessToken,
		User:        newUserSummary(result.User),
	})
}

// Logout handles POST /auth/logout. Always succeeds: clearing an absent
// cookie is a no-op.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "logout successful",
	})
}

// Profile handles GET /auth/profile for authenticated sessions.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// GoogleLogin handles GET /auth/google: redirects to the consent screen
// with a CSRF state pinned in a short-lived cookie.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := security.GenerateSecureToken(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "oauth login unavailable"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.cookies.Secure, true)

	c.Redirect(http.StatusFound, h.google.LoginURL(state))
}

// GoogleCallback handles GET /auth/google/callback: verifies state,
// exchanges the code, opens a session and bounces back to the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != expected {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "oauth state mismatch"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cookies.Secure, true)

	identity, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.log.Warn("google code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "oauth authentication failed"))
		return
	}

	result, err := h.auth.OAuthLogin(c.Request.Context(), *identity)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOAuthFailure, Status: http.StatusUnauthorized, Message: "oauth authentication failed"},
		}, http.StatusInternalServerError, "oauth login failed")
		return
	}

	h.setSessionCookie(c, result.AccessToken)

	c.Redirect(http.StatusFound, h.frontendURL)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, h.cookies.MaxAge, "/", "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookies.Secure, true)
}
