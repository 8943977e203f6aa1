package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/domain"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/security"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/usecase"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "access_token"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth extracts the session token (cookie first, then bearer
// header), validates it, and re-checks the subject against the user
// directory so tokens for deleted accounts stop working.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		claims, err := authService.ParseAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			}
			return
		}

		user, err := authService.ValidateUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "session is no longer valid"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(UserKey, *user)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RequireSeller gates seller-only routes on the session's seller claim.
// Must run after RequireAuth.
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !claims.IsSeller {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "seller account required"))
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetAuthenticatedUser retrieves the validated account from context.
func GetAuthenticatedUser(c *gin.Context) (domain.User, bool) {
	val, exists := c.Get(UserKey)
	if !exists {
		return domain.User{}, false
	}

	user, ok := val.(domain.User)
	return user, ok
}

// GetClaims retrieves the parsed session claims from context.
func GetClaims(c *gin.Context) (*security.SessionClaims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}

	claims, ok := val.(*security.SessionClaims)
	return claims, ok
}
