package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/domain"
)

// AuthMW wraps the token service for middleware
type AuthMW struct {
	tokenSvc domain.TokenService
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc}
}

// WithJWT returns the JWT middleware function
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return AuthMiddleware(mw.tokenSvc)
}

// WithAdmin returns the admin role gate, to be stacked after WithJWT.
func (mw *AuthMW) WithAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}
