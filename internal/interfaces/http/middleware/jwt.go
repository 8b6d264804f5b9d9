package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/auth"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

var errMissingToken = errors.New("missing bearer token")

// OptionalAuth extracts the user from a valid bearer token and lets
// anonymous requests through. A present but invalid token is rejected so
// clients notice expired sessions instead of silently losing their cart.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, validator)
		if errors.Is(err, errMissingToken) {
			c.Next()
			return
		}
		if err != nil {
			handleAuthError(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, validator)
		if err != nil {
			handleAuthError(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireUser rejects requests that earlier middleware did not authenticate
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			handleAuthError(c, errMissingToken)
			return
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, validator TokenValidator) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return nil, errMissingToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return nil, errMissingToken
	}
	return validator.ValidateAccessToken(token)
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	userID, err := claims.UserID()
	if err != nil {
		return
	}
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, userID)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID.String()))
}

func handleAuthError(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Debug("authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingUserID):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		message = "Token is not yet valid"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, ok := c.Get(JWTClaimsKey); ok {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the authenticated user, if any
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(JWTUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// SellerChecker reports whether a user may manage products
type SellerChecker interface {
	IsSeller(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireSeller rejects authenticated users without the seller flag.
// It must run after RequireAuth.
func RequireSeller(sellers SellerChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			handleAuthError(c, errMissingToken)
			return
		}
		isSeller, err := sellers.IsSeller(c.Request.Context(), userID)
		if err != nil {
			logger.L(c.Request.Context()).Warn("seller check failed", zap.Error(err))
			abortWithError(c, http.StatusForbidden, dto.ErrCodeSellerOnly, "Seller profile required")
			return
		}
		if !isSeller {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeSellerOnly, "Seller profile required")
			return
		}
		c.Next()
	}
}
