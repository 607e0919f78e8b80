package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
)

// ContextKeyUserID is where the authenticated account is stored on the gin context
const ContextKeyUserID = "user_id"

// Claims carries the caller account in the standard subject claim
type Claims struct {
	jwt.RegisteredClaims
}

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	Secret string
	// Issuer, when set, must match the iss claim
	Issuer string
}

// JWTMiddleware validates the bearer token and stores the caller account on the context
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) || len(authHeader) == len(bearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format")
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(authHeader[len(bearerPrefix):], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.Secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired")
				return
			}
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
			return
		}

		account := strings.ToLower(strings.TrimSpace(claims.Subject))
		if account == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Missing subject in token")
			return
		}

		c.Set(ContextKeyUserID, account)
		c.Next()
	}
}

// GetUserID extracts the caller account from gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// SignToken issues an HS256 token for account
func SignToken(secret, issuer, account string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   account,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
