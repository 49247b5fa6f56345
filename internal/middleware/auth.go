package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"brai/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const issuer = "brai"

// IssueToken signs an HS256 token for subject valid for ttl.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	now := time.Now()
	claims := &models.Claims{
		Scope: models.ScopePredict,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":      false,
		"code":         http.StatusUnauthorized,
		"errorMessage": message,
	})
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Authorization header format must be Bearer <token>")
			return
		}

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(c, "Token expired")
				return
			}
			logger.Warn("Invalid JWT token", zap.Error(err))
			unauthorized(c, "Invalid token")
			return
		}
		if !token.Valid || claims.Scope != models.ScopePredict {
			unauthorized(c, "Invalid token")
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}
