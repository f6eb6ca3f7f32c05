package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	AuthModeJWT    = "jwt"
	AuthModeHeader = "header"

	userIDKey    = "userID"
	userIDHeader = "X-User-ID"
)

// AuthConfig selects how the caller's identity is established. In JWT mode
// bearer tokens are verified with the HMAC Secret; in header mode an upstream
// gateway is trusted to pass X-User-ID.
type AuthConfig struct {
	Mode   string
	Secret string
}

var errUnauthorized = errors.New("unauthorized")

func authMiddleware(cfg AuthConfig) (gin.HandlerFunc, error) {
	var identify func(c *gin.Context) (string, error)
	switch cfg.Mode {
	case AuthModeJWT, "":
		if cfg.Secret == "" {
			return nil, errors.New("httpserver: jwt auth requires a secret")
		}
		secret := []byte(cfg.Secret)
		identify = func(c *gin.Context) (string, error) {
			return userFromBearer(c.GetHeader("Authorization"), secret)
		}
	case AuthModeHeader:
		identify = func(c *gin.Context) (string, error) {
			if id := strings.TrimSpace(c.GetHeader(userIDHeader)); id != "" {
				return id, nil
			}
			return "", errUnauthorized
		}
	default:
		return nil, fmt.Errorf("httpserver: unknown auth mode %q", cfg.Mode)
	}

	return func(c *gin.Context) {
		userID, err := identify(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}, nil
}

func userFromBearer(header string, secret []byte) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errUnauthorized
	}

	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errUnauthorized
	}
	for _, key := range []string{"sub", "userId", "id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", errUnauthorized
}

// userID returns the identity set by authMiddleware.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
