package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	tokenCookie     = "access_token"
)

var (
	secretMu     sync.RWMutex
	jwtSecret    = []byte("default_super_secret_key")
	secureCookie bool
)

// SetJWTSecret installs the signing secret loaded from configuration.
func SetJWTSecret(secret string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = []byte(secret)
}

func GetJWTSecret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return jwtSecret
}

// SetSecureCookies switches token cookies to SameSite=None; Secure for cross-origin deployments.
func SetSecureCookies(secure bool) {
	secretMu.Lock()
	defer secretMu.Unlock()
	secureCookie = secure
}

func cookieMode() (http.SameSite, bool) {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if secureCookie {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookie stores the access token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, accessToken string, maxAge int) {
	sameSite, secure := cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(tokenCookie, accessToken, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite, secure := cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(tokenCookie, "", -1, "/", "", secure, true)
}

var errMissingToken = errors.New("Authorization is missing")

func extractToken(c *gin.Context) (string, error) {
	if token, err := c.Cookie(tokenCookie); err == nil && token != "" {
		return token, nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Invalid authorization format. Expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// RequireRole validates the JWT and checks the caller's role is one of allowedRoles.
// With no roles given any authenticated caller passes.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		if len(allowedRoles) > 0 {
			roleAllowed := false
			for _, role := range allowedRoles {
				if userRole == role {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, userRole)
		c.Next()
	}
}

// CurrentUser returns the caller set by RequireRole.
func CurrentUser(c *gin.Context) (uuid.UUID, string, bool) {
	raw, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, "", false
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return id, c.GetString(ContextUserRole), true
}
