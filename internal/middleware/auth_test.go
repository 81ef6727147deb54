package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetJWTSecret("middleware-test")
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	router := gin.New()
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		id, role, ok := CurrentUser(c)
		if !ok || id != userID || role != "admin" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/any", RequireRole(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"missing token", "/admin", "", "", http.StatusUnauthorized},
		{"bad scheme", "/admin", "Token abc", "", http.StatusUnauthorized},
		{"wrong secret", "/admin", "Bearer " + signed(t, "other", jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": exp}), "", http.StatusUnauthorized},
		{"expired", "/admin", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}), "", http.StatusUnauthorized},
		{"subject not a uuid", "/admin", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": "42", "role": "admin", "exp": exp}), "", http.StatusUnauthorized},
		{"no role", "/admin", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "exp": exp}), "", http.StatusForbidden},
		{"wrong role", "/admin", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "role": "client", "exp": exp}), "", http.StatusForbidden},
		{"admin via header", "/admin", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": exp}), "", http.StatusOK},
		{"admin via cookie", "/admin", "", signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": exp}), http.StatusOK},
		{"any role allowed", "/any", "Bearer " + signed(t, "middleware-test", jwt.MapClaims{"sub": userID.String(), "role": "driver", "exp": exp}), "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
