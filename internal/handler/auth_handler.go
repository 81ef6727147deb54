package handler

import (
	"net/http"
	"time"

	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireRole(), h.Me)
	}
}

// Login godoc
// @Summary      Log in
// @Description  Verifies email and password and returns an access token (also set as an HttpOnly cookie)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	maxAge := 3600 * 24
	if exp, err := time.Parse(time.RFC3339, res.ExpiresAt); err == nil {
		maxAge = int(time.Until(exp).Seconds())
	}
	middleware.SetTokenCookie(c, res.AccessToken, maxAge)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout godoc
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// Me godoc
// @Summary      Current profile
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ProfileResponse}
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	profile, err := h.authService.Me(c.Request.Context(), v.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}
