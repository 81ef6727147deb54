package handler

import (
	"net/http"

	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/pagination"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.RequireRole())
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/read-all", h.MarkAllRead)
		notifications.PUT("/:id/read", h.MarkRead)
	}
}

// ListNotifications godoc
// @Summary      List my notifications
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        unread  query     bool  false  "Only unread"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	items, total, err := h.notificationService.List(c.Request.Context(), v.ID, c.Query("unread") == "true", p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessPage(http.StatusOK, items, total, p))
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), v.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Notification marked as read"}))
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), v.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": n}))
}
