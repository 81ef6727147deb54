package handler

import (
	"net/http"

	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/pagination"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShipmentHandler struct {
	shipmentService service.ShipmentService
}

func NewShipmentHandler(shipmentService service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ShipmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	shipments := router.Group("/api/shipments")
	shipments.Use(middleware.RequireRole())
	{
		shipments.GET("", h.ListShipments)
		shipments.GET("/:id", h.GetShipment)
		shipments.PATCH("/:id/status", middleware.RequireRole(model.RoleAdmin, model.RoleForwarder), h.UpdateStatus)
	}

	// public tracking lookup
	router.GET("/api/track/:trackingNumber", h.Track)
}

// ListShipments godoc
// @Summary      List shipments
// @Description  Clients see their shipments, forwarders the ones they carry, admins and drivers all
// @Tags         shipments
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/shipments [get]
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	items, total, err := h.shipmentService.List(c.Request.Context(), v, service.ShipmentListFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessPage(http.StatusOK, items, total, p))
}

// GetShipment godoc
// @Summary      Get a shipment
// @Tags         shipments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  response.Response{data=service.ShipmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.shipmentService.GetShipment(c.Request.Context(), id, v)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// UpdateStatus godoc
// @Summary      Change shipment status
// @Description  Moves the shipment along its lifecycle; delivery triggers the client feedback request
// @Tags         shipments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Shipment ID"
// @Param        request  body      updateStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.ShipmentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/shipments/{id}/status [patch]
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.shipmentService.UpdateStatus(c.Request.Context(), id, v, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Track godoc
// @Summary      Track a shipment
// @Description  Public status lookup by tracking number (SHP-XXXXXX-N)
// @Tags         shipments
// @Produce      json
// @Param        trackingNumber  path      string  true  "Tracking number"
// @Success      200             {object}  response.Response{data=service.TrackingResponse}
// @Failure      400             {object}  response.Response
// @Failure      404             {object}  response.Response
// @Router       /api/track/{trackingNumber} [get]
func (h *ShipmentHandler) Track(c *gin.Context) {
	res, err := h.shipmentService.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
