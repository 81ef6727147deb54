package handler

import (
	"net/http"

	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

type POSHandler struct {
	posService service.POSService
}

func NewPOSHandler(posService service.POSService) *POSHandler {
	return &POSHandler{posService: posService}
}

func (h *POSHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/api/pos/sessions")
	sessions.Use(middleware.RequireRole(model.RoleAdmin, model.RoleForwarder))
	{
		sessions.POST("", h.OpenSession)
		sessions.GET("/current", h.CurrentSession)
		sessions.POST("/:id/sales", h.RecordSale)
		sessions.PUT("/:id/close", h.CloseSession)
	}
}

// OpenSession godoc
// @Summary      Open a cash session
// @Tags         pos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.OpenSessionRequest  true  "Opening float"
// @Success      201      {object}  response.Response{data=service.POSSessionResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/pos/sessions [post]
func (h *POSHandler) OpenSession(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	var req service.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.posService.Open(c.Request.Context(), v.ID, req.OpeningFloat)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// CurrentSession godoc
// @Summary      Current open cash session
// @Tags         pos
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.POSSessionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/pos/sessions/current [get]
func (h *POSHandler) CurrentSession(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	res, err := h.posService.Current(c.Request.Context(), v.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RecordSale godoc
// @Summary      Record a cash sale
// @Tags         pos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Session ID"
// @Param        request  body      service.RecordSaleRequest  true  "Sale amount"
// @Success      200      {object}  response.Response{data=service.POSSessionResponse}
// @Router       /api/pos/sessions/{id}/sales [post]
func (h *POSHandler) RecordSale(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.posService.RecordSale(c.Request.Context(), id, v.ID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// CloseSession godoc
// @Summary      Close a cash session
// @Description  Returns the expected cash and the variance against the counted amount
// @Tags         pos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Session ID"
// @Param        request  body      service.CloseSessionRequest  true  "Counted cash"
// @Success      200      {object}  response.Response{data=service.CloseSessionResult}
// @Router       /api/pos/sessions/{id}/close [put]
func (h *POSHandler) CloseSession(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.posService.Close(c.Request.Context(), id, v.ID, req.ClosingCash, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
