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

type PODHandler struct {
	podService service.PODService
}

func NewPODHandler(podService service.PODService) *PODHandler {
	return &PODHandler{podService: podService}
}

func (h *PODHandler) RegisterRoutes(router *gin.RouterGroup) {
	pods := router.Group("/api/pods")
	pods.Use(middleware.RequireRole())
	{
		pods.POST("", middleware.RequireRole(model.RoleForwarder, model.RoleDriver, model.RoleAdmin), h.SubmitPOD)
		pods.GET("", middleware.RequireRole(model.RoleForwarder, model.RoleAdmin), h.ListPODs)
		pods.GET("/:id", h.GetPOD)
		pods.PUT("/:id/review", middleware.RequireRole(model.RoleForwarder, model.RoleAdmin), h.ReviewPOD)
	}
}

// SubmitPOD godoc
// @Summary      Submit proof of delivery
// @Description  Document keys are resolved to CDN or presigned S3 URLs
// @Tags         pods
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.SubmitPODRequest  true  "POD submission"
// @Success      201      {object}  response.Response{data=service.PODResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/pods [post]
func (h *PODHandler) SubmitPOD(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	var req service.SubmitPODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.podService.Submit(c.Request.Context(), v, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// ListPODs godoc
// @Summary      List proofs of delivery
// @Tags         pods
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, verified or rejected"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/pods [get]
func (h *PODHandler) ListPODs(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	items, total, err := h.podService.List(c.Request.Context(), v, c.Query("status"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessPage(http.StatusOK, items, total, p))
}

// GetPOD godoc
// @Summary      Get a proof of delivery
// @Tags         pods
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "POD ID"
// @Success      200  {object}  response.Response{data=service.PODResponse}
// @Router       /api/pods/{id} [get]
func (h *PODHandler) GetPOD(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.podService.Get(c.Request.Context(), id, v)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ReviewPOD godoc
// @Summary      Review a proof of delivery
// @Description  Verifies or rejects a pending POD; notes are mandatory
// @Tags         pods
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "POD ID"
// @Param        request  body      service.ReviewPODRequest  true  "Review outcome"
// @Success      200      {object}  response.Response{data=service.PODResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/pods/{id}/review [put]
func (h *PODHandler) ReviewPOD(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ReviewPODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.podService.Review(c.Request.Context(), id, v, req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
