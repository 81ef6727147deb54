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

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) RegisterRoutes(router *gin.RouterGroup) {
	coupons := router.Group("/api/coupons")
	{
		coupons.GET("", middleware.RequireRole(model.RoleAdmin), h.ListCoupons)
		coupons.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateCoupon)
		coupons.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeactivateCoupon)
		coupons.POST("/validate", middleware.RequireRole(), h.ValidateCoupon)
	}
}

// ListCoupons godoc
// @Summary      List coupons
// @Tags         coupons
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active coupons"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/coupons [get]
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.couponService.List(c.Request.Context(), c.Query("active") == "true", p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessPage(http.StatusOK, items, total, p))
}

// CreateCoupon godoc
// @Summary      Create a coupon
// @Tags         coupons
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateCouponRequest  true  "Coupon"
// @Success      201      {object}  response.Response{data=service.CouponResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/coupons [post]
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	var req service.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.couponService.Create(c.Request.Context(), v.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// DeactivateCoupon godoc
// @Summary      Deactivate a coupon
// @Tags         coupons
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Coupon ID"
// @Success      200  {object}  response.Response
// @Router       /api/coupons/{id} [delete]
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.couponService.Deactivate(c.Request.Context(), v.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Coupon deactivated"}))
}

// ValidateCoupon godoc
// @Summary      Quote a coupon
// @Description  Returns the discount the coupon gives on the amount without redeeming it
// @Tags         coupons
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.ValidateCouponRequest  true  "Code and amount"
// @Success      200      {object}  response.Response{data=service.CouponQuote}
// @Failure      422      {object}  response.Response
// @Router       /api/coupons/validate [post]
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req service.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	quote, err := h.couponService.Validate(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
