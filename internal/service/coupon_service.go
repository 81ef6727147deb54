package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCouponRequest struct {
	Code         string          `json:"code" binding:"required,min=3,max=40"`
	DiscountType string          `json:"discount_type" binding:"required,oneof=percentage fixed"`
	Value        decimal.Decimal `json:"value"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxUses      int             `json:"max_uses" binding:"min=0"`
	ExpiresAt    *time.Time      `json:"expires_at"`
}

type ValidateCouponRequest struct {
	Code   string          `json:"code" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type CouponResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	DiscountType string  `json:"discount_type"`
	Value        string  `json:"value"`
	MinAmount    string  `json:"min_amount"`
	MaxUses      int     `json:"max_uses"`
	UsedCount    int     `json:"used_count"`
	ExpiresAt    *string `json:"expires_at"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
}

// CouponQuote is the discount a coupon gives on an amount.
type CouponQuote struct {
	CouponID    uuid.UUID       `json:"coupon_id"`
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

type CouponService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateCouponRequest) (CouponResponse, error)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]CouponResponse, int64, error)
	Deactivate(ctx context.Context, actorID, id uuid.UUID) error
	Validate(ctx context.Context, code string, amount decimal.Decimal) (CouponQuote, error)
}

type couponService struct {
	txManager repository.TransactionManager
	repo      repository.CouponRepository
	audit     repository.AuditRepository
	now       func() time.Time
}

func NewCouponService(txManager repository.TransactionManager, repo repository.CouponRepository, audit repository.AuditRepository) CouponService {
	return &couponService{txManager: txManager, repo: repo, audit: audit, now: time.Now}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var hundred = decimal.NewFromInt(100)

// ComputeDiscount checks a coupon against an amount at a point in time and
// returns the discount, never more than the amount itself.
func ComputeDiscount(c model.Coupon, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case !c.Active:
		return decimal.Zero, ErrCouponInactive
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		return decimal.Zero, ErrCouponExpired
	case c.MaxUses > 0 && c.UsedCount >= c.MaxUses:
		return decimal.Zero, ErrCouponExhausted
	case amount.LessThan(c.MinAmount):
		return decimal.Zero, ErrCouponMinAmount
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = amount.Mul(c.Value).Div(hundred).Round(2)
	case model.DiscountFixed:
		discount = c.Value
	default:
		return decimal.Zero, ErrInvalidCoupon
	}
	if discount.GreaterThan(amount) {
		discount = amount
	}
	return discount, nil
}

func (s *couponService) Create(ctx context.Context, actorID uuid.UUID, req CreateCouponRequest) (CouponResponse, error) {
	code := normalizeCode(req.Code)
	if code == "" || !req.Value.IsPositive() || req.MinAmount.IsNegative() || req.MaxUses < 0 {
		return CouponResponse{}, ErrInvalidCoupon
	}
	if req.DiscountType == model.DiscountPercentage && req.Value.GreaterThan(hundred) {
		return CouponResponse{}, ErrInvalidCoupon
	}
	if req.DiscountType != model.DiscountPercentage && req.DiscountType != model.DiscountFixed {
		return CouponResponse{}, ErrInvalidCoupon
	}

	coupon := model.Coupon{
		Code:         code,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MinAmount:    req.MinAmount,
		MaxUses:      req.MaxUses,
		ExpiresAt:    req.ExpiresAt,
		Active:       true,
		CreatedBy:    &actorID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByCode(txCtx, code); err == nil {
			return ErrCouponCodeTaken
		} else if !isNotFound(err) {
			return fmt.Errorf("failed to check coupon code: %w", err)
		}
		if err := s.repo.Create(txCtx, &coupon); err != nil {
			return fmt.Errorf("failed to create coupon: %w", err)
		}
		audit := model.AuditLog{
			ActorID:    &actorID,
			Action:     model.ActionCreateCoupon,
			EntityID:   coupon.ID.String(),
			EntityName: code,
			Details: auditDetails(map[string]interface{}{
				"discount_type": coupon.DiscountType,
				"value":         coupon.Value.String(),
				"max_uses":      coupon.MaxUses,
			}),
		}
		return s.audit.Log(txCtx, &audit)
	})
	if err != nil {
		return CouponResponse{}, err
	}
	return toCouponResponse(coupon), nil
}

func (s *couponService) List(ctx context.Context, activeOnly bool, page, limit int) ([]CouponResponse, int64, error) {
	coupons, total, err := s.repo.List(ctx, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	res := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		res = append(res, toCouponResponse(c))
	}
	return res, total, nil
}

func (s *couponService) Deactivate(ctx context.Context, actorID, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		coupon, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrCouponNotFound
			}
			return fmt.Errorf("failed to load coupon: %w", err)
		}
		ok, err := s.repo.Deactivate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to deactivate coupon: %w", err)
		}
		if !ok {
			return ErrCouponInactive
		}
		audit := model.AuditLog{
			ActorID:    &actorID,
			Action:     model.ActionDeactivateCoupon,
			EntityID:   id.String(),
			EntityName: coupon.Code,
			Details:    "{}",
		}
		return s.audit.Log(txCtx, &audit)
	})
}

func (s *couponService) Validate(ctx context.Context, code string, amount decimal.Decimal) (CouponQuote, error) {
	if !amount.IsPositive() {
		return CouponQuote{}, ErrInvalidAmount
	}
	coupon, err := s.repo.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		if isNotFound(err) {
			return CouponQuote{}, ErrCouponNotFound
		}
		return CouponQuote{}, fmt.Errorf("failed to load coupon: %w", err)
	}

	discount, err := ComputeDiscount(*coupon, amount, s.now())
	if err != nil {
		return CouponQuote{}, err
	}
	return CouponQuote{
		CouponID:    coupon.ID,
		Code:        coupon.Code,
		Discount:    discount,
		FinalAmount: amount.Sub(discount),
	}, nil
}

func toCouponResponse(c model.Coupon) CouponResponse {
	return CouponResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		DiscountType: c.DiscountType,
		Value:        c.Value.StringFixed(2),
		MinAmount:    c.MinAmount.StringFixed(2),
		MaxUses:      c.MaxUses,
		UsedCount:    c.UsedCount,
		ExpiresAt:    formatTimePtr(c.ExpiresAt),
		Active:       c.Active,
		CreatedAt:    formatTime(c.CreatedAt),
	}
}
