package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]model.Coupon, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	// Redeem bumps used_count unless the coupon is exhausted and reports whether it did.
	Redeem(ctx context.Context, id uuid.UUID) (bool, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return GetDB(ctx, r.db).Create(coupon).Error
}

func (r *couponRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := GetDB(ctx, r.db).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := GetDB(ctx, r.db).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) List(ctx context.Context, activeOnly bool, page, limit int) ([]model.Coupon, int64, error) {
	var coupons []model.Coupon
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Coupon{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offsetFor(page, limit)).Limit(limit).Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

func (r *couponRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Coupon{}).Where("id = ? AND active = ?", id, true).Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *couponRepository) Redeem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Coupon{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
