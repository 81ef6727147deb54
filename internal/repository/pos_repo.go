package repository

import (
	"context"
	"time"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type POSSessionRepository interface {
	Create(ctx context.Context, session *model.POSSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.POSSession, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.POSSession, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.POSSession, error)
	AddSale(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
	Close(ctx context.Context, id uuid.UUID, closingCash, expectedCash decimal.Decimal, notes string, closedAt time.Time) (bool, error)
}

type posSessionRepository struct {
	db *gorm.DB
}

func NewPOSSessionRepository(db *gorm.DB) POSSessionRepository {
	return &posSessionRepository{db: db}
}

func (r *posSessionRepository) Create(ctx context.Context, session *model.POSSession) error {
	return GetDB(ctx, r.db).Create(session).Error
}

func (r *posSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.POSSession, error) {
	var session model.POSSession
	if err := GetDB(ctx, r.db).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posSessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.POSSession, error) {
	var session model.POSSession
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posSessionRepository) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.POSSession, error) {
	var session model.POSSession
	if err := GetDB(ctx, r.db).
		Where("operator_id = ? AND status = ?", operatorID, model.POSSessionOpen).
		Order("opened_at DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posSessionRepository) AddSale(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.POSSession{}).
		Where("id = ? AND status = ?", id, model.POSSessionOpen).
		UpdateColumns(map[string]interface{}{
			"sales_total": gorm.Expr("sales_total + ?", amount),
			"sales_count": gorm.Expr("sales_count + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *posSessionRepository) Close(ctx context.Context, id uuid.UUID, closingCash, expectedCash decimal.Decimal, notes string, closedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.POSSession{}).
		Where("id = ? AND status = ?", id, model.POSSessionOpen).
		Updates(map[string]interface{}{
			"status":        model.POSSessionClosed,
			"closing_cash":  closingCash,
			"expected_cash": expectedCash,
			"notes":         notes,
			"closed_at":     closedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
