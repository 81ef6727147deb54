package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByReference(ctx context.Context, reference string) (*model.Transaction, error)
	SetProviderReference(ctx context.Context, id uuid.UUID, providerRef string) error
	// Settle moves a pending transaction to a final status. A transaction that is
	// no longer pending is left alone and false is returned.
	Settle(ctx context.Context, id uuid.UUID, status, failureReason string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) FindByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).First(&tx, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) SetProviderReference(ctx context.Context, id uuid.UUID, providerRef string) error {
	return GetDB(ctx, r.db).Model(&model.Transaction{}).Where("id = ?", id).
		Update("provider_reference", providerRef).Error
}

func (r *transactionRepository) Settle(ctx context.Context, id uuid.UUID, status, failureReason string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TransactionPending).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": failureReason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Transaction{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offsetFor(page, limit)).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}
