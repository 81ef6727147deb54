package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RFQRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type rfqRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) RFQRepository {
	return &rfqRepository{db: db}
}

func (r *rfqRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	if err := GetDB(ctx, r.db).First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.RFQ{}).Where("id = ?", id).Update("status", status).Error
}
