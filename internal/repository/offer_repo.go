package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfferRepository interface {
	// FindByIDWithRelations loads the offer with its forwarder profile and parent RFQ.
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]model.Offer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// RejectPendingSiblings rejects every pending offer of the RFQ except keepID
	// and returns the forwarders that were rejected.
	RejectPendingSiblings(ctx context.Context, rfqID, keepID uuid.UUID, reason string) ([]uuid.UUID, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var offer model.Offer
	if err := GetDB(ctx, r.db).Preload("Forwarder").Preload("RFQ").First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]model.Offer, error) {
	var offers []model.Offer
	if err := GetDB(ctx, r.db).Where("rfq_id = ?", rfqID).Order("created_at ASC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Offer{}).Where("id = ?", id).Update("status", status).Error
}

func (r *offerRepository) RejectPendingSiblings(ctx context.Context, rfqID, keepID uuid.UUID, reason string) ([]uuid.UUID, error) {
	db := GetDB(ctx, r.db)

	var forwarderIDs []uuid.UUID
	if err := db.Model(&model.Offer{}).
		Where("rfq_id = ? AND id <> ? AND status = ?", rfqID, keepID, model.OfferStatusPending).
		Pluck("forwarder_id", &forwarderIDs).Error; err != nil {
		return nil, err
	}

	err := db.Model(&model.Offer{}).
		Where("rfq_id = ? AND id <> ? AND status = ?", rfqID, keepID, model.OfferStatusPending).
		Updates(map[string]interface{}{
			"status":           model.OfferStatusRejected,
			"rejection_reason": reason,
		}).Error
	if err != nil {
		return nil, err
	}

	return forwarderIDs, nil
}
