package repository

import (
	"context"
	"time"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PODFilter struct {
	Status      string
	ForwarderID *uuid.UUID
	ShipmentID  *uuid.UUID
	Page        int
	Limit       int
}

// PODReview is the outcome written when a pending POD is reviewed
type PODReview struct {
	Status     string
	ReviewerID uuid.UUID
	Notes      string
	ReviewedAt time.Time
}

type PODRepository interface {
	Create(ctx context.Context, pod *model.POD) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.POD, error)
	List(ctx context.Context, filter PODFilter) ([]model.POD, int64, error)
	// Review applies the outcome only while the POD is pending and reports whether it did.
	Review(ctx context.Context, id uuid.UUID, review PODReview) (bool, error)
}

type podRepository struct {
	db *gorm.DB
}

func NewPODRepository(db *gorm.DB) PODRepository {
	return &podRepository{db: db}
}

func (r *podRepository) Create(ctx context.Context, pod *model.POD) error {
	return GetDB(ctx, r.db).Create(pod).Error
}

func (r *podRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.POD, error) {
	var pod model.POD
	if err := GetDB(ctx, r.db).First(&pod, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pod, nil
}

func (r *podRepository) List(ctx context.Context, filter PODFilter) ([]model.POD, int64, error) {
	var pods []model.POD
	var total int64

	query := GetDB(ctx, r.db).Model(&model.POD{})
	if filter.Status != "" {
		query = query.Where("pods.status = ?", filter.Status)
	}
	if filter.ShipmentID != nil {
		query = query.Where("pods.shipment_id = ?", *filter.ShipmentID)
	}
	if filter.ForwarderID != nil {
		query = query.Joins("JOIN shipments ON shipments.id = pods.shipment_id").
			Where("shipments.forwarder_id = ?", *filter.ForwarderID)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("pods.submitted_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&pods).Error; err != nil {
		return nil, 0, err
	}

	return pods, total, nil
}

func (r *podRepository) Review(ctx context.Context, id uuid.UUID, review PODReview) (bool, error) {
	updates := map[string]interface{}{
		"status":       review.Status,
		"reviewer_id":  review.ReviewerID,
		"review_notes": review.Notes,
		"reviewed_at":  review.ReviewedAt,
	}
	if review.Status == model.PODVerified {
		updates["verified_at"] = review.ReviewedAt
	}

	res := GetDB(ctx, r.db).Model(&model.POD{}).
		Where("id = ? AND status = ?", id, model.PODPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
