package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentFilter narrows shipment listings; zero values mean "any"
type ShipmentFilter struct {
	ClientID    *uuid.UUID
	ForwarderID *uuid.UUID
	Status      string
	Page        int
	Limit       int
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	FindByRFQID(ctx context.Context, rfqID uuid.UUID) (*model.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Shipment, error)
	List(ctx context.Context, filter ShipmentFilter) ([]model.Shipment, int64, error)
	// UpdateStatus moves the shipment only if it is still in fromStatus.
	// It reports whether a row was changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, extra map[string]interface{}) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) Create(ctx context.Context, shipment *model.Shipment) error {
	return GetDB(ctx, r.db).Create(shipment).Error
}

func (r *shipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := GetDB(ctx, r.db).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) FindByRFQID(ctx context.Context, rfqID uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := GetDB(ctx, r.db).First(&shipment, "rfq_id = ?", rfqID).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := GetDB(ctx, r.db).First(&shipment, "tracking_number = ?", trackingNumber).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) List(ctx context.Context, filter ShipmentFilter) ([]model.Shipment, int64, error) {
	var shipments []model.Shipment
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Shipment{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ForwarderID != nil {
		query = query.Where("forwarder_id = ?", *filter.ForwarderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&shipments).Error; err != nil {
		return nil, 0, err
	}

	return shipments, total, nil
}

func (r *shipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": toStatus}
	for k, v := range extra {
		updates[k] = v
	}

	res := GetDB(ctx, r.db).Model(&model.Shipment{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *shipmentRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Shipment{}).Where("id = ?", id).
		Update("payment_status", model.PaymentPaid).Error; err != nil {
		return err
	}
	// Payment releases a shipment that was waiting on it
	return db.Model(&model.Shipment{}).
		Where("id = ? AND status = ?", id, model.ShipmentPendingPayment).
		Update("status", model.ShipmentPending).Error
}
