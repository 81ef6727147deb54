package service

import (
	"context"
	"fmt"
	"time"

	"nextmove-cargo/internal/events"
	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"
	"nextmove-cargo/internal/retry"

	"github.com/google/uuid"
)

// --- DTOs ---

type ShipmentResponse struct {
	ID                   string  `json:"id"`
	TrackingNumber       string  `json:"tracking_number"`
	RFQID                string  `json:"rfq_id"`
	OfferID              string  `json:"offer_id"`
	ClientID             string  `json:"client_id"`
	ForwarderID          string  `json:"forwarder_id"`
	Status               string  `json:"status"`
	StatusLabel          string  `json:"status_label"`
	Progress             int     `json:"progress"`
	PaymentStatus        string  `json:"payment_status"`
	OriginPort           string  `json:"origin_port"`
	OriginCountry        string  `json:"origin_country"`
	DestinationPort      string  `json:"destination_port"`
	DestinationCountry   string  `json:"destination_country"`
	CargoType            string  `json:"cargo_type"`
	CargoWeightKg        float64 `json:"cargo_weight_kg"`
	CargoVolumeCBM       float64 `json:"cargo_volume_cbm"`
	Packages             int     `json:"packages"`
	TransportMode        string  `json:"transport_mode"`
	ServiceType          string  `json:"service_type"`
	Price                string  `json:"price"`
	Currency             string  `json:"currency"`
	DepartureDate        string  `json:"departure_date"`
	EstimatedArrivalDate string  `json:"estimated_arrival_date"`
	ActualArrivalDate    *string `json:"actual_arrival_date"`
	CarrierName          string  `json:"carrier_name"`
	CarrierLogo          string  `json:"carrier_logo"`
	CreatedAt            string  `json:"created_at"`
}

// TrackingResponse is the public view of a shipment, without parties or price.
type TrackingResponse struct {
	TrackingNumber       string  `json:"tracking_number"`
	Status               string  `json:"status"`
	StatusLabel          string  `json:"status_label"`
	Progress             int     `json:"progress"`
	OriginPort           string  `json:"origin_port"`
	OriginCountry        string  `json:"origin_country"`
	DestinationPort      string  `json:"destination_port"`
	DestinationCountry   string  `json:"destination_country"`
	TransportMode        string  `json:"transport_mode"`
	DepartureDate        string  `json:"departure_date"`
	EstimatedArrivalDate string  `json:"estimated_arrival_date"`
	ActualArrivalDate    *string `json:"actual_arrival_date"`
	CarrierName          string  `json:"carrier_name"`
}

type ShipmentListFilter struct {
	Status string
	Page   int
	Limit  int
}

// --- Status mapping ---

var shipmentTransitions = map[string][]string{
	model.ShipmentPendingPayment: {model.ShipmentPending, model.ShipmentCancelled},
	model.ShipmentPending:        {model.ShipmentInTransit, model.ShipmentCancelled},
	model.ShipmentInTransit:      {model.ShipmentCustoms, model.ShipmentDelivered},
	model.ShipmentCustoms:        {model.ShipmentInTransit, model.ShipmentDelivered},
	model.ShipmentDelivered:      {model.ShipmentCompleted},
}

var shipmentLabels = map[string]string{
	model.ShipmentPendingPayment: "Awaiting payment",
	model.ShipmentPending:        "Booked",
	model.ShipmentInTransit:      "In transit",
	model.ShipmentCustoms:        "In customs",
	model.ShipmentDelivered:      "Delivered",
	model.ShipmentCompleted:      "Completed",
	model.ShipmentCancelled:      "Cancelled",
}

var shipmentProgress = map[string]int{
	model.ShipmentPendingPayment: 5,
	model.ShipmentPending:        15,
	model.ShipmentInTransit:      50,
	model.ShipmentCustoms:        75,
	model.ShipmentDelivered:      100,
	model.ShipmentCompleted:      100,
	model.ShipmentCancelled:      0,
}

// StatusLabel returns the display label for a shipment status.
func StatusLabel(status string) string {
	if l, ok := shipmentLabels[status]; ok {
		return l
	}
	return status
}

// StatusProgress returns a 0-100 progress value for a shipment status.
func StatusProgress(status string) int {
	return shipmentProgress[status]
}

// CanTransition reports whether a shipment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range shipmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// --- Interface ---

type ShipmentService interface {
	GetShipment(ctx context.Context, id uuid.UUID, viewer Viewer) (ShipmentResponse, error)
	Track(ctx context.Context, trackingNumber string) (TrackingResponse, error)
	List(ctx context.Context, viewer Viewer, filter ShipmentListFilter) ([]ShipmentResponse, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, actor Viewer, newStatus string) (ShipmentResponse, error)
}

type shipmentService struct {
	txManager     repository.TransactionManager
	repo          repository.ShipmentRepository
	audit         repository.AuditRepository
	automation    AutomationService
	notifications NotificationService
	publisher     events.Publisher
	pusher        Pusher
	retry         retry.Policy
	now           func() time.Time
}

func NewShipmentService(
	txManager repository.TransactionManager,
	repo repository.ShipmentRepository,
	audit repository.AuditRepository,
	automation AutomationService,
	notifications NotificationService,
	publisher events.Publisher,
	pusher Pusher,
	policy retry.Policy,
) ShipmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if pusher == nil {
		pusher = nopPusher{}
	}
	return &shipmentService{
		txManager:     txManager,
		repo:          repo,
		audit:         audit,
		automation:    automation,
		notifications: notifications,
		publisher:     publisher,
		pusher:        pusher,
		retry:         policy,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *shipmentService) load(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	shipment, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*model.Shipment, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	return shipment, nil
}

func canView(shipment *model.Shipment, viewer Viewer) bool {
	switch viewer.Role {
	case model.RoleAdmin, model.RoleDriver:
		return true
	case model.RoleClient:
		return shipment.ClientID == viewer.ID
	case model.RoleForwarder:
		return shipment.ForwarderID == viewer.ID
	}
	return false
}

func (s *shipmentService) GetShipment(ctx context.Context, id uuid.UUID, viewer Viewer) (ShipmentResponse, error) {
	shipment, err := s.load(ctx, id)
	if err != nil {
		return ShipmentResponse{}, err
	}
	if !canView(shipment, viewer) {
		return ShipmentResponse{}, ErrForbidden
	}
	return toShipmentResponse(*shipment), nil
}

func (s *shipmentService) Track(ctx context.Context, trackingNumber string) (TrackingResponse, error) {
	if _, err := ParseTrackingNumber(trackingNumber); err != nil {
		return TrackingResponse{}, err
	}

	shipment, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*model.Shipment, error) {
		return s.repo.FindByTrackingNumber(ctx, trackingNumber)
	})
	if err != nil {
		if isNotFound(err) {
			return TrackingResponse{}, ErrShipmentNotFound
		}
		return TrackingResponse{}, fmt.Errorf("failed to load shipment: %w", err)
	}

	return TrackingResponse{
		TrackingNumber:       shipment.TrackingNumber,
		Status:               shipment.Status,
		StatusLabel:          StatusLabel(shipment.Status),
		Progress:             StatusProgress(shipment.Status),
		OriginPort:           shipment.OriginPort,
		OriginCountry:        shipment.OriginCountry,
		DestinationPort:      shipment.DestinationPort,
		DestinationCountry:   shipment.DestinationCountry,
		TransportMode:        shipment.TransportMode,
		DepartureDate:        formatTime(shipment.DepartureDate),
		EstimatedArrivalDate: formatTime(shipment.EstimatedArrivalDate),
		ActualArrivalDate:    formatTimePtr(shipment.ActualArrivalDate),
		CarrierName:          shipment.CarrierName,
	}, nil
}

func (s *shipmentService) List(ctx context.Context, viewer Viewer, filter ShipmentListFilter) ([]ShipmentResponse, int64, error) {
	if filter.Status != "" {
		if _, ok := shipmentLabels[filter.Status]; !ok {
			return nil, 0, ErrInvalidStatus
		}
	}

	repoFilter := repository.ShipmentFilter{Status: filter.Status, Page: filter.Page, Limit: filter.Limit}
	switch viewer.Role {
	case model.RoleClient:
		repoFilter.ClientID = &viewer.ID
	case model.RoleForwarder:
		repoFilter.ForwarderID = &viewer.ID
	case model.RoleAdmin, model.RoleDriver:
	default:
		return nil, 0, ErrForbidden
	}

	type page struct {
		items []model.Shipment
		total int64
	}
	res, err := retry.Do(ctx, s.retry, func(ctx context.Context) (page, error) {
		items, total, err := s.repo.List(ctx, repoFilter)
		return page{items, total}, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}

	out := make([]ShipmentResponse, 0, len(res.items))
	for _, sh := range res.items {
		out = append(out, toShipmentResponse(sh))
	}
	return out, res.total, nil
}

// UpdateStatus moves a shipment along the transition table. Delivery stamps the
// actual arrival date and triggers the feedback workflow.
func (s *shipmentService) UpdateStatus(ctx context.Context, id uuid.UUID, actor Viewer, newStatus string) (ShipmentResponse, error) {
	if _, ok := shipmentLabels[newStatus]; !ok {
		return ShipmentResponse{}, ErrInvalidStatus
	}

	shipment, err := s.load(ctx, id)
	if err != nil {
		return ShipmentResponse{}, err
	}
	if !actor.IsAdmin() && !(actor.Role == model.RoleForwarder && shipment.ForwarderID == actor.ID) {
		return ShipmentResponse{}, ErrForbidden
	}
	if !CanTransition(shipment.Status, newStatus) {
		return ShipmentResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, shipment.Status, newStatus)
	}

	from := shipment.Status
	extra := map[string]interface{}{}
	if newStatus == model.ShipmentDelivered {
		now := s.now()
		extra["actual_arrival_date"] = now
		shipment.ActualArrivalDate = &now
	}

	actorID := actor.ID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.UpdateStatus(txCtx, id, from, newStatus, extra)
		if err != nil {
			return fmt.Errorf("failed to update shipment status: %w", err)
		}
		if !ok {
			return ErrShipmentStatusConflict
		}

		audit := model.AuditLog{
			ActorID:    &actorID,
			Action:     model.ActionUpdateShipmentStatus,
			EntityID:   id.String(),
			EntityName: shipment.TrackingNumber,
			Details:    auditDetails(map[string]interface{}{"from": from, "to": newStatus}),
		}
		if err := s.audit.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ShipmentResponse{}, err
	}

	shipment.Status = newStatus
	res := toShipmentResponse(*shipment)
	s.afterStatusChange(ctx, *shipment, from, res)
	return res, nil
}

// afterStatusChange runs the best-effort side effects of a transition.
func (s *shipmentService) afterStatusChange(ctx context.Context, shipment model.Shipment, from string, res ShipmentResponse) {
	s.pusher.Push(events.TypeShipmentStatusChange, res, shipment.ClientID, shipment.ForwarderID)

	if err := s.publisher.Publish(ctx, events.TypeShipmentStatusChange, shipment.ID.String(), map[string]interface{}{
		"tracking_number": shipment.TrackingNumber,
		"from":            from,
		"to":              shipment.Status,
	}); err != nil {
		logging.Warn("failed to publish shipment status event", map[string]interface{}{
			"shipment_id": shipment.ID.String(),
			"error":       err,
		})
	}

	if s.notifications != nil {
		_, err := s.notifications.Create(ctx, NotificationInput{
			RecipientID: shipment.ClientID,
			Type:        model.NotificationShipmentUpdate,
			Title:       "Shipment " + shipment.TrackingNumber,
			Message:     "Status changed to " + StatusLabel(shipment.Status) + ".",
			Link:        "/dashboard/client/shipments/" + shipment.ID.String(),
			Outbound:    true,
		})
		if err != nil {
			logging.Warn("failed to notify shipment update", map[string]interface{}{
				"shipment_id": shipment.ID.String(),
				"error":       err,
			})
		}
	}

	if shipment.Status == model.ShipmentDelivered && s.automation != nil {
		outcome, err := s.automation.HandleShipmentDelivery(ctx, shipment.ID, shipment.ClientID)
		if err != nil {
			logging.Error("delivery automation failed", map[string]interface{}{
				"shipment_id": shipment.ID.String(),
				"error":       err,
			})
			return
		}
		logging.Info("delivery automation finished", map[string]interface{}{
			"shipment_id": shipment.ID.String(),
			"notified":    outcome.Notified,
			"suppressed":  outcome.Suppressed,
		})
	}
}

func toShipmentResponse(s model.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:                   s.ID.String(),
		TrackingNumber:       s.TrackingNumber,
		RFQID:                s.RFQID.String(),
		OfferID:              s.OfferID.String(),
		ClientID:             s.ClientID.String(),
		ForwarderID:          s.ForwarderID.String(),
		Status:               s.Status,
		StatusLabel:          StatusLabel(s.Status),
		Progress:             StatusProgress(s.Status),
		PaymentStatus:        s.PaymentStatus,
		OriginPort:           s.OriginPort,
		OriginCountry:        s.OriginCountry,
		DestinationPort:      s.DestinationPort,
		DestinationCountry:   s.DestinationCountry,
		CargoType:            s.CargoType,
		CargoWeightKg:        s.CargoWeightKg,
		CargoVolumeCBM:       s.CargoVolumeCBM,
		Packages:             s.Packages,
		TransportMode:        s.TransportMode,
		ServiceType:          s.ServiceType,
		Price:                s.Price.StringFixed(2),
		Currency:             s.Currency,
		DepartureDate:        formatTime(s.DepartureDate),
		EstimatedArrivalDate: formatTime(s.EstimatedArrivalDate),
		ActualArrivalDate:    formatTimePtr(s.ActualArrivalDate),
		CarrierName:          s.CarrierName,
		CarrierLogo:          s.CarrierLogo,
		CreatedAt:            formatTime(s.CreatedAt),
	}
}
