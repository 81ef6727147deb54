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

// SiblingRejectionReason is stamped on offers rejected because another offer won.
const SiblingRejectionReason = "Automatically rejected: another offer was accepted (Automation)"

const feedbackTitle = "How was your shipment?"

// AcceptanceResult is the outcome of accepting an offer.
// AlreadyProcessed is set when the RFQ already had a shipment and nothing was written.
type AcceptanceResult struct {
	Shipment         ShipmentResponse `json:"shipment"`
	RejectedOffers   int              `json:"rejected_offers"`
	AlreadyProcessed bool             `json:"already_processed"`
}

// DeliveryOutcome reports what the delivery workflow did.
type DeliveryOutcome struct {
	Notified   bool `json:"notified"`
	Suppressed bool `json:"suppressed"`
}

type AutomationService interface {
	HandleOfferAcceptance(ctx context.Context, offerID, rfqID uuid.UUID, actorID *uuid.UUID) (AcceptanceResult, error)
	HandleShipmentDelivery(ctx context.Context, shipmentID, clientID uuid.UUID) (DeliveryOutcome, error)
}

type AutomationDeps struct {
	TxManager     repository.TransactionManager
	Offers        repository.OfferRepository
	RFQs          repository.RFQRepository
	Shipments     repository.ShipmentRepository
	Profiles      repository.ProfileRepository
	Audit         repository.AuditRepository
	Notifications NotificationService
	Events        events.Publisher
	Pusher        Pusher
	Retry         retry.Policy
}

type automationService struct {
	AutomationDeps
	now            func() time.Time
	trackingNumber func(time.Time) string
}

func NewAutomationService(deps AutomationDeps) AutomationService {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Pusher == nil {
		deps.Pusher = nopPusher{}
	}
	return &automationService{
		AutomationDeps: deps,
		now:            time.Now,
		trackingNumber: GenerateTrackingNumber,
	}
}

type acceptanceWrite struct {
	shipment          model.Shipment
	rejectedForwarder []uuid.UUID
	alreadyProcessed  bool
}

// HandleOfferAcceptance accepts the offer, rejects its pending siblings and
// creates the shipment in one transaction. A second call for the same RFQ
// returns the existing shipment without writing anything.
func (s *automationService) HandleOfferAcceptance(ctx context.Context, offerID, rfqID uuid.UUID, actorID *uuid.UUID) (AcceptanceResult, error) {
	offer, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*model.Offer, error) {
		return s.Offers.FindByIDWithRelations(ctx, offerID)
	})
	if err != nil {
		if isNotFound(err) {
			return AcceptanceResult{}, ErrOfferNotFound
		}
		return AcceptanceResult{}, fmt.Errorf("failed to load offer: %w", err)
	}
	if offer.RFQID != rfqID {
		return AcceptanceResult{}, ErrOfferRFQMismatch
	}
	// a named actor must own the request; nil actor is the system
	if actorID != nil && offer.RFQ != nil && offer.RFQ.ClientID != *actorID {
		return AcceptanceResult{}, ErrForbidden
	}

	var w acceptanceWrite
	err = s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		w = acceptanceWrite{}

		rfq, err := s.RFQs.FindByIDForUpdate(txCtx, rfqID)
		if err != nil {
			return fmt.Errorf("failed to lock rfq: %w", err)
		}

		existing, err := s.Shipments.FindByRFQID(txCtx, rfqID)
		if err == nil {
			if existing.OfferID != offerID {
				return ErrOfferNotPending
			}
			w.shipment = *existing
			w.alreadyProcessed = true
			return nil
		}
		if !isNotFound(err) {
			return fmt.Errorf("failed to check existing shipment: %w", err)
		}

		if rfq.Status != model.RFQStatusOpen {
			return ErrRFQNotOpen
		}
		if offer.Status != model.OfferStatusPending {
			return ErrOfferNotPending
		}

		if err := s.Offers.UpdateStatus(txCtx, offer.ID, model.OfferStatusAccepted); err != nil {
			return fmt.Errorf("failed to accept offer: %w", err)
		}
		if err := s.RFQs.UpdateStatus(txCtx, rfqID, model.RFQStatusOfferAccepted); err != nil {
			return fmt.Errorf("failed to update rfq status: %w", err)
		}

		rejected, err := s.Offers.RejectPendingSiblings(txCtx, rfqID, offer.ID, SiblingRejectionReason)
		if err != nil {
			return fmt.Errorf("failed to reject sibling offers: %w", err)
		}
		w.rejectedForwarder = rejected

		w.shipment = s.buildShipment(*rfq, *offer)
		if err := s.Shipments.Create(txCtx, &w.shipment); err != nil {
			return fmt.Errorf("failed to create shipment: %w", err)
		}

		audit := model.AuditLog{
			ActorID:    actorID,
			Action:     model.ActionAcceptOffer,
			EntityID:   offer.ID.String(),
			EntityName: w.shipment.TrackingNumber,
			Details: auditDetails(map[string]interface{}{
				"rfq_id":          rfqID.String(),
				"shipment_id":     w.shipment.ID.String(),
				"rejected_offers": len(rejected),
				"price":           offer.TotalPrice.String(),
				"currency":        offer.Currency,
			}),
		}
		if err := s.Audit.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return AcceptanceResult{}, err
	}

	result := AcceptanceResult{
		Shipment:         toShipmentResponse(w.shipment),
		RejectedOffers:   len(w.rejectedForwarder),
		AlreadyProcessed: w.alreadyProcessed,
	}
	if w.alreadyProcessed {
		logging.Info("offer acceptance already processed", map[string]interface{}{
			"rfq_id":      rfqID.String(),
			"offer_id":    offerID.String(),
			"shipment_id": w.shipment.ID.String(),
		})
		return result, nil
	}

	s.afterAcceptance(ctx, *offer, w)
	return result, nil
}

func (s *automationService) buildShipment(rfq model.RFQ, offer model.Offer) model.Shipment {
	now := s.now()
	departure, arrival := EstimateSchedule(offer.DepartureDate, offer.EstimatedTransitDays, now)

	shipment := model.Shipment{
		TrackingNumber:       s.trackingNumber(now),
		RFQID:                rfq.ID,
		OfferID:              offer.ID,
		ClientID:             rfq.ClientID,
		ForwarderID:          offer.ForwarderID,
		Status:               model.ShipmentPendingPayment,
		PaymentStatus:        model.PaymentUnpaid,
		OriginPort:           rfq.OriginPort,
		OriginCountry:        rfq.OriginCountry,
		DestinationPort:      rfq.DestinationPort,
		DestinationCountry:   rfq.DestinationCountry,
		CargoType:            rfq.CargoType,
		CargoWeightKg:        rfq.WeightKg,
		CargoVolumeCBM:       rfq.VolumeCBM,
		Packages:             rfq.Quantity,
		TransportMode:        rfq.TransportMode,
		ServiceType:          rfq.ServiceType,
		Price:                offer.TotalPrice,
		Currency:             offer.Currency,
		DepartureDate:        departure,
		EstimatedArrivalDate: arrival,
	}
	if offer.Forwarder != nil {
		shipment.CarrierName = offer.Forwarder.DisplayName()
		shipment.CarrierLogo = offer.Forwarder.AvatarURL
	}
	return shipment
}

// afterAcceptance runs the best-effort side effects; failures are only logged.
func (s *automationService) afterAcceptance(ctx context.Context, offer model.Offer, w acceptanceWrite) {
	shipment := w.shipment
	link := "/dashboard/client/shipments/" + shipment.ID.String()

	s.notify(ctx, NotificationInput{
		RecipientID: shipment.ClientID,
		Type:        model.NotificationOfferAccepted,
		Title:       "Shipment created",
		Message:     fmt.Sprintf("Shipment %s was created from your accepted offer. Complete payment to confirm the booking.", shipment.TrackingNumber),
		Link:        link,
		Outbound:    true,
	})
	s.notify(ctx, NotificationInput{
		RecipientID: offer.ForwarderID,
		Type:        model.NotificationOfferAccepted,
		Title:       "Your offer was accepted",
		Message:     fmt.Sprintf("Your offer of %s %s was accepted. Tracking number: %s.", offer.TotalPrice.StringFixed(2), offer.Currency, shipment.TrackingNumber),
		Link:        "/dashboard/forwarder/shipments/" + shipment.ID.String(),
		Outbound:    true,
	})
	for _, forwarderID := range w.rejectedForwarder {
		s.notify(ctx, NotificationInput{
			RecipientID: forwarderID,
			Type:        model.NotificationOfferRejected,
			Title:       "Offer not selected",
			Message:     "The client accepted another offer for this request.",
			Link:        "/dashboard/forwarder/offers",
		})
	}

	s.Pusher.Push(events.TypeOfferAccepted, toShipmentResponse(shipment), shipment.ClientID, shipment.ForwarderID)

	if err := s.Events.Publish(ctx, events.TypeOfferAccepted, shipment.ID.String(), map[string]interface{}{
		"offer_id":        offer.ID.String(),
		"rfq_id":          shipment.RFQID.String(),
		"shipment_id":     shipment.ID.String(),
		"tracking_number": shipment.TrackingNumber,
		"forwarder_id":    shipment.ForwarderID.String(),
		"client_id":       shipment.ClientID.String(),
	}); err != nil {
		logging.Warn("failed to publish offer accepted event", map[string]interface{}{
			"shipment_id": shipment.ID.String(),
			"error":       err,
		})
	}
}

func (s *automationService) notify(ctx context.Context, in NotificationInput) {
	if s.Notifications == nil {
		return
	}
	if _, err := s.Notifications.Create(ctx, in); err != nil {
		logging.Warn("failed to create notification", map[string]interface{}{
			"recipient_id": in.RecipientID.String(),
			"type":         in.Type,
			"error":        err,
		})
	}
}

// HandleShipmentDelivery asks the client for feedback unless the forwarder
// has explicitly turned delivery feedback off.
func (s *automationService) HandleShipmentDelivery(ctx context.Context, shipmentID, clientID uuid.UUID) (DeliveryOutcome, error) {
	shipment, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*model.Shipment, error) {
		return s.Shipments.FindByID(ctx, shipmentID)
	})
	if err != nil {
		if isNotFound(err) {
			return DeliveryOutcome{}, ErrShipmentNotFound
		}
		return DeliveryOutcome{}, fmt.Errorf("failed to load shipment: %w", err)
	}

	forwarder, err := retry.Do(ctx, s.Retry, func(ctx context.Context) (*model.Profile, error) {
		return s.Profiles.FindByID(ctx, shipment.ForwarderID)
	})
	switch {
	case err == nil:
		if forwarder.AutomationSettings.Data().DeliveryFeedbackDisabled() {
			logging.Info("delivery feedback disabled by forwarder", map[string]interface{}{
				"shipment_id":  shipmentID.String(),
				"forwarder_id": shipment.ForwarderID.String(),
			})
			return DeliveryOutcome{Suppressed: true}, nil
		}
	case isNotFound(err):
		// no profile means no opt-out
	default:
		return DeliveryOutcome{}, fmt.Errorf("failed to load forwarder settings: %w", err)
	}

	if s.Notifications == nil {
		logging.Warn("no notification service, skipping delivery feedback", map[string]interface{}{
			"shipment_id": shipmentID.String(),
		})
		return DeliveryOutcome{}, nil
	}
	_, err = s.Notifications.Create(ctx, NotificationInput{
		RecipientID: clientID,
		Type:        model.NotificationFeedbackRequest,
		Title:       feedbackTitle,
		Message:     fmt.Sprintf("Your shipment %s has been delivered. Tell us how it went.", shipment.TrackingNumber),
		Link:        fmt.Sprintf("/dashboard/client/shipments/%s?feedback=true", shipment.ID),
	})
	if err != nil {
		return DeliveryOutcome{}, err
	}
	return DeliveryOutcome{Notified: true}, nil
}
