package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nextmove-cargo/internal/events"
	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"
	"nextmove-cargo/internal/storage"

	"github.com/google/uuid"
)

// --- DTOs ---

type PODDocumentInput struct {
	// Key is a storage object key or an absolute URL.
	Key      string `json:"key" binding:"required"`
	Name     string `json:"name" binding:"required"`
	MimeType string `json:"mime_type"`
}

type SubmitPODRequest struct {
	ShipmentID string             `json:"shipment_id" binding:"required,uuid"`
	Documents  []PODDocumentInput `json:"documents" binding:"required,min=1,dive"`
	Notes      string             `json:"notes"`
}

type ReviewPODRequest struct {
	Status string `json:"status" binding:"required,oneof=verified rejected"`
	Notes  string `json:"notes"`
}

type PODResponse struct {
	ID             string              `json:"id"`
	ShipmentID     string              `json:"shipment_id"`
	TrackingNumber string              `json:"tracking_number"`
	Status         string              `json:"status"`
	SubmittedBy    string              `json:"submitted_by"`
	SubmittedAt    string              `json:"submitted_at"`
	ForwarderName  string              `json:"forwarder_name"`
	ClientName     string              `json:"client_name"`
	Documents      []model.PODDocument `json:"documents"`
	Notes          string              `json:"notes"`
	ReviewerID     *string             `json:"reviewer_id"`
	ReviewNotes    string              `json:"review_notes"`
	ReviewedAt     *string             `json:"reviewed_at"`
	VerifiedAt     *string             `json:"verified_at"`
}

// --- Interface ---

type PODService interface {
	Submit(ctx context.Context, submitter Viewer, req SubmitPODRequest) (PODResponse, error)
	Review(ctx context.Context, podID uuid.UUID, reviewer Viewer, outcome, notes string) (PODResponse, error)
	Get(ctx context.Context, podID uuid.UUID, viewer Viewer) (PODResponse, error)
	List(ctx context.Context, viewer Viewer, status string, page, limit int) ([]PODResponse, int64, error)
}

type podService struct {
	txManager     repository.TransactionManager
	repo          repository.PODRepository
	shipments     repository.ShipmentRepository
	profiles      repository.ProfileRepository
	audit         repository.AuditRepository
	documents     storage.DocumentStore
	shipmentSvc   ShipmentService
	notifications NotificationService
	publisher     events.Publisher
	now           func() time.Time
}

func NewPODService(
	txManager repository.TransactionManager,
	repo repository.PODRepository,
	shipments repository.ShipmentRepository,
	profiles repository.ProfileRepository,
	audit repository.AuditRepository,
	documents storage.DocumentStore,
	shipmentSvc ShipmentService,
	notifications NotificationService,
	publisher events.Publisher,
) PODService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &podService{
		txManager:     txManager,
		repo:          repo,
		shipments:     shipments,
		profiles:      profiles,
		audit:         audit,
		documents:     documents,
		shipmentSvc:   shipmentSvc,
		notifications: notifications,
		publisher:     publisher,
		now:           time.Now,
	}
}

var podSubmittable = map[string]bool{
	model.ShipmentInTransit: true,
	model.ShipmentCustoms:   true,
	model.ShipmentDelivered: true,
}

func (s *podService) Submit(ctx context.Context, submitter Viewer, req SubmitPODRequest) (PODResponse, error) {
	shipmentID, err := uuid.Parse(req.ShipmentID)
	if err != nil {
		return PODResponse{}, fmt.Errorf("invalid shipment_id: %w", err)
	}
	if len(req.Documents) == 0 {
		return PODResponse{}, ErrPODNoDocuments
	}

	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		if isNotFound(err) {
			return PODResponse{}, ErrShipmentNotFound
		}
		return PODResponse{}, fmt.Errorf("failed to load shipment: %w", err)
	}

	switch submitter.Role {
	case model.RoleAdmin, model.RoleDriver:
	case model.RoleForwarder:
		if shipment.ForwarderID != submitter.ID {
			return PODResponse{}, ErrForbidden
		}
	default:
		return PODResponse{}, ErrForbidden
	}
	if !podSubmittable[shipment.Status] {
		return PODResponse{}, ErrPODNotAllowed
	}

	docs := make([]model.PODDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		url, err := s.documents.URLFor(ctx, d.Key)
		if err != nil {
			return PODResponse{}, fmt.Errorf("failed to resolve document %q: %w", d.Name, err)
		}
		docs = append(docs, model.PODDocument{URL: url, Name: d.Name, MimeType: d.MimeType})
	}

	pod := model.POD{
		ShipmentID:     shipment.ID,
		TrackingNumber: shipment.TrackingNumber,
		Status:         model.PODPending,
		SubmittedBy:    submitter.ID,
		SubmittedAt:    s.now(),
		ForwarderName:  shipment.CarrierName,
		ClientName:     s.displayName(ctx, shipment.ClientID),
		Documents:      docs,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if pod.ForwarderName == "" {
		pod.ForwarderName = s.displayName(ctx, shipment.ForwarderID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &pod); err != nil {
			return fmt.Errorf("failed to create proof of delivery: %w", err)
		}
		audit := model.AuditLog{
			ActorID:    &submitter.ID,
			Action:     model.ActionSubmitPOD,
			EntityID:   pod.ID.String(),
			EntityName: shipment.TrackingNumber,
			Details:    auditDetails(map[string]interface{}{"shipment_id": shipment.ID.String(), "documents": len(docs)}),
		}
		if err := s.audit.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return PODResponse{}, err
	}

	return toPODResponse(pod), nil
}

func (s *podService) displayName(ctx context.Context, id uuid.UUID) string {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return p.DisplayName()
}

// Review settles a pending POD. Only one concurrent review can win; the other
// gets ErrPODAlreadyReviewed. Verification moves an undelivered shipment to delivered.
func (s *podService) Review(ctx context.Context, podID uuid.UUID, reviewer Viewer, outcome, notes string) (PODResponse, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return PODResponse{}, ErrReviewNotesRequired
	}
	if outcome != model.PODVerified && outcome != model.PODRejected {
		return PODResponse{}, ErrInvalidReviewOutcome
	}

	pod, err := s.repo.FindByID(ctx, podID)
	if err != nil {
		if isNotFound(err) {
			return PODResponse{}, ErrPODNotFound
		}
		return PODResponse{}, fmt.Errorf("failed to load proof of delivery: %w", err)
	}

	shipment, err := s.shipments.FindByID(ctx, pod.ShipmentID)
	if err != nil {
		if isNotFound(err) {
			return PODResponse{}, ErrShipmentNotFound
		}
		return PODResponse{}, fmt.Errorf("failed to load shipment: %w", err)
	}
	if !reviewer.IsAdmin() && !(reviewer.Role == model.RoleForwarder && shipment.ForwarderID == reviewer.ID) {
		return PODResponse{}, ErrForbidden
	}
	if pod.Status != model.PODPending {
		return PODResponse{}, ErrPODAlreadyReviewed
	}

	reviewedAt := s.now()
	action := model.ActionRejectPOD
	if outcome == model.PODVerified {
		action = model.ActionVerifyPOD
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Review(txCtx, podID, repository.PODReview{
			Status:     outcome,
			ReviewerID: reviewer.ID,
			Notes:      notes,
			ReviewedAt: reviewedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to review proof of delivery: %w", err)
		}
		if !ok {
			return ErrPODAlreadyReviewed
		}
		audit := model.AuditLog{
			ActorID:    &reviewer.ID,
			Action:     action,
			EntityID:   podID.String(),
			EntityName: pod.TrackingNumber,
			Details:    auditDetails(map[string]interface{}{"notes": notes}),
		}
		if err := s.audit.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return PODResponse{}, err
	}

	pod.Status = outcome
	pod.ReviewerID = &reviewer.ID
	pod.ReviewNotes = notes
	pod.ReviewedAt = &reviewedAt
	if outcome == model.PODVerified {
		pod.VerifiedAt = &reviewedAt
	}

	s.afterReview(ctx, *pod, *shipment, reviewer)
	return toPODResponse(*pod), nil
}

func (s *podService) afterReview(ctx context.Context, pod model.POD, shipment model.Shipment, reviewer Viewer) {
	if pod.Status == model.PODVerified && s.shipmentSvc != nil &&
		(shipment.Status == model.ShipmentInTransit || shipment.Status == model.ShipmentCustoms) {
		// the shipment service authorises by role, so act as admin for the system move
		system := Viewer{ID: reviewer.ID, Role: model.RoleAdmin}
		if _, err := s.shipmentSvc.UpdateStatus(ctx, shipment.ID, system, model.ShipmentDelivered); err != nil {
			logging.Error("failed to mark shipment delivered after pod verification", map[string]interface{}{
				"shipment_id": shipment.ID.String(),
				"pod_id":      pod.ID.String(),
				"error":       err,
			})
		}
	}

	if s.notifications != nil {
		title := "Proof of delivery verified"
		if pod.Status == model.PODRejected {
			title = "Proof of delivery rejected"
		}
		if _, err := s.notifications.Create(ctx, NotificationInput{
			RecipientID: shipment.ForwarderID,
			Type:        model.NotificationPODReviewed,
			Title:       title,
			Message:     fmt.Sprintf("%s: %s", pod.TrackingNumber, pod.ReviewNotes),
			Link:        "/dashboard/forwarder/pods/" + pod.ID.String(),
		}); err != nil {
			logging.Warn("failed to notify pod review", map[string]interface{}{"pod_id": pod.ID.String(), "error": err})
		}
	}

	if err := s.publisher.Publish(ctx, events.TypePODReviewed, pod.ID.String(), map[string]interface{}{
		"shipment_id": shipment.ID.String(),
		"status":      pod.Status,
	}); err != nil {
		logging.Warn("failed to publish pod reviewed event", map[string]interface{}{"pod_id": pod.ID.String(), "error": err})
	}
}

func (s *podService) Get(ctx context.Context, podID uuid.UUID, viewer Viewer) (PODResponse, error) {
	pod, err := s.repo.FindByID(ctx, podID)
	if err != nil {
		if isNotFound(err) {
			return PODResponse{}, ErrPODNotFound
		}
		return PODResponse{}, fmt.Errorf("failed to load proof of delivery: %w", err)
	}
	if viewer.IsAdmin() || pod.SubmittedBy == viewer.ID {
		return toPODResponse(*pod), nil
	}

	shipment, err := s.shipments.FindByID(ctx, pod.ShipmentID)
	if err != nil {
		return PODResponse{}, fmt.Errorf("failed to load shipment: %w", err)
	}
	if !canView(shipment, viewer) || viewer.Role == model.RoleDriver {
		return PODResponse{}, ErrForbidden
	}
	return toPODResponse(*pod), nil
}

func (s *podService) List(ctx context.Context, viewer Viewer, status string, page, limit int) ([]PODResponse, int64, error) {
	filter := repository.PODFilter{Status: status, Page: page, Limit: limit}
	switch viewer.Role {
	case model.RoleAdmin:
	case model.RoleForwarder:
		filter.ForwarderID = &viewer.ID
	default:
		return nil, 0, ErrForbidden
	}

	pods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list proofs of delivery: %w", err)
	}
	res := make([]PODResponse, 0, len(pods))
	for _, p := range pods {
		res = append(res, toPODResponse(p))
	}
	return res, total, nil
}

func toPODResponse(p model.POD) PODResponse {
	docs := []model.PODDocument(p.Documents)
	if docs == nil {
		docs = []model.PODDocument{}
	}
	return PODResponse{
		ID:             p.ID.String(),
		ShipmentID:     p.ShipmentID.String(),
		TrackingNumber: p.TrackingNumber,
		Status:         p.Status,
		SubmittedBy:    p.SubmittedBy.String(),
		SubmittedAt:    formatTime(p.SubmittedAt),
		ForwarderName:  p.ForwarderName,
		ClientName:     p.ClientName,
		Documents:      docs,
		Notes:          p.Notes,
		ReviewerID:     uuidPtrString(p.ReviewerID),
		ReviewNotes:    p.ReviewNotes,
		ReviewedAt:     formatTimePtr(p.ReviewedAt),
		VerifiedAt:     formatTimePtr(p.VerifiedAt),
	}
}
