package service

import (
	"context"
	"fmt"

	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/notify"
	"nextmove-cargo/internal/repository"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// NotificationInput describes an in-app notification. Outbound also sends it
// over SMS/email/WhatsApp to the recipient's contact details.
type NotificationInput struct {
	RecipientID uuid.UUID
	Type        string
	Title       string
	Message     string
	Link        string
	Outbound    bool
}

type NotificationService interface {
	Create(ctx context.Context, in NotificationInput) (NotificationResponse, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	profiles  repository.ProfileRepository
	pusher    Pusher
	messenger Messenger
}

// NewNotificationService wires the notification store with live push and
// outbound channels; pusher and messenger may be nil.
func NewNotificationService(repo repository.NotificationRepository, profiles repository.ProfileRepository, pusher Pusher, messenger Messenger) NotificationService {
	if pusher == nil {
		pusher = nopPusher{}
	}
	return &notificationService{repo: repo, profiles: profiles, pusher: pusher, messenger: messenger}
}

func (s *notificationService) Create(ctx context.Context, in NotificationInput) (NotificationResponse, error) {
	n := model.Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		Link:        in.Link,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return NotificationResponse{}, fmt.Errorf("failed to create notification: %w", err)
	}

	res := toNotificationResponse(n)
	s.pusher.Push("notification.created", res, in.RecipientID)

	if in.Outbound {
		s.sendOutbound(ctx, in)
	}
	return res, nil
}

// sendOutbound is best effort: failures are logged, never returned.
func (s *notificationService) sendOutbound(ctx context.Context, in NotificationInput) {
	if s.messenger == nil || s.profiles == nil {
		return
	}
	profile, err := s.profiles.FindByID(ctx, in.RecipientID)
	if err != nil {
		logging.Warn("outbound notification skipped: recipient lookup failed", map[string]interface{}{
			"recipient_id": in.RecipientID.String(),
			"error":        err,
		})
		return
	}

	msg := notify.Message{
		Email:   profile.Email,
		Subject: in.Title,
		Body:    in.Title + ": " + in.Message,
	}
	if !profile.AutomationSettings.Data().SMSUpdatesDisabled() {
		msg.Phone = profile.Phone
	}

	sent := s.messenger.Send(ctx, msg)
	logging.Info("outbound notification dispatched", map[string]interface{}{
		"recipient_id": in.RecipientID.String(),
		"type":         in.Type,
		"channels":     sent,
	})
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	items, total, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	res := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		res = append(res, toNotificationResponse(n))
	}
	return res, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: formatTime(n.CreatedAt),
	}
}
