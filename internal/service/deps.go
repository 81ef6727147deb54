package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/notify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer is the authenticated caller a service call acts on behalf of.
type Viewer struct {
	ID   uuid.UUID
	Role string
}

func (v Viewer) IsAdmin() bool { return v.Role == model.RoleAdmin }

// Pusher delivers live events to connected users (the websocket hub).
type Pusher interface {
	Push(eventType string, data interface{}, userIDs ...uuid.UUID)
}

// Messenger sends a message over the outbound channels (SMS, email, WhatsApp).
type Messenger interface {
	Send(ctx context.Context, msg notify.Message) int
}

type nopPusher struct{}

func (nopPusher) Push(string, interface{}, ...uuid.UUID) {}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func auditDetails(fields map[string]interface{}) string {
	b, _ := json.Marshal(fields)
	return string(b)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
