package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nextmove-cargo/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestLogin(t *testing.T) {
	store := newMemStore()
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	profile := model.Profile{ID: uuid.New(), Email: "ops@nextmove.test", Role: model.RoleForwarder, PasswordHash: hash}
	store.profiles[profile.ID] = profile
	store.profiles[uuid.New()] = model.Profile{Email: "nopass@nextmove.test", Role: model.RoleClient}

	svc := NewAuthService(fakeProfileRepo{store}, "test-secret", time.Hour)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: " OPS@nextmove.test ", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Profile.ID != profile.ID.String() || res.Profile.Role != model.RoleForwarder {
		t.Fatalf("profile = %+v", res.Profile)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != profile.ID.String() || claims["role"] != model.RoleForwarder {
		t.Fatalf("claims = %v", claims)
	}

	bad := []LoginRequest{
		{Email: "ops@nextmove.test", Password: "wrong"},
		{Email: "nobody@nextmove.test", Password: "s3cret-pass"},
		{Email: "nopass@nextmove.test", Password: ""},
	}
	for _, req := range bad {
		if _, err := svc.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", req.Email, err)
		}
	}

	me, err := svc.Me(ctx, profile.ID)
	if err != nil || me.Email != profile.Email {
		t.Fatalf("Me() = %+v, %v", me, err)
	}
}

func TestNotificationService(t *testing.T) {
	f := newFixture()
	quiet := f.addProfile(model.RoleClient)
	setSMS(f, quiet.ID, false)
	ctx := context.Background()

	if _, err := f.notifications.Create(ctx, NotificationInput{RecipientID: quiet.ID, Type: model.NotificationShipmentUpdate, Title: "Update", Message: "moving", Outbound: true}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.notifications.Create(ctx, NotificationInput{RecipientID: quiet.ID, Type: model.NotificationShipmentUpdate, Title: "Quiet", Message: "in-app only"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(f.messenger.messages) != 1 {
		t.Fatalf("outbound messages = %d, want 1", len(f.messenger.messages))
	}
	msg := f.messenger.messages[0]
	if msg.Phone != "" || msg.Email != quiet.Email || msg.Subject != "Update" {
		t.Fatalf("message = %+v", msg)
	}
	if len(f.pusher.pushes) != 2 || f.pusher.pushes[0].userIDs[0] != quiet.ID {
		t.Fatalf("pushes = %+v", f.pusher.pushes)
	}

	items, total, err := f.notifications.List(ctx, quiet.ID, true, 1, 10)
	if err != nil || total != 2 {
		t.Fatalf("List() total = %d, err = %v", total, err)
	}
	if err := f.notifications.MarkRead(ctx, quiet.ID, uuid.MustParse(items[0].ID)); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if err := f.notifications.MarkRead(ctx, uuid.New(), uuid.MustParse(items[1].ID)); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("MarkRead() by stranger error = %v", err)
	}
	n, err := f.notifications.MarkAllRead(ctx, quiet.ID)
	if err != nil || n != 1 {
		t.Fatalf("MarkAllRead() = %d, %v", n, err)
	}
	if _, total, _ := f.notifications.List(ctx, quiet.ID, true, 1, 10); total != 0 {
		t.Fatalf("unread after MarkAllRead = %d", total)
	}
}

func setSMS(f *fixture, id uuid.UUID, enabled bool) {
	p := f.store.profiles[id]
	settings := p.AutomationSettings.Data()
	settings.SMSUpdatesEnabled = &enabled
	p.AutomationSettings = datatypes.NewJSONType(settings)
	f.store.profiles[id] = p
}

func TestGetAuditLogs(t *testing.T) {
	store := newMemStore()
	actor := model.Profile{ID: uuid.New(), FullName: "Awa Diop", CompanyName: "NextMove Ops"}
	store.audits = []model.AuditLog{
		{ID: uuid.New(), Action: model.ActionAcceptOffer, EntityID: "o1"},
		{ID: uuid.New(), ActorID: &actor.ID, Actor: &actor, Action: model.ActionVerifyPOD, EntityID: "p1"},
	}
	svc := NewAuditService(fakeAuditRepo{store})

	logs, total, err := svc.GetAuditLogs(context.Background(), "", 1, 10)
	if err != nil || total != 2 {
		t.Fatalf("GetAuditLogs() total = %d, err = %v", total, err)
	}
	if logs[0].ActorName != "Automation" || logs[0].ActorID != "" {
		t.Errorf("automation row = %+v", logs[0])
	}
	if logs[1].ActorName != "NextMove Ops" || logs[1].ActorID != actor.ID.String() {
		t.Errorf("actor row = %+v", logs[1])
	}

	if _, total, _ := svc.GetAuditLogs(context.Background(), model.ActionVerifyPOD, 1, 10); total != 1 {
		t.Fatalf("filtered total = %d, want 1", total)
	}
}
