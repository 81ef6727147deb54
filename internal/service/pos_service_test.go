package service

import (
	"context"
	"errors"
	"testing"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPOSSessionLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewPOSService(&fakeTxManager{store: store}, fakePOSRepo{store}, fakeAuditRepo{store})
	ctx := context.Background()
	operator := uuid.New()

	opened, err := svc.Open(ctx, operator, dec("50.00"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := svc.Open(ctx, operator, dec("10.00")); !errors.Is(err, ErrSessionAlreadyOpen) {
		t.Fatalf("second Open() error = %v", err)
	}

	sessionID := uuid.MustParse(opened.ID)
	for _, amount := range []string{"12.50", "7.25"} {
		if _, err := svc.RecordSale(ctx, sessionID, operator, dec(amount)); err != nil {
			t.Fatalf("RecordSale(%s) error = %v", amount, err)
		}
	}
	current, err := svc.Current(ctx, operator)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if current.SalesTotal != "19.75" || current.SalesCount != 2 {
		t.Fatalf("current = %+v", current)
	}

	res, err := svc.Close(ctx, sessionID, operator, dec("68.00"), " short by change ")
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if *res.Session.ExpectedCash != "69.75" || res.Variance != "-1.75" {
		t.Fatalf("expected = %s variance = %s", *res.Session.ExpectedCash, res.Variance)
	}
	if res.Session.Status != model.POSSessionClosed || res.Session.Notes != "short by change" || res.Session.ClosedAt == nil {
		t.Fatalf("session = %+v", res.Session)
	}

	if _, err := svc.Close(ctx, sessionID, operator, dec("68.00"), ""); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := svc.RecordSale(ctx, sessionID, operator, dec("1.00")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("sale on closed session error = %v", err)
	}
	if _, err := svc.Current(ctx, operator); !errors.Is(err, ErrNoOpenSession) {
		t.Fatalf("Current() after close error = %v", err)
	}
	if _, err := svc.Open(ctx, operator, decimal.Zero); err != nil {
		t.Fatalf("reopen after close error = %v", err)
	}

	actions := map[string]int{}
	for _, a := range store.audits {
		actions[a.Action]++
	}
	if actions[model.ActionOpenPOSSession] != 2 || actions[model.ActionClosePOSSession] != 1 {
		t.Fatalf("audit actions = %v", actions)
	}
}

func TestPOSSessionRejections(t *testing.T) {
	store := newMemStore()
	svc := NewPOSService(&fakeTxManager{store: store}, fakePOSRepo{store}, fakeAuditRepo{store})
	ctx := context.Background()
	operator := uuid.New()

	if _, err := svc.Open(ctx, operator, dec("-1")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative float error = %v", err)
	}
	opened, err := svc.Open(ctx, operator, dec("20"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sessionID := uuid.MustParse(opened.ID)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"zero sale", func() error { _, err := svc.RecordSale(ctx, sessionID, operator, decimal.Zero); return err }, ErrInvalidAmount},
		{"sale by another operator", func() error { _, err := svc.RecordSale(ctx, sessionID, uuid.New(), dec("5")); return err }, ErrForbidden},
		{"sale on unknown session", func() error { _, err := svc.RecordSale(ctx, uuid.New(), operator, dec("5")); return err }, ErrSessionNotFound},
		{"negative count", func() error { _, err := svc.Close(ctx, sessionID, operator, dec("-5"), ""); return err }, ErrInvalidAmount},
		{"close by another operator", func() error { _, err := svc.Close(ctx, sessionID, uuid.New(), dec("20"), ""); return err }, ErrForbidden},
		{"close unknown session", func() error { _, err := svc.Close(ctx, uuid.New(), operator, dec("20"), ""); return err }, ErrSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if got := store.sessions[sessionID].Status; got != model.POSSessionOpen {
		t.Fatalf("session status = %q", got)
	}
}
