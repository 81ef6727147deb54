package service

import (
	"context"
	"errors"
	"testing"

	"nextmove-cargo/internal/events"
	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.ShipmentPendingPayment, model.ShipmentPending, true},
		{model.ShipmentPendingPayment, model.ShipmentInTransit, false},
		{model.ShipmentPending, model.ShipmentInTransit, true},
		{model.ShipmentInTransit, model.ShipmentCustoms, true},
		{model.ShipmentCustoms, model.ShipmentInTransit, true},
		{model.ShipmentCustoms, model.ShipmentDelivered, true},
		{model.ShipmentDelivered, model.ShipmentCompleted, true},
		{model.ShipmentDelivered, model.ShipmentInTransit, false},
		{model.ShipmentCancelled, model.ShipmentPending, false},
		{model.ShipmentCompleted, model.ShipmentDelivered, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestUpdateStatus_DeliveredStampsArrivalAndRequestsFeedback(t *testing.T) {
	f := newFixture()
	client := f.addProfile(model.RoleClient)
	fw := f.addProfile(model.RoleForwarder)
	sh := f.addShipment(client.ID, fw.ID, model.ShipmentInTransit)

	res, err := f.shipments.UpdateStatus(context.Background(), sh.ID, Viewer{ID: fw.ID, Role: model.RoleForwarder}, model.ShipmentDelivered)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if res.Status != model.ShipmentDelivered || res.Progress != 100 || res.ActualArrivalDate == nil {
		t.Fatalf("response = %+v", res)
	}

	stored := f.store.shipments[sh.ID]
	if stored.Status != model.ShipmentDelivered || stored.ActualArrivalDate == nil {
		t.Fatalf("stored shipment = %+v", stored)
	}
	if len(f.store.audits) != 1 || f.store.audits[0].Action != model.ActionUpdateShipmentStatus {
		t.Fatalf("audits = %+v", f.store.audits)
	}
	if n := len(f.notificationsFor(client.ID, model.NotificationFeedbackRequest)); n != 1 {
		t.Fatalf("feedback requests = %d, want 1", n)
	}
	if n := len(f.notificationsFor(client.ID, model.NotificationShipmentUpdate)); n != 1 {
		t.Fatalf("shipment updates = %d, want 1", n)
	}
	if len(f.messenger.messages) == 0 {
		t.Fatal("no outbound message for status change")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].eventType != events.TypeShipmentStatusChange {
		t.Fatalf("events = %+v", f.publisher.events)
	}
}

func TestUpdateStatus_Rejections(t *testing.T) {
	f := newFixture()
	client := f.addProfile(model.RoleClient)
	fw := f.addProfile(model.RoleForwarder)
	sh := f.addShipment(client.ID, fw.ID, model.ShipmentPending)

	tests := []struct {
		name   string
		id     uuid.UUID
		actor  Viewer
		status string
		want   error
	}{
		{"unknown status", sh.ID, Viewer{ID: fw.ID, Role: model.RoleForwarder}, "lost", ErrInvalidStatus},
		{"unknown shipment", uuid.New(), Viewer{ID: fw.ID, Role: model.RoleForwarder}, model.ShipmentInTransit, ErrShipmentNotFound},
		{"client cannot update", sh.ID, Viewer{ID: client.ID, Role: model.RoleClient}, model.ShipmentInTransit, ErrForbidden},
		{"other forwarder", sh.ID, Viewer{ID: uuid.New(), Role: model.RoleForwarder}, model.ShipmentInTransit, ErrForbidden},
		{"skipping a step", sh.ID, Viewer{ID: fw.ID, Role: model.RoleForwarder}, model.ShipmentDelivered, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shipments.UpdateStatus(context.Background(), tt.id, tt.actor, tt.status)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if got := f.store.shipments[sh.ID].Status; got != model.ShipmentPending {
		t.Fatalf("status changed to %q", got)
	}
	if len(f.store.audits) != 0 {
		t.Fatal("rejected updates wrote audit rows")
	}
}

func TestUpdateStatus_AdminCanUpdateAnyShipment(t *testing.T) {
	f := newFixture()
	sh := f.addShipment(uuid.New(), uuid.New(), model.ShipmentPending)

	res, err := f.shipments.UpdateStatus(context.Background(), sh.ID, Viewer{ID: uuid.New(), Role: model.RoleAdmin}, model.ShipmentInTransit)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if res.StatusLabel != "In transit" {
		t.Fatalf("StatusLabel = %q", res.StatusLabel)
	}
	if len(f.store.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1 status update", len(f.store.notifications))
	}
}

func TestShipmentVisibility(t *testing.T) {
	f := newFixture()
	client := f.addProfile(model.RoleClient)
	fw := f.addProfile(model.RoleForwarder)
	mine := f.addShipment(client.ID, fw.ID, model.ShipmentPending)
	f.addShipment(uuid.New(), fw.ID, model.ShipmentInTransit)
	f.addShipment(uuid.New(), uuid.New(), model.ShipmentInTransit)
	ctx := context.Background()

	if _, err := f.shipments.GetShipment(ctx, mine.ID, Viewer{ID: uuid.New(), Role: model.RoleClient}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger GetShipment error = %v", err)
	}
	if _, err := f.shipments.GetShipment(ctx, mine.ID, Viewer{ID: client.ID, Role: model.RoleClient}); err != nil {
		t.Fatalf("owner GetShipment error = %v", err)
	}

	counts := []struct {
		viewer Viewer
		want   int64
	}{
		{Viewer{ID: client.ID, Role: model.RoleClient}, 1},
		{Viewer{ID: fw.ID, Role: model.RoleForwarder}, 2},
		{Viewer{ID: uuid.New(), Role: model.RoleAdmin}, 3},
	}
	for _, c := range counts {
		_, total, err := f.shipments.List(ctx, c.viewer, ShipmentListFilter{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("List(%s) error = %v", c.viewer.Role, err)
		}
		if total != c.want {
			t.Errorf("List(%s) total = %d, want %d", c.viewer.Role, total, c.want)
		}
	}

	_, total, err := f.shipments.List(ctx, Viewer{ID: uuid.New(), Role: model.RoleAdmin}, ShipmentListFilter{Status: model.ShipmentInTransit})
	if err != nil || total != 2 {
		t.Fatalf("status filter total = %d, err = %v", total, err)
	}
	if _, _, err := f.shipments.List(ctx, Viewer{ID: uuid.New(), Role: model.RoleAdmin}, ShipmentListFilter{Status: "lost"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status filter error = %v", err)
	}
}

func TestTrack(t *testing.T) {
	f := newFixture()
	sh := f.addShipment(uuid.New(), uuid.New(), model.ShipmentCustoms)
	ctx := context.Background()

	res, err := f.shipments.Track(ctx, sh.TrackingNumber)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if res.TrackingNumber != sh.TrackingNumber || res.StatusLabel != "In customs" || res.Progress != 75 {
		t.Fatalf("Track() = %+v", res)
	}

	if _, err := f.shipments.Track(ctx, "TRK-123"); !errors.Is(err, ErrInvalidTrackingNumber) {
		t.Fatalf("malformed number error = %v", err)
	}
	if _, err := f.shipments.Track(ctx, "SHP-000000-0"); !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("unknown number error = %v", err)
	}
}
