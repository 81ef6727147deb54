package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestComputeDiscount(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	percent := model.Coupon{DiscountType: model.DiscountPercentage, Value: dec("15"), Active: true}
	fixed := model.Coupon{DiscountType: model.DiscountFixed, Value: dec("40"), Active: true}

	tests := []struct {
		name    string
		coupon  model.Coupon
		amount  string
		want    string
		wantErr error
	}{
		{name: "percentage", coupon: percent, amount: "200", want: "30"},
		{name: "percentage rounds to cents", coupon: percent, amount: "33.33", want: "5"},
		{name: "fixed", coupon: fixed, amount: "100", want: "40"},
		{name: "fixed capped at amount", coupon: fixed, amount: "25", want: "25"},
		{name: "inactive", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5")}, amount: "10", wantErr: ErrCouponInactive},
		{name: "expired", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, ExpiresAt: &past}, amount: "10", wantErr: ErrCouponExpired},
		{name: "expires at this instant", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, ExpiresAt: &now}, amount: "10", wantErr: ErrCouponExpired},
		{name: "not yet expired", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, ExpiresAt: &future}, amount: "10", want: "5"},
		{name: "exhausted", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, MaxUses: 3, UsedCount: 3}, amount: "10", wantErr: ErrCouponExhausted},
		{name: "unlimited uses", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, UsedCount: 500}, amount: "10", want: "5"},
		{name: "below minimum", coupon: model.Coupon{DiscountType: model.DiscountFixed, Value: dec("5"), Active: true, MinAmount: dec("50")}, amount: "49.99", wantErr: ErrCouponMinAmount},
		{name: "unknown type", coupon: model.Coupon{DiscountType: "bogo", Value: dec("5"), Active: true}, amount: "10", wantErr: ErrInvalidCoupon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDiscount(tt.coupon, dec(tt.amount), now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("discount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCouponServiceCreateValidateDeactivate(t *testing.T) {
	store := newMemStore()
	svc := NewCouponService(&fakeTxManager{store: store}, fakeCouponRepo{store}, fakeAuditRepo{store})
	ctx := context.Background()
	admin := uuid.New()

	created, err := svc.Create(ctx, admin, CreateCouponRequest{Code: " welcome10 ", DiscountType: model.DiscountPercentage, Value: dec("10")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Code != "WELCOME10" || !created.Active {
		t.Fatalf("created = %+v", created)
	}
	if _, err := svc.Create(ctx, admin, CreateCouponRequest{Code: "Welcome10", DiscountType: model.DiscountFixed, Value: dec("5")}); !errors.Is(err, ErrCouponCodeTaken) {
		t.Fatalf("duplicate code error = %v", err)
	}

	invalid := []CreateCouponRequest{
		{Code: "ZERO", DiscountType: model.DiscountFixed, Value: decimal.Zero},
		{Code: "HUGE", DiscountType: model.DiscountPercentage, Value: dec("101")},
		{Code: "ODD", DiscountType: "bogo", Value: dec("5")},
		{Code: "NEGMIN", DiscountType: model.DiscountFixed, Value: dec("5"), MinAmount: dec("-1")},
	}
	for _, req := range invalid {
		if _, err := svc.Create(ctx, admin, req); !errors.Is(err, ErrInvalidCoupon) {
			t.Errorf("Create(%s) error = %v, want ErrInvalidCoupon", req.Code, err)
		}
	}

	quote, err := svc.Validate(ctx, "welcome10", dec("250"))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !quote.Discount.Equal(dec("25")) || !quote.FinalAmount.Equal(dec("225")) {
		t.Fatalf("quote = %+v", quote)
	}
	if _, err := svc.Validate(ctx, "NOPE", dec("10")); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("unknown code error = %v", err)
	}
	if _, err := svc.Validate(ctx, "WELCOME10", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount error = %v", err)
	}

	id := uuid.MustParse(created.ID)
	if err := svc.Deactivate(ctx, admin, id); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if err := svc.Deactivate(ctx, admin, id); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("second Deactivate() error = %v", err)
	}
	if err := svc.Deactivate(ctx, admin, uuid.New()); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("unknown Deactivate() error = %v", err)
	}
	if _, err := svc.Validate(ctx, "WELCOME10", dec("250")); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("inactive Validate() error = %v", err)
	}

	if _, total, err := svc.List(ctx, true, 1, 10); err != nil || total != 0 {
		t.Fatalf("active list total = %d, err = %v", total, err)
	}
	if _, total, err := svc.List(ctx, false, 1, 10); err != nil || total != 1 {
		t.Fatalf("full list total = %d, err = %v", total, err)
	}
}
