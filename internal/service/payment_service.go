package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"nextmove-cargo/internal/events"
	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/payment"
	"nextmove-cargo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CheckoutRequest struct {
	Provider   string `json:"provider" binding:"required,oneof=stripe flutterwave cinetpay"`
	ShipmentID string `json:"shipment_id" binding:"required,uuid"`
	CouponCode string `json:"coupon_code"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	Provider      string `json:"provider"`
	Amount        string `json:"amount"`
	Discount      string `json:"discount"`
	Currency      string `json:"currency"`
	RedirectURL   string `json:"redirect_url"`
}

// WebhookResult says what a provider notification changed.
// Applied is false for duplicates and ignored events.
type WebhookResult struct {
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status,omitempty"`
	Applied   bool   `json:"applied"`
	Ignored   bool   `json:"ignored"`
}

type TransactionResponse struct {
	ID             string  `json:"id"`
	ShipmentID     *string `json:"shipment_id"`
	Provider       string  `json:"provider"`
	Reference      string  `json:"reference"`
	Amount         string  `json:"amount"`
	DiscountAmount string  `json:"discount_amount"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
	FailureReason  string  `json:"failure_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (CheckoutResponse, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (WebhookResult, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error)
}

// PaymentURLs are the defaults used when a checkout request does not supply them.
type PaymentURLs struct {
	SuccessURL string
	CancelURL  string
	// NotifyBaseURL is the public API base; the provider name is appended.
	NotifyBaseURL string
}

type paymentService struct {
	txManager     repository.TransactionManager
	transactions  repository.TransactionRepository
	shipments     repository.ShipmentRepository
	coupons       repository.CouponRepository
	profiles      repository.ProfileRepository
	audit         repository.AuditRepository
	couponSvc     CouponService
	gateways      *payment.Registry
	notifications NotificationService
	publisher     events.Publisher
	urls          PaymentURLs
	newReference  func() string
}

func NewPaymentService(
	txManager repository.TransactionManager,
	transactions repository.TransactionRepository,
	shipments repository.ShipmentRepository,
	coupons repository.CouponRepository,
	profiles repository.ProfileRepository,
	audit repository.AuditRepository,
	couponSvc CouponService,
	gateways *payment.Registry,
	notifications NotificationService,
	publisher events.Publisher,
	urls PaymentURLs,
) PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &paymentService{
		txManager:     txManager,
		transactions:  transactions,
		shipments:     shipments,
		coupons:       coupons,
		profiles:      profiles,
		audit:         audit,
		couponSvc:     couponSvc,
		gateways:      gateways,
		notifications: notifications,
		publisher:     publisher,
		urls:          urls,
		newReference:  NewTransactionReference,
	}
}

// NewPaymentURLs derives the checkout return pages from the web app base and the
// webhook base from the public API base.
func NewPaymentURLs(publicURL, apiURL string) PaymentURLs {
	web := strings.TrimRight(publicURL, "/")
	return PaymentURLs{
		SuccessURL:    web + "/payments/success",
		CancelURL:     web + "/payments/cancel",
		NotifyBaseURL: strings.TrimRight(apiURL, "/"),
	}
}

// NewTransactionReference returns TXN- followed by the first 8 hex digits of a random uuid.
func NewTransactionReference() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *paymentService) CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (CheckoutResponse, error) {
	gateway, err := s.gateways.Get(req.Provider)
	if err != nil {
		return CheckoutResponse{}, err
	}
	shipmentID, err := uuid.Parse(req.ShipmentID)
	if err != nil {
		return CheckoutResponse{}, fmt.Errorf("invalid shipment_id: %w", err)
	}

	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		if isNotFound(err) {
			return CheckoutResponse{}, ErrShipmentNotFound
		}
		return CheckoutResponse{}, fmt.Errorf("failed to load shipment: %w", err)
	}
	if shipment.ClientID != userID {
		return CheckoutResponse{}, ErrForbidden
	}
	if shipment.PaymentStatus == model.PaymentPaid {
		return CheckoutResponse{}, ErrShipmentAlreadyPaid
	}

	amount := shipment.Price
	discount := decimal.Zero
	var couponID *uuid.UUID
	if strings.TrimSpace(req.CouponCode) != "" {
		quote, err := s.couponSvc.Validate(ctx, req.CouponCode, amount)
		if err != nil {
			return CheckoutResponse{}, err
		}
		discount = quote.Discount
		amount = quote.FinalAmount
		couponID = &quote.CouponID
	}
	if !amount.IsPositive() {
		return CheckoutResponse{}, ErrInvalidAmount
	}

	metadata := map[string]string{
		"shipment_id": shipment.ID.String(),
		"user_id":     userID.String(),
	}
	if couponID != nil {
		metadata["coupon_id"] = couponID.String()
	}

	txn := model.Transaction{
		UserID:         userID,
		ShipmentID:     &shipment.ID,
		Provider:       gateway.Provider(),
		Reference:      s.newReference(),
		Amount:         amount,
		DiscountAmount: discount,
		Currency:       shipment.Currency,
		CouponID:       couponID,
		Status:         model.TransactionPending,
		Metadata:       datatypes.NewJSONType(metadata),
	}
	if err := s.transactions.Create(ctx, &txn); err != nil {
		return CheckoutResponse{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	checkout := payment.CheckoutRequest{
		Reference:   txn.Reference,
		Amount:      amount,
		Currency:    shipment.Currency,
		Description: "Shipment " + shipment.TrackingNumber,
		SuccessURL:  firstNonEmpty(req.SuccessURL, s.urls.SuccessURL),
		CancelURL:   firstNonEmpty(req.CancelURL, s.urls.CancelURL),
		Metadata:    metadata,
	}
	if s.urls.NotifyBaseURL != "" {
		checkout.NotifyURL = strings.TrimRight(s.urls.NotifyBaseURL, "/") + "/api/webhooks/" + gateway.Provider()
	}
	if s.profiles != nil {
		if p, err := s.profiles.FindByID(ctx, userID); err == nil {
			checkout.CustomerEmail = p.Email
			checkout.CustomerName = p.DisplayName()
			checkout.CustomerPhone = p.Phone
		}
	}

	session, err := gateway.CreateCheckout(ctx, checkout)
	if err != nil {
		if _, settleErr := s.transactions.Settle(ctx, txn.ID, model.TransactionFailed, err.Error()); settleErr != nil {
			logging.Error("failed to mark transaction failed", map[string]interface{}{"reference": txn.Reference, "error": settleErr})
		}
		return CheckoutResponse{}, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	if err := s.transactions.SetProviderReference(ctx, txn.ID, session.ProviderReference); err != nil {
		logging.Warn("failed to store provider reference", map[string]interface{}{"reference": txn.Reference, "error": err})
	}

	return CheckoutResponse{
		TransactionID: txn.ID.String(),
		Reference:     txn.Reference,
		Provider:      txn.Provider,
		Amount:        amount.StringFixed(2),
		Discount:      discount.StringFixed(2),
		Currency:      txn.Currency,
		RedirectURL:   session.RedirectURL,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandleWebhook settles the transaction a provider notification refers to.
// Only a pending transaction is settled, so redelivered notifications are no-ops.
func (s *paymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (WebhookResult, error) {
	gateway, err := s.gateways.Get(provider)
	if err != nil {
		return WebhookResult{}, err
	}

	event, err := gateway.ParseWebhook(ctx, payload, headers)
	if err != nil {
		if errors.Is(err, payment.ErrIgnoredEvent) {
			return WebhookResult{Ignored: true}, nil
		}
		return WebhookResult{}, err
	}

	txn, err := s.transactions.FindByReference(ctx, event.Reference)
	if err != nil {
		if isNotFound(err) {
			return WebhookResult{}, ErrTransactionNotFound
		}
		return WebhookResult{}, fmt.Errorf("failed to load transaction: %w", err)
	}

	status := model.TransactionFailed
	action := model.ActionPaymentFailed
	if event.Status == payment.EventSuccess {
		status = model.TransactionCompleted
		action = model.ActionPaymentCompleted
	}

	shipmentID := txn.ShipmentID
	if shipmentID == nil {
		if raw, ok := event.Metadata["shipment_id"]; ok {
			if id, err := uuid.Parse(raw); err == nil {
				shipmentID = &id
			}
		}
	}

	applied := false
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.transactions.Settle(txCtx, txn.ID, status, event.FailureReason)
		if err != nil {
			return fmt.Errorf("failed to settle transaction: %w", err)
		}
		if !ok {
			return nil
		}
		applied = true

		if event.ProviderReference != "" && event.ProviderReference != txn.ProviderReference {
			if err := s.transactions.SetProviderReference(txCtx, txn.ID, event.ProviderReference); err != nil {
				return fmt.Errorf("failed to store provider reference: %w", err)
			}
		}

		if status == model.TransactionCompleted {
			if shipmentID != nil {
				if err := s.shipments.MarkPaid(txCtx, *shipmentID); err != nil {
					return fmt.Errorf("failed to mark shipment paid: %w", err)
				}
			}
			if txn.CouponID != nil {
				redeemed, err := s.coupons.Redeem(txCtx, *txn.CouponID)
				if err != nil {
					return fmt.Errorf("failed to redeem coupon: %w", err)
				}
				if !redeemed {
					logging.Warn("coupon usage limit reached at redemption", map[string]interface{}{
						"coupon_id": txn.CouponID.String(),
						"reference": txn.Reference,
					})
				}
			}
		}

		audit := model.AuditLog{
			Action:     action,
			EntityID:   txn.ID.String(),
			EntityName: txn.Reference,
			Details: auditDetails(map[string]interface{}{
				"provider":       txn.Provider,
				"amount":         txn.Amount.StringFixed(2),
				"currency":       txn.Currency,
				"failure_reason": event.FailureReason,
			}),
		}
		return s.audit.Log(txCtx, &audit)
	})
	if err != nil {
		return WebhookResult{}, err
	}

	result := WebhookResult{Reference: txn.Reference, Status: status, Applied: applied}
	if !applied {
		logging.Info("duplicate payment webhook ignored", map[string]interface{}{
			"provider":  provider,
			"reference": txn.Reference,
		})
		return result, nil
	}

	s.afterSettlement(ctx, *txn, status, event.FailureReason)
	return result, nil
}

func (s *paymentService) afterSettlement(ctx context.Context, txn model.Transaction, status, reason string) {
	title := "Payment received"
	message := fmt.Sprintf("We received your payment of %s %s (ref %s).", txn.Amount.StringFixed(2), txn.Currency, txn.Reference)
	if status == model.TransactionFailed {
		title = "Payment failed"
		message = fmt.Sprintf("Your payment %s did not go through: %s", txn.Reference, reason)
	}

	if s.notifications != nil {
		if _, err := s.notifications.Create(ctx, NotificationInput{
			RecipientID: txn.UserID,
			Type:        model.NotificationPaymentUpdate,
			Title:       title,
			Message:     message,
			Link:        "/dashboard/client/payments",
			Outbound:    status == model.TransactionCompleted,
		}); err != nil {
			logging.Warn("failed to notify payment update", map[string]interface{}{"reference": txn.Reference, "error": err})
		}
	}

	if err := s.publisher.Publish(ctx, events.TypePaymentSettled, txn.ID.String(), map[string]interface{}{
		"reference":   txn.Reference,
		"provider":    txn.Provider,
		"status":      status,
		"shipment_id": uuidPtrString(txn.ShipmentID),
	}); err != nil {
		logging.Warn("failed to publish payment event", map[string]interface{}{"reference": txn.Reference, "error": err})
	}
}

func (s *paymentService) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error) {
	txs, total, err := s.transactions.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	res := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		res = append(res, TransactionResponse{
			ID:             t.ID.String(),
			ShipmentID:     uuidPtrString(t.ShipmentID),
			Provider:       t.Provider,
			Reference:      t.Reference,
			Amount:         t.Amount.StringFixed(2),
			DiscountAmount: t.DiscountAmount.StringFixed(2),
			Currency:       t.Currency,
			Status:         t.Status,
			FailureReason:  t.FailureReason,
			CreatedAt:      formatTime(t.CreatedAt),
		})
	}
	return res, total, nil
}
