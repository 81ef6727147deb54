package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// currencies Stripe charges without minor units
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

type StripeGateway struct {
	client        *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{client: sc, webhookSecret: webhookSecret}
}

func (g *StripeGateway) Provider() string { return "stripe" }

// unitAmount converts a decimal amount into the integer Stripe expects.
func unitAmount(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if err := validate(req); err != nil {
		return CheckoutSession{}, err
	}

	metadata := make(map[string]string, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["reference"] = req.Reference

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.Reference),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(unitAmount(req.Amount, req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
			},
		},
		Metadata: metadata,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.IdempotencyKey = stripe.String(req.Reference)
	params.Context = ctx

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, g.mapStripeError(err)
	}
	return CheckoutSession{ProviderReference: sess.ID, RedirectURL: sess.URL}, nil
}

func (g *StripeGateway) mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrProviderRejected, stripeErr.Msg)
	}
	return fmt.Errorf("stripe: %w", err)
}

func (g *StripeGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, headers.Get("Stripe-Signature"), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var status EventStatus
	var reason string
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		status = EventSuccess
	case "checkout.session.expired":
		status, reason = EventFailure, "checkout session expired"
	case "checkout.session.async_payment_failed":
		status, reason = EventFailure, "asynchronous payment failed"
	default:
		return nil, ErrIgnoredEvent
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	// delayed payment methods complete the session unpaid; async_payment_succeeded settles them
	if event.Type == "checkout.session.completed" && sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrIgnoredEvent
	}

	ref := sess.ClientReferenceID
	if ref == "" {
		ref = sess.Metadata["reference"]
	}
	if ref == "" {
		return nil, ErrMissingReference
	}

	return &WebhookEvent{
		Reference:         ref,
		ProviderReference: sess.ID,
		Status:            status,
		FailureReason:     reason,
		Metadata:          sess.Metadata,
	}, nil
}
