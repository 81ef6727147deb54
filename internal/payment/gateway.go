// Package payment adapts third-party payment providers to one checkout/webhook contract.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrInvalidSignature = errors.New("webhook signature invalid")
	ErrIgnoredEvent     = errors.New("webhook event ignored")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrProviderRejected = errors.New("payment provider rejected the request")
	ErrMissingReference = errors.New("missing transaction reference")
)

type EventStatus string

const (
	EventSuccess EventStatus = "success"
	EventFailure EventStatus = "failure"
)

// CheckoutRequest is the provider-neutral description of a payment to collect.
type CheckoutRequest struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	SuccessURL    string
	CancelURL     string
	NotifyURL     string
	Metadata      map[string]string
}

// CheckoutSession is what the client needs to complete payment at the provider.
type CheckoutSession struct {
	ProviderReference string
	RedirectURL       string
}

// WebhookEvent is a verified, normalized provider notification.
type WebhookEvent struct {
	Reference         string
	ProviderReference string
	Status            EventStatus
	FailureReason     string
	Metadata          map[string]string
}

type Gateway interface {
	Provider() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	// ParseWebhook verifies and normalizes an inbound notification.
	// It returns ErrIgnoredEvent for notifications that carry no final outcome.
	ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error)
}

// Registry looks gateways up by provider name.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

func (r *Registry) Get(provider string) (Gateway, error) {
	g, ok := r.gateways[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return g, nil
}

func validate(req CheckoutRequest) error {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if req.Reference == "" {
		return ErrMissingReference
	}
	return nil
}
