package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	cinetPayCodeCreated = "201"
	cinetPayCodeSuccess = "00"
	cinetPayCodeWaiting = "662"
)

// CinetPayGateway talks to the CinetPay v2 checkout API. Its notifications are
// unsigned, so every webhook is confirmed by querying the payment status back.
type CinetPayGateway struct {
	baseURL    string
	apiKey     string
	siteID     string
	httpClient *http.Client
}

func NewCinetPayGateway(baseURL, apiKey, siteID string) *CinetPayGateway {
	return &CinetPayGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		siteID:     siteID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *CinetPayGateway) Provider() string { return "cinetpay" }

type cinetPayRequest struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	NotifyURL     string `json:"notify_url"`
	ReturnURL     string `json:"return_url"`
	Channels      string `json:"channels"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone_number,omitempty"`
	Metadata      string `json:"metadata,omitempty"`
}

type cinetPayResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	Data        struct {
		PaymentToken string `json:"payment_token"`
		PaymentURL   string `json:"payment_url"`
		Status       string `json:"status"`
		Metadata     string `json:"metadata"`
		OperatorID   string `json:"operator_id"`
	} `json:"data"`
}

func (g *CinetPayGateway) post(ctx context.Context, path string, in interface{}) (*cinetPayResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cinetpay: %w", err)
	}
	defer resp.Body.Close()

	var out cinetPayResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("cinetpay: decode response: %w", err)
	}
	return &out, nil
}

func (g *CinetPayGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if err := validate(req); err != nil {
		return CheckoutSession{}, err
	}

	// CinetPay only accepts whole amounts (XOF/XAF/GNF)
	if !req.Amount.Equal(req.Amount.Truncate(0)) {
		return CheckoutSession{}, fmt.Errorf("%w: cinetpay accepts whole amounts only, got %s", ErrInvalidAmount, req.Amount.String())
	}

	var metadata string
	if len(req.Metadata) > 0 {
		b, err := json.Marshal(req.Metadata)
		if err != nil {
			return CheckoutSession{}, err
		}
		metadata = string(b)
	}

	out, err := g.post(ctx, "/v2/payment", cinetPayRequest{
		APIKey:        g.apiKey,
		SiteID:        g.siteID,
		TransactionID: req.Reference,
		Amount:        req.Amount.IntPart(),
		Currency:      strings.ToUpper(req.Currency),
		Description:   req.Description,
		NotifyURL:     req.NotifyURL,
		ReturnURL:     req.SuccessURL,
		Channels:      "ALL",
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Metadata:      metadata,
	})
	if err != nil {
		return CheckoutSession{}, err
	}
	if out.Code != cinetPayCodeCreated || out.Data.PaymentURL == "" {
		return CheckoutSession{}, fmt.Errorf("%w: cinetpay %s %s", ErrProviderRejected, out.Code, out.Message)
	}
	return CheckoutSession{ProviderReference: out.Data.PaymentToken, RedirectURL: out.Data.PaymentURL}, nil
}

type cinetPayCheck struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
}

// transactionID reads cpm_trans_id from a form or JSON notification body.
func transactionID(payload []byte, headers http.Header) string {
	if strings.HasPrefix(headers.Get("Content-Type"), "application/json") {
		var body struct {
			TransID string `json:"cpm_trans_id"`
		}
		if err := json.Unmarshal(payload, &body); err == nil {
			return body.TransID
		}
		return ""
	}
	form, err := url.ParseQuery(string(payload))
	if err != nil {
		return ""
	}
	return form.Get("cpm_trans_id")
}

func (g *CinetPayGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	ref := transactionID(payload, headers)
	if ref == "" {
		return nil, ErrMissingReference
	}

	out, err := g.post(ctx, "/v2/payment/check", cinetPayCheck{
		APIKey:        g.apiKey,
		SiteID:        g.siteID,
		TransactionID: ref,
	})
	if err != nil {
		return nil, err
	}

	event := &WebhookEvent{Reference: ref, ProviderReference: out.Data.OperatorID}
	if out.Data.Metadata != "" {
		var meta map[string]string
		if json.Unmarshal([]byte(out.Data.Metadata), &meta) == nil {
			event.Metadata = meta
		}
	}

	switch out.Code {
	case cinetPayCodeSuccess:
		event.Status = EventSuccess
	case cinetPayCodeWaiting:
		return nil, ErrIgnoredEvent
	default:
		event.Status = EventFailure
		event.FailureReason = fmt.Sprintf("cinetpay %s %s", out.Code, out.Message)
	}
	return event, nil
}
