package payment

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type FlutterwaveGateway struct {
	baseURL    string
	secretKey  string
	secretHash string
	httpClient *http.Client
}

func NewFlutterwaveGateway(baseURL, secretKey, secretHash string) *FlutterwaveGateway {
	return &FlutterwaveGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		secretHash: secretHash,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *FlutterwaveGateway) Provider() string { return "flutterwave" }

type flwCustomer struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
}

type flwCustomizations struct {
	Title string `json:"title"`
}

type flwPaymentRequest struct {
	TxRef          string            `json:"tx_ref"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	RedirectURL    string            `json:"redirect_url"`
	Customer       flwCustomer       `json:"customer"`
	Meta           map[string]string `json:"meta,omitempty"`
	Customizations flwCustomizations `json:"customizations"`
}

type flwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (g *FlutterwaveGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if err := validate(req); err != nil {
		return CheckoutSession{}, err
	}

	body, err := json.Marshal(flwPaymentRequest{
		TxRef:       req.Reference,
		Amount:      req.Amount.StringFixed(2),
		Currency:    strings.ToUpper(req.Currency),
		RedirectURL: req.SuccessURL,
		Customer: flwCustomer{
			Email:       req.CustomerEmail,
			Name:        req.CustomerName,
			PhoneNumber: req.CustomerPhone,
		},
		Meta:           req.Metadata,
		Customizations: flwCustomizations{Title: req.Description},
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v3/payments", bytes.NewReader(body))
	if err != nil {
		return CheckoutSession{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("flutterwave: %w", err)
	}
	defer resp.Body.Close()

	var out flwPaymentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return CheckoutSession{}, fmt.Errorf("flutterwave: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || out.Status != "success" || out.Data.Link == "" {
		return CheckoutSession{}, fmt.Errorf("%w: flutterwave %d %s", ErrProviderRejected, resp.StatusCode, out.Message)
	}

	return CheckoutSession{ProviderReference: req.Reference, RedirectURL: out.Data.Link}, nil
}

type flwWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ID            int64             `json:"id"`
		TxRef         string            `json:"tx_ref"`
		FlwRef        string            `json:"flw_ref"`
		Status        string            `json:"status"`
		ProcessorResp string            `json:"processor_response"`
		Meta          map[string]string `json:"meta"`
	} `json:"data"`
	// Older webhook versions put meta at the top level.
	MetaData map[string]string `json:"meta_data"`
}

func (g *FlutterwaveGateway) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error) {
	hash := headers.Get("verif-hash")
	if g.secretHash == "" || subtle.ConstantTimeCompare([]byte(hash), []byte(g.secretHash)) != 1 {
		return nil, ErrInvalidSignature
	}

	var wh flwWebhook
	if err := json.Unmarshal(payload, &wh); err != nil {
		return nil, fmt.Errorf("decode flutterwave webhook: %w", err)
	}
	if wh.Data.TxRef == "" {
		return nil, ErrMissingReference
	}

	meta := wh.Data.Meta
	if meta == nil {
		meta = wh.MetaData
	}

	event := &WebhookEvent{
		Reference:         wh.Data.TxRef,
		ProviderReference: strconv.FormatInt(wh.Data.ID, 10),
		Metadata:          meta,
	}
	switch strings.ToLower(wh.Data.Status) {
	case "successful":
		event.Status = EventSuccess
	case "pending":
		return nil, ErrIgnoredEvent
	default:
		event.Status = EventFailure
		event.FailureReason = wh.Data.ProcessorResp
		if event.FailureReason == "" {
			event.FailureReason = "flutterwave status " + wh.Data.Status
		}
	}
	return event, nil
}
