package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WhatsAppChannel sends text messages through the WhatsApp Cloud API.
type WhatsAppChannel struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

func NewWhatsAppChannel(baseURL, phoneNumberID, accessToken string) *WhatsAppChannel {
	return &WhatsAppChannel{
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WhatsAppChannel) Name() string { return "whatsapp" }

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

func (w *WhatsAppChannel) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return ErrNoRecipient
	}

	payload, err := json.Marshal(whatsAppRequest{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(msg.Phone, "+"),
		Type:             "text",
		Text:             whatsAppText{Body: msg.Body},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
