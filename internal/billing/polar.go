// Package billing integrates the Polar billing provider: checkout creation
// over its REST API and verification of its Standard Webhooks deliveries.
package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("invalid webhook signature")
)

type Config struct {
	BaseURL       string
	AccessToken   string
	PriceID       string
	WebhookSecret string
	SuccessURL    string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckout opens a checkout for the given price and tags it with the
// user id so the webhook can route the resulting subscription back.
func (c *Client) CreateCheckout(ctx context.Context, priceID string, userID uint) (string, error) {
	if c.cfg.AccessToken == "" {
		return "", fmt.Errorf("missing billing access token")
	}
	if priceID == "" {
		priceID = c.cfg.PriceID
	}
	if priceID == "" {
		return "", fmt.Errorf("price id required")
	}

	reqBody := map[string]interface{}{
		"products":    []string{priceID},
		"success_url": c.cfg.SuccessURL + "?payment=success",
		"metadata": map[string]interface{}{
			"userId": fmt.Sprintf("%d", userID),
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal checkout request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/checkouts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build checkout request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read checkout response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("checkout response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse checkout json failed: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("checkout response missing url")
	}
	return parsed.URL, nil
}

// SubscriptionEvent is the subset of a Polar webhook payload the core
// consumes.
type SubscriptionEvent struct {
	Type string `json:"type"`
	Data struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Metadata struct {
			UserID string `json:"userId"`
		} `json:"metadata"`
	} `json:"data"`
}

// VerifySignature checks a Standard Webhooks delivery: the signature is
// HMAC-SHA256 over "{id}.{timestamp}.{payload}" with the base64 part of
// the shared secret, compared in constant time. The header may carry
// several space-separated "v1,<sig>" candidates.
func VerifySignature(secret string, payload []byte, msgID, timestamp, signatureHeader string) error {
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return ErrMissingSignature
	}

	key := []byte(secret)
	if rest, ok := strings.CutPrefix(secret, "whsec_"); ok {
		decoded, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return fmt.Errorf("decode webhook secret failed: %w", err)
		}
		key = decoded
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(signatureHeader) {
		sig, ok := strings.CutPrefix(candidate, "v1,")
		if !ok {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1 {
			return nil
		}
	}
	return ErrBadSignature
}

// ParseEvent decodes a verified payload.
func ParseEvent(payload []byte) (*SubscriptionEvent, error) {
	var event SubscriptionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse webhook payload failed: %w", err)
	}
	return &event, nil
}

// IsSubscriptionUpdate reports whether the event type mutates subscription
// state on our side.
func (e *SubscriptionEvent) IsSubscriptionUpdate() bool {
	switch e.Type {
	case "subscription.created", "subscription.updated", "subscription.active":
		return true
	}
	return false
}
