package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func signPayload(secret string, payload []byte, msgID, timestamp string) string {
	key := []byte(secret)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValid(t *testing.T) {
	payload := []byte(`{"type":"subscription.created"}`)
	sig := signPayload("topsecret", payload, "msg_1", "1700000000")

	if err := VerifySignature("topsecret", payload, "msg_1", "1700000000", sig); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestVerifySignatureDecodesPrefixedSecret(t *testing.T) {
	rawKey := []byte("whsec-raw-key-bytes")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(rawKey)

	payload := []byte(`{}`)
	mac := hmac.New(sha256.New, rawKey)
	fmt.Fprintf(mac, "%s.%s.%s", "m1", "123", payload)
	sig := "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if err := VerifySignature(secret, payload, "m1", "123", sig); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestVerifySignatureAcceptsAnyOfMultipleCandidates(t *testing.T) {
	payload := []byte(`{}`)
	good := signPayload("s", payload, "m1", "1")

	header := "v1,bm90LXRoaXMtb25l " + good
	if err := VerifySignature("s", payload, "m1", "1", header); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	payload := []byte(`{"type":"subscription.created"}`)
	sig := signPayload("topsecret", payload, "msg_1", "1700000000")

	if err := VerifySignature("topsecret", payload, "msg_1", "1700000000", ""); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("missing header: err = %v, want ErrMissingSignature", err)
	}
	if err := VerifySignature("wrong", payload, "msg_1", "1700000000", sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("wrong secret: err = %v, want ErrBadSignature", err)
	}
	if err := VerifySignature("topsecret", []byte(`{"tampered":true}`), "msg_1", "1700000000", sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("tampered payload: err = %v, want ErrBadSignature", err)
	}
	if err := VerifySignature("topsecret", payload, "msg_2", "1700000000", sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("wrong msg id: err = %v, want ErrBadSignature", err)
	}
}

func TestParseEventAndSubscriptionUpdate(t *testing.T) {
	payload := []byte(`{
		"type": "subscription.active",
		"data": {
			"id": "sub_123",
			"status": "active",
			"metadata": {"userId": "42"}
		}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !event.IsSubscriptionUpdate() {
		t.Fatal("subscription.active should be an update")
	}
	if event.Data.ID != "sub_123" || event.Data.Status != "active" || event.Data.Metadata.UserID != "42" {
		t.Fatalf("event = %+v", event)
	}

	other, err := ParseEvent([]byte(`{"type":"order.created"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if other.IsSubscriptionUpdate() {
		t.Fatal("order.created is not a subscription update")
	}
}

func TestCreateCheckoutRequestShape(t *testing.T) {
	var captured map[string]interface{}
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkouts" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode checkout body failed: %v", err)
		}
		fmt.Fprint(w, `{"url":"https://polar.sh/checkout/abc"}`)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:     server.URL,
		AccessToken: "token",
		SuccessURL:  "https://journal.example",
	})

	url, err := client.CreateCheckout(context.Background(), "price_1", 42)
	if err != nil {
		t.Fatalf("create checkout failed: %v", err)
	}
	if url != "https://polar.sh/checkout/abc" {
		t.Fatalf("url = %q", url)
	}
	if auth != "Bearer token" {
		t.Fatalf("authorization = %q", auth)
	}

	products, ok := captured["products"].([]interface{})
	if !ok || len(products) != 1 || products[0] != "price_1" {
		t.Fatalf("products = %v", captured["products"])
	}
	metadata, ok := captured["metadata"].(map[string]interface{})
	if !ok || metadata["userId"] != "42" {
		t.Fatalf("metadata = %v", captured["metadata"])
	}
	successURL, _ := captured["success_url"].(string)
	if successURL != "https://journal.example?payment=success" {
		t.Fatalf("success_url = %q", successURL)
	}
}
