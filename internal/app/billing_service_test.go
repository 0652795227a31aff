package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/billing"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

const webhookSecret = "test-webhook-secret"

func newBillingService(t *testing.T) (*BillingService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t, &model.User{})
	users := NewUserService(repository.NewUserRepository(db), email.NewClient(email.Config{}), zerolog.Nop())
	svc := NewBillingService(billing.NewClient(billing.Config{}), users, webhookSecret, zerolog.Nop())
	return svc, db
}

func sign(payload []byte, msgID, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func subscriptionPayload(userID uint, subscriptionID, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"subscription.active","data":{"id":%q,"status":%q,"metadata":{"userId":"%d"}}}`,
		subscriptionID, status, userID,
	))
}

func TestWebhookActivatesSubscription(t *testing.T) {
	svc, db := newBillingService(t)
	user := &model.User{TokenIdentifier: "tok-bill", SubscriptionStatus: model.SubscriptionFree}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	payload := subscriptionPayload(user.ID, "sub_123", "active")
	msgID, ts := "msg_1", "1741500000"
	if err := svc.HandleWebhook(payload, msgID, ts, sign(payload, msgID, ts)); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}

	var got model.User
	if err := db.First(&got, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if got.SubscriptionID != "sub_123" || got.SubscriptionStatus != "active" {
		t.Fatalf("user after webhook = %+v", got)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, db := newBillingService(t)
	user := &model.User{TokenIdentifier: "tok-bill", SubscriptionStatus: model.SubscriptionFree}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	payload := subscriptionPayload(user.ID, "sub_123", "active")
	err := svc.HandleWebhook(payload, "msg_1", "1741500000", "v1,AAAA")
	if !errors.Is(err, billing.ErrBadSignature) {
		t.Fatalf("handle err = %v, want ErrBadSignature", err)
	}

	var got model.User
	if err := db.First(&got, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if got.SubscriptionStatus != model.SubscriptionFree || got.SubscriptionID != "" {
		t.Fatalf("rejected webhook mutated user: %+v", got)
	}
}

func TestWebhookRequiresSignature(t *testing.T) {
	svc, _ := newBillingService(t)

	payload := subscriptionPayload(1, "sub_123", "active")
	if err := svc.HandleWebhook(payload, "msg_1", "1741500000", ""); !errors.Is(err, billing.ErrMissingSignature) {
		t.Fatalf("handle err = %v, want ErrMissingSignature", err)
	}
}

func TestWebhookIgnoresUnrelatedEvents(t *testing.T) {
	svc, db := newBillingService(t)
	user := &model.User{TokenIdentifier: "tok-bill", SubscriptionStatus: model.SubscriptionFree}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	payload := []byte(fmt.Sprintf(
		`{"type":"order.created","data":{"id":"ord_1","status":"paid","metadata":{"userId":"%d"}}}`, user.ID,
	))
	msgID, ts := "msg_2", "1741500000"
	if err := svc.HandleWebhook(payload, msgID, ts, sign(payload, msgID, ts)); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}

	var got model.User
	if err := db.First(&got, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if got.SubscriptionStatus != model.SubscriptionFree {
		t.Fatalf("order event mutated subscription: %+v", got)
	}
}

func TestWebhookUnknownUser(t *testing.T) {
	svc, _ := newBillingService(t)

	payload := subscriptionPayload(404, "sub_404", "active")
	msgID, ts := "msg_3", "1741500000"
	if err := svc.HandleWebhook(payload, msgID, ts, sign(payload, msgID, ts)); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("handle err = %v, want ErrUserNotFound", err)
	}
}
