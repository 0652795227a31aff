package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/billing"
)

type BillingService struct {
	client        *billing.Client
	users         *UserService
	webhookSecret string
	log           zerolog.Logger
}

func NewBillingService(client *billing.Client, users *UserService, webhookSecret string, log zerolog.Logger) *BillingService {
	return &BillingService{
		client:        client,
		users:         users,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// CreateCheckout returns the provider-hosted checkout URL for the user.
func (s *BillingService) CreateCheckout(ctx context.Context, userID uint, priceID string) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}
	return s.client.CreateCheckout(ctx, priceID, userID)
}

// HandleWebhook verifies and applies one billing webhook delivery. An
// invalid signature produces no mutation. Subscription create/update/active
// events patch the user referenced in checkout metadata; everything else is
// logged and ignored.
func (s *BillingService) HandleWebhook(payload []byte, msgID, timestamp, signature string) error {
	if err := billing.VerifySignature(s.webhookSecret, payload, msgID, timestamp, signature); err != nil {
		return err
	}

	event, err := billing.ParseEvent(payload)
	if err != nil {
		return err
	}

	if !event.IsSubscriptionUpdate() {
		s.log.Info().Str("event_type", event.Type).Msg("ignoring billing event")
		return nil
	}
	if event.Data.Metadata.UserID == "" {
		s.log.Warn().Str("event_type", event.Type).Msg("billing event missing userId metadata")
		return nil
	}

	if err := s.users.UpdateSubscription(event.Data.Metadata.UserID, event.Data.ID, event.Data.Status); err != nil {
		return err
	}
	s.log.Info().
		Str("event_type", event.Type).
		Str("subscription_id", event.Data.ID).
		Str("status", event.Data.Status).
		Msg("subscription updated")
	return nil
}
