package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/pkg/jwtutil"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
	mailer   *email.Client
	log      zerolog.Logger
}

func NewUserService(userRepo *repository.UserRepository, mailer *email.Client, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		log:      log,
	}
}

// Sync upserts the user row for a verified identity. Called by the client
// after every sign-in; the first call creates the row and sends the
// welcome email (best effort).
func (s *UserService) Sync(ctx context.Context, identity *jwtutil.IdentityClaims) (*model.User, error) {
	if identity == nil || identity.TokenIdentifier() == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByToken(identity.TokenIdentifier())
	if err != nil {
		return nil, err
	}
	if user != nil {
		if identity.Name != "" && user.Name != identity.Name {
			if err := s.userRepo.Updates(user.ID, map[string]interface{}{"name": identity.Name}); err != nil {
				return nil, err
			}
			user.Name = identity.Name
		}
		return user, nil
	}

	user = &model.User{
		TokenIdentifier:      identity.TokenIdentifier(),
		Name:                 identity.Name,
		Email:                strings.ToLower(identity.Email),
		SubscriptionStatus:   model.SubscriptionFree,
		NotificationsEnabled: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if s.mailer.Configured() && user.Email != "" {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("send welcome email failed")
		}
	}
	return user, nil
}

func (s *UserService) GetByToken(token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name                 *string
	DefaultPersonaID     *string
	NotificationsEnabled *bool
	OnboardingCompleted  *bool
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.DefaultPersonaID != nil {
		fields["default_persona_id"] = *input.DefaultPersonaID
	}
	if input.NotificationsEnabled != nil {
		fields["notifications_enabled"] = *input.NotificationsEnabled
	}
	if input.OnboardingCompleted != nil {
		fields["onboarding_completed"] = *input.OnboardingCompleted
	}
	if len(fields) > 0 {
		if err := s.userRepo.Updates(userID, fields); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetByID(userID)
}

// UpdateSubscription applies a verified billing webhook event. The user id
// arrives as string metadata set at checkout time.
func (s *UserService) UpdateSubscription(rawUserID, subscriptionID, status string) error {
	userID64, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil || userID64 == 0 {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(uint(userID64))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	fields := map[string]interface{}{
		"subscription_id":     subscriptionID,
		"subscription_status": status,
	}
	return s.userRepo.Updates(user.ID, fields)
}

func (s *UserService) UpdateSummary(userID uint, summary string) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.userRepo.Updates(userID, map[string]interface{}{"summary": summary})
}
