package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

const cycleLength = 7

// EntryCache is the journal-context cache contract. A nil cache disables
// caching entirely.
type EntryCache interface {
	GetEntries(ctx context.Context, userID uint) ([]model.Entry, bool, error)
	SetEntries(ctx context.Context, userID uint, entries []model.Entry) error
	Invalidate(ctx context.Context, userID uint) error
}

type JournalService struct {
	entryRepo *repository.EntryRepository
	cache     EntryCache
	mailer    *email.Client
	log       zerolog.Logger
}

func NewJournalService(entryRepo *repository.EntryRepository, cache EntryCache, mailer *email.Client, log zerolog.Logger) *JournalService {
	return &JournalService{
		entryRepo: entryRepo,
		cache:     cache,
		mailer:    mailer,
		log:       log,
	}
}

type CreateEntryInput struct {
	User    *model.User
	Title   string
	Content string
	Date    string
}

// CreateEntry saves a day of journaling. The day number is derived from
// the user's entry count, cycling 1..7 and wrapping silently.
func (s *JournalService) CreateEntry(input CreateEntryInput) (*model.Entry, error) {
	if input.User == nil {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(sanitizeInput(input.Content))
	if content == "" {
		return nil, ErrInvalidInput
	}
	date := input.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidInput
	}

	count, err := s.entryRepo.CountByUserID(input.User.ID)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		UserID:    input.User.ID,
		Title:     strings.TrimSpace(sanitizeInput(input.Title)),
		Content:   content,
		Date:      date,
		DayNumber: int(count%cycleLength) + 1,
	}
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, err
	}

	s.invalidate(input.User.ID)

	if entry.DayNumber == cycleLength && s.mailer.Configured() && input.User.Email != "" {
		if err := s.mailer.SendCycleCompletion(context.Background(), input.User.Email, input.User.Name); err != nil {
			s.log.Error().Err(err).Uint("user_id", input.User.ID).Msg("send cycle completion email failed")
		}
	}
	return entry, nil
}

// ListEntries returns the user's journal newest first, served from the
// context cache when it is warm.
func (s *JournalService) ListEntries(userID uint) ([]model.Entry, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.GetEntries(context.Background(), userID); err == nil && ok {
			return cached, nil
		}
	}

	entries, err := s.entryRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEntries(context.Background(), userID, entries); err != nil {
			s.log.Debug().Err(err).Uint("user_id", userID).Msg("warm entry cache failed")
		}
	}
	return entries, nil
}

func (s *JournalService) GetEntry(userID, entryID uint) (*model.Entry, error) {
	if userID == 0 || entryID == 0 {
		return nil, ErrInvalidInput
	}
	entry, err := s.entryRepo.GetByIDAndUserID(entryID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (s *JournalService) UpdateEntry(userID, entryID uint, title, content string) (*model.Entry, error) {
	if userID == 0 || entryID == 0 {
		return nil, ErrInvalidInput
	}
	content = strings.TrimSpace(sanitizeInput(content))
	if content == "" {
		return nil, ErrInvalidInput
	}

	entry, err := s.entryRepo.GetByIDAndUserID(entryID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	fields := map[string]interface{}{
		"title":   strings.TrimSpace(sanitizeInput(title)),
		"content": content,
	}
	if err := s.entryRepo.Updates(entryID, userID, fields); err != nil {
		return nil, err
	}

	s.invalidate(userID)
	return s.entryRepo.GetByIDAndUserID(entryID, userID)
}

func (s *JournalService) DeleteEntry(userID, entryID uint) error {
	if userID == 0 || entryID == 0 {
		return ErrInvalidInput
	}
	entry, err := s.entryRepo.GetByIDAndUserID(entryID, userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}
	if err := s.entryRepo.DeleteByIDAndUserID(entryID, userID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *JournalService) invalidate(userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.Background(), userID); err != nil {
		s.log.Debug().Err(err).Uint("user_id", userID).Msg("invalidate entry cache failed")
	}
}
