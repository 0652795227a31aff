package app

import (
	"context"
	"strings"
	"time"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ratelimit"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// DailyChatService runs the per-entry reflection conversations: the same
// reply pipeline as session chat, scoped to a single journal entry.
type DailyChatService struct {
	chatRepo  *repository.DailyChatRepository
	entryRepo *repository.EntryRepository
	tasks     *TaskService
	limiter   *ratelimit.Limiter
	limits    Limits
}

func NewDailyChatService(
	chatRepo *repository.DailyChatRepository,
	entryRepo *repository.EntryRepository,
	tasks *TaskService,
	limiter *ratelimit.Limiter,
	limits Limits,
) *DailyChatService {
	return &DailyChatService{
		chatRepo:  chatRepo,
		entryRepo: entryRepo,
		tasks:     tasks,
		limiter:   limiter,
		limits:    limits,
	}
}

// Create opens the single chat allowed for an entry.
func (s *DailyChatService) Create(userID, entryID uint, personaID string) (*model.DailyChat, error) {
	if userID == 0 || entryID == 0 || personaID == "" {
		return nil, ErrInvalidInput
	}

	entry, err := s.entryRepo.GetByIDAndUserID(entryID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	existing, err := s.chatRepo.GetByEntryID(entryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChatExists
	}

	chat := &model.DailyChat{
		UserID:    userID,
		EntryID:   entryID,
		PersonaID: personaID,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *DailyChatService) Get(userID, chatID uint) (*model.DailyChat, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}
	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *DailyChatService) GetByEntry(userID, entryID uint) (*model.DailyChat, error) {
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
	chat, err := s.chatRepo.GetByEntryID(entryID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *DailyChatService) List(userID uint) ([]model.DailyChat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chatRepo.ListByUserID(userID)
}

func (s *DailyChatService) ListMessages(userID, chatID uint) ([]model.DailyChatMessage, error) {
	if _, err := s.Get(userID, chatID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(chatID)
}

// SendMessage persists the user's turn and schedules the daily-reflection
// reply, or stores the rate-limit notice when the budget is spent.
func (s *DailyChatService) SendMessage(ctx context.Context, userID, chatID uint, content string) (*model.DailyChatMessage, error) {
	chat, err := s.Get(userID, chatID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(sanitizeInput(content))
	if content == "" {
		return nil, ErrMessageEmpty
	}

	userMessage := &model.DailyChatMessage{
		ChatID:    chat.ID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.CreateMessage(userMessage); err != nil {
		return nil, err
	}

	res, err := s.limiter.Allow(userID, ratelimit.ActionDailyReflection, s.limits.DailyReflection)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		notice := &model.DailyChatMessage{
			ChatID:    chat.ID,
			Role:      model.RoleAssistant,
			Content:   RateLimitMessage,
			CreatedAt: time.Now(),
		}
		if err := s.chatRepo.CreateMessage(notice); err != nil {
			return nil, err
		}
		return userMessage, nil
	}

	if _, err := s.tasks.Enqueue(ctx, model.Task{
		Type:   model.TaskGenerateDailyReply,
		UserID: userID,
		ChatID: chat.ID,
	}); err != nil {
		return nil, err
	}
	return userMessage, nil
}
