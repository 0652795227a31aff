package app

import (
	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ratelimit"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// AccountService implements whole-account export and deletion. Deletion is
// a sequential cascade with no cross-step transaction; a crash mid-way
// leaves partial data, which the domain tolerates.
type AccountService struct {
	userRepo    *repository.UserRepository
	entryRepo   *repository.EntryRepository
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
	chatRepo    *repository.DailyChatRepository
	taskRepo    *repository.TaskRepository
	limiter     *ratelimit.Limiter
	log         zerolog.Logger
}

func NewAccountService(
	userRepo *repository.UserRepository,
	entryRepo *repository.EntryRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	chatRepo *repository.DailyChatRepository,
	taskRepo *repository.TaskRepository,
	limiter *ratelimit.Limiter,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		entryRepo:   entryRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		taskRepo:    taskRepo,
		limiter:     limiter,
		log:         log,
	}
}

type SessionExport struct {
	Session  model.Session   `json:"session"`
	Messages []model.Message `json:"messages"`
}

type DailyChatExport struct {
	Chat     model.DailyChat          `json:"chat"`
	Messages []model.DailyChatMessage `json:"messages"`
}

type AccountExport struct {
	User       *model.User       `json:"user"`
	Entries    []model.Entry     `json:"entries"`
	Sessions   []SessionExport   `json:"sessions"`
	DailyChats []DailyChatExport `json:"daily_chats"`
}

// Export aggregates everything the user owns into one object for
// client-side download.
func (s *AccountService) Export(userID uint) (*AccountExport, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	entries, err := s.entryRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	sessionExports := make([]SessionExport, 0, len(sessions))
	for _, session := range sessions {
		messages, err := s.messageRepo.ListBySessionID(session.ID)
		if err != nil {
			return nil, err
		}
		sessionExports = append(sessionExports, SessionExport{Session: session, Messages: messages})
	}

	chats, err := s.chatRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	chatExports := make([]DailyChatExport, 0, len(chats))
	for _, chat := range chats {
		messages, err := s.chatRepo.ListMessages(chat.ID)
		if err != nil {
			return nil, err
		}
		chatExports = append(chatExports, DailyChatExport{Chat: chat, Messages: messages})
	}

	return &AccountExport{
		User:       user,
		Entries:    entries,
		Sessions:   sessionExports,
		DailyChats: chatExports,
	}, nil
}

// Delete removes every record the user owns, then the user row itself.
func (s *AccountService) Delete(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	sessions, err := s.sessionRepo.ListByUserID(userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.messageRepo.DeleteBySessionID(session.ID); err != nil {
			return err
		}
	}
	if err := s.sessionRepo.DeleteByUserID(userID); err != nil {
		return err
	}

	chats, err := s.chatRepo.ListByUserID(userID)
	if err != nil {
		return err
	}
	for _, chat := range chats {
		if err := s.chatRepo.DeleteMessagesByChatID(chat.ID); err != nil {
			return err
		}
	}
	if err := s.chatRepo.DeleteByUserID(userID); err != nil {
		return err
	}

	if err := s.entryRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.taskRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.limiter.DeleteByUserID(userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}

	s.log.Info().Uint("user_id", userID).Msg("account deleted")
	return nil
}
