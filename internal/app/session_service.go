package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ai"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ratelimit"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// Limits carries the per-action daily ceilings on paid AI calls.
type Limits struct {
	Transcription   int
	Analysis        int
	ChatReply       int
	DailyReflection int
}

// AudioStore is the object-storage contract for voice recordings.
type AudioStore interface {
	NewUploadURL(ctx context.Context, userID uint) (key string, url string, err error)
	ResolveURL(ctx context.Context, key string) (string, error)
}

type SessionService struct {
	sessionRepo   *repository.SessionRepository
	messageRepo   *repository.MessageRepository
	tasks         *TaskService
	limiter       *ratelimit.Limiter
	store         AudioStore
	aiClient      *ai.Client
	transcribeCfg ai.TranscribeConfig
	limits        Limits
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	tasks *TaskService,
	limiter *ratelimit.Limiter,
	store AudioStore,
	aiClient *ai.Client,
	transcribeCfg ai.TranscribeConfig,
	limits Limits,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		messageRepo:   messageRepo,
		tasks:         tasks,
		limiter:       limiter,
		store:         store,
		aiClient:      aiClient,
		transcribeCfg: transcribeCfg,
		limits:        limits,
	}
}

func (s *SessionService) Create(userID uint, personaID string) (*model.Session, error) {
	if userID == 0 || personaID == "" {
		return nil, ErrInvalidInput
	}
	session := &model.Session{
		UserID:    userID,
		PersonaID: personaID,
		Status:    model.SessionPending,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(userID, sessionID uint) (*model.Session, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) List(userID uint) ([]model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(userID)
}

// NewUploadURL mints a presigned PUT for the session's recording.
func (s *SessionService) NewUploadURL(ctx context.Context, userID, sessionID uint) (key string, url string, err error) {
	if _, err := s.Get(userID, sessionID); err != nil {
		return "", "", err
	}
	return s.store.NewUploadURL(ctx, userID)
}

// SaveAudio resolves an uploaded object key to a fetchable URL, records it
// on the session, and moves a pending session into interviewing.
func (s *SessionService) SaveAudio(ctx context.Context, userID, sessionID uint, storageKey string) (string, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return "", err
	}
	if storageKey == "" {
		return "", ErrInvalidInput
	}

	url, err := s.store.ResolveURL(ctx, storageKey)
	if err != nil {
		return "", err
	}
	if err := s.sessionRepo.SaveAudioURL(sessionID, url); err != nil {
		return "", err
	}
	if session.Status == model.SessionPending {
		if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionInterviewing); err != nil {
			return "", err
		}
	}
	return url, nil
}

// AnswerQuestion transcribes one recorded answer and appends the
// question/answer pair to the session transcript.
func (s *SessionService) AnswerQuestion(ctx context.Context, userID, sessionID uint, question, storageKey string) (string, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status == model.SessionCompleted || session.Status == model.SessionAnalyzing {
		return "", ErrSessionNotPending
	}
	question = strings.TrimSpace(question)
	if question == "" || storageKey == "" {
		return "", ErrInvalidInput
	}

	res, err := s.limiter.Allow(userID, ratelimit.ActionTranscription, s.limits.Transcription)
	if err != nil {
		return "", err
	}
	if !res.Allowed {
		return "", ErrRateLimited
	}

	audioURL, err := s.store.ResolveURL(ctx, storageKey)
	if err != nil {
		return "", err
	}
	answer, err := s.aiClient.Transcribe(ctx, s.transcribeCfg, audioURL)
	if err != nil {
		return "", err
	}

	block := fmt.Sprintf("Q: %s\nA: %s", question, answer)
	if err := s.sessionRepo.AppendTranscript(sessionID, block); err != nil {
		return "", err
	}
	if session.Status == model.SessionPending {
		if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionInterviewing); err != nil {
			return "", err
		}
	}
	return answer, nil
}

// RequestAnalysis moves the session into analyzing and schedules the
// analysis task. The UI observes completion through re-queries.
func (s *SessionService) RequestAnalysis(ctx context.Context, userID, sessionID uint) (*model.Task, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, ErrSessionNotPending
	}

	res, err := s.limiter.Allow(userID, ratelimit.ActionAnalysis, s.limits.Analysis)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, ErrRateLimited
	}

	if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionAnalyzing); err != nil {
		return nil, err
	}

	task, err := s.tasks.Enqueue(ctx, model.Task{
		Type:      model.TaskAnalyzeSession,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		// Do not strand the session in analyzing when nothing is queued.
		_ = s.sessionRepo.UpdateStatus(sessionID, session.Status)
		return nil, err
	}
	return task, nil
}

// SendMessage persists the user's turn and schedules reply generation.
// When the daily budget is exhausted the canned notice becomes the
// assistant turn instead of an AI call.
func (s *SessionService) SendMessage(ctx context.Context, userID, sessionID uint, content string) (*model.Message, error) {
	if _, err := s.Get(userID, sessionID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(sanitizeInput(content))
	if content == "" {
		return nil, ErrMessageEmpty
	}

	userMessage := &model.Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}

	res, err := s.limiter.Allow(userID, ratelimit.ActionChatReply, s.limits.ChatReply)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		notice := &model.Message{
			SessionID: sessionID,
			UserID:    userID,
			Role:      model.RoleAssistant,
			Content:   RateLimitMessage,
			CreatedAt: time.Now(),
		}
		if err := s.messageRepo.Create(notice); err != nil {
			return nil, err
		}
		return userMessage, nil
	}

	if _, err := s.tasks.Enqueue(ctx, model.Task{
		Type:      model.TaskGenerateReply,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return nil, err
	}
	return userMessage, nil
}

func (s *SessionService) ListMessages(userID, sessionID uint) ([]model.Message, error) {
	if _, err := s.Get(userID, sessionID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListBySessionID(sessionID)
}
