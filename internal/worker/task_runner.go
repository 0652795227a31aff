package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ai"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/persona"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// TaskRunner executes one background AI task: it owns prompt assembly,
// the completion call, and writing results back into the store. Retry
// bookkeeping lives in the consumer loop.
type TaskRunner struct {
	userRepo    *repository.UserRepository
	entryRepo   *repository.EntryRepository
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
	chatRepo    *repository.DailyChatRepository
	cache       app.EntryCache
	aiClient    *ai.Client
	chatCfg     ai.ChatConfig
	builder     *persona.Builder
	log         zerolog.Logger
}

func NewTaskRunner(
	userRepo *repository.UserRepository,
	entryRepo *repository.EntryRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	chatRepo *repository.DailyChatRepository,
	cache app.EntryCache,
	aiClient *ai.Client,
	chatCfg ai.ChatConfig,
	builder *persona.Builder,
	log zerolog.Logger,
) *TaskRunner {
	return &TaskRunner{
		userRepo:    userRepo,
		entryRepo:   entryRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		cache:       cache,
		aiClient:    aiClient,
		chatCfg:     chatCfg,
		builder:     builder,
		log:         log,
	}
}

func (r *TaskRunner) Run(ctx context.Context, task *model.Task) error {
	switch task.Type {
	case model.TaskAnalyzeSession:
		return r.analyzeSession(ctx, task)
	case model.TaskGenerateReply:
		return r.generateReply(ctx, task)
	case model.TaskGenerateDailyReply:
		return r.generateDailyReply(ctx, task)
	case model.TaskUpdateSummary:
		return r.updateSummary(ctx, task)
	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}

// Abandon applies the terminal-failure behavior once retries are spent:
// replies get the canned apology, an analysis hands the session back to
// the interview so the user can retrigger it.
func (r *TaskRunner) Abandon(task *model.Task) {
	switch task.Type {
	case model.TaskAnalyzeSession:
		if err := r.sessionRepo.UpdateStatus(task.SessionID, model.SessionInterviewing); err != nil {
			r.log.Error().Err(err).Str("task_id", task.ID).Msg("reset session after failed analysis")
		}
	case model.TaskGenerateReply:
		message := &model.Message{
			SessionID: task.SessionID,
			UserID:    task.UserID,
			Role:      model.RoleAssistant,
			Content:   app.ApologyMessage,
			CreatedAt: time.Now(),
		}
		if err := r.messageRepo.Create(message); err != nil {
			r.log.Error().Err(err).Str("task_id", task.ID).Msg("write apology message")
		}
	case model.TaskGenerateDailyReply:
		message := &model.DailyChatMessage{
			ChatID:    task.ChatID,
			Role:      model.RoleAssistant,
			Content:   app.ApologyMessage,
			CreatedAt: time.Now(),
		}
		if err := r.chatRepo.CreateMessage(message); err != nil {
			r.log.Error().Err(err).Str("task_id", task.ID).Msg("write daily apology message")
		}
	}
}

func (r *TaskRunner) analyzeSession(ctx context.Context, task *model.Task) error {
	session, err := r.sessionRepo.GetByIDAndUserID(task.SessionID, task.UserID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %d not found", task.SessionID)
	}

	entries, err := r.loadEntries(ctx, task.UserID)
	if err != nil {
		return err
	}

	prompt := r.builder.AnalysisPrompt(session.PersonaID, session.Transcript, entries)
	analysis, err := r.aiClient.Complete(ctx, r.chatCfg, []ai.ChatMessage{
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(analysis) == "" {
		analysis = "Could not generate analysis."
	}

	if err := r.sessionRepo.SaveAnalysis(session.ID, analysis); err != nil {
		return err
	}

	// Summary regeneration rides on the same run; its failure does not
	// fail the analysis.
	summaryTask := &model.Task{ID: task.ID, Type: model.TaskUpdateSummary, UserID: task.UserID, SessionID: task.SessionID}
	if err := r.updateSummary(ctx, summaryTask); err != nil {
		r.log.Error().Err(err).Uint("user_id", task.UserID).Msg("update user summary failed")
	}
	return nil
}

func (r *TaskRunner) updateSummary(ctx context.Context, task *model.Task) error {
	user, err := r.userRepo.GetByID(task.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d not found", task.UserID)
	}

	session, err := r.sessionRepo.GetByIDAndUserID(task.SessionID, task.UserID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %d not found", task.SessionID)
	}

	entries, err := r.loadEntries(ctx, task.UserID)
	if err != nil {
		return err
	}

	prompt := r.builder.SummaryPrompt(user.Summary, session.Analysis, session.Transcript, entries)
	summary, err := r.aiClient.Complete(ctx, r.chatCfg, []ai.ChatMessage{
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(summary) == "" {
		return nil
	}
	return r.userRepo.Updates(user.ID, map[string]interface{}{"summary": summary})
}

func (r *TaskRunner) generateReply(ctx context.Context, task *model.Task) error {
	session, err := r.sessionRepo.GetByIDAndUserID(task.SessionID, task.UserID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %d not found", task.SessionID)
	}

	user, err := r.userRepo.GetByID(task.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d not found", task.UserID)
	}

	entries, err := r.loadEntries(ctx, task.UserID)
	if err != nil {
		return err
	}
	history, err := r.messageRepo.ListBySessionID(session.ID)
	if err != nil {
		return err
	}

	turns := r.builder.ChatMessages(session.PersonaID, user.Summary, entries, history)
	reply, err := r.aiClient.Complete(ctx, r.chatCfg, toChatMessages(turns))
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply) == "" {
		reply = "(No response)"
	}

	return r.messageRepo.Create(&model.Message{
		SessionID: session.ID,
		UserID:    task.UserID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
}

func (r *TaskRunner) generateDailyReply(ctx context.Context, task *model.Task) error {
	chat, err := r.chatRepo.GetByIDAndUserID(task.ChatID, task.UserID)
	if err != nil {
		return err
	}
	if chat == nil {
		return fmt.Errorf("daily chat %d not found", task.ChatID)
	}

	user, err := r.userRepo.GetByID(task.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d not found", task.UserID)
	}

	entry, err := r.entryRepo.GetByIDAndUserID(chat.EntryID, task.UserID)
	if err != nil {
		return err
	}
	history, err := r.chatRepo.ListMessages(chat.ID)
	if err != nil {
		return err
	}

	turns := r.builder.DailyChatMessages(chat.PersonaID, user.Summary, entry, history)
	reply, err := r.aiClient.Complete(ctx, r.chatCfg, toChatMessages(turns))
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply) == "" {
		reply = "(No response)"
	}

	return r.chatRepo.CreateMessage(&model.DailyChatMessage{
		ChatID:    chat.ID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
}

func (r *TaskRunner) loadEntries(ctx context.Context, userID uint) ([]model.Entry, error) {
	if r.cache != nil {
		if cached, ok, err := r.cache.GetEntries(ctx, userID); err == nil && ok {
			return cached, nil
		}
	}
	entries, err := r.entryRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.SetEntries(ctx, userID, entries); err != nil {
			r.log.Debug().Err(err).Uint("user_id", userID).Msg("warm entry cache failed")
		}
	}
	return entries, nil
}

func toChatMessages(turns []persona.Turn) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ai.ChatMessage{Role: t.Role, Content: t.Content})
	}
	return messages
}
