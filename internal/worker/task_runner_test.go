package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ai"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/persona"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

func newWorkerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("worker_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Entry{},
		&model.Session{},
		&model.Message{},
		&model.DailyChat{},
		&model.DailyChatMessage{},
		&model.Task{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

// newLLMServer answers every chat completion with the given content and
// records the prompts it saw.
func newLLMServer(t *testing.T, content string) (*httptest.Server, *[]string) {
	t.Helper()

	prompts := &[]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode llm request failed: %v", err)
		}
		for _, m := range req.Messages {
			*prompts = append(*prompts, m.Content)
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
	return server, prompts
}

func newRunner(t *testing.T, db *gorm.DB, baseURL string) *TaskRunner {
	t.Helper()
	return NewTaskRunner(
		repository.NewUserRepository(db),
		repository.NewEntryRepository(db),
		repository.NewSessionRepository(db),
		repository.NewMessageRepository(db),
		repository.NewDailyChatRepository(db),
		nil,
		ai.NewClient(),
		ai.ChatConfig{BaseURL: baseURL, APIKey: "test-key", Model: "test-model"},
		persona.NewBuilder(12000, 20),
		zerolog.Nop(),
	)
}

func seedSession(t *testing.T, db *gorm.DB) (*model.User, *model.Session) {
	t.Helper()

	user := &model.User{TokenIdentifier: "tok-1", Name: "Ada", Summary: "Old summary."}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	session := &model.Session{
		UserID:     user.ID,
		PersonaID:  "jung",
		Status:     model.SessionAnalyzing,
		StartedAt:  time.Now(),
		Transcript: "Q: How was today?\nA: Busy but good.",
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	return user, session
}

func TestRunAnalyzeSessionStoresVerbatimAnalysis(t *testing.T) {
	const analysis = "You showed real resilience today.\n\nKeep at it."

	server, _ := newLLMServer(t, analysis)
	defer server.Close()

	db := newWorkerDB(t)
	user, session := seedSession(t, db)
	runner := newRunner(t, db, server.URL)

	task := &model.Task{ID: "t1", Type: model.TaskAnalyzeSession, UserID: user.ID, SessionID: session.ID}
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var stored model.Session
	if err := db.First(&stored, session.ID).Error; err != nil {
		t.Fatalf("read session failed: %v", err)
	}
	if stored.Analysis != analysis {
		t.Fatalf("analysis = %q, want the model reply verbatim", stored.Analysis)
	}
	if stored.Status != model.SessionCompleted {
		t.Fatalf("status = %q, want completed", stored.Status)
	}
	if stored.CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}

	// The same run regenerates the user summary.
	var storedUser model.User
	if err := db.First(&storedUser, user.ID).Error; err != nil {
		t.Fatalf("read user failed: %v", err)
	}
	if storedUser.Summary != analysis {
		t.Fatalf("summary = %q, want regenerated", storedUser.Summary)
	}
}

func TestRunAnalyzePromptCarriesTranscriptAndPersona(t *testing.T) {
	server, prompts := newLLMServer(t, "fine")
	defer server.Close()

	db := newWorkerDB(t)
	user, session := seedSession(t, db)
	runner := newRunner(t, db, server.URL)

	task := &model.Task{ID: "t1", Type: model.TaskAnalyzeSession, UserID: user.ID, SessionID: session.ID}
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(*prompts) == 0 {
		t.Fatal("no prompt captured")
	}
	first := (*prompts)[0]
	if !contains(first, session.Transcript) {
		t.Fatalf("analysis prompt missing transcript:\n%s", first)
	}
	if !contains(first, persona.Prompt("jung")) {
		t.Fatal("analysis prompt missing persona system prompt")
	}
}

func TestRunGenerateReplyStoresAssistantTurn(t *testing.T) {
	const reply = "That sounds like progress."

	server, _ := newLLMServer(t, reply)
	defer server.Close()

	db := newWorkerDB(t)
	user, session := seedSession(t, db)
	if err := db.Create(&model.Message{
		SessionID: session.ID,
		UserID:    user.ID,
		Role:      model.RoleUser,
		Content:   "I finally finished the draft.",
		CreatedAt: time.Now(),
	}).Error; err != nil {
		t.Fatalf("seed message failed: %v", err)
	}

	runner := newRunner(t, db, server.URL)
	task := &model.Task{ID: "t2", Type: model.TaskGenerateReply, UserID: user.ID, SessionID: session.ID}
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var messages []model.Message
	if err := db.Where("session_id = ?", session.ID).Order("id asc").Find(&messages).Error; err != nil {
		t.Fatalf("read messages failed: %v", err)
	}
	last := messages[len(messages)-1]
	if last.Role != model.RoleAssistant || last.Content != reply {
		t.Fatalf("last message = %+v", last)
	}
}

func TestRunGenerateDailyReplyScopedToEntry(t *testing.T) {
	const reply = "What made that moment matter?"

	server, prompts := newLLMServer(t, reply)
	defer server.Close()

	db := newWorkerDB(t)
	user, _ := seedSession(t, db)

	entry := &model.Entry{UserID: user.ID, Content: "Walked along the river.", Date: "2025-04-01", DayNumber: 2}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("seed entry failed: %v", err)
	}
	chat := &model.DailyChat{UserID: user.ID, EntryID: entry.ID, PersonaID: "rumi", CreatedAt: time.Now()}
	if err := db.Create(chat).Error; err != nil {
		t.Fatalf("seed chat failed: %v", err)
	}

	runner := newRunner(t, db, server.URL)
	task := &model.Task{ID: "t3", Type: model.TaskGenerateDailyReply, UserID: user.ID, ChatID: chat.ID}
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var messages []model.DailyChatMessage
	if err := db.Where("chat_id = ?", chat.ID).Find(&messages).Error; err != nil {
		t.Fatalf("read messages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != model.RoleAssistant || messages[0].Content != reply {
		t.Fatalf("messages = %+v", messages)
	}

	joined := ""
	for _, p := range *prompts {
		joined += p + "\n"
	}
	if !contains(joined, entry.Content) {
		t.Fatal("daily prompt missing entry content")
	}
}

func TestAbandonWritesApologyMessage(t *testing.T) {
	db := newWorkerDB(t)
	user, session := seedSession(t, db)
	runner := newRunner(t, db, "http://unused")

	runner.Abandon(&model.Task{ID: "t4", Type: model.TaskGenerateReply, UserID: user.ID, SessionID: session.ID})

	var messages []model.Message
	if err := db.Where("session_id = ?", session.ID).Find(&messages).Error; err != nil {
		t.Fatalf("read messages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != app.ApologyMessage {
		t.Fatalf("messages = %+v, want single apology turn", messages)
	}
}

func TestAbandonAnalysisReturnsSessionToInterview(t *testing.T) {
	db := newWorkerDB(t)
	user, session := seedSession(t, db)
	runner := newRunner(t, db, "http://unused")

	runner.Abandon(&model.Task{ID: "t5", Type: model.TaskAnalyzeSession, UserID: user.ID, SessionID: session.ID})

	var stored model.Session
	if err := db.First(&stored, session.ID).Error; err != nil {
		t.Fatalf("read session failed: %v", err)
	}
	if stored.Status != model.SessionInterviewing {
		t.Fatalf("status = %q, want interviewing", stored.Status)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
