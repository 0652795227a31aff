package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ai"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/billing"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/cache"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/config"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/persona"
	mysqlClient "github.com/samsunstoppable/luxury-minimalism-journal/internal/platform/mysql"
	rabbitmqClient "github.com/samsunstoppable/luxury-minimalism-journal/internal/platform/rabbitmq"
	redisClient "github.com/samsunstoppable/luxury-minimalism-journal/internal/platform/redis"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/storage"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/worker"
)

// App owns every long-lived resource: connections, clients, and the two
// background workers. The HTTP router builds its services on top of it.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	AIClient      *ai.Client
	Mailer        *email.Client
	Billing       *billing.Client
	Storage       *storage.Client
	EntryCache    *cache.ContextCache
	PromptBuilder *persona.Builder

	TaskWorker     *worker.TaskWorker
	ReminderWorker *worker.ReminderWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := newLogger(cfg.App.Env)

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Entry{},
		&model.Session{},
		&model.Message{},
		&model.DailyChat{},
		&model.DailyChatMessage{},
		&model.RateLimit{},
		&model.Task{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	storageCli, err := storage.New(ctx, storage.Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		PresignExpiry: time.Duration(cfg.Storage.PresignExpiry) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewClient()
	mailer := email.NewClient(email.Config{
		BaseURL: cfg.Email.BaseURL,
		APIKey:  cfg.Email.APIKey,
		From:    cfg.Email.From,
		SiteURL: cfg.App.BaseURL,
	})
	billingCli := billing.NewClient(billing.Config{
		BaseURL:       cfg.Billing.BaseURL,
		AccessToken:   cfg.Billing.AccessToken,
		PriceID:       cfg.Billing.PriceID,
		WebhookSecret: cfg.Billing.WebhookSecret,
		SuccessURL:    cfg.App.BaseURL,
	})
	entryCache := cache.NewContextCache(
		redisCli,
		time.Duration(cfg.Redis.ContextTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.DirtyTTLSeconds)*time.Second,
	)
	builder := persona.NewBuilder(cfg.LLM.MaxContextChars, cfg.LLM.MaxHistory)

	userRepo := repository.NewUserRepository(mysqlDB)
	entryRepo := repository.NewEntryRepository(mysqlDB)
	sessionRepo := repository.NewSessionRepository(mysqlDB)
	messageRepo := repository.NewMessageRepository(mysqlDB)
	chatRepo := repository.NewDailyChatRepository(mysqlDB)
	taskRepo := repository.NewTaskRepository(mysqlDB)

	chatCfg := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	runner := worker.NewTaskRunner(
		userRepo,
		entryRepo,
		sessionRepo,
		messageRepo,
		chatRepo,
		entryCache,
		aiClient,
		chatCfg,
		builder,
		logger,
	)
	taskWorker := worker.NewTaskWorker(mqConn, taskRepo, runner, cfg.RabbitMQ.TaskQueue, cfg.Limits.TaskMaxAttempts, logger)
	if err := taskWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start task worker failed: %w", err)
	}

	var reminderWorker *worker.ReminderWorker
	if cfg.Reminder.Enabled {
		reminderWorker = worker.NewReminderWorker(userRepo, entryRepo, mailer, cfg.Reminder.HourUTC, logger)
		reminderWorker.Start(ctx)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		AIClient:       aiClient,
		Mailer:         mailer,
		Billing:        billingCli,
		Storage:        storageCli,
		EntryCache:     entryCache,
		PromptBuilder:  builder,
		TaskWorker:     taskWorker,
		ReminderWorker: reminderWorker,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ReminderWorker != nil {
		a.ReminderWorker.Close()
	}
	if a.TaskWorker != nil {
		a.TaskWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
