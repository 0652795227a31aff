package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ai"
	appsvc "github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/bootstrap"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/platform/rabbitmq"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/ratelimit"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/handler"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRepo := repository.NewUserRepository(app.MySQL)
	entryRepo := repository.NewEntryRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	chatRepo := repository.NewDailyChatRepository(app.MySQL)
	taskRepo := repository.NewTaskRepository(app.MySQL)

	limiter := ratelimit.NewLimiter(app.MySQL)
	publisher := rabbitmq.NewTaskPublisher(app.MQConn, app.Config.RabbitMQ.TaskQueue)
	taskService := appsvc.NewTaskService(taskRepo, publisher)

	limits := appsvc.Limits{
		Transcription:   app.Config.Limits.Transcription,
		Analysis:        app.Config.Limits.Analysis,
		ChatReply:       app.Config.Limits.ChatReply,
		DailyReflection: app.Config.Limits.DailyReflection,
	}

	userService := appsvc.NewUserService(userRepo, app.Mailer, app.Logger)
	journalService := appsvc.NewJournalService(entryRepo, app.EntryCache, app.Mailer, app.Logger)
	sessionService := appsvc.NewSessionService(
		sessionRepo,
		messageRepo,
		taskService,
		limiter,
		app.Storage,
		app.AIClient,
		ai.TranscribeConfig{
			BaseURL: app.Config.Transcription.BaseURL,
			APIKey:  app.Config.Transcription.APIKey,
			Model:   app.Config.Transcription.Model,
		},
		limits,
	)
	chatService := appsvc.NewDailyChatService(chatRepo, entryRepo, taskService, limiter, limits)
	accountService := appsvc.NewAccountService(
		userRepo,
		entryRepo,
		sessionRepo,
		messageRepo,
		chatRepo,
		taskRepo,
		limiter,
		app.Logger,
	)
	billingService := appsvc.NewBillingService(app.Billing, userService, app.Config.Billing.WebhookSecret, app.Logger)

	userHandler := handler.NewUserHandler(userService)
	entryHandler := handler.NewEntryHandler(journalService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	chatHandler := handler.NewDailyChatHandler(chatService)
	accountHandler := handler.NewAccountHandler(accountService)
	billingHandler := handler.NewBillingHandler(billingService)

	router.POST("/webhooks/polar", billingHandler.Webhook)

	edge := middleware.NewEdgeLimiter(
		float64(app.Config.Limits.EdgeRPS),
		app.Config.Limits.EdgeBurst,
	)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthIdentity(app.Config.Auth.IdentitySecret))

	v1.POST("/users/sync", userHandler.Sync)

	authed := v1.Group("")
	authed.Use(middleware.LoadUser(userService), edge.Handler())

	authed.GET("/users/me", userHandler.Me)
	authed.PATCH("/users/me", userHandler.UpdateMe)

	authed.POST("/entries", entryHandler.Create)
	authed.GET("/entries", entryHandler.List)
	authed.GET("/entries/:id", entryHandler.Get)
	authed.PUT("/entries/:id", entryHandler.Update)
	authed.DELETE("/entries/:id", entryHandler.Delete)
	authed.GET("/entries/:id/chat", chatHandler.GetByEntry)

	authed.POST("/sessions", sessionHandler.Create)
	authed.GET("/sessions", sessionHandler.List)
	authed.GET("/sessions/:id", sessionHandler.Get)
	authed.POST("/sessions/:id/upload-url", sessionHandler.NewUploadURL)
	authed.POST("/sessions/:id/audio", sessionHandler.SaveAudio)
	authed.POST("/sessions/:id/answers", sessionHandler.Answer)
	authed.POST("/sessions/:id/analyze", sessionHandler.Analyze)
	authed.POST("/sessions/:id/messages", sessionHandler.SendMessage)
	authed.GET("/sessions/:id/messages", sessionHandler.ListMessages)

	authed.POST("/chats", chatHandler.Create)
	authed.GET("/chats", chatHandler.List)
	authed.GET("/chats/:id", chatHandler.Get)
	authed.GET("/chats/:id/messages", chatHandler.ListMessages)
	authed.POST("/chats/:id/messages", chatHandler.SendMessage)

	authed.GET("/account/export", accountHandler.Export)
	authed.DELETE("/account", accountHandler.Delete)

	authed.POST("/billing/checkout", billingHandler.CreateCheckout)

	return router
}
