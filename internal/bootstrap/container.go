package bootstrap

import (
	"context"
	"log"

	"github.com/Mtank10/career-counselling-chat-app/internal/cache"
	"github.com/Mtank10/career-counselling-chat-app/internal/config"
	"github.com/Mtank10/career-counselling-chat-app/internal/controller"
	"github.com/Mtank10/career-counselling-chat-app/internal/handler"
	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/locker"
	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/logger"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/unitofwork"
	"github.com/Mtank10/career-counselling-chat-app/internal/service"
	"github.com/Mtank10/career-counselling-chat-app/internal/websocket"
	"github.com/Mtank10/career-counselling-chat-app/pkg/counselor"
	"github.com/Mtank10/career-counselling-chat-app/pkg/events"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	ChatController controller.IChatController

	// WebSockets
	ChatStreamHandler *handler.ChatStreamHandler
	WebSocketHub      *websocket.Hub
	EventBridge       *websocket.Bridge

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	publisher := events.NewPublisher(pubSub)

	// 3. Redis (optional: history cache and websocket relay degrade without it)
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb = redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (cache and event relay disabled)", err)
		rdb = nil
	}

	// 4. Generation client
	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s", cfg.Ai.Provider)

	generator := counselor.NewGenerator(
		llmProvider,
		sysLogger,
		cfg.Ai.Temperature,
		cfg.Ai.MaxOutputTokens,
		cfg.Ai.MaxAttempts,
		cfg.Ai.RetryDelay,
	)

	// 5. WebSocket hub + bridge
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	bridge := websocket.NewBridge(pubSub, wsHub, sysLogger)
	if err := bridge.Start(context.Background()); err != nil {
		log.Printf("[WARN] Failed to start event bridge: %v", err)
	}

	// 6. Services
	historyCache := cache.NewHistoryCache(rdb, 0)
	sessionLocks := locker.NewSessionLocker()

	authService := service.NewAuthService(uowFactory, cfg.Auth, sysLogger)
	chatService := service.NewChatService(uowFactory, generator, sessionLocks, historyCache, publisher, sysLogger)

	// 7. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		UserController:    controller.NewUserController(authService),
		ChatController:    controller.NewChatController(chatService),
		ChatStreamHandler: handler.NewChatStreamHandler(wsHub, sysLogger),
		WebSocketHub:      wsHub,
		EventBridge:       bridge,
		Logger:            sysLogger,
	}
}
