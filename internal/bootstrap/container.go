package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"inventory-agent-be/internal/config"
	"inventory-agent-be/internal/controller"
	"inventory-agent-be/internal/pkg/logger"
	"inventory-agent-be/internal/repository/cached"
	"inventory-agent-be/internal/repository/implementation"
	"inventory-agent-be/internal/repository/memory"
	redisrepo "inventory-agent-be/internal/repository/redis"
	"inventory-agent-be/internal/service"
	"inventory-agent-be/pkg/agent/classifier"
	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/executor"
	"inventory-agent-be/pkg/agent/response"
	"inventory-agent-be/pkg/llm/factory"

	pktNats "inventory-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AgentController controller.IAgentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Fallback Chain
	chain, err := factory.NewLLMProvider(factory.Config{
		ProviderOrder: cfg.Llm.ProviderOrder,
		GroqAPIKey:    cfg.Llm.GroqAPIKey,
		GeminiAPIKey:  cfg.Llm.GeminiAPIKey,
		OllamaBaseURL: cfg.Llm.OllamaBaseURL,
		OllamaModel:   cfg.Llm.OllamaModel,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Providers: %v", chain.Active())

	agentLogger := initAgentLogger()

	// 4. Category Readers (cached)
	cacheStore := cached.NewStore(time.Duration(cfg.Database.CacheTTLSeconds) * time.Second)
	fetchers := map[string]dispatch.Fetcher{
		"inventory":            cached.Wrap("inventory", implementation.NewInventoryReader(db), cacheStore),
		"warranties":           cached.Wrap("warranties", implementation.NewWarrantyReader(db), cacheStore),
		"technician_movements": cached.Wrap("technician_movements", implementation.NewMovementReader(db), cacheStore),
		"transfer_requests":    cached.Wrap("transfer_requests", implementation.NewTransferRequestReader(db), cacheStore),
		"stock_counts":         cached.Wrap("stock_counts", implementation.NewStockCountReader(db), cacheStore),
		"parts":                cached.Wrap("parts", implementation.NewPartReader(db), cacheStore),
	}

	dispatcher := dispatch.NewDispatcher(fetchers, agentLogger)
	cls := classifier.NewClassifier(chain, agentLogger)
	gen := response.NewGenerator(chain, dispatcher.Sources(), agentLogger)

	// 5. Session Store
	var sessions executor.SessionStore
	if cfg.Session.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.Session.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessions = redisrepo.NewSessionRepository(rdb, cfg.Session.Limit)
		log.Printf("[INFO] Using Session Backend: REDIS")
	} else {
		sessions = memory.NewSessionRepository(cfg.Session.Limit)
		log.Printf("[INFO] Using Session Backend: MEMORY (limit %d)", cfg.Session.Limit)
	}

	pipeline := executor.NewPipeline(cls, dispatcher, gen, sessions, agentLogger)

	// 6. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.Audit.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 7. Services
	auditRepo := implementation.NewAuditRepository(db)
	publisherService := service.NewPublisherService(cfg.Audit.Topic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Audit.Topic,
		auditRepo,
		natsPub,
	)

	agentService := service.NewAgentService(pipeline, chain, publisherService, sysLogger)

	// 8. Controllers
	return &Container{
		AgentController: controller.NewAgentController(agentService),
		ConsumerService: consumerService,
	}
}

func initAgentLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_agent.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[AGENT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
