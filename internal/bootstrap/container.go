package bootstrap

import (
	"context"
	"log"

	"eval-assistant-be/internal/config"
	"eval-assistant-be/internal/controller"
	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/internal/service"
	"eval-assistant-be/pkg/ai/orchestrator"
	"eval-assistant-be/pkg/ai/pipeline"
	"eval-assistant-be/pkg/ai/router"
	"eval-assistant-be/pkg/ai/tool"
	"eval-assistant-be/pkg/embedding"
	"eval-assistant-be/pkg/llm/factory"
	pktNats "eval-assistant-be/pkg/nats"
	"eval-assistant-be/pkg/rag"
	"eval-assistant-be/pkg/rag/index"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/spf13/afero"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	pubSub  *gochannel.GoChannel
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	traceLogger := logger.NewIsolatedLogger(cfg.App.LLMTraceLogPath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.ChatModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (router=%s, chat=%s)", cfg.Ai.LLMProvider, cfg.Ai.RouterModel, cfg.Ai.ChatModel)

	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)

	// 4. Retrieval
	roots := make([]index.Root, 0, len(cfg.Retrieval.Roots))
	for _, r := range cfg.Retrieval.Roots {
		roots = append(roots, index.Root{Path: r.Path, Limit: r.Limit})
	}
	loader := index.NewLoader(afero.NewOsFs(), roots, cfg.Retrieval.Pattern, sysLogger)
	buildOpts := index.BuildOptions{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
		Hybrid:       cfg.Retrieval.Hybrid,
		MinScore:     cfg.Retrieval.MinScore,
	}
	cell := index.NewCell(func(ctx context.Context) (*index.Index, error) {
		docs, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return index.Build(ctx, docs, buildOpts, embeddingProvider, sysLogger)
	}, cfg.Retrieval.BuildTimeout)

	answerer := rag.NewAnswerer(cell, llmProvider, rag.AnswererConfig{
		Model:    cfg.Ai.ChatModel,
		Grounded: cfg.Retrieval.Grounded,
		CacheTTL: cfg.Retrieval.CacheTTL,
	}, sysLogger)

	// 5. Routing
	chatRouter := router.NewRouter(llmProvider, cfg.Ai.RouterModel, traceLogger)
	dispatcher := tool.NewDispatcher(cfg.Tool.ServerURL, cfg.Tool.Token, sysLogger)
	responder := pipeline.NewDirectResponder(llmProvider, cfg.Ai.ChatModel, sysLogger)

	orch := orchestrator.New(chatRouter, dispatcher, answerer, responder, orchestrator.Config{
		ShortCircuitLen:  cfg.Routing.ShortCircuitLen,
		DirectLen:        cfg.Routing.DirectLen,
		RouterTimeout:    cfg.Routing.RouterTimeout,
		RetrievalTimeout: cfg.Routing.RetrievalTimeout,
		ToolTimeout:      cfg.Routing.ToolTimeout,
		DirectTimeout:    cfg.Routing.DirectTimeout,
	}, sysLogger)

	// 6. Telemetry
	var natsPub *pktNats.Publisher
	var forwarder service.Forwarder
	if cfg.App.NatsEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
		}
	}

	publisherService := service.NewPublisherService(cfg.App.TelemetryTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.TelemetryTopic, forwarder, sysLogger)

	chatService := service.NewChatService(orch, answerer, publisherService, service.ChatServiceConfig{
		ChunkSize:  cfg.Stream.ChunkSize,
		BufferSize: cfg.Stream.BufferSize,
	}, sysLogger)

	return &Container{
		ChatController:  controller.NewChatController(chatService, sysLogger),
		ConsumerService: consumerService,
		Logger:          sysLogger,
		natsPub:         natsPub,
		pubSub:          pubSub,
	}
}

// Close releases the event bus and the NATS connection.
func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
}
