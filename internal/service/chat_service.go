package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"eval-assistant-be/internal/dto"
	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/ai/orchestrator"
	"eval-assistant-be/pkg/ai/stream"
	"eval-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// Runner is satisfied by *orchestrator.Orchestrator.
type Runner interface {
	Run(ctx context.Context, message string, em *stream.Emitter) orchestrator.Trace
}

// IndexState reports whether the shared retrieval index is ready.
type IndexState interface {
	Built() bool
}

type IChatService interface {
	// Stream starts the request and returns its event channel. The channel
	// is closed after the terminal event, or early if ctx is cancelled.
	Stream(ctx context.Context, req *dto.ChatRequest) <-chan stream.Event
	IndexBuilt() bool
}

type ChatServiceConfig struct {
	ChunkSize  int
	BufferSize int
}

type chatService struct {
	runner    Runner
	index     IndexState
	publisher IPublisherService
	cfg       ChatServiceConfig
	logger    logger.ILogger
}

func NewChatService(
	runner Runner,
	index IndexState,
	publisher IPublisherService,
	cfg ChatServiceConfig,
	log logger.ILogger,
) IChatService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = stream.DefaultChunkSize
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	return &chatService{
		runner:    runner,
		index:     index,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *chatService) Stream(ctx context.Context, req *dto.ChatRequest) <-chan stream.Event {
	out := make(chan stream.Event, s.cfg.BufferSize)
	em := stream.NewEmitter(out, s.cfg.ChunkSize)
	requestID := uuid.NewString()

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("ChatService", "request panicked", map[string]interface{}{
					"request_id": requestID,
					"error":      fmt.Sprint(r),
				})
				em.EnsureTerminal(ctx, orchestrator.MsgInternal)
			}
		}()

		trace := s.runner.Run(ctx, req.Message, em)

		s.logger.Info("ChatService", "chat request completed", map[string]interface{}{
			"request_id": requestID,
			"route":      string(trace.Route),
			"terminal":   string(trace.Terminal),
			"elapsed_ms": trace.Elapsed.Milliseconds(),
		})
		s.publish(ctx, requestID, req, trace)
	}()

	return out
}

func (s *chatService) publish(ctx context.Context, requestID string, req *dto.ChatRequest, trace orchestrator.Trace) {
	if s.publisher == nil {
		return
	}
	event := events.NewChatCompleted(events.ChatCompleted{
		RequestID:     requestID,
		Route:         string(trace.Route),
		Tool:          trace.Tool,
		Terminal:      string(trace.Terminal),
		Elapsed:       trace.Elapsed,
		MessageLength: utf8.RuneCountInString(req.Message),
		HistoryLength: len(req.History),
	}, time.Now())

	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("ChatService", "failed to publish telemetry", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

func (s *chatService) IndexBuilt() bool {
	return s.index != nil && s.index.Built()
}
