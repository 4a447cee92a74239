package controller

import (
	"bufio"
	"context"
	"encoding/json"

	"eval-assistant-be/internal/dto"
	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/internal/pkg/serverutils"
	"eval-assistant-be/internal/service"
	"eval-assistant-be/pkg/ai/stream"

	"github.com/gofiber/fiber/v2"
)

const ContentTypeNDJSON = "application/x-ndjson"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)

	h := r.Group("/chat/v1")
	h.Post("/stream", c.Stream)
}

// Stream answers with one JSON event per line. Request errors are reported
// in the same format so clients only need one parser.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return writeSingleEvent(ctx, fiber.StatusBadRequest, stream.Error("invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeSingleEvent(ctx, fiber.StatusBadRequest, stream.Error(err.Error()))
	}

	// fasthttp reuses the fiber context once the handler returns, so the
	// request gets its own context, cancelled when the client stops reading.
	reqCtx, cancel := context.WithCancel(context.Background())
	events := c.chatService.Stream(reqCtx, &req)

	ctx.Set(fiber.HeaderContentType, ContentTypeNDJSON)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		enc := json.NewEncoder(w)
		for ev := range events {
			if err := enc.Encode(ev); err != nil {
				c.logger.Debug("ChatController", "encode failed", map[string]interface{}{"error": err.Error()})
				return
			}
			if err := w.Flush(); err != nil {
				c.logger.Debug("ChatController", "client disconnected", map[string]interface{}{"error": err.Error()})
				return
			}
		}
	})
	return nil
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:     "ok",
		IndexBuilt: c.chatService.IndexBuilt(),
	})
}

func writeSingleEvent(ctx *fiber.Ctx, status int, ev stream.Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, ContentTypeNDJSON)
	return ctx.Status(status).Send(append(line, '\n'))
}
