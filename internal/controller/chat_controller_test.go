package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"eval-assistant-be/internal/dto"
	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/ai/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedChatService struct {
	events   []stream.Event
	built    bool
	requests []dto.ChatRequest
}

func (s *cannedChatService) Stream(ctx context.Context, req *dto.ChatRequest) <-chan stream.Event {
	s.requests = append(s.requests, *req)
	out := make(chan stream.Event, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out
}

func (s *cannedChatService) IndexBuilt() bool { return s.built }

func newApp(svc *cannedChatService) *fiber.App {
	app := fiber.New()
	NewChatController(svc, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))
	return app
}

func readLines(t *testing.T, body io.Reader) []stream.Event {
	t.Helper()
	var out []stream.Event
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		var ev stream.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev), scanner.Text())
		out = append(out, ev)
	}
	require.NoError(t, scanner.Err())
	return out
}

func post(t *testing.T, app *fiber.App, body string) (int, string, []stream.Event) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chat/v1/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Content-Type"), readLines(t, resp.Body)
}

func TestStreamWritesNDJSON(t *testing.T) {
	svc := &cannedChatService{events: []stream.Event{
		stream.Status("classifying"),
		stream.Delta("Hel"),
		stream.Delta("lo"),
		stream.Final("Hello"),
	}}

	status, contentType, events := post(t, newApp(svc), `{"message":"please say hello","history":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, ContentTypeNDJSON, contentType)
	assert.Equal(t, svc.events, events)
	require.Len(t, svc.requests, 1)
	assert.Equal(t, "please say hello", svc.requests[0].Message)
	assert.Len(t, svc.requests[0].History, 1)
}

func TestStreamRejectsMalformedBody(t *testing.T) {
	svc := &cannedChatService{}

	status, contentType, events := post(t, newApp(svc), `{"message":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, ContentTypeNDJSON, contentType)
	require.Len(t, events, 1)
	assert.Equal(t, stream.EventError, events[0].Type)
	assert.Empty(t, svc.requests)
}

func TestStreamRejectsInvalidHistoryRole(t *testing.T) {
	svc := &cannedChatService{}

	status, _, events := post(t, newApp(svc), `{"message":"tell me about runs","history":[{"role":"robot","content":"x"}]}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "oneof")
	assert.Empty(t, svc.requests)
}

func TestHealth(t *testing.T) {
	app := newApp(&cannedChatService{built: true})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok","index_built":true}`, string(body))
}
