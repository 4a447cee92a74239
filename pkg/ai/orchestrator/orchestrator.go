package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/ai/router"
	"eval-assistant-be/pkg/ai/stream"
	"eval-assistant-be/pkg/ai/tool"
	"eval-assistant-be/pkg/rag"

	"go.opentelemetry.io/otel/attribute"
)

type Router interface {
	Route(ctx context.Context, text string) (router.Decision, error)
}

type Dispatcher interface {
	Call(ctx context.Context, name string, args map[string]interface{}) (tool.Outcome, error)
}

type Retriever interface {
	Answer(ctx context.Context, query string) (rag.Result, error)
}

type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

type Config struct {
	ShortCircuitLen  int
	DirectLen        int
	RouterTimeout    time.Duration
	RetrievalTimeout time.Duration
	ToolTimeout      time.Duration
	DirectTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		ShortCircuitLen:  4,
		DirectLen:        6,
		RouterTimeout:    20 * time.Second,
		RetrievalTimeout: 30 * time.Second,
		ToolTimeout:      12 * time.Second,
		DirectTimeout:    30 * time.Second,
	}
}

// Route names the branch that produced the terminal event.
type Route string

const (
	RouteInvalid     Route = "invalid"
	RouteGreeting    Route = "greeting"
	RouteDirectShort Route = "direct_short"
	RouteTool        Route = "tool"
	RouteRAG         Route = "rag"
	RouteDirect      Route = "direct"
	RouteFallback    Route = "fallback"
	RouteRejected    Route = "rejected"
)

type Trace struct {
	Route    Route
	Tool     string
	Terminal stream.EventType
	Elapsed  time.Duration
}

type state int

const (
	stateStart state = iota
	stateGreeting
	stateDirectShort
	stateClassify
	stateTool
	stateRAG
	stateDirect
	stateFallback
	stateDone
)

// run is the working state of one request. It is never shared.
type run struct {
	message  string
	decision router.Decision
	route    Route
	started  time.Time
	em       *stream.Emitter
}

// Orchestrator sequences the router, tool, retrieval and direct stages for a
// single message and writes the resulting events into an Emitter.
type Orchestrator struct {
	router    Router
	tools     Dispatcher
	retriever Retriever
	responder Responder
	cfg       Config
	logger    logger.ILogger
}

func New(r Router, tools Dispatcher, retriever Retriever, responder Responder, cfg Config, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		router:    r,
		tools:     tools,
		retriever: retriever,
		responder: responder,
		cfg:       cfg,
		logger:    log,
	}
}

// Run handles one message. It always leaves exactly one terminal event in em
// unless ctx is cancelled first.
func (o *Orchestrator) Run(ctx context.Context, message string, em *stream.Emitter) Trace {
	ctx, span := tracer.Start(ctx, "orchestrator.run")
	defer span.End()

	r := &run{message: strings.TrimSpace(message), started: time.Now(), em: em}

	st := stateStart
	for st != stateDone {
		st = o.step(ctx, st, r)
	}
	em.EnsureTerminal(ctx, MsgInternal)

	trace := Trace{Route: r.route, Tool: r.decision.Tool, Elapsed: time.Since(r.started)}
	if term, ok := em.Terminal(); ok {
		trace.Terminal = term.Type
	}
	span.SetAttributes(
		attribute.String("chat.route", string(trace.Route)),
		attribute.String("chat.terminal", string(trace.Terminal)),
	)
	return trace
}

func (o *Orchestrator) step(ctx context.Context, st state, r *run) state {
	switch st {
	case stateStart:
		return o.start(ctx, r)
	case stateGreeting:
		r.route = RouteGreeting
		o.emit(r.em.Final(ctx, Greeting))
		return stateDone
	case stateDirectShort:
		r.route = RouteDirectShort
		o.emit(r.em.Status(ctx, StatusThinking))
		o.finishDirect(ctx, r, MsgNoAnswer)
		return stateDone
	case stateClassify:
		return o.classify(ctx, r)
	case stateTool:
		o.runTool(ctx, r)
		return stateDone
	case stateRAG:
		o.runRAG(ctx, r)
		return stateDone
	case stateDirect:
		r.route = RouteDirect
		o.finishDirect(ctx, r, MsgNoAnswer)
		return stateDone
	case stateFallback:
		o.runFallback(ctx, r)
		return stateDone
	default:
		return stateDone
	}
}

func (o *Orchestrator) start(ctx context.Context, r *run) state {
	if r.message == "" {
		r.route = RouteInvalid
		o.emit(r.em.Error(ctx, MsgEmptyMessage))
		return stateDone
	}

	n := utf8.RuneCountInString(r.message)
	switch {
	case n <= o.cfg.ShortCircuitLen:
		return stateGreeting
	case n <= o.cfg.DirectLen:
		return stateDirectShort
	default:
		return stateClassify
	}
}

func (o *Orchestrator) classify(ctx context.Context, r *run) state {
	o.emit(r.em.Status(ctx, StatusClassifying))

	res := runStage(ctx, "router.route", o.cfg.RouterTimeout, func(ctx context.Context) (router.Decision, error) {
		return o.router.Route(ctx, r.message)
	})

	if res.kind != stageOK || !res.value.Decided() {
		o.logger.Info("Orchestrator", "no routing decision, falling back to retrieval", map[string]interface{}{
			"outcome": res.kind.String(),
			"error":   errString(res.err),
		})
		return stateFallback
	}

	r.decision = res.value
	if !r.decision.Action.Known() {
		r.route = RouteRejected
		o.logger.Warn("Orchestrator", "unknown routing action", map[string]interface{}{
			"action": string(r.decision.Action),
		})
		o.emit(r.em.Stream(ctx, MsgCouldNotInterpret))
		return stateDone
	}

	switch r.decision.Action {
	case router.ActionTool:
		if r.decision.Tool == "" {
			r.route = RouteRejected
			o.emit(r.em.Stream(ctx, MsgToolNameMissing))
			return stateDone
		}
		if !tool.Known(r.decision.Tool) {
			o.logger.Warn("Orchestrator", "tool not in catalog, dispatching anyway", map[string]interface{}{
				"tool": r.decision.Tool,
			})
		}
		return stateTool
	case router.ActionRAG:
		return stateRAG
	default:
		return stateDirect
	}
}

func (o *Orchestrator) runTool(ctx context.Context, r *run) {
	r.route = RouteTool
	name := r.decision.Tool
	o.emit(r.em.Status(ctx, StatusRunningTool))

	res := runStage(ctx, "tool.call", o.cfg.ToolTimeout, func(ctx context.Context) (tool.Outcome, error) {
		return o.tools.Call(ctx, name, r.decision.Arguments)
	})

	switch res.kind {
	case stageTimeout:
		o.logger.Warn("Orchestrator", "tool call timed out", map[string]interface{}{
			"tool":    name,
			"timeout": o.cfg.ToolTimeout.String(),
		})
		o.emit(r.em.Error(ctx, toolTimeoutMessage(name, o.cfg.ToolTimeout)))
	case stageFailed:
		o.logger.Error("Orchestrator", "tool call failed", map[string]interface{}{
			"tool":  name,
			"error": res.err.Error(),
		})
		o.emit(r.em.Error(ctx, toolFailedMessage(name, res.err)))
	default:
		summary := tool.Summarize(name, res.value)
		o.emit(r.em.Stream(ctx, summary, elapsedMessage(time.Since(r.started))))
	}
}

// runRAG handles an explicit rag decision. A failed or empty grounded answer
// falls back to the direct responder.
func (o *Orchestrator) runRAG(ctx context.Context, r *run) {
	r.route = RouteRAG
	o.emit(r.em.Status(ctx, StatusSearching))

	res := o.retrieve(ctx, r)
	switch {
	case res.kind == stageTimeout:
		o.emit(r.em.Error(ctx, retrievalTimeoutMessage(o.cfg.RetrievalTimeout)))
	case res.kind == stageOK && res.value.Status == rag.StatusAnswered:
		o.emit(r.em.Stream(ctx, res.value.Text))
	case res.kind == stageOK && res.value.Status == rag.StatusNoPassages:
		o.emit(r.em.Stream(ctx, MsgNoDocuments))
	default:
		o.finishDirect(ctx, r, MsgNoAnswer)
	}
}

// runFallback handles the no-decision path: retrieval, then direct, then a
// generic notice.
func (o *Orchestrator) runFallback(ctx context.Context, r *run) {
	r.route = RouteFallback
	o.emit(r.em.Status(ctx, StatusSearching))

	res := o.retrieve(ctx, r)
	switch {
	case res.kind == stageTimeout:
		o.emit(r.em.Error(ctx, retrievalTimeoutMessage(o.cfg.RetrievalTimeout)))
	case res.kind == stageOK && res.value.Status == rag.StatusAnswered:
		o.emit(r.em.Stream(ctx, res.value.Text))
	default:
		o.finishDirect(ctx, r, MsgCouldNotInterpret)
	}
}

func (o *Orchestrator) retrieve(ctx context.Context, r *run) stageResult[rag.Result] {
	res := runStage(ctx, "rag.answer", o.cfg.RetrievalTimeout, func(ctx context.Context) (rag.Result, error) {
		return o.retriever.Answer(ctx, r.message)
	})
	details := map[string]interface{}{"outcome": res.kind.String()}
	if res.kind == stageOK {
		details["status"] = res.value.Status.String()
		details["passages"] = len(res.value.Passages)
	} else {
		details["error"] = errString(res.err)
	}
	o.logger.Info("Orchestrator", "retrieval finished", details)
	return res
}

// finishDirect streams the direct responder's answer, or notice when it
// fails for any reason.
func (o *Orchestrator) finishDirect(ctx context.Context, r *run, notice string) {
	res := runStage(ctx, "direct.respond", o.cfg.DirectTimeout, func(ctx context.Context) (string, error) {
		return o.responder.Respond(ctx, r.message)
	})
	if res.kind != stageOK {
		o.logger.Warn("Orchestrator", "direct responder gave no answer", map[string]interface{}{
			"outcome": res.kind.String(),
			"error":   errString(res.err),
		})
		o.emit(r.em.Stream(ctx, notice))
		return
	}
	o.emit(r.em.Stream(ctx, res.value))
}

// emit logs send failures. A cancelled client is expected and only traced.
func (o *Orchestrator) emit(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		o.logger.Debug("Orchestrator", "client went away", map[string]interface{}{"error": err.Error()})
		return
	}
	o.logger.Warn("Orchestrator", "event dropped", map[string]interface{}{"error": err.Error()})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
