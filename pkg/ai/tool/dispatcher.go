package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eval-assistant-be/internal/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

var (
	ErrNameMissing = errors.New("tool name is missing")
	ErrRPC         = errors.New("tool rpc error")
)

// RPCError is a failure reported by the tool server itself, either as a
// non-2xx status, a JSON-RPC error member, or a result flagged isError.
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rpc error: %s", e.Message)
}

func (e *RPCError) Unwrap() error { return ErrRPC }

type rpcRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Method  string     `json:"method"`
	Params  callParams `json:"params"`
}

type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Dispatcher performs one tools/call round trip per Call. It does not retry
// and has no client-level timeout; the caller's context bounds it.
type Dispatcher struct {
	client *resty.Client
	url    string
	logger logger.ILogger
}

func NewDispatcher(url, token string, log logger.ILogger) *Dispatcher {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json, text/event-stream").
		SetRetryCount(0)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Dispatcher{client: client, url: url, logger: log}
}

func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]interface{}) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{}, ErrNameMissing
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	body := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  callParams{Name: name, Arguments: args},
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(d.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return Outcome{}, fmt.Errorf("call %s: %w", name, err)
	}

	raw := resp.Body()
	if resp.IsError() {
		d.logger.Warn("ToolDispatcher", "tool server returned error status", map[string]interface{}{
			"tool":   name,
			"status": resp.StatusCode(),
		})
		return Outcome{}, &RPCError{Code: int64(resp.StatusCode()), Message: strings.TrimSpace(string(raw))}
	}

	if rpcErr := rpcFailure(unwrapSSE(raw)); rpcErr != nil {
		d.logger.Warn("ToolDispatcher", "tool call failed", map[string]interface{}{
			"tool":  name,
			"error": rpcErr.Error(),
		})
		return Outcome{}, rpcErr
	}

	outcome := Decode(raw)
	d.logger.Debug("ToolDispatcher", "tool call completed", map[string]interface{}{
		"tool": name,
		"kind": outcome.Kind.String(),
	})
	return outcome, nil
}

func rpcFailure(raw []byte) *RPCError {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)
	if e := root.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.Raw
		}
		return &RPCError{Code: e.Get("code").Int(), Message: msg}
	}
	if result := root.Get("result"); result.Get("isError").Bool() {
		msg := result.Get("content.0.text").String()
		if msg == "" {
			msg = "tool reported an error"
		}
		return &RPCError{Message: msg}
	}
	return nil
}
