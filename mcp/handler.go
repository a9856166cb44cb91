package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pouriya/restcommander-sub000/service"
	"github.com/viant/jsonrpc"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "restcommander"
	Version         = "2.0"
)

const (
	codeParseError       = -32700
	codeInvalidRequest   = -32600
	codeInvalidParams    = -32602
	codeScriptFailed     = -32001
	codeToolNotFound     = -32003
	codeResourceNotFound = -32004
)

var null = json.RawMessage("null")

type request struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *request) notification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, null)
}

type response struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonrpc.Error  `json:"error,omitempty"`
}

func success(id json.RawMessage, result interface{}) *response {
	return &response{Jsonrpc: Version, ID: id, Result: result}
}

func failure(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = null
	}
	return &response{Jsonrpc: Version, ID: id, Error: jsonrpc.NewError(code, message, nil)}
}

// Handler answers JSON-RPC 2.0 MCP requests against the command tree.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
	version string
}

// Option configures a Handler.
type Option func(*Handler)

// WithVersion sets the server version reported by initialize.
func WithVersion(version string) Option {
	return func(h *Handler) { h.version = version }
}

// New creates a handler backed by svc.
func New(svc *service.Service, opts ...Option) *Handler {
	h := &Handler{service: svc, logger: svc.Logger(), version: "dev"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes a single request or a batch and returns the encoded
// response, or nil when there is nothing to answer.
func (h *Handler) Handle(ctx context.Context, body []byte, source string) []byte {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			return h.encode(failure(nil, codeParseError, "Parse error"))
		}
		if len(batch) == 0 {
			return h.encode(failure(nil, codeInvalidRequest, "Invalid request"))
		}
		var responses []*response
		for _, item := range batch {
			if resp := h.handleMessage(ctx, item, source); resp != nil {
				responses = append(responses, resp)
			}
		}
		if len(responses) == 0 {
			return nil
		}
		return h.encode(responses)
	}
	resp := h.handleMessage(ctx, body, source)
	if resp == nil {
		return nil
	}
	return h.encode(resp)
}

func (h *Handler) handleMessage(ctx context.Context, data []byte, source string) *response {
	if !json.Valid(data) {
		return failure(nil, codeParseError, "Parse error")
	}
	req := &request{}
	if err := json.Unmarshal(data, req); err != nil || req.Method == "" {
		return failure(nil, codeInvalidRequest, "Invalid request")
	}
	if req.notification() {
		h.notify(req)
		return nil
	}
	return h.dispatch(ctx, req, source)
}

func (h *Handler) dispatch(ctx context.Context, req *request, source string) *response {
	if req.Jsonrpc != Version {
		return failure(req.ID, codeInvalidRequest, "jsonrpc must be '2.0'")
	}
	h.logger.DebugContext(ctx, "mcp request", "method", req.Method, "source", source)
	switch req.Method {
	case "initialize":
		return success(req.ID, h.initialize())
	case "ping":
		return success(req.ID, struct{}{})
	case "tools/list":
		return h.listTools(req)
	case "tools/call":
		return h.callTool(ctx, req, source)
	case "resources/list":
		return h.listResources(req)
	case "resources/read":
		return h.readResource(ctx, req, source)
	}
	return failure(req.ID, jsonrpc.MethodNotFound, "Method not found: "+req.Method)
}

func (h *Handler) notify(req *request) {
	switch req.Method {
	case "notifications/initialized":
		h.logger.Info("client initialized, reloading commands")
		if err := h.service.Reload(); err != nil {
			h.logger.Error("could not reload commands", "error", err)
		}
	case "notifications/cancelled":
		h.logger.Debug("cancel notification received, in-flight commands are not interrupted")
	default:
		h.logger.Debug("unknown notification", "method", req.Method)
	}
}

func (h *Handler) initialize() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": h.version,
		},
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{"listChanged": false},
			"resources": map[string]interface{}{"subscribe": false, "listChanged": false},
		},
	}
}

func (h *Handler) encode(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("could not encode mcp response", "error", err)
		data, _ = json.Marshal(failure(nil, jsonrpc.InternalError, err.Error()))
	}
	return data
}
