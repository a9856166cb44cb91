package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/mcp/tool/conversion"
	"github.com/pouriya/restcommander-sub000/service"
	"github.com/viant/jsonrpc"
	mcpschema "github.com/viant/mcp-protocol/schema"
)

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type callToolResult struct {
	Content []mcpschema.TextContent `json:"content"`
	IsError bool                    `json:"isError"`
}

// Tools returns one tool per valid leaf command in depth-first lexical order.
func (h *Handler) Tools() []mcpschema.Tool {
	root := h.service.Tree().Root()
	leaves := root.Leaves()
	ret := make([]mcpschema.Tool, 0, len(leaves))
	for _, leaf := range leaves {
		ret = append(ret, conversion.BuildSchema(leaf))
	}
	return ret
}

func (h *Handler) listTools(req *request) *response {
	if err := h.service.Reload(); err != nil {
		return failure(req.ID, jsonrpc.InternalError, fmt.Sprintf("Failed to reload commands: %v", err))
	}
	return success(req.ID, map[string]interface{}{"tools": h.Tools()})
}

func (h *Handler) callTool(ctx context.Context, req *request, source string) *response {
	params := &callToolParams{}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, params); err != nil {
			return failure(req.ID, codeInvalidParams, err.Error())
		}
	}
	if params.Name == "" {
		return failure(req.ID, codeInvalidParams, "missing 'name' parameter")
	}
	input, err := conversion.Arguments(params.Arguments)
	if err != nil {
		return failure(req.ID, codeInvalidParams, err.Error())
	}
	result, err := h.service.Run(ctx, &service.Request{Path: params.Name, Input: input, Source: source})
	if err != nil {
		return failure(req.ID, callErrorCode(err), callErrorMessage(err))
	}
	output := result.Output
	return success(req.ID, &callToolResult{
		Content: []mcpschema.TextContent{{Type: "text", Text: output.Stdout}},
		IsError: output.ExitCode != 0,
	})
}

func callErrorCode(err error) int {
	var lookup *command.LookupError
	var validation *command.ValidationError
	switch {
	case errors.As(err, &lookup):
		return codeToolNotFound
	case errors.As(err, &validation):
		return codeInvalidParams
	}
	return jsonrpc.InternalError
}

func callErrorMessage(err error) string {
	var lookup *command.LookupError
	if errors.As(err, &lookup) {
		return fmt.Sprintf("Tool not found: Command not found: %v", err)
	}
	return err.Error()
}
