package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/mcp/tool"
	"github.com/viant/jsonrpc"
)

const mimeTypeJSON = "application/json"

// Resource is the state endpoint of a command.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

// Resources returns the state resources of leaves that support state.
func (h *Handler) Resources() []Resource {
	var ret []Resource
	for _, leaf := range h.service.Tree().Root().Leaves() {
		if leaf.Descriptor == nil || !leaf.Descriptor.HasState() {
			continue
		}
		description := leaf.Descriptor.Description
		if description == "" {
			description = "State for command: " + leaf.Name
		}
		ret = append(ret, Resource{
			URI:         tool.NewName(leaf.Segments).ResourceURI(),
			Name:        leaf.Name,
			Description: description,
			MimeType:    mimeTypeJSON,
		})
	}
	return ret
}

func (h *Handler) listResources(req *request) *response {
	if err := h.service.Reload(); err != nil {
		return failure(req.ID, jsonrpc.InternalError, fmt.Sprintf("Failed to reload commands: %v", err))
	}
	resources := h.Resources()
	if resources == nil {
		resources = []Resource{}
	}
	return success(req.ID, map[string]interface{}{"resources": resources})
}

func (h *Handler) readResource(ctx context.Context, req *request, source string) *response {
	params := &readResourceParams{}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, params); err != nil {
			return failure(req.ID, codeInvalidParams, err.Error())
		}
	}
	if params.URI == "" {
		return failure(req.ID, codeInvalidParams, "missing 'uri' parameter")
	}
	name, err := tool.ParseResourceURI(params.URI)
	if err != nil {
		return failure(req.ID, codeResourceNotFound, err.Error())
	}
	result, err := h.service.State(ctx, name.String(), source, h.service.Constants())
	if err != nil {
		return failure(req.ID, stateErrorCode(err), stateErrorMessage(err))
	}
	output := result.Output
	if output.ExitCode != 0 {
		return failure(req.ID, codeScriptFailed, fmt.Sprintf("script --state exited with code %d", output.ExitCode))
	}
	text, err := json.Marshal(output.Result())
	if err != nil {
		return failure(req.ID, jsonrpc.InternalError, err.Error())
	}
	return success(req.ID, map[string]interface{}{
		"contents": []resourceContent{{URI: params.URI, MimeType: mimeTypeJSON, Text: string(text)}},
	})
}

func stateErrorCode(err error) int {
	var lookup *command.LookupError
	switch {
	case errors.Is(err, command.ErrNoState), errors.Is(err, command.ErrNoDescriptor):
		return codeResourceNotFound
	case errors.As(err, &lookup):
		return codeToolNotFound
	}
	return jsonrpc.InternalError
}

func stateErrorMessage(err error) string {
	switch {
	case errors.Is(err, command.ErrNoState), errors.Is(err, command.ErrNoDescriptor):
		return "command does not support state"
	case errors.As(err, new(*command.LookupError)):
		return fmt.Sprintf("Tool not found: Command not found: %v", err)
	}
	return err.Error()
}
