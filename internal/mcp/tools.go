package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openclaw/avpc/internal/errors"
	"github.com/openclaw/avpc/internal/vault"
)

// GetInput represents the input for the credential_get tool
type GetInput struct {
	Key string `json:"key" jsonschema:"Credential key"`
}

// SetInput represents the input for the credential_set tool
type SetInput struct {
	Key   string `json:"key" jsonschema:"Credential key"`
	Value string `json:"value" jsonschema:"Secret value"`
}

// DeleteInput represents the input for the credential_delete tool
type DeleteInput struct {
	Key string `json:"key" jsonschema:"Credential key"`
}

// ToolHandler manages MCP tools over an opened provider
type ToolHandler struct {
	provider *vault.Provider
}

// NewToolHandler creates a new tool handler
func NewToolHandler(p *vault.Provider) *ToolHandler {
	return &ToolHandler{provider: p}
}

func keySchema(extra map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"key": {
			Type:        "string",
			Description: "Credential key",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return &jsonschema.Schema{
		Type:       "object",
		Required:   required,
		Properties: props,
	}
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	server.AddTool(&mcp.Tool{
		Name:        "credential_get",
		Description: "Retrieve a credential from the vault",
		InputSchema: keySchema(nil, "key"),
	}, h.getHandler)

	server.AddTool(&mcp.Tool{
		Name:        "credential_set",
		Description: "Store a credential in the vault (creates or overwrites)",
		InputSchema: keySchema(map[string]*jsonschema.Schema{
			"value": {
				Type:        "string",
				Description: "Secret value",
			},
		}, "key", "value"),
	}, h.setHandler)

	server.AddTool(&mcp.Tool{
		Name:        "credential_delete",
		Description: "Delete a credential from the vault",
		InputSchema: keySchema(nil, "key"),
	}, h.deleteHandler)

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "credential_list",
		Description: "List credential keys in the workspace",
	}, h.List)
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: formatError(err)},
		},
	}
}

func okResult(data map[string]any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: formatOK(data)},
		},
	}
}

// getHandler is the raw handler for credential_get
func (h *ToolHandler) getHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input GetInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.Get(ctx, req, input)
	return result, err
}

// setHandler is the raw handler for credential_set
func (h *ToolHandler) setHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SetInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.Set(ctx, req, input)
	return result, err
}

// deleteHandler is the raw handler for credential_delete
func (h *ToolHandler) deleteHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input DeleteInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.Delete(ctx, req, input)
	return result, err
}

// Get retrieves a credential
func (h *ToolHandler) Get(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, any, error) {
	if input.Key == "" {
		return errorResult(errors.New(errors.CodeKeyInvalid, "key is required", nil)), nil, nil
	}
	cred, xe := h.provider.Get(ctx, input.Key)
	if xe != nil {
		return errorResult(xe), nil, nil
	}
	return okResult(map[string]any{
		"key":   cred.Key,
		"value": string(cred.Value),
		"meta":  cred.Meta,
	}), nil, nil
}

// Set stores a credential
func (h *ToolHandler) Set(ctx context.Context, req *mcp.CallToolRequest, input SetInput) (*mcp.CallToolResult, any, error) {
	if input.Key == "" {
		return errorResult(errors.New(errors.CodeKeyInvalid, "key is required", nil)), nil, nil
	}
	if input.Value == "" {
		return errorResult(errors.New(errors.CodeCfgInvalid, "value is required", nil)), nil, nil
	}
	if xe := h.provider.Set(ctx, input.Key, []byte(input.Value)); xe != nil {
		return errorResult(xe), nil, nil
	}
	return okResult(map[string]any{"key": input.Key, "stored": true}), nil, nil
}

// Delete removes a credential
func (h *ToolHandler) Delete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, any, error) {
	if input.Key == "" {
		return errorResult(errors.New(errors.CodeKeyInvalid, "key is required", nil)), nil, nil
	}
	deleted, xe := h.provider.Delete(ctx, input.Key)
	if xe != nil {
		return errorResult(xe), nil, nil
	}
	return okResult(map[string]any{"key": input.Key, "deleted": deleted}), nil, nil
}

// List lists credential keys
func (h *ToolHandler) List(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	keys, xe := h.provider.List(ctx)
	if xe != nil {
		return errorResult(xe), nil, nil
	}
	return okResult(map[string]any{
		"workspace": h.provider.Workspace(),
		"keys":      keys,
	}), nil, nil
}

func formatOK(data map[string]any) string {
	output := map[string]any{
		"ok":             true,
		"schema_version": 1,
		"data":           data,
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return string(jsonData)
}

func formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	output := map[string]any{
		"ok":             false,
		"schema_version": 1,
		"error": map[string]any{
			"code":    xe.Code,
			"message": xe.Message,
			"details": xe.Details,
		},
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return string(jsonData)
}

// CreateServer creates the MCP server with credential tools registered
func CreateServer(version string, p *vault.Provider) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "avpc",
		Version: version,
	}, nil)

	handler := NewToolHandler(p)
	handler.RegisterTools(server)

	return server, nil
}
