// Package agenttools exposes a project's workspace and spec documents to
// coding agents as MCP tools.
package agenttools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"specforge/internal/domain"
	"specforge/internal/domain/models/workspace"
	"specforge/internal/domain/services"
)

// ServerName and ServerVersion identify the MCP server to clients
const (
	ServerName    = "specforge"
	ServerVersion = "1.0.0"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Tools binds MCP tool handlers to a coordinator
type Tools struct {
	coordinator services.Coordinator
	logger      *slog.Logger
	handlers    map[string]toolHandler
}

// New creates the tool set. Call Register to add it to a server.
func New(coordinator services.Coordinator, logger *slog.Logger) *Tools {
	return &Tools{
		coordinator: coordinator,
		logger:      logger,
		handlers:    make(map[string]toolHandler),
	}
}

// NewServer creates an MCP server with every tool registered
func NewServer(coordinator services.Coordinator, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))
	New(coordinator, logger).Register(s)
	return s
}

// Register adds the workspace and spec tools to s
func (t *Tools) Register(s *server.MCPServer) {
	projectArg := mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier"))

	t.add(s, mcp.NewTool(
		"workspace_tree",
		mcp.WithDescription("Return the project's whole file tree as JSON"),
		projectArg,
	), t.workspaceTree)

	t.add(s, mcp.NewTool(
		"workspace_read",
		mcp.WithDescription("Read a text file from the workspace"),
		projectArg,
		mcp.WithString("path", mcp.Required(), mcp.Description("File path, e.g. src/app.js")),
	), t.workspaceRead)

	t.add(s, mcp.NewTool(
		"workspace_write",
		mcp.WithDescription("Write a file, creating it and any missing parent directories"),
		projectArg,
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full text content")),
	), t.workspaceWrite)

	t.add(s, mcp.NewTool(
		"workspace_create",
		mcp.WithDescription("Create a file or directory; fails if the path exists"),
		projectArg,
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to create")),
		mcp.WithString("type", mcp.Required(), mcp.Enum(string(workspace.KindFile), string(workspace.KindDirectory)), mcp.Description("Node type")),
		mcp.WithString("content", mcp.Description("Initial content for files, optional")),
	), t.workspaceCreate)

	t.add(s, mcp.NewTool(
		"workspace_delete",
		mcp.WithDescription("Delete a file or a directory with everything under it"),
		projectArg,
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to delete")),
	), t.workspaceDelete)

	t.add(s, mcp.NewTool(
		"spec_get",
		mcp.WithDescription("Read the current version of a spec document (design, requirements, tasks, ...)"),
		projectArg,
		mcp.WithString("file_type", mcp.Required(), mcp.Description("Document type, e.g. design")),
	), t.specGet)
}

func (t *Tools) add(s *server.MCPServer, tool mcp.Tool, h toolHandler) {
	s.AddTool(tool, h)
	t.handlers[tool.Name] = h
}

// Call invokes a registered tool directly, bypassing the transport
func (t *Tools) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, ok := t.handlers[req.Params.Name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", req.Params.Name)
	}
	return h(ctx, req)
}

func (t *Tools) workspaceTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ws, err := t.coordinator.GetWorkspace(ctx, projectID)
	if err != nil {
		return t.toolError("workspace_tree", err)
	}
	data, err := json.MarshalIndent(ws.Root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) workspaceRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, path, err := projectAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := t.coordinator.ReadFile(ctx, projectID, path)
	if err != nil {
		return t.toolError("workspace_read", err)
	}
	return mcp.NewToolResultText(content), nil
}

func (t *Tools) workspaceWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, path, err := projectAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ws, err := t.coordinator.WriteFile(ctx, projectID, path, content)
	if err != nil {
		return t.toolError("workspace_write", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote %s (%d bytes, revision %d)", path, len(content), ws.Revision)), nil
}

func (t *Tools) workspaceCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, path, err := projectAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind := workspace.Kind(req.GetString("type", ""))
	if !kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("type must be %q or %q", workspace.KindFile, workspace.KindDirectory)), nil
	}

	ws, err := t.coordinator.CreatePath(ctx, projectID, path, kind, req.GetString("content", ""))
	if err != nil {
		return t.toolError("workspace_create", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %s %s (revision %d)", kind, path, ws.Revision)), nil
}

func (t *Tools) workspaceDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, path, err := projectAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ws, err := t.coordinator.DeletePath(ctx, projectID, path)
	if err != nil {
		return t.toolError("workspace_delete", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s (revision %d)", path, ws.Revision)), nil
}

func (t *Tools) specGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileType, err := req.RequireString("file_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := t.coordinator.GetLatestSpec(ctx, projectID, fileType)
	if err != nil {
		return t.toolError("spec_get", err)
	}
	return mcp.NewToolResultText(file.Content), nil
}

func projectAndPath(req mcp.CallToolRequest) (string, string, error) {
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return "", "", err
	}
	path, err := req.RequireString("path")
	if err != nil {
		return "", "", err
	}
	return projectID, path, nil
}

// toolError reports caller mistakes back to the agent as tool errors so it
// can correct itself. Anything else is an internal failure.
func (t *Tools) toolError(tool string, err error) (*mcp.CallToolResult, error) {
	if isCallerError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Error("tool failed", "tool", tool, "error", err)
	return nil, fmt.Errorf("%s: %w", tool, err)
}

func isCallerError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidArgument,
		domain.ErrInvalidPath,
		domain.ErrNotADirectory,
		domain.ErrIsADirectory,
		domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
