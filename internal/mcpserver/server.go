// Package mcpserver exposes the remote reminders as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/notexe/reminders-cli/internal/reminder"
	"github.com/notexe/reminders-cli/internal/remote"
	"github.com/notexe/reminders-cli/internal/timeparse"
)

const (
	serverName    = "reminders"
	serverVersion = "1.0.0"

	defaultListCount = 10
)

// Service is the subset of remote.Client the tools need.
type Service interface {
	Create(ctx context.Context, r reminder.Reminder) error
	Get(ctx context.Context, id string) (*reminder.Reminder, error)
	Update(ctx context.Context, r reminder.Reminder) error
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) (*reminder.Reminder, error)
	List(ctx context.Context, count int, cursorMs int64) (*remote.Page, error)
}

type Server struct {
	mcpServer *server.MCPServer
	service   Service
	parser    *timeparse.Parser
	now       func() time.Time
	logger    *zap.Logger
}

func NewServer(service Service, parser *timeparse.Parser, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: service,
		parser:  parser,
		now:     time.Now,
		logger:  logger,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a reminder with a title and a due time"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("due_date", mcp.Required(), mcp.Description("Due time in RFC3339 (2025-01-15T09:00:00Z) or a phrase such as \"tomorrow at 9am\"")),
			mcp.WithBoolean("all_day", mcp.Description("Whether the reminder has no time of day")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Fetch a reminder by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List the most recently created reminders, newest first. Use the returned next_cursor as before to get older ones."),
			mcp.WithNumber("count", mcp.Description("Maximum number of reminders (default 10)")),
			mcp.WithNumber("before", mcp.Description("Creation-time cursor in Unix milliseconds from a previous call")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as done"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Change the title or due time of a reminder"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("due_date", mcp.Description("New due time, same formats as add_reminder")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	dueText := req.GetString("due_date", "")
	allDay := req.GetBool("all_day", false)

	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	if dueText == "" {
		return mcp.NewToolResultError("due_date is required"), nil
	}

	due, err := s.parser.Parse(dueText, s.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid due_date: %v", err)), nil
	}

	r := reminder.New(title, due, allDay)
	if err := s.service.Create(ctx, r); err != nil {
		return s.toolError("failed to create reminder", err), nil
	}

	return jsonResult(r), nil
}

func (s *Server) handleGetReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	r, err := s.service.Get(ctx, id)
	if err != nil {
		return s.toolError("failed to get reminder", err), nil
	}
	if r == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no reminder with id=%s", id)), nil
	}

	return jsonResult(r), nil
}

type listResult struct {
	Reminders  []reminder.Reminder `json:"reminders"`
	Skipped    int                 `json:"skipped,omitempty"`
	NextCursor int64               `json:"next_cursor,omitempty"`
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := int(req.GetFloat("count", defaultListCount))
	before := int64(req.GetFloat("before", 0))

	if count < 0 {
		return mcp.NewToolResultError("count must not be negative"), nil
	}
	if before < 0 {
		return mcp.NewToolResultError("before must not be negative"), nil
	}

	page, err := s.service.List(ctx, count, before)
	if err != nil {
		return s.toolError("failed to list reminders", err), nil
	}

	if page.Len() == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	return jsonResult(listResult{
		Reminders:  page.Reminders,
		Skipped:    len(page.Skipped),
		NextCursor: page.NextCursor,
	}), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	done, err := s.service.Complete(ctx, id)
	if err != nil {
		return s.toolError("failed to complete reminder", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %q marked as done.", done.Title)), nil
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	title := strings.TrimSpace(req.GetString("title", ""))
	dueText := req.GetString("due_date", "")
	if title == "" && dueText == "" {
		return mcp.NewToolResultError("nothing to update: give title or due_date"), nil
	}

	var due time.Time
	if dueText != "" {
		var err error
		if due, err = s.parser.Parse(dueText, s.now()); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_date: %v", err)), nil
		}
	}

	r, err := s.service.Get(ctx, id)
	if err != nil {
		return s.toolError("failed to get reminder", err), nil
	}
	if r == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no reminder with id=%s", id)), nil
	}

	if title != "" {
		r.Title = title
	}
	if !due.IsZero() {
		r.Due = due
	}

	if err := s.service.Update(ctx, *r); err != nil {
		return s.toolError("failed to update reminder", err), nil
	}

	return jsonResult(r), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.service.Delete(ctx, id); err != nil {
		return s.toolError("failed to delete reminder", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

// toolError reports a failed call to the model. Protocol-level errors are
// reserved for the transport.
func (s *Server) toolError(msg string, err error) *mcp.CallToolResult {
	s.logger.Warn(msg, zap.Error(err))

	switch {
	case errors.Is(err, remote.ErrNotFound):
		return mcp.NewToolResultError(msg + ": reminder not found")
	case remote.StatusCode(err) != 0:
		return mcp.NewToolResultError(fmt.Sprintf("%s: service returned status %d", msg, remote.StatusCode(err)))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}
