package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminders-cli/internal/reminder"
)

// connect starts an in-process MCP client against s, the way an MCP host
// would over stdio.
func connect(t *testing.T, s *Server) *client.Client {
	t.Helper()
	ctx := context.Background()

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Start(ctx))

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "reminders-test",
		Version: "1.0.0",
	}
	_, err = c.Initialize(ctx, initRequest)
	require.NoError(t, err)
	return c
}

func callText(t *testing.T, c *client.Client, name string, args map[string]any) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.CallTool(context.Background(), request)
	require.NoError(t, err)

	var output strings.Builder
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			output.WriteString(textContent.Text)
		}
	}
	return output.String(), result.IsError
}

func TestClientListsTools(t *testing.T) {
	c := connect(t, newTestServer(newFakeService()))

	result, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"add_reminder", "get_reminder", "list_reminders",
		"complete_reminder", "update_reminder", "delete_reminder",
	}, names)
}

func TestClientRoundTrip(t *testing.T) {
	svc := newFakeService()
	c := connect(t, newTestServer(svc))

	out, isErr := callText(t, c, "add_reminder", map[string]any{
		"title":    "Pay bills",
		"due_date": "2019-05-24T19:30:00Z",
	})
	require.False(t, isErr, out)
	require.Len(t, svc.created, 1)
	assert.Contains(t, out, svc.created[0].ID)

	svc.stored[svc.created[0].ID] = svc.created[0]

	out, isErr = callText(t, c, "complete_reminder", map[string]any{"id": svc.created[0].ID})
	require.False(t, isErr, out)
	assert.Equal(t, `Reminder "Pay bills" marked as done.`, out)

	out, isErr = callText(t, c, "get_reminder", map[string]any{"id": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, out, "no reminder")

	_, isErr = callText(t, c, "delete_reminder", map[string]any{"id": svc.created[0].ID})
	assert.False(t, isErr)
	assert.Equal(t, []string{svc.created[0].ID}, svc.deleted)

	assert.True(t, reminder.IsLocalID(svc.created[0].ID))
}
