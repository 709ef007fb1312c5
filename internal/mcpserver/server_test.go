package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminders-cli/internal/reminder"
	"github.com/notexe/reminders-cli/internal/remote"
	"github.com/notexe/reminders-cli/internal/timeparse"
)

type fakeService struct {
	created   []reminder.Reminder
	updated   []reminder.Reminder
	deleted   []string
	stored    map[string]reminder.Reminder
	page      *remote.Page
	listCount int
	listAfter int64
	err       error
}

func newFakeService() *fakeService {
	return &fakeService{stored: make(map[string]reminder.Reminder)}
}

func (f *fakeService) Create(_ context.Context, r reminder.Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeService) Get(_ context.Context, id string) (*reminder.Reminder, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.stored[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeService) Update(_ context.Context, r reminder.Reminder) error {
	f.updated = append(f.updated, r)
	return f.err
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeService) Complete(ctx context.Context, id string) (*reminder.Reminder, error) {
	r, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, remote.ErrNotFound
	}
	done := r.WithDone(true)
	return &done, nil
}

func (f *fakeService) List(_ context.Context, count int, cursorMs int64) (*remote.Page, error) {
	f.listCount, f.listAfter = count, cursorMs
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &remote.Page{}, nil
	}
	return f.page, nil
}

func newTestServer(svc Service) *Server {
	s := NewServer(svc, timeparse.New(time.UTC), nil)
	s.now = func() time.Time { return time.Date(2019, time.May, 24, 10, 0, 0, 0, time.UTC) }
	return s
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return tc.Text
}

func TestAddReminder(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(svc)

	res, err := s.handleAddReminder(context.Background(), call(map[string]any{
		"title":    "Pay bills",
		"due_date": "2019-05-24T19:30:00Z",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	require.Len(t, svc.created, 1)
	got := svc.created[0]
	assert.Equal(t, "Pay bills", got.Title)
	assert.True(t, got.Due.Equal(time.Date(2019, time.May, 24, 19, 30, 0, 0, time.UTC)))
	assert.True(t, reminder.IsLocalID(got.ID))

	var echoed reminder.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &echoed))
	assert.Equal(t, got.ID, echoed.ID)
}

func TestAddReminderAllDay(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(svc)

	res, err := s.handleAddReminder(context.Background(), call(map[string]any{
		"title":    "Holiday",
		"due_date": "2019-06-01",
		"all_day":  true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	require.Len(t, svc.created, 1)
	assert.True(t, svc.created[0].AllDay)
}

func TestAddReminderValidation(t *testing.T) {
	tests := map[string]struct {
		args    map[string]any
		wantMsg string
	}{
		"missing title": {
			args:    map[string]any{"due_date": "tomorrow"},
			wantMsg: "title is required",
		},
		"missing due": {
			args:    map[string]any{"title": "x"},
			wantMsg: "due_date is required",
		},
		"bad due": {
			args:    map[string]any{"title": "x", "due_date": "whenever you like"},
			wantMsg: "invalid due_date",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newFakeService()
			res, err := newTestServer(svc).handleAddReminder(context.Background(), call(tc.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tc.wantMsg)
			assert.Empty(t, svc.created)
		})
	}
}

func TestGetReminder(t *testing.T) {
	svc := newFakeService()
	svc.stored["abc"] = reminder.Reminder{ID: "abc", Title: "Call mom"}
	s := newTestServer(svc)

	res, err := s.handleGetReminder(context.Background(), call(map[string]any{"id": "abc"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Call mom")

	res, err = s.handleGetReminder(context.Background(), call(map[string]any{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "no reminder with id=missing")
}

func TestListReminders(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(svc)

	res, err := s.handleListReminders(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "No reminders found.", text(t, res))
	assert.Equal(t, defaultListCount, svc.listCount)
	assert.Zero(t, svc.listAfter)

	svc.page = &remote.Page{
		Reminders:  []reminder.Reminder{{ID: "a", Title: "A"}},
		NextCursor: 1558726200000,
	}
	res, err = s.handleListReminders(context.Background(), call(map[string]any{
		"count":  float64(3),
		"before": float64(1558800000000),
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, svc.listCount)
	assert.Equal(t, int64(1558800000000), svc.listAfter)

	var got listResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, int64(1558726200000), got.NextCursor)
	require.Len(t, got.Reminders, 1)
	assert.Equal(t, "A", got.Reminders[0].Title)

	res, err = s.handleListReminders(context.Background(), call(map[string]any{"count": float64(-1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCompleteReminder(t *testing.T) {
	svc := newFakeService()
	svc.stored["abc"] = reminder.Reminder{ID: "abc", Title: "Call mom"}
	s := newTestServer(svc)

	res, err := s.handleCompleteReminder(context.Background(), call(map[string]any{"id": "abc"}))
	require.NoError(t, err)
	assert.Equal(t, `Reminder "Call mom" marked as done.`, text(t, res))

	res, err = s.handleCompleteReminder(context.Background(), call(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "reminder not found")
}

func TestUpdateReminder(t *testing.T) {
	svc := newFakeService()
	created := int64(1558726200000)
	svc.stored["abc"] = reminder.Reminder{ID: "abc", Title: "Call mom", CreationTimestampMs: &created}
	s := newTestServer(svc)

	res, err := s.handleUpdateReminder(context.Background(), call(map[string]any{
		"id":       "abc",
		"due_date": "2019-05-30 08:00",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	require.Len(t, svc.updated, 1)
	assert.Equal(t, "Call mom", svc.updated[0].Title)
	assert.True(t, svc.updated[0].Due.Equal(time.Date(2019, time.May, 30, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, &created, svc.updated[0].CreationTimestampMs)

	res, err = s.handleUpdateReminder(context.Background(), call(map[string]any{"id": "abc"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDeleteReminder(t *testing.T) {
	svc := newFakeService()
	s := newTestServer(svc)

	res, err := s.handleDeleteReminder(context.Background(), call(map[string]any{"id": "abc"}))
	require.NoError(t, err)
	assert.Equal(t, "Reminder abc deleted.", text(t, res))
	assert.Equal(t, []string{"abc"}, svc.deleted)
}

func TestToolErrorReportsStatus(t *testing.T) {
	svc := newFakeService()
	svc.err = &remote.RemoteError{Op: remote.OpDelete, StatusCode: 403, Body: []byte("denied")}
	s := newTestServer(svc)

	res, err := s.handleDeleteReminder(context.Background(), call(map[string]any{"id": "abc"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "failed to delete reminder: service returned status 403", text(t, res))

	svc.err = errors.New("dial tcp: refused")
	res, err = s.handleListReminders(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "dial tcp: refused")
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(newFakeService())

	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"add_reminder", "get_reminder", "list_reminders", "complete_reminder", "update_reminder", "delete_reminder"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
