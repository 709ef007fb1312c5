package reminder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// idPrefix marks ids generated by this client rather than by the server.
const idPrefix = "cli-reminder-"

// Reminder represents a single reminder as stored by the remote service.
type Reminder struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Due    time.Time `json:"due"`
	AllDay bool      `json:"all_day"`
	Done   bool      `json:"done"`

	// Set only when the stored date and time name no instant in the local
	// zone (a daylight-saving gap). See Wall.
	DueWall *Wall `json:"due_wall,omitempty"`

	// Server-assigned. Never set locally; used only as a pagination key.
	CreationTimestampMs   *int64 `json:"creation_timestamp_ms,omitempty"`
	CompletionTimestampMs *int64 `json:"completion_timestamp_ms,omitempty"`
}

// Wall is a calendar date and clock time as the service stores them, with no
// zone attached. 02:30 on a spring-forward day is a valid Wall but not a
// valid local time, so Due alone would write back a different hour.
type Wall struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// In returns the instant Go picks for w in loc.
func (w Wall) In(loc *time.Location) time.Time {
	return time.Date(w.Year, time.Month(w.Month), w.Day, w.Hour, w.Minute, w.Second, 0, loc)
}

// New builds a reminder with a freshly generated id.
func New(title string, due time.Time, allDay bool) Reminder {
	return Reminder{
		ID:     NewID(time.Now()),
		Title:  title,
		Due:    due,
		AllDay: allDay,
	}
}

// NewID returns an id derived from the given instant. Two ids generated
// within the same microsecond collide.
func NewID(now time.Time) string {
	secs := float64(now.UnixMicro()) / 1e6
	return idPrefix + strconv.FormatFloat(secs, 'f', -1, 64)
}

// IsLocalID reports whether id was generated by NewID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, idPrefix)
}

// CreatedAt returns the server creation time, or the zero time when unknown.
func (r Reminder) CreatedAt() time.Time {
	if r.CreationTimestampMs == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.CreationTimestampMs)
}

// WithDone returns a copy of r with the completion flag set.
func (r Reminder) WithDone(done bool) Reminder {
	r.Done = done
	return r
}

func (r Reminder) String() string {
	return fmt.Sprintf("%s: %s ; id=%q", r.Due.Format("2006-01-02 15:04"), r.Title, r.ID)
}

// SortByDue orders reminders by due time, keeping arrival order for ties.
func SortByDue(reminders []Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Due.Before(reminders[j].Due)
	})
}
