package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/notexe/reminders-cli/internal/reminder"
)

// ErrNoCreationTimestamp is returned by EncodeUpdate for a reminder that was
// never read back from the server.
var ErrNoCreationTimestamp = errors.New("reminder has no creation timestamp")

// Codec converts between reminders and request/response bodies.
//
// Date components carry no zone on the wire; Location is the zone they are
// interpreted in. Now supplies the clock for the update timestamp and for the
// date fallback of reminders without scheduling info.
type Codec struct {
	Location *time.Location
	Now      func() time.Time
}

// NewCodec returns a codec using the local zone and the system clock.
func NewCodec() *Codec {
	return &Codec{Location: time.Local, Now: time.Now}
}

func (c *Codec) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// EncodeCreate returns the body of a create request.
func (c *Codec) EncodeCreate(r reminder.Reminder) ([]byte, error) {
	body := createRequest{
		Kind:   kindRef{Kind: createKind},
		Target: idRef{ID: r.ID},
		Task: task{
			ID:    &idRef{ID: r.ID},
			Title: &r.Title,
			Due:   c.encodeDue(r),
			Done:  intPtr(0),
		},
	}
	return marshal("create", body)
}

// EncodeUpdate returns the body of an update request. The reminder must
// carry the creation timestamp the server assigned to it.
func (c *Codec) EncodeUpdate(r reminder.Reminder) ([]byte, error) {
	if r.CreationTimestampMs == nil {
		return nil, fmt.Errorf("failed to encode update of %s: %w", r.ID, ErrNoCreationTimestamp)
	}

	modified := Int64String(c.now().UnixMilli())
	created := Int64String(*r.CreationTimestampMs)

	body := updateRequest{
		Target: idRef{ID: r.ID},
		Task: task{
			ID:          &idRef{ID: r.ID},
			Title:       &r.Title,
			Due:         c.encodeDue(r),
			Done:        intPtr(boolInt(r.Done)),
			CompletedMs: &modified,
			CreatedMs:   &created,
		},
		Mask: fieldMask{Fields: updateFieldMask},
	}
	return marshal("update", body)
}

// EncodeGet returns the body of a get request.
func (c *Codec) EncodeGet(id string) ([]byte, error) {
	return marshal("get", lookupRequest{Targets: []idRef{{ID: id}}})
}

// EncodeDelete returns the body of a delete request.
func (c *Codec) EncodeDelete(id string) ([]byte, error) {
	return marshal("delete", lookupRequest{Targets: []idRef{{ID: id}}})
}

// EncodeList returns the body of a list request for at most count reminders
// created before boundaryMs. A zero boundary means no upper bound. The
// boundary is sent as given; see remote.Boundary for the offset applied to
// continuation cursors.
func (c *Codec) EncodeList(count int, boundaryMs int64) ([]byte, error) {
	return marshal("list", listRequest{Flag: 1, Count: count, Below: boundaryMs})
}

func (c *Codec) encodeDue(r reminder.Reminder) *dueDate {
	loc := c.location()
	due := r.Due.In(loc)

	year, month, day := due.Year(), int(due.Month()), due.Day()
	hour, minute, second := due.Hour(), due.Minute(), due.Second()

	// A stored time inside a daylight-saving gap is written back as stored,
	// unless Due has been changed since it was read.
	if w := r.DueWall; w != nil && w.In(loc).Equal(r.Due) {
		year, month, day = w.Year, w.Month, w.Day
		hour, minute, second = w.Hour, w.Minute, w.Second
	}

	if r.AllDay {
		hour, minute, second = 0, 0, 0
	}

	return &dueDate{
		Year:  intPtr(year),
		Month: intPtr(month),
		Day:   intPtr(day),
		Time: &timeOfDay{
			Hour:   intPtr(hour),
			Minute: intPtr(minute),
			Second: intPtr(second),
		},
		AllDay: intPtr(boolInt(r.AllDay)),
	}
}

func marshal(op string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	return data, nil
}

// DecodeReminder builds a reminder from a single task representation.
func (c *Codec) DecodeReminder(raw json.RawMessage) (*reminder.Reminder, error) {
	var t task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, &DecodeError{Index: -1, Err: err, Raw: raw}
	}

	r, derr := c.fromTask(t)
	if derr != nil {
		derr.Raw = raw
		return nil, derr
	}
	return r, nil
}

func (c *Codec) fromTask(t task) (*reminder.Reminder, *DecodeError) {
	if t.ID == nil {
		return nil, missing("1")
	}
	if t.Title == nil {
		return nil, missing("3")
	}
	if t.CreatedMs == nil {
		return nil, missing("18")
	}

	due, wall, allDay, derr := c.decodeDue(t.Due)
	if derr != nil {
		return nil, derr
	}

	created := int64(*t.CreatedMs)
	r := &reminder.Reminder{
		ID:                  t.ID.ID,
		Title:               *t.Title,
		Due:                 due,
		DueWall:             wall,
		AllDay:              allDay,
		Done:                t.Done != nil && *t.Done == 1,
		CreationTimestampMs: &created,
	}
	if t.CompletedMs != nil {
		completed := int64(*t.CompletedMs)
		r.CompletionTimestampMs = &completed
	}
	return r, nil
}

// decodeDue returns the due instant and, when the stored clock time does not
// exist in the codec location, the stored components to write back.
func (c *Codec) decodeDue(d *dueDate) (time.Time, *reminder.Wall, bool, *DecodeError) {
	loc := c.location()

	// No scheduling info: the reminder is pinned to today.
	if d == nil {
		now := c.now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil, false, nil
	}

	switch {
	case d.Year == nil:
		return time.Time{}, nil, false, missing("5.1")
	case d.Month == nil:
		return time.Time{}, nil, false, missing("5.2")
	case d.Day == nil:
		return time.Time{}, nil, false, missing("5.3")
	}

	var hour, minute, second int
	if d.Time != nil {
		switch {
		case d.Time.Hour == nil:
			return time.Time{}, nil, false, missing("5.4.1")
		case d.Time.Minute == nil:
			return time.Time{}, nil, false, missing("5.4.2")
		case d.Time.Second == nil:
			return time.Time{}, nil, false, missing("5.4.3")
		}
		hour, minute, second = *d.Time.Hour, *d.Time.Minute, *d.Time.Second
	}

	due, err := calendarTime(*d.Year, *d.Month, *d.Day, hour, minute, second, loc)
	if err != nil {
		return time.Time{}, nil, false, &DecodeError{Index: -1, Field: "5", Err: err}
	}

	var wall *reminder.Wall
	if due.Hour() != hour || due.Minute() != minute || due.Second() != second {
		wall = &reminder.Wall{
			Year: *d.Year, Month: *d.Month, Day: *d.Day,
			Hour: hour, Minute: minute, Second: second,
		}
	}

	allDay := d.AllDay != nil && *d.AllDay == 1
	return due, wall, allDay, nil
}

// calendarTime is time.Date without normalisation: out-of-range components
// are an error rather than rolling over into the next unit.
func calendarTime(year, month, day, hour, minute, second int, loc *time.Location) (time.Time, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d %02d:%02d:%02d",
			ErrInvalidDate, year, month, day, hour, minute, second)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return t, nil
}

// DecodeGetResponse extracts the reminder from a get response. It returns
// nil without error when the server reports no such reminder.
func (c *Codec) DecodeGetResponse(body []byte) (*reminder.Reminder, error) {
	var env taskList
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Index: -1, Err: err, Raw: body}
	}
	if len(env.Tasks) == 0 {
		return nil, nil
	}
	return c.DecodeReminder(env.Tasks[0])
}

// DecodeListResponse decodes every element of a list response. Elements that
// fail to decode are reported individually and do not affect the others. A
// response without key "1" is an empty page.
func (c *Codec) DecodeListResponse(body []byte) ([]reminder.Reminder, []*DecodeError, error) {
	var env taskList
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, nil, &DecodeError{Index: -1, Err: err, Raw: body}
		}
	}

	reminders := make([]reminder.Reminder, 0, len(env.Tasks))
	var skipped []*DecodeError
	for i, raw := range env.Tasks {
		r, err := c.DecodeReminder(raw)
		if err != nil {
			var derr *DecodeError
			if !errors.As(err, &derr) {
				derr = &DecodeError{Err: err, Raw: raw}
			}
			derr.Index = i
			skipped = append(skipped, derr)
			continue
		}
		reminders = append(reminders, *r)
	}
	return reminders, skipped, nil
}
