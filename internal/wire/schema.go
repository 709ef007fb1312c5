// Package wire maps reminders to and from the numeric-keyed JSON shape
// accepted by the remote reminders endpoint.
//
// The shape is a JSON rendering of an undocumented protobuf message: object
// keys are field numbers, and the meaning of each number was established by
// observing traffic. Every nesting level is modelled as a struct so that a
// change of shape fails loudly instead of silently producing maps.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// createKind is the constant discriminator carried by create requests.
const createKind = 7

// updateFieldMask lists the task fields an update request overwrites.
var updateFieldMask = []int{0, 1, 3, 10}

// idRef wraps a reminder id: {"2": id}.
type idRef struct {
	ID string `json:"2"`
}

// timeOfDay is the {"1": hour, "2": minute, "3": second} block.
type timeOfDay struct {
	Hour   *int `json:"1,omitempty"`
	Minute *int `json:"2,omitempty"`
	Second *int `json:"3,omitempty"`
}

// dueDate is the scheduling block found under task key "5".
type dueDate struct {
	Year   *int       `json:"1,omitempty"`
	Month  *int       `json:"2,omitempty"`
	Day    *int       `json:"3,omitempty"`
	Time   *timeOfDay `json:"4,omitempty"`
	AllDay *int       `json:"9,omitempty"`
}

// task is the representation of a single reminder, used both in request
// bodies and in get/list responses.
type task struct {
	ID          *idRef       `json:"1,omitempty"`
	Title       *string      `json:"3,omitempty"`
	Due         *dueDate     `json:"5,omitempty"`
	Done        *int         `json:"8,omitempty"`
	CompletedMs *Int64String `json:"11,omitempty"`
	CreatedMs   *Int64String `json:"18,omitempty"`
}

type kindRef struct {
	Kind int `json:"1"`
}

type createRequest struct {
	Kind   kindRef `json:"2"`
	Target idRef   `json:"3"`
	Task   task    `json:"4"`
}

type fieldMask struct {
	Fields []int `json:"1"`
}

type updateRequest struct {
	Target idRef     `json:"2"`
	Task   task      `json:"4"`
	Mask   fieldMask `json:"7"`
}

// lookupRequest is shared by get and delete.
type lookupRequest struct {
	Targets []idRef `json:"2"`
}

type listRequest struct {
	// Must be 1; the service rejects 0.
	Flag  int   `json:"5"`
	Count int   `json:"6"`
	Below int64 `json:"16,omitempty"`
}

// taskList is the response envelope of get and list.
type taskList struct {
	Tasks []json.RawMessage `json:"1"`
}

// Int64String is a 64-bit integer that the service transmits as a decimal
// string. Decoding also accepts a bare JSON number.
type Int64String int64

// MarshalJSON encodes the value as a quoted decimal string.
func (v Int64String) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(v), 10))
}

// UnmarshalJSON accepts "123" or 123.
func (v *Int64String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("not a decimal integer: %q", s)
		}
		*v = Int64String(n)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Int64String(n)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
