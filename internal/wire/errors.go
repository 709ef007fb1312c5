package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is wrapped by a DecodeError for an absent mandatory key.
var ErrMissingField = errors.New("missing field")

// ErrInvalidDate is wrapped by a DecodeError for impossible calendar values.
var ErrInvalidDate = errors.New("invalid calendar date")

// DecodeError reports a reminder representation that does not match the
// expected shape. For list responses Index is the position of the element
// within the page; it is -1 otherwise.
type DecodeError struct {
	Index int
	Field string
	Err   error
	Raw   json.RawMessage
}

func (e *DecodeError) Error() string {
	msg := "unrecognized reminder format"
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s at index %d", msg, e.Index)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func missing(field string) *DecodeError {
	return &DecodeError{Index: -1, Field: field, Err: ErrMissingField}
}
