package api

import (
	"fmt"
)

// NotFound indicates the daemon responded 404 for the given object or
// resource path.
type NotFound struct {
	Path string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

func (e *NotFound) Is(err error) bool {
	_, ok := err.(*NotFound)
	return ok
}

// Unauthorized indicates the daemon rejected the API password.
type Unauthorized struct{}

func (e *Unauthorized) Error() string {
	return "incorrect api password"
}

func (e *Unauthorized) Is(err error) bool {
	_, ok := err.(*Unauthorized)
	return ok
}

// StatusError is any other non-2xx daemon response, with the trimmed body
// text when one was sent.
type StatusError struct {
	Status int
	Text   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http response error, status code: %d, text: %q", e.Status, e.Text)
}

func (e *StatusError) Is(err error) bool {
	_, ok := err.(*StatusError)
	return ok
}

// Transport wraps a connection-level failure (dial, timeout, cancelled
// context, broken body). It is surfaced as-is; no retry happens below it.
type Transport struct {
	Err error
}

func (e *Transport) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *Transport) Unwrap() error {
	return e.Err
}

func (e *Transport) Is(err error) bool {
	_, ok := err.(*Transport)
	return ok
}

// NotSeekable indicates a seekable stream was requested for an object the
// daemon does not serve byte ranges for.
type NotSeekable struct {
	Path string
}

func (e *NotSeekable) Error() string {
	return fmt.Sprintf("the object at %q is not seekable", e.Path)
}

func (e *NotSeekable) Is(err error) bool {
	_, ok := err.(*NotSeekable)
	return ok
}

// RangeNotSatisfiable indicates the daemon rejected a byte range starting
// beyond the end of the object. A range starting at exactly the object's
// length is not an error; it is end-of-object.
type RangeNotSatisfiable struct {
	Offset int64
	Length int64 // -1 when the daemon did not reveal a length
}

func (e *RangeNotSatisfiable) Error() string {
	return fmt.Sprintf("range starting at %d not satisfiable (object length %d)", e.Offset, e.Length)
}

func (e *RangeNotSatisfiable) Is(err error) bool {
	_, ok := err.(*RangeNotSatisfiable)
	return ok
}

// UnknownLength indicates an operation needed the object's total length but
// the daemon never reported one.
type UnknownLength struct {
	Path string
}

func (e *UnknownLength) Error() string {
	return fmt.Sprintf("length of object at %q is unknown", e.Path)
}

func (e *UnknownLength) Is(err error) bool {
	_, ok := err.(*UnknownLength)
	return ok
}

// Protocol indicates the daemon sent malformed or self-contradictory range
// or length headers. The current operation is aborted; the stream position
// is left where it was.
type Protocol struct {
	Reason string
}

func (e *Protocol) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *Protocol) Is(err error) bool {
	_, ok := err.(*Protocol)
	return ok
}
