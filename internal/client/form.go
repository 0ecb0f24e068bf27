package client

import (
	"errors"
	"sync"
)

// Status is where a form is in its submit cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in-flight"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrInFlight is returned when a form is submitted while a previous
// submission has not settled.
var ErrInFlight = errors.New("submission already in progress")

// FormState tracks one form: idle, then in flight, then settled with a
// success or error message. A settled form can be submitted again.
type FormState struct {
	mu      sync.Mutex
	status  Status
	message string
}

// Status returns the current status and its message.
func (f *FormState) Status() (Status, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.message
}

func (f *FormState) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusInFlight {
		return ErrInFlight
	}
	f.status = StatusInFlight
	f.message = ""
	return nil
}

func (f *FormState) succeed(msg string) {
	f.settle(StatusSuccess, msg)
}

func (f *FormState) fail(msg string) {
	f.settle(StatusError, msg)
}

func (f *FormState) settle(s Status, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
	f.message = msg
}

// errorMessage picks the text shown for err, preferring the server's own.
func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
