package relay

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned when a request has neither text nor image.
	ErrEmptyInput = errors.New("message or image is required")
	// ErrModelUnavailable is returned when no upstream model is configured.
	ErrModelUnavailable = errors.New("ai model unavailable")
)

// ThrottledError reports that the turn was refused by the local limiter or
// by the upstream API. Exhausted marks a daily quota that will not recover
// within the retry hint.
type ThrottledError struct {
	SessionID  string
	RetryAfter time.Duration
	Exhausted  bool
}

func (e *ThrottledError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("session %s: daily quota exhausted", e.SessionID)
	}
	return fmt.Sprintf("session %s: throttled, retry after %s", e.SessionID, e.RetryAfter)
}

// RetryAfterSeconds rounds the hint up to whole seconds, never below one.
func (e *ThrottledError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// UpstreamFailure wraps any non rate related upstream error.
type UpstreamFailure struct {
	SessionID string
	Err       error
}

func (e *UpstreamFailure) Error() string {
	return fmt.Sprintf("session %s: %v", e.SessionID, e.Err)
}

func (e *UpstreamFailure) Unwrap() error {
	return e.Err
}
