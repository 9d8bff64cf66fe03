package domain

import "errors"

// Failures surfaced to callers. Everything else degrades to a fallback.
var (
	// ErrRateLimited means the process-wide limiter rejected the upstream call.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUpstreamUnavailable covers non-2xx (other than 429) responses, network failures and timeouts.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ErrUpstreamThrottled marks an HTTP 429 from the provider. The chat flow
// converts it into ThrottledFallback and never returns it to callers.
var ErrUpstreamThrottled = errors.New("upstream throttled")

// ErrInvalidInput is returned for malformed caller input.
var ErrInvalidInput = errors.New("invalid input")

// ThrottledFallback is the reply returned when the provider answers 429.
const ThrottledFallback = "I apologize, but I'm currently experiencing high demand. Please try again in a few moments. " +
	"In the meantime, I can help you with construction management best practices and general guidance."

// SessionError ties a failed chat turn to the session it was recorded in, so
// a caller that sent no session id can retry into the same session.
type SessionError struct {
	SessionID string
	Err       error
}

func (e *SessionError) Error() string { return e.Err.Error() }

func (e *SessionError) Unwrap() error { return e.Err }
