package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// UpstreamError wraps a provider failure. It matches domain.ErrUpstreamThrottled
// for HTTP 429 and domain.ErrUpstreamUnavailable for everything else, and
// still unwraps to the original cause.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error [%d]: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{e.kind(), e.Err}
}

// Throttled reports whether the provider answered 429.
func (e *UpstreamError) Throttled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *UpstreamError) kind() error {
	if e.Throttled() {
		return domain.ErrUpstreamThrottled
	}
	return domain.ErrUpstreamUnavailable
}

// classify wraps err unless it is already an *UpstreamError.
func classify(provider string, status int, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = 0
	}
	return &UpstreamError{Provider: provider, StatusCode: status, Err: err}
}
