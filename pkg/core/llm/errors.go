package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"
)

// CallError is the serializable record a failed call normalizes into. It
// travels with the batch result instead of aborting the batch.
type CallError struct {
	ErrorType   string `json:"error_type"`
	Message     string `json:"error_message"`
	IsRateLimit bool   `json:"is_rate_limit"`
	IsTimeout   bool   `json:"is_timeout"`
	Raw         error  `json:"-"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

func (e *CallError) Unwrap() error { return e.Raw }

// Normalize converts any error from a provider call into a CallError.
// Classification is by message content: rate limiting when the message
// contains "Rate" or "429", timeout when the lowercased message contains
// "timeout". A nil error normalizes to nil.
func Normalize(err error) *CallError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &CallError{
		ErrorType:   errorTypeOf(err),
		Message:     msg,
		IsRateLimit: strings.Contains(msg, "Rate") || strings.Contains(msg, "429"),
		IsTimeout:   strings.Contains(strings.ToLower(msg), "timeout"),
		Raw:         err,
	}
}

// errorTypeOf names the concrete failure class. Known wrapped types get a
// stable label; anything else falls back to its Go type name.
func errorTypeOf(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return "APIError"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "DeadlineExceeded"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "NetTimeout"
	}

	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
