package assistant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Gateway failure taxonomy. Classify maps any gateway error onto one of these.
var (
	ErrUnavailable = errors.New("assistant: gateway not configured")
	ErrTimeout     = errors.New("assistant: request timed out")
	ErrRateLimited = errors.New("assistant: rate limited")
	ErrNetwork     = errors.New("assistant: network failure")
	ErrUnknown     = errors.New("assistant: unknown failure")
)

var taxonomy = []error{ErrUnavailable, ErrTimeout, ErrRateLimited, ErrNetwork, ErrUnknown}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini api error: %s", http.StatusText(e.StatusCode))
}

// Classify returns the taxonomy sentinel err belongs to, or nil for nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range taxonomy {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests || strings.Contains(msg, "quota"):
			return ErrRateLimited
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden ||
			strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
			return ErrUnavailable
		case apiErr.StatusCode == http.StatusGatewayTimeout || apiErr.StatusCode == http.StatusRequestTimeout:
			return ErrTimeout
		}
		return ErrUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrNetwork
	}
	return ErrUnknown
}

// outcome is the metric label for err.
func outcome(err error) string {
	switch Classify(err) {
	case nil:
		return "success"
	case ErrUnavailable:
		return "unavailable"
	case ErrTimeout:
		return "timeout"
	case ErrRateLimited:
		return "rate_limited"
	case ErrNetwork:
		return "network"
	default:
		return "unknown"
	}
}
