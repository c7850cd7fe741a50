package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// UpstreamError represents a non-2xx response from an upstream service.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// Classification buckets a terminal failure for metrics and for mapping to
// the externally visible error taxonomy.
type Classification string

const (
	ClassTimeout        Classification = "timeout"
	ClassAuthentication Classification = "authentication"
	ClassRateLimit      Classification = "rate_limit"
	ClassValidation     Classification = "validation"
	ClassServer         Classification = "server"
	ClassNetwork        Classification = "network"
	ClassUnknown        Classification = "unknown"
)

// Classify maps an outbound call failure into the taxonomy.
func Classify(err error) Classification {
	if err == nil {
		return ClassUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch {
		case upstream.StatusCode == http.StatusUnauthorized || upstream.StatusCode == http.StatusForbidden:
			return ClassAuthentication
		case upstream.StatusCode == http.StatusTooManyRequests:
			return ClassRateLimit
		case upstream.StatusCode == http.StatusBadRequest || upstream.StatusCode == http.StatusUnprocessableEntity:
			return ClassValidation
		case upstream.StatusCode >= 500:
			return ClassServer
		}
		return ClassUnknown
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassNetwork
	}

	return ClassUnknown
}

// Retryable reports whether a failure is worth another attempt: network
// errors, HTTP 5xx (501 excluded) and HTTP 429. Validation and auth
// failures are never retried.
func Retryable(err error) bool {
	switch Classify(err) {
	case ClassNetwork, ClassTimeout, ClassRateLimit:
		return true
	case ClassServer:
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotImplemented {
			return false
		}
		return true
	}
	return false
}
