// Package resilience provides the error taxonomy and retry policy shared by
// the search and page-fetch layers.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps a provider failure that is safe to retry
// (429, 5xx, network timeout).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// PermanentError wraps a provider failure that must never be retried
// (4xx other than 429, malformed response body).
type PermanentError struct {
	Err        error
	StatusCode int
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps an error as permanent with an optional HTTP status code.
func NewPermanentError(err error, statusCode int) *PermanentError {
	return &PermanentError{Err: err, StatusCode: statusCode}
}

// PageFetchError marks a candidate page that could not be fetched or parsed.
// The candidate is dropped; the company's remaining candidates continue.
type PageFetchError struct {
	URL string
	Err error
}

func (e *PageFetchError) Error() string {
	return "fetch " + e.URL + ": " + e.Err.Error()
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}

// NewPageFetchError wraps a per-candidate fetch failure.
func NewPageFetchError(url string, err error) *PageFetchError {
	return &PageFetchError{URL: url, Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or matches common transient network patterns (timeouts,
// connection resets, DNS failures). Errors explicitly marked permanent are
// never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pe *PermanentError
	if errors.As(err, &pe) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsPermanent returns true if the error chain contains a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsPageFetch returns true if the error chain contains a PageFetchError.
func IsPageFetch(err error) bool {
	var fe *PageFetchError
	return errors.As(err, &fe)
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
