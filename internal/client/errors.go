package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates an unexpected HTTP status
	ErrTypeHTTP
	// ErrTypeNotReady indicates the server has not completed a scan yet
	ErrTypeNotReady
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeNotReady:
		return "Not Ready"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// FeedError is an error talking to a lanscan server
type FeedError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *FeedError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error
func ClassifyNetworkError(message string, err error) *FeedError {
	if os.IsTimeout(err) {
		return &FeedError{Type: ErrTypeTimeout, Message: message, Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &FeedError{Type: ErrTypeDNS, Message: message, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &FeedError{Type: ErrTypeConnectionRefused, Message: message, Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(message, urlErr.Err)
	}

	return &FeedError{Type: ErrTypeNetwork, Message: message, Err: err, Retryable: true}
}

// NewHTTPError creates an error for an unexpected status. 503 means the
// server is up but has no result yet.
func NewHTTPError(statusCode int, message string) *FeedError {
	if statusCode == http.StatusServiceUnavailable {
		return &FeedError{Type: ErrTypeNotReady, Message: message, StatusCode: statusCode, Retryable: true}
	}
	return &FeedError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500, // Server errors are retryable
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *FeedError {
	return &FeedError{Type: ErrTypeParse, Message: message, Err: err}
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// TroubleshootingHints returns user-facing advice for an error
func TroubleshootingHints(err error) []string {
	var fe *FeedError
	if !errors.As(err, &fe) {
		return []string{"Run with --log-level debug for details"}
	}

	switch fe.Type {
	case ErrTypeConnectionRefused:
		return []string{
			"Nothing is listening at the server address",
			"Start the server with: lanscan serve",
			"Check --server matches the serve.addr setting",
		}
	case ErrTypeTimeout:
		return []string{
			"The server did not respond in time",
			"A firewall may be dropping the connection",
		}
	case ErrTypeDNS:
		return []string{
			"Could not resolve the server host name",
			"Use the IP address instead",
		}
	case ErrTypeNotReady:
		return []string{
			"The server has not completed its first scan",
			"Retry in a few seconds, or pass --trigger",
		}
	case ErrTypeParse:
		return []string{
			"The response was not a lanscan result",
			"Check that --server points at a lanscan serve instance",
		}
	case ErrTypeHTTP:
		return []string{fmt.Sprintf("The server returned HTTP %d", fe.StatusCode)}
	default:
		return []string{
			"Check your network connection",
			"Verify the server is running and reachable",
		}
	}
}
