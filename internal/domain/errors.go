package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes delivery failures into the actions a caller can
// take: fix configuration, investigate connectivity, inspect the vendor's
// rejection message, or report a contract mismatch.
type ErrorKind string

const (
	// ErrorKindConfig indicates a required setting was missing. Raised
	// before any request is attempted.
	ErrorKindConfig ErrorKind = "config"

	// ErrorKindTransport indicates a connection-level failure after the
	// transport's bounded retries were exhausted.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindRejected indicates the vendor understood the request and
	// declined it. Not retried further.
	ErrorKindRejected ErrorKind = "rejected"

	// ErrorKindParse indicates a response body that did not match the
	// structure the vendor contract promises.
	ErrorKindParse ErrorKind = "parse"
)

// DeliveryError is the normalized error surfaced for a failed delivery.
type DeliveryError struct {
	Kind    ErrorKind
	Vendor  string
	Message string

	// Setting names the missing setting for config errors.
	Setting string

	// StatusCode is the HTTP status for rejections, when known.
	StatusCode int

	cause error
}

func (e *DeliveryError) Error() string {
	switch e.Kind {
	case ErrorKindConfig:
		return fmt.Sprintf("%s: missing required setting %q", e.Vendor, e.Setting)
	case ErrorKindRejected:
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s: vendor rejected request (status %d): %s", e.Vendor, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: vendor rejected request: %s", e.Vendor, e.Message)
	default:
		return fmt.Sprintf("%s: %s error: %s", e.Vendor, e.Kind, e.Message)
	}
}

func (e *DeliveryError) Unwrap() error { return e.cause }

// NewConfigError reports a missing required setting.
func NewConfigError(vendor, setting string) *DeliveryError {
	return &DeliveryError{Kind: ErrorKindConfig, Vendor: vendor, Setting: setting}
}

// NewTransportError wraps a connection-level failure.
func NewTransportError(vendor string, cause error) *DeliveryError {
	return &DeliveryError{Kind: ErrorKindTransport, Vendor: vendor, Message: cause.Error(), cause: cause}
}

// NewRejectedError reports a vendor-side rejection.
func NewRejectedError(vendor, message string, statusCode int) *DeliveryError {
	return &DeliveryError{Kind: ErrorKindRejected, Vendor: vendor, Message: message, StatusCode: statusCode}
}

// NewParseError wraps a response that did not match the expected structure.
func NewParseError(vendor string, cause error) *DeliveryError {
	return &DeliveryError{Kind: ErrorKindParse, Vendor: vendor, Message: cause.Error(), cause: cause}
}

// KindOf returns the delivery error kind of err, or "" for other errors.
func KindOf(err error) ErrorKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
