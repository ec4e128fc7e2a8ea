package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// FailureKind classifies why a request did not produce a usable payload
type FailureKind int

const (
	// TransportFailure means no response was received
	TransportFailure FailureKind = iota + 1
	// ParseError means the response body could not be decoded as expected
	ParseError
	// ApplicationError means the backend returned a well-formed error body
	ApplicationError
	// AuthorizationMismatch means the user authenticated but holds the wrong role for this portal
	AuthorizationMismatch
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case ParseError:
		return "parse_error"
	case ApplicationError:
		return "application_error"
	case AuthorizationMismatch:
		return "authorization_mismatch"
	default:
		return "unknown"
	}
}

// Failure is the user-facing side of an unsuccessful request.
// Message is safe to show as-is.
type Failure struct {
	Kind    FailureKind
	Status  int // HTTP status, zero for transport failures
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// NewFailure builds a Failure
func NewFailure(kind FailureKind, status int, message string) *Failure {
	return &Failure{Kind: kind, Status: status, Message: message}
}

// Outcome is the result of interpreting one response: either a success
// carrying the raw JSON payload, or a Failure.
type Outcome struct {
	Status  int
	Payload json.RawMessage // nil for an empty success body
	Failure *Failure
}

// OK reports whether the outcome is a success
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Decode unmarshals a success payload into v. A payload that does not
// fit v is reported as a ParseError failure.
func (o Outcome) Decode(v any) *Failure {
	if o.Failure != nil {
		return o.Failure
	}
	if len(o.Payload) == 0 {
		return NewFailure(ParseError, o.Status, statusMessage(o.Status))
	}
	if err := json.Unmarshal(o.Payload, v); err != nil {
		return NewFailure(ParseError, o.Status, statusMessage(o.Status))
	}
	return nil
}

func success(status int, payload []byte) Outcome {
	return Outcome{Status: status, Payload: payload}
}

func failed(kind FailureKind, status int, message string) Outcome {
	return Outcome{Status: status, Failure: NewFailure(kind, status, message)}
}

// errorBody is the backend's error shape
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Interpret reads and closes the response body and classifies the response.
// Decode problems never escape as errors; they become ParseError failures
// carrying a generic status message.
func Interpret(resp *http.Response) Outcome {
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	status := resp.StatusCode

	if isSuccess(status) {
		if readErr != nil {
			return failed(ParseError, status, statusMessage(status))
		}
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 {
			return success(status, nil)
		}
		if !json.Valid(trimmed) {
			return failed(ParseError, status, statusMessage(status))
		}
		return success(status, trimmed)
	}

	if readErr != nil {
		return failed(ParseError, status, statusMessage(status))
	}
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return failed(ParseError, status, statusMessage(status))
	}
	return failed(ApplicationError, status, e.message(status))
}

func (e errorBody) message(status int) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return statusMessage(status)
}

func statusMessage(status int) string {
	return fmt.Sprintf("request failed with status %d", status)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
