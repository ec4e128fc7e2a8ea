package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// InvalidCredentialsMessage replaces the backend's wording for a failed login
	InvalidCredentialsMessage = "Invalid email or password. Please try again."

	// RequestIDHeader carries a per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// invalidCredentialPhrases are backend messages that mean the email/password pair was wrong
var invalidCredentialPhrases = []string{
	"Invalid email/password combination",
	"Invalid credentials",
}

// Middleware decorates a RoundTripper
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base so that the first middleware sees the request first
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RewriteLoginErrors replaces the backend's invalid-credentials wording in
// failed responses to loginPath with InvalidCredentialsMessage. The rewrite
// happens on the response body itself, so every consumer of the transport
// reads the replaced message.
func RewriteLoginErrors(loginPath string) Middleware {
	loginPath = strings.TrimSuffix(loginPath, "/")
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp == nil || isSuccess(resp.StatusCode) {
				return resp, err
			}
			if strings.TrimSuffix(req.URL.Path, "/") != loginPath {
				return resp, nil
			}

			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				// Hand back what was read; the interpreter treats it as undecodable
				resp.Body = io.NopCloser(bytes.NewReader(body))
				return resp, nil
			}

			rewritten := rewriteCredentialMessage(body)
			resp.Body = io.NopCloser(bytes.NewReader(rewritten))
			resp.ContentLength = int64(len(rewritten))
			resp.Header.Set("Content-Length", strconv.Itoa(len(rewritten)))
			return resp, nil
		})
	}
}

// rewriteCredentialMessage swaps the field the interpreter would surface
// (message, else error) when it holds a known invalid-credentials phrase
func rewriteCredentialMessage(body []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}

	for _, key := range []string{"message", "error"} {
		var text string
		if raw, ok := fields[key]; !ok || json.Unmarshal(raw, &text) != nil || text == "" {
			continue
		}
		if !isInvalidCredentialsPhrase(text) {
			return body
		}
		replacement, err := json.Marshal(InvalidCredentialsMessage)
		if err != nil {
			return body
		}
		fields[key] = replacement
		out, err := json.Marshal(fields)
		if err != nil {
			return body
		}
		log.Debug().Str("original", text).Msg("rewrote login error message")
		return out
	}
	return body
}

func isInvalidCredentialsPhrase(message string) bool {
	message = strings.TrimSpace(message)
	for _, phrase := range invalidCredentialPhrases {
		if strings.EqualFold(message, phrase) {
			return true
		}
	}
	return false
}

// WithRequestID tags each request with a fresh X-Request-ID unless one is set
func WithRequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(req)
		}
		tagged := req.Clone(req.Context())
		tagged.Header.Set(RequestIDHeader, uuid.NewString())
		return next.RoundTrip(tagged)
	})
}

// WithLogging records each request's method, path, status and duration
func WithLogging(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		if err != nil {
			log.Warn().Err(err).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Msg("request failed")
			return resp, err
		}
		log.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("request_id", req.Header.Get(RequestIDHeader)).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("request completed")
		return resp, nil
	})
}
