package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Backend routes, relative to the configured base URL
const (
	LoginPath          = "/login"
	ChangePasswordPath = "/change-password"
	ValidateTokenPath  = "/validate-token"
)

const (
	// UnreachableMessage is shown when no response arrives
	UnreachableMessage = "Unable to reach the server. Please check your connection and try again."
	// MissingSessionMessage is shown when an authenticated call has no token to send
	MissingSessionMessage = "Your session has ended. Please sign in again."

	defaultTimeout = 30 * time.Second
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResponse carries the identity fields returned by login and,
// optionally, by a password change that issues a new token
type IdentityResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Message   string `json:"message,omitempty"`
}

// Identity converts the response into a session identity
func (r IdentityResponse) Identity() session.Identity {
	return session.Identity{
		Token:       r.Token,
		Role:        r.Role,
		Email:       r.Email,
		DisplayName: session.DisplayName(r.FirstName, r.LastName),
	}
}

// LoginResponse is the success body of POST /login
type LoginResponse = IdentityResponse

// ChangePasswordRequest is the body of POST /change-password
type ChangePasswordRequest struct {
	CurrentPassword     string `json:"currentPassword"`
	NewPassword         string `json:"newPassword"`
	ConfirmPassword     string `json:"confirmPassword"`
	IsTemporaryPassword bool   `json:"isTemporaryPassword"`
}

// ChangePasswordResponse is the success body of POST /change-password.
// Token is empty when the backend keeps the existing session.
type ChangePasswordResponse = IdentityResponse

// Config configures a Client
type Config struct {
	BaseURL    string             // e.g. https://api.example.com/api
	Tokens     oauth2.TokenSource // Bearer token for authenticated calls
	HTTPClient *http.Client       // Optional base client; its Transport is wrapped
	Timeout    time.Duration      // Per-request timeout when HTTPClient is nil
	Middleware []Middleware       // Extra middleware, applied outside the built-in chain
}

// Client calls the portal backend. All traffic goes through one transport
// chain, so every response to the login endpoint has its error message
// normalized before any caller reads it.
type Client struct {
	baseURL   *url.URL
	anonymous *http.Client
	bearer    *http.Client
}

// NewClient validates cfg and builds the transport chain
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("[NewClient] base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("[NewClient] token source is required")
	}
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[NewClient] invalid base URL")
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("[NewClient] base URL %q must be absolute", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{baseURL: baseURL}

	middleware := append([]Middleware{}, cfg.Middleware...)
	middleware = append(middleware,
		WithRequestID,
		WithLogging,
		RewriteLoginErrors(c.endpoint(LoginPath).Path),
	)
	transport := Chain(base, middleware...)

	c.anonymous = &http.Client{
		Transport:     transport,
		Timeout:       hc.Timeout,
		CheckRedirect: hc.CheckRedirect,
		Jar:           hc.Jar,
	}
	c.bearer = &http.Client{
		Transport:     &oauth2.Transport{Source: cfg.Tokens, Base: transport},
		Timeout:       hc.Timeout,
		CheckRedirect: hc.CheckRedirect,
		Jar:           hc.Jar,
	}
	return c, nil
}

// Login submits credentials. A returned error is always a *Failure.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	outcome := c.do(ctx, c.anonymous, http.MethodPost, LoginPath, LoginRequest{Email: email, Password: password})

	var resp LoginResponse
	if f := outcome.Decode(&resp); f != nil {
		return nil, f
	}
	if resp.Token == "" {
		return nil, NewFailure(ParseError, outcome.Status, statusMessage(outcome.Status))
	}
	return &resp, nil
}

// ChangePassword replaces a temporary password using the current bearer token.
// A returned error is always a *Failure.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*ChangePasswordResponse, error) {
	outcome := c.do(ctx, c.bearer, http.MethodPost, ChangePasswordPath, req)
	if !outcome.OK() {
		return nil, outcome.Failure
	}

	var resp ChangePasswordResponse
	if len(outcome.Payload) == 0 {
		return &resp, nil
	}
	if f := outcome.Decode(&resp); f != nil {
		return nil, f
	}
	return &resp, nil
}

// ValidateToken probes the backend with the current bearer token.
// Only the status matters. A returned error is always a *Failure.
func (c *Client) ValidateToken(ctx context.Context) error {
	outcome := c.do(ctx, c.bearer, http.MethodGet, ValidateTokenPath, nil)
	if !outcome.OK() {
		return outcome.Failure
	}
	return nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, payload any) Outcome {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Err(err).Str("path", path).Msg("encoding request body")
			return failed(ParseError, 0, "request could not be encoded")
		}
		body = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint(path).String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint(path).String(), nil)
	}
	if err != nil {
		log.Err(err).Str("path", path).Msg("building request")
		return failed(TransportFailure, 0, UnreachableMessage)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return failed(TransportFailure, 0, MissingSessionMessage)
		}
		return failed(TransportFailure, 0, UnreachableMessage)
	}
	return Interpret(resp)
}

func (c *Client) endpoint(path string) *url.URL {
	return c.baseURL.JoinPath(path)
}
