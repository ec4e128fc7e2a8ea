// Package portalfake provides hand-written test doubles for the portal controller's collaborators.
package portalfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/portal"
)

var (
	_ portal.Backend   = (*Backend)(nil)
	_ portal.View      = (*View)(nil)
	_ portal.Navigator = (*Navigator)(nil)
)

// Backend answers with the configured functions and counts calls.
// Unset functions fail with a transport failure.
type Backend struct {
	LoginFunc          func(ctx context.Context, email, password string) (*api.LoginResponse, error)
	ChangePasswordFunc func(ctx context.Context, req api.ChangePasswordRequest) (*api.ChangePasswordResponse, error)
	ValidateTokenFunc  func(ctx context.Context) error

	mu                  sync.Mutex
	LoginCalls          int
	ChangePasswordCalls []api.ChangePasswordRequest
	ValidateTokenCalls  int
}

func (b *Backend) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	b.mu.Lock()
	b.LoginCalls++
	b.mu.Unlock()

	if b.LoginFunc == nil {
		return nil, unreachable()
	}
	return b.LoginFunc(ctx, email, password)
}

func (b *Backend) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
	b.mu.Lock()
	b.ChangePasswordCalls = append(b.ChangePasswordCalls, req)
	b.mu.Unlock()

	if b.ChangePasswordFunc == nil {
		return nil, unreachable()
	}
	return b.ChangePasswordFunc(ctx, req)
}

func (b *Backend) ValidateToken(ctx context.Context) error {
	b.mu.Lock()
	b.ValidateTokenCalls++
	b.mu.Unlock()

	if b.ValidateTokenFunc == nil {
		return unreachable()
	}
	return b.ValidateTokenFunc(ctx)
}

// TotalCalls counts every request made against the backend
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.LoginCalls + len(b.ChangePasswordCalls) + b.ValidateTokenCalls
}

// LoginSuccess returns a LoginFunc that accepts any credentials
func LoginSuccess(resp api.LoginResponse) func(context.Context, string, string) (*api.LoginResponse, error) {
	return func(context.Context, string, string) (*api.LoginResponse, error) {
		r := resp
		return &r, nil
	}
}

// LoginFailure returns a LoginFunc that fails with failure
func LoginFailure(failure *api.Failure) func(context.Context, string, string) (*api.LoginResponse, error) {
	return func(context.Context, string, string) (*api.LoginResponse, error) {
		return nil, failure
	}
}

func unreachable() error {
	return api.NewFailure(api.TransportFailure, 0, api.UnreachableMessage)
}

// Event is one recorded View call
type Event struct {
	Kind    string // busy, idle, error, success, password_change
	Form    portal.Form
	Message string
}

// View records every signal it receives
type View struct {
	mu     sync.Mutex
	Events []Event
}

func (v *View) record(e Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Events = append(v.Events, e)
}

func (v *View) SetBusy(form portal.Form, busy bool) {
	kind := "idle"
	if busy {
		kind = "busy"
	}
	v.record(Event{Kind: kind, Form: form})
}

func (v *View) ShowError(form portal.Form, message string) {
	v.record(Event{Kind: "error", Form: form, Message: message})
}

func (v *View) ShowSuccess(form portal.Form, message string) {
	v.record(Event{Kind: "success", Form: form, Message: message})
}

func (v *View) ShowPasswordChange() {
	v.record(Event{Kind: "password_change"})
}

// Errors returns the messages shown with ShowError
func (v *View) Errors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var messages []string
	for _, e := range v.Events {
		if e.Kind == "error" {
			messages = append(messages, e.Message)
		}
	}
	return messages
}

// Busy reports whether form was last signalled busy
func (v *View) Busy(form portal.Form) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	busy := false
	for _, e := range v.Events {
		if e.Form != form {
			continue
		}
		switch e.Kind {
		case "busy":
			busy = true
		case "idle":
			busy = false
		}
	}
	return busy
}

// Has reports whether an event of kind was recorded
func (v *View) Has(kind string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.Events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Navigator records navigation targets
type Navigator struct {
	mu    sync.Mutex
	Paths []string
}

func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Paths = append(n.Paths, path)
}

// Navigated returns a copy of the recorded paths
func (n *Navigator) Navigated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Paths...)
}
