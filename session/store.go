package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Durable keys hold the full identity; the transient key mirrors only the
// bearer token for dashboard code that reads the tab-scoped copy.
const (
	KeyToken       = "sa_token"
	KeyRole        = "sa_role"
	KeyEmail       = "sa_email"
	KeyDisplayName = "sa_name"

	KeyTransientToken = "token"
)

var durableKeys = []string{KeyToken, KeyRole, KeyEmail, KeyDisplayName}

var (
	ErrIncompleteIdentity = errors.New("session identity is incomplete")
	ErrNoToken            = errors.New("no session token")
)

// Store is the single write path for session identity.
type Store struct {
	durable   Scope
	transient Scope
}

// NewStore creates a Store over a durable and a transient scope
func NewStore(durable, transient Scope) (*Store, error) {
	if durable == nil {
		return nil, errors.New("[NewStore] durable scope is required")
	}
	if transient == nil {
		return nil, errors.New("[NewStore] transient scope is required")
	}
	return &Store{
		durable:   durable,
		transient: transient,
	}, nil
}

// NewMemoryStore creates a Store whose scopes both live in memory
func NewMemoryStore() *Store {
	return &Store{
		durable:   NewMemoryScope(),
		transient: NewMemoryScope(),
	}
}

// Persist writes the identity to the durable scope and mirrors the token into
// the transient scope. If the mirror cannot be written the durable write is
// undone, so a failed Persist leaves no partial session behind.
func (s *Store) Persist(ctx context.Context, identity Identity) error {
	if !identity.Complete() {
		return ErrIncompleteIdentity
	}

	if err := s.durable.Store(ctx, map[string]string{
		KeyToken:       identity.Token,
		KeyRole:        identity.Role,
		KeyEmail:       identity.Email,
		KeyDisplayName: identity.DisplayName,
	}); err != nil {
		s.rollback(ctx)
		return errors.Wrap(err, "[Store.Persist] durable write")
	}

	if err := s.transient.Store(ctx, map[string]string{KeyTransientToken: identity.Token}); err != nil {
		s.rollback(ctx)
		return errors.Wrap(err, "[Store.Persist] transient write")
	}

	log.Debug().Str("email", identity.Email).Str("role", identity.Role).Msg("session persisted")
	return nil
}

// rollback drops both scopes after a failed Persist so no earlier session
// survives in either one
func (s *Store) rollback(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		log.Err(err).Msg("session rollback after failed persist")
	}
}

// Clear removes the durable identity and the transient mirror.
// Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	durableErr := s.durable.Remove(ctx, durableKeys...)
	transientErr := s.transient.Remove(ctx, KeyTransientToken)

	if durableErr != nil {
		return errors.Wrap(durableErr, "[Store.Clear] durable remove")
	}
	if transientErr != nil {
		return errors.Wrap(transientErr, "[Store.Clear] transient remove")
	}
	log.Debug().Msg("session cleared")
	return nil
}

// CurrentIdentity returns the persisted identity. A store with any field
// missing, or one that cannot be read, reports no identity.
func (s *Store) CurrentIdentity(ctx context.Context) (Identity, bool) {
	values, err := s.durable.Load(ctx, durableKeys...)
	if err != nil {
		log.Err(err).Msg("reading persisted session")
		return Identity{}, false
	}

	identity := Identity{
		Token:       values[KeyToken],
		Role:        values[KeyRole],
		Email:       values[KeyEmail],
		DisplayName: values[KeyDisplayName],
	}
	if !identity.Complete() {
		return Identity{}, false
	}
	return identity, true
}

// Token returns the authoritative bearer token from the durable scope
func (s *Store) Token(ctx context.Context) (string, bool) {
	identity, ok := s.CurrentIdentity(ctx)
	if !ok {
		return "", false
	}
	return identity.Token, true
}

// MirroredToken returns the transient copy of the bearer token
func (s *Store) MirroredToken(ctx context.Context) (string, bool) {
	values, err := s.transient.Load(ctx, KeyTransientToken)
	if err != nil {
		log.Err(err).Msg("reading mirrored session token")
		return "", false
	}
	token, ok := values[KeyTransientToken]
	return token, ok && token != ""
}

// TokenSource exposes the durable bearer token to oauth2 transports
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return storeTokenSource{ctx: ctx, store: s}
}

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	token, ok := ts.store.Token(ts.ctx)
	if !ok {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
