package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testIdentity() session.Identity {
	return session.Identity{
		Token:       "token-abc",
		Role:        "ServiceAdvisor",
		Email:       "jane.doe@example.com",
		DisplayName: session.DisplayName("Jane", "Doe"),
	}
}

// failingScope accepts loads and removes but rejects writes
type failingScope struct {
	*session.MemoryScope
}

func (failingScope) Store(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// storeBackends returns one store per scope backend so behaviour is checked against each
func storeBackends(t *testing.T) map[string]*session.Store {
	t.Helper()

	fileScope, err := session.NewFileScope(filepath.Join(t.TempDir(), "state", "session.yaml"))
	require.NoError(t, err)
	fileStore, err := session.NewStore(fileScope, session.NewMemoryScope())
	require.NoError(t, err)

	client := newRedis(t)
	redisStore, err := session.NewStore(
		session.NewRedisScope(client, "portal:"),
		session.NewTransientRedisScope(client, "portal:tab:", time.Hour),
	)
	require.NoError(t, err)

	return map[string]*session.Store{
		"memory": session.NewMemoryStore(),
		"file":   fileStore,
		"redis":  redisStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			identity := testIdentity()

			require.NoError(t, store.Persist(ctx, identity))

			got, ok := store.CurrentIdentity(ctx)
			require.True(t, ok)
			require.Equal(t, identity, got)

			token, ok := store.Token(ctx)
			require.True(t, ok)
			require.Equal(t, identity.Token, token)

			mirrored, ok := store.MirroredToken(ctx)
			require.True(t, ok)
			require.Equal(t, identity.Token, mirrored)
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Persist(ctx, testIdentity()))

			require.NoError(t, store.Clear(ctx))
			_, ok := store.CurrentIdentity(ctx)
			require.False(t, ok)
			_, ok = store.MirroredToken(ctx)
			require.False(t, ok)

			require.NoError(t, store.Clear(ctx))
			_, ok = store.CurrentIdentity(ctx)
			require.False(t, ok)
		})
	}
}

func TestStore_ClearEmptyStore(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Clear(context.Background()))
	_, ok := store.CurrentIdentity(context.Background())
	require.False(t, ok)
}

func TestStore_PersistOverwrites(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, testIdentity()))

	renewed := testIdentity()
	renewed.Token = "token-renewed"
	require.NoError(t, store.Persist(ctx, renewed))

	got, ok := store.CurrentIdentity(ctx)
	require.True(t, ok)
	require.Equal(t, "token-renewed", got.Token)
	mirrored, _ := store.MirroredToken(ctx)
	require.Equal(t, "token-renewed", mirrored)
}

func TestStore_PersistRejectsIncompleteIdentity(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	identity := testIdentity()
	identity.Email = ""
	err := store.Persist(ctx, identity)
	require.ErrorIs(t, err, session.ErrIncompleteIdentity)

	_, ok := store.CurrentIdentity(ctx)
	require.False(t, ok)
	_, ok = store.MirroredToken(ctx)
	require.False(t, ok)
}

func TestStore_PartialDurableStateIsAbsent(t *testing.T) {
	ctx := context.Background()
	durable := session.NewMemoryScope()
	store, err := session.NewStore(durable, session.NewMemoryScope())
	require.NoError(t, err)

	require.NoError(t, durable.Store(ctx, map[string]string{
		session.KeyToken: "token-abc",
		session.KeyRole:  "ServiceAdvisor",
		session.KeyEmail: "jane.doe@example.com",
	}))

	_, ok := store.CurrentIdentity(ctx)
	require.False(t, ok)
	_, ok = store.Token(ctx)
	require.False(t, ok)
}

func TestStore_MirrorFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	durable := session.NewMemoryScope()
	store, err := session.NewStore(durable, failingScope{session.NewMemoryScope()})
	require.NoError(t, err)

	err = store.Persist(ctx, testIdentity())
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")

	_, ok := store.CurrentIdentity(ctx)
	require.False(t, ok)
	values, err := durable.Load(ctx, session.KeyToken, session.KeyRole, session.KeyEmail, session.KeyDisplayName)
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestStore_DurableFailure(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewStore(failingScope{session.NewMemoryScope()}, session.NewMemoryScope())
	require.NoError(t, err)

	require.Error(t, store.Persist(ctx, testIdentity()))
	_, ok := store.MirroredToken(ctx)
	require.False(t, ok)
}

// toggleScope rejects writes once failWrites is set
type toggleScope struct {
	*session.MemoryScope
	failWrites bool
}

func (s *toggleScope) Store(ctx context.Context, values map[string]string) error {
	if s.failWrites {
		return errors.New("disk full")
	}
	return s.MemoryScope.Store(ctx, values)
}

func TestStore_FailedPersistClearsPreviousSession(t *testing.T) {
	replacement := testIdentity()
	replacement.Token = "token-def"

	testCases := []struct {
		name      string
		failScope string
	}{
		{name: "DurableWriteFails", failScope: "durable"},
		{name: "MirrorWriteFails", failScope: "transient"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			durable := &toggleScope{MemoryScope: session.NewMemoryScope()}
			transient := &toggleScope{MemoryScope: session.NewMemoryScope()}
			store, err := session.NewStore(durable, transient)
			require.NoError(t, err)

			require.NoError(t, store.Persist(ctx, testIdentity()))

			if tc.failScope == "durable" {
				durable.failWrites = true
			} else {
				transient.failWrites = true
			}
			require.Error(t, store.Persist(ctx, replacement))

			_, ok := store.CurrentIdentity(ctx)
			require.False(t, ok)
			token, ok := store.MirroredToken(ctx)
			require.False(t, ok, "mirror still holds %q", token)
		})
	}
}

func TestNewStore_RequiresScopes(t *testing.T) {
	_, err := session.NewStore(nil, session.NewMemoryScope())
	require.Error(t, err)
	_, err = session.NewStore(session.NewMemoryScope(), nil)
	require.Error(t, err)
}

func TestStore_TokenSource(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	_, err := store.TokenSource(ctx).Token()
	require.ErrorIs(t, err, session.ErrNoToken)

	require.NoError(t, store.Persist(ctx, testIdentity()))
	tok, err := store.TokenSource(ctx).Token()
	require.NoError(t, err)
	require.Equal(t, "token-abc", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")

	first, err := session.NewFileScope(path)
	require.NoError(t, err)
	store, err := session.NewStore(first, session.NewMemoryScope())
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx, testIdentity()))

	// A new process gets a new transient scope but the same file
	second, err := session.NewFileScope(path)
	require.NoError(t, err)
	reopened, err := session.NewStore(second, session.NewMemoryScope())
	require.NoError(t, err)

	got, ok := reopened.CurrentIdentity(ctx)
	require.True(t, ok)
	require.Equal(t, testIdentity(), got)
	_, ok = reopened.MirroredToken(ctx)
	require.False(t, ok)
}
