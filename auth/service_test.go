package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/habedi/escola/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	getErr    error
	setErr    error
	deleteErr error
	sets      []string
}

func (f *failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f *failingStore) Set(_ context.Context, key, _ string) error {
	f.sets = append(f.sets, key)
	return f.setErr
}

func (f *failingStore) Delete(context.Context, ...string) error {
	return f.deleteErr
}

func TestManager_SaveAndLoad(t *testing.T) {
	store := auth.NewMemoryStore()
	mgr := auth.NewManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.Save(ctx, auth.Tokens{AccessToken: "A1", RefreshToken: "R1"}))

	tokens, err := mgr.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", tokens.AccessToken)
	assert.Equal(t, "R1", tokens.RefreshToken)

	v, ok, err := store.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A1", v, "access token is persisted under the accessToken key")
}

func TestManager_SaveAccessKeepsRefresh(t *testing.T) {
	mgr := auth.NewManager(auth.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, mgr.Save(ctx, auth.Tokens{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, mgr.SaveAccess(ctx, "A2"))

	tokens, err := mgr.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.Tokens{AccessToken: "A2", RefreshToken: "R1"}, tokens)
}

func TestManager_RejectsIncompletePairs(t *testing.T) {
	mgr := auth.NewManager(auth.NewMemoryStore())
	ctx := context.Background()

	assert.Error(t, mgr.Save(ctx, auth.Tokens{AccessToken: "A1"}))
	assert.Error(t, mgr.SaveAccess(ctx, ""))
}

func TestManager_ClearEmptyStore(t *testing.T) {
	store := auth.NewMemoryStore()
	mgr := auth.NewManager(store)

	require.NoError(t, mgr.Clear(context.Background()))
	assert.Zero(t, store.Len())

	tokens, err := mgr.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
}

func TestManager_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	mgr := auth.NewManager(&failingStore{getErr: boom, setErr: boom, deleteErr: boom})
	ctx := context.Background()

	_, err := mgr.Load(ctx)
	assert.ErrorIs(t, err, boom)

	err = mgr.Save(ctx, auth.Tokens{AccessToken: "A", RefreshToken: "R"})
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, mgr.Clear(ctx), boom)
}

func TestManager_NoStore(t *testing.T) {
	mgr := auth.NewManager(nil)
	_, err := mgr.AccessToken(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoStore)
	assert.ErrorIs(t, mgr.Clear(context.Background()), auth.ErrNoStore)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "***", auth.Prefix("short"))
	assert.Equal(t, "abcdefgh...", auth.Prefix("abcdefghijklmnop"))
}
