package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatic20/worktime-app/internal/session"
	"github.com/elevatic20/worktime-app/internal/storage"
)

func TestSession_SaveLoad(t *testing.T) {
	ctx := context.Background()
	b := storage.NewFiles(filepath.Join(t.TempDir(), "data"))

	st, err := session.Load(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, st.User)

	require.NoError(t, session.Save(ctx, b, session.State{User: "Toni"}))
	st, err = session.Load(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "Toni", st.User)
}

func TestSession_RejectsInvalidUser(t *testing.T) {
	b := storage.NewFiles(t.TempDir())
	err := session.Save(context.Background(), b, session.State{User: "a/b"})
	assert.ErrorIs(t, err, storage.ErrInvalidUser)
}

func TestSession_Corrupt(t *testing.T) {
	ctx := context.Background()
	b := storage.NewFiles(t.TempDir())
	require.NoError(t, b.Write(ctx, session.Key, []byte("nope")))
	_, err := session.Load(ctx, b)
	assert.Error(t, err)
}
