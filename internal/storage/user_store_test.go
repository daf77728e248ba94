package storage

import (
	"medhistory/internal/models"
	"medhistory/internal/testutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(testutil.StorageConfig(t.TempDir()), &testutil.MockLogger{})
}

func TestUserStore_EnsureIsIdempotent(t *testing.T) {
	us := newTestUserStore(t)

	dir, err := us.Ensure("alice")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, us.Exists("alice"))

	again, err := us.Ensure("alice")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestUserStore_RejectsInvalidIds(t *testing.T) {
	us := newTestUserStore(t)
	for _, id := range []string{"", ".", "..", "../bob", "a/b", `a\b`, "a\x00b"} {
		_, err := us.Ensure(id)
		assert.ErrorIs(t, err, models.ErrInvalidUserId, id)
		assert.False(t, us.Exists(id))
	}
}

func TestUserStore_PathFor(t *testing.T) {
	us := newTestUserStore(t)

	path, err := us.PathFor("alice", "scan.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(us.Root(), "alice", "scan.png"), path)

	_, err = us.PathFor("alice", "../bob/scan.png")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = us.PathFor("..", "scan.png")
	assert.ErrorIs(t, err, models.ErrInvalidUserId)
}

func TestUserStore_ListUsers(t *testing.T) {
	us := newTestUserStore(t)

	users, err := us.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, id := range []string{"carol", "alice", "bob"} {
		_, err := us.Ensure(id)
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(us.Root(), ".trash"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(us.Root(), "notes.txt"), []byte("x"), 0644))

	users, err = us.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, users)
}

func TestUserStore_ListUsersMissingRoot(t *testing.T) {
	us := NewUserStore(testutil.StorageConfig(filepath.Join(t.TempDir(), "absent")), &testutil.MockLogger{})
	users, err := us.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, us.EnsureRoot())
	assert.DirExists(t, us.Root())
}
