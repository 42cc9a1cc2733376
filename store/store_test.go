package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(SQLite, filepath.Join(t.TempDir(), "notedesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, username+" Example", username+"@example.com", "hash")
	require.NoError(t, err)
	return u
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "Alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotZero(t, u.ID)

	_, err = s.CreateUser(ctx, "alice", "Alice Again", "alice2@example.com", "hash")
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := mustCreateUser(t, s, "alice")

	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestListVisibleVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	_, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "Welcome", IsGlobal: true})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "Draft"})
	require.NoError(t, err)

	aliceNotes, err := s.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceNotes, 2)

	bobNotes, err := s.ListVisible(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	assert.Equal(t, "Welcome", bobNotes[0].Title)
}

func TestListVisibleExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	n, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "Gone", IsGlobal: true})
	require.NoError(t, err)

	deleted, err := s.SoftDelete(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.True(t, deleted.IsDeleted)

	notes, err := s.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListVisibleOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		n, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	setUpdated := func(id int64, at time.Time) {
		_, err := s.db.Exec(s.rebind("UPDATE notes SET updated_at = ? WHERE id = ?"), at, id)
		require.NoError(t, err)
	}
	// updated_at = [T3, T1, T2] for rows a, b, c
	setUpdated(ids[0], base.Add(3*time.Hour))
	setUpdated(ids[1], base.Add(1*time.Hour))
	setUpdated(ids[2], base.Add(2*time.Hour))

	notes, err := s.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []int64{ids[0], ids[2], ids[1]}, []int64{notes[0].ID, notes[1].ID, notes[2].ID})
}

func TestListVisibleCreatedAtTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	first, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "first"})
	require.NoError(t, err)
	second, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "second"})
	require.NoError(t, err)

	// shared update time, distinct creation times
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err = s.db.Exec(s.rebind("UPDATE notes SET updated_at = ?"), at)
	require.NoError(t, err)
	_, err = s.db.Exec(s.rebind("UPDATE notes SET created_at = ? WHERE id = ?"), at.Add(-2*time.Hour), first.ID)
	require.NoError(t, err)
	_, err = s.db.Exec(s.rebind("UPDATE notes SET created_at = ? WHERE id = ?"), at.Add(-time.Hour), second.ID)
	require.NoError(t, err)

	notes, err := s.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestCreateVersionChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	root, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "v1", Content: "one", IsGlobal: true})
	require.NoError(t, err)
	assert.Nil(t, root.OriginID)

	v2, err := s.CreateVersion(ctx, root.ID, alice.ID, "v2", "two")
	require.NoError(t, err)
	require.NotNil(t, v2.OriginID)
	assert.Equal(t, root.ID, *v2.OriginID)
	assert.False(t, v2.IsGlobal)

	v3, err := s.CreateVersion(ctx, v2.ID, alice.ID, "v3", "three")
	require.NoError(t, err)
	require.NotNil(t, v3.OriginID)
	assert.Equal(t, v2.ID, *v3.OriginID)

	// every version stays listed; nothing is removed
	notes, err := s.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestCreateNoteLooseOriginID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	// origin_id is stored as-is, even when it points nowhere
	origin := int64(9999)
	n, err := s.CreateNote(ctx, NoteParams{UserID: alice.ID, Title: "loose", OriginID: &origin})
	require.NoError(t, err)
	require.NotNil(t, n.OriginID)
	assert.Equal(t, origin, *n.OriginID)
}

func TestSoftDeleteNoMatch(t *testing.T) {
	s := newTestStore(t)

	n, err := s.SoftDelete(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, n)
}
