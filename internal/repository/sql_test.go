package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlink-be/internal/database"
	"aetherlink-be/internal/optional"
	"aetherlink-be/internal/result"
)

type sqlRepos struct {
	users    UserRepository
	profiles ProfileRepository
	links    LinkRepository
}

func setupSQL(t *testing.T) sqlRepos {
	t.Helper()
	url := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, dialect, err := database.NewConnection(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, dialect))

	return sqlRepos{
		users:    NewUserRepository(db),
		profiles: NewProfileRepository(db),
		links:    NewLinkRepository(db, dialect),
	}
}

func (r sqlRepos) seedProfile(t *testing.T, email, handle string) string {
	t.Helper()
	ctx := context.Background()
	user, err := r.users.Create(ctx, email, "hash")
	require.NoError(t, err)
	p, err := r.profiles.Create(ctx, NewProfile{UserID: user.ID, Handle: handle, DisplayName: handle, IsPublic: true})
	require.NoError(t, err)
	return p.ID
}

func (r sqlRepos) seedLinks(t *testing.T, profileID string, n int) []string {
	t.Helper()
	var ids []string
	for i := 0; i < n; i++ {
		l, err := r.links.Create(context.Background(), NewLink{
			ProfileID: profileID,
			Title:     fmt.Sprintf("link %d", i),
			URL:       "https://example.com",
		})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	return ids
}

func (r sqlRepos) order(t *testing.T, profileID string) []string {
	t.Helper()
	links, err := r.links.FindByProfileID(context.Background(), profileID)
	require.NoError(t, err)
	var ids []string
	for i, l := range links {
		require.Equal(t, i, l.Position, "positions must stay dense")
		ids = append(ids, l.ID)
	}
	return ids
}

func TestSetClause(t *testing.T) {
	var s setClause
	s.add("title", "a")
	s.add("url", "b")
	assignments, idIndex := s.build()
	assert.Equal(t, "title = $1, url = $2", assignments)
	assert.Equal(t, 3, idIndex)
	assert.Equal(t, []any{"a", "b"}, s.args)
}

func TestTimestampScan(t *testing.T) {
	var got time.Time
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, timestamp{&got}.Scan(want))
	assert.True(t, want.Equal(got))

	require.NoError(t, timestamp{&got}.Scan("2024-05-01 12:30:00"))
	assert.True(t, want.Equal(got))

	require.NoError(t, timestamp{&got}.Scan([]byte("2024-05-01T12:30:00Z")))
	assert.True(t, want.Equal(got))

	assert.Error(t, timestamp{&got}.Scan(42))
}

func TestSQLUserRepository(t *testing.T) {
	r := setupSQL(t)
	ctx := context.Background()

	user, err := r.users.Create(ctx, "Jane@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)

	found, err := r.users.FindByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	_, err = r.users.Create(ctx, "jane@example.com", "other")
	assert.Equal(t, result.CodeConflict, result.CodeOf(err))

	missing, err := r.users.FindByID(ctx, "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLProfileRepository(t *testing.T) {
	r := setupSQL(t)
	ctx := context.Background()
	id := r.seedProfile(t, "a@example.com", "Alpha")
	r.seedProfile(t, "b@example.com", "beta")

	p, err := r.profiles.FindByHandle(ctx, "ALPHA")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "alpha", p.Handle)

	exists, err := r.profiles.HandleExists(ctx, "Beta")
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("partial update", func(t *testing.T) {
		bio := "hi"
		p, err := r.profiles.Update(ctx, id, ProfileUpdate{Bio: optional.Of(bio)})
		require.NoError(t, err)
		require.NotNil(t, p.Bio)
		assert.Equal(t, "hi", *p.Bio)
		assert.Equal(t, "alpha", p.Handle)

		p, err = r.profiles.Update(ctx, id, ProfileUpdate{Bio: optional.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, p.Bio)
	})

	t.Run("handle conflict", func(t *testing.T) {
		taken := "beta"
		_, err := r.profiles.Update(ctx, id, ProfileUpdate{Handle: &taken})
		assert.Equal(t, result.CodeConflict, result.CodeOf(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		name := "x"
		_, err := r.profiles.Update(ctx, "00000000-0000-0000-0000-000000000000", ProfileUpdate{DisplayName: &name})
		assert.Equal(t, result.CodeNotFound, result.CodeOf(err))
	})
}

func TestSQLProfileDeleteRemovesLinks(t *testing.T) {
	r := setupSQL(t)
	ctx := context.Background()
	id := r.seedProfile(t, "a@example.com", "alpha")
	links := r.seedLinks(t, id, 2)

	require.NoError(t, r.profiles.Delete(ctx, id))

	for _, linkID := range links {
		l, err := r.links.FindByID(ctx, linkID)
		require.NoError(t, err)
		assert.Nil(t, l)
	}
	assert.Equal(t, result.CodeNotFound, result.CodeOf(r.profiles.Delete(ctx, id)))
}

func TestSQLLinkLifecycle(t *testing.T) {
	r := setupSQL(t)
	ctx := context.Background()
	id := r.seedProfile(t, "a@example.com", "alpha")
	links := r.seedLinks(t, id, 4)

	assert.Equal(t, links, r.order(t, id))

	t.Run("delete compacts", func(t *testing.T) {
		require.NoError(t, r.links.Delete(ctx, links[1]))
		assert.Equal(t, []string{links[0], links[2], links[3]}, r.order(t, id))
	})

	t.Run("reorder partial list", func(t *testing.T) {
		require.NoError(t, r.links.Reorder(ctx, id, []string{links[3]}))
		assert.Equal(t, []string{links[3], links[0], links[2]}, r.order(t, id))
	})

	t.Run("reorder rejects foreign ids", func(t *testing.T) {
		other := r.seedProfile(t, "b@example.com", "beta")
		foreign := r.seedLinks(t, other, 1)[0]

		err := r.links.Reorder(ctx, id, []string{links[0], foreign})
		assert.Equal(t, result.CodeValidation, result.CodeOf(err))
		assert.Equal(t, []string{links[3], links[0], links[2]}, r.order(t, id))
	})

	t.Run("reorder rejects duplicates", func(t *testing.T) {
		err := r.links.Reorder(ctx, id, []string{links[0], links[0]})
		assert.Equal(t, result.CodeValidation, result.CodeOf(err))
	})

	t.Run("update and clicks", func(t *testing.T) {
		title := "renamed"
		l, err := r.links.Update(ctx, links[0], LinkUpdate{Title: &title, Icon: optional.Of("star")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", l.Title)
		require.NotNil(t, l.Icon)

		require.NoError(t, r.links.IncrementClickCount(ctx, links[0]))
		require.NoError(t, r.links.IncrementClickCount(ctx, links[0]))
		l, err = r.links.FindByID(ctx, links[0])
		require.NoError(t, err)
		assert.EqualValues(t, 2, l.ClickCount)

		err = r.links.IncrementClickCount(ctx, links[1])
		assert.Equal(t, result.CodeNotFound, result.CodeOf(err))
	})

	t.Run("create for unknown profile", func(t *testing.T) {
		_, err := r.links.Create(ctx, NewLink{ProfileID: "00000000-0000-0000-0000-000000000000", Title: "t", URL: "https://x.io"})
		assert.Equal(t, result.CodeNotFound, result.CodeOf(err))
	})
}
