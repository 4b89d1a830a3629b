package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlink-be/internal/optional"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

func seedProfile(t *testing.T, s *Store) string {
	t.Helper()
	ctx := context.Background()
	user, err := s.Users().Create(ctx, "Owner@Example.com", "hash")
	require.NoError(t, err)
	profile, err := s.Profiles().Create(ctx, repository.NewProfile{
		UserID:      user.ID,
		Handle:      "Owner",
		DisplayName: "Owner",
		IsPublic:    true,
	})
	require.NoError(t, err)
	return profile.ID
}

func seedLinks(t *testing.T, s *Store, profileID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		link, err := s.Links().Create(context.Background(), repository.NewLink{
			ProfileID: profileID,
			Title:     "link",
			URL:       "https://example.com",
		})
		require.NoError(t, err)
		ids = append(ids, link.ID)
	}
	return ids
}

func positions(t *testing.T, s *Store, profileID string) map[string]int {
	t.Helper()
	links, err := s.Links().FindByProfileID(context.Background(), profileID)
	require.NoError(t, err)
	out := make(map[string]int, len(links))
	for _, l := range links {
		out[l.ID] = l.Position
	}
	return out
}

func TestUsersNormaliseEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	user, err := s.Users().Create(ctx, "Mixed@Case.io", "hash")
	require.NoError(t, err)
	assert.Equal(t, "mixed@case.io", user.Email)

	found, err := s.Users().FindByEmail(ctx, "MIXED@case.io")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	_, err = s.Users().Create(ctx, "mixed@CASE.io", "other")
	assert.Equal(t, result.CodeConflict, result.CodeOf(err))

	missing, err := s.Users().FindByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := NewStore()
	id := seedProfile(t, s)

	p, err := s.Profiles().FindByID(context.Background(), id)
	require.NoError(t, err)
	p.DisplayName = "mutated"

	again, err := s.Profiles().FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Owner", again.DisplayName)
}

func TestProfileUpdateHandlesNullAndAbsent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)

	bio := "hello"
	_, err := s.Profiles().Update(ctx, id, repository.ProfileUpdate{Bio: optional.Of(bio)})
	require.NoError(t, err)

	// absent leaves the bio alone
	p, err := s.Profiles().Update(ctx, id, repository.ProfileUpdate{DisplayName: &bio})
	require.NoError(t, err)
	require.NotNil(t, p.Bio)
	assert.Equal(t, "hello", *p.Bio)

	p, err = s.Profiles().Update(ctx, id, repository.ProfileUpdate{Bio: optional.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, p.Bio)
}

func TestProfileHandleChange(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)

	other, err := s.Users().Create(ctx, "other@example.com", "hash")
	require.NoError(t, err)
	_, err = s.Profiles().Create(ctx, repository.NewProfile{UserID: other.ID, Handle: "taken", DisplayName: "x"})
	require.NoError(t, err)

	taken := "TAKEN"
	_, err = s.Profiles().Update(ctx, id, repository.ProfileUpdate{Handle: &taken})
	assert.Equal(t, result.CodeConflict, result.CodeOf(err))

	fresh := "Fresh"
	_, err = s.Profiles().Update(ctx, id, repository.ProfileUpdate{Handle: &fresh})
	require.NoError(t, err)

	exists, _ := s.Profiles().HandleExists(ctx, "owner")
	assert.False(t, exists)
	p, _ := s.Profiles().FindByHandle(ctx, "FRESH")
	require.NotNil(t, p)
	assert.Equal(t, "fresh", p.Handle)
}

func TestProfileDeleteCascadesToLinks(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)
	links := seedLinks(t, s, id, 3)

	require.NoError(t, s.Profiles().Delete(ctx, id))

	for _, linkID := range links {
		l, err := s.Links().FindByID(ctx, linkID)
		require.NoError(t, err)
		assert.Nil(t, l)
	}
	assert.Equal(t, result.CodeNotFound, result.CodeOf(s.Profiles().Delete(ctx, id)))
}

func TestLinkCreateAppends(t *testing.T) {
	s := NewStore()
	id := seedProfile(t, s)
	links := seedLinks(t, s, id, 3)

	got := positions(t, s, id)
	for i, linkID := range links {
		assert.Equal(t, i, got[linkID])
	}

	_, err := s.Links().Create(context.Background(), repository.NewLink{ProfileID: "missing", Title: "t", URL: "https://x.io"})
	assert.Equal(t, result.CodeNotFound, result.CodeOf(err))
}

func TestLinkDeleteCompactsPositions(t *testing.T) {
	s := NewStore()
	id := seedProfile(t, s)
	links := seedLinks(t, s, id, 4)

	require.NoError(t, s.Links().Delete(context.Background(), links[1]))

	got := positions(t, s, id)
	assert.Len(t, got, 3)
	assert.Equal(t, 0, got[links[0]])
	assert.Equal(t, 1, got[links[2]])
	assert.Equal(t, 2, got[links[3]])
}

func TestReorder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)
	links := seedLinks(t, s, id, 4)

	t.Run("listed first then the rest in prior order", func(t *testing.T) {
		require.NoError(t, s.Links().Reorder(ctx, id, []string{links[3], links[1]}))

		ordered, err := s.Links().FindByProfileID(ctx, id)
		require.NoError(t, err)
		var got []string
		for _, l := range ordered {
			got = append(got, l.ID)
		}
		assert.Equal(t, []string{links[3], links[1], links[0], links[2]}, got)
	})

	t.Run("rejects bad input without changes", func(t *testing.T) {
		before := positions(t, s, id)

		err := s.Links().Reorder(ctx, id, nil)
		assert.Equal(t, result.CodeValidation, result.CodeOf(err))

		err = s.Links().Reorder(ctx, id, []string{links[0], links[0]})
		assert.Equal(t, result.CodeValidation, result.CodeOf(err))

		err = s.Links().Reorder(ctx, id, []string{links[0], "foreign"})
		var rerr *result.Error
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "foreign", rerr.Details["linkId"])

		assert.Equal(t, before, positions(t, s, id))
	})
}

func TestIncrementClickCountIsAtomic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)
	linkID := seedLinks(t, s, id, 1)[0]

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Links().IncrementClickCount(ctx, linkID))
		}()
	}
	wg.Wait()

	l, err := s.Links().FindByID(ctx, linkID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, l.ClickCount)

	assert.Equal(t, result.CodeNotFound, result.CodeOf(s.Links().IncrementClickCount(ctx, "missing")))
}

func TestLinkUpdateClearsIcon(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := seedProfile(t, s)
	icon := "star"
	l, err := s.Links().Create(ctx, repository.NewLink{ProfileID: id, Title: "t", URL: "https://x.io", Icon: &icon})
	require.NoError(t, err)

	inactive := false
	updated, err := s.Links().Update(ctx, l.ID, repository.LinkUpdate{Icon: optional.Null[string](), IsActive: &inactive})
	require.NoError(t, err)
	assert.Nil(t, updated.Icon)
	assert.False(t, updated.IsActive)

	_, err = s.Links().Update(ctx, "missing", repository.LinkUpdate{})
	assert.Equal(t, result.CodeNotFound, result.CodeOf(err))
}
