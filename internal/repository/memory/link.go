package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

type linkRepository struct {
	s *Store
}

func linkNotFound(id string) *result.Error {
	return result.New(result.CodeNotFound, "Link not found", map[string]any{"id": id})
}

func (r *linkRepository) FindByID(_ context.Context, id string) (*entities.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if l, ok := r.s.links[id]; ok {
		return copyLink(l), nil
	}
	return nil, nil
}

func (r *linkRepository) FindByProfileID(_ context.Context, profileID string) ([]*entities.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ordered := r.ordered(profileID)
	out := make([]*entities.Link, 0, len(ordered))
	for _, l := range ordered {
		out = append(out, copyLink(l))
	}
	return out, nil
}

// ordered returns the stored links of a profile sorted by position, oldest
// first on ties. Callers hold the lock.
func (r *linkRepository) ordered(profileID string) []*entities.Link {
	ids := r.s.linksByProfile[profileID]
	links := make([]*entities.Link, 0, len(ids))
	for id := range ids {
		links = append(links, r.s.links[id])
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].Position != links[j].Position {
			return links[i].Position < links[j].Position
		}
		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})
	return links
}

func (r *linkRepository) Create(_ context.Context, input repository.NewLink) (*entities.Link, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[input.ProfileID]; !ok {
		return nil, result.NotFound("Profile not found")
	}

	position := len(r.s.linksByProfile[input.ProfileID])
	if input.Position != nil {
		position = *input.Position
	}

	now := r.s.now()
	l := &entities.Link{
		ID:        uuid.NewString(),
		ProfileID: input.ProfileID,
		Title:     input.Title,
		URL:       input.URL,
		Icon:      copyString(input.Icon),
		Position:  position,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.links[l.ID] = l
	if r.s.linksByProfile[l.ProfileID] == nil {
		r.s.linksByProfile[l.ProfileID] = make(map[string]struct{})
	}
	r.s.linksByProfile[l.ProfileID][l.ID] = struct{}{}
	return copyLink(l), nil
}

func (r *linkRepository) Update(_ context.Context, id string, update repository.LinkUpdate) (*entities.Link, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.links[id]
	if !ok {
		return nil, linkNotFound(id)
	}

	next := copyLink(existing)
	if update.Title != nil {
		next.Title = *update.Title
	}
	if update.URL != nil {
		next.URL = *update.URL
	}
	if update.Icon.IsSet() {
		next.Icon = update.Icon.Ptr()
	}
	if update.IsActive != nil {
		next.IsActive = *update.IsActive
	}
	next.UpdatedAt = r.s.now()

	r.s.links[id] = next
	return copyLink(next), nil
}

// Delete removes the link and closes the gap in the profile's positions.
func (r *linkRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.links[id]
	if !ok {
		return linkNotFound(id)
	}

	delete(r.s.links, id)
	delete(r.s.linksByProfile[existing.ProfileID], id)
	for sibling := range r.s.linksByProfile[existing.ProfileID] {
		if l := r.s.links[sibling]; l.Position > existing.Position {
			l.Position--
		}
	}
	return nil
}

// Reorder validates every id before touching any position, all under the
// store lock, so readers never see a partial ordering.
func (r *linkRepository) Reorder(_ context.Context, profileID string, linkIDs []string) error {
	if len(linkIDs) == 0 {
		return result.Validation("Link IDs array cannot be empty", nil)
	}

	listed := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		if listed[id] {
			return result.Validation("Duplicate link IDs provided", nil)
		}
		listed[id] = true
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	members := r.s.linksByProfile[profileID]
	for _, id := range linkIDs {
		if _, ok := members[id]; !ok {
			return result.Validation("Link does not belong to profile", map[string]any{"linkId": id})
		}
	}

	order := append([]string(nil), linkIDs...)
	for _, l := range r.ordered(profileID) {
		if !listed[l.ID] {
			order = append(order, l.ID)
		}
	}

	now := r.s.now()
	for position, id := range order {
		l := r.s.links[id]
		l.Position = position
		l.UpdatedAt = now
	}
	return nil
}

func (r *linkRepository) IncrementClickCount(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.links[id]
	if !ok {
		return linkNotFound(id)
	}
	l.ClickCount++
	return nil
}
