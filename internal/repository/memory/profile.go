package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

type profileRepository struct {
	s *Store
}

func profileNotFound(id string) *result.Error {
	return result.New(result.CodeNotFound, "Profile not found", map[string]any{"id": id})
}

func (r *profileRepository) FindByID(_ context.Context, id string) (*entities.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.profiles[id]; ok {
		return copyProfile(p), nil
	}
	return nil, nil
}

func (r *profileRepository) FindByHandle(_ context.Context, handle string) (*entities.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if id, ok := r.s.profilesByHandle[strings.ToLower(handle)]; ok {
		return copyProfile(r.s.profiles[id]), nil
	}
	return nil, nil
}

func (r *profileRepository) FindByUserID(_ context.Context, userID string) (*entities.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if id, ok := r.s.profilesByUser[userID]; ok {
		return copyProfile(r.s.profiles[id]), nil
	}
	return nil, nil
}

func (r *profileRepository) Create(_ context.Context, input repository.NewProfile) (*entities.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	handle := strings.ToLower(input.Handle)
	if _, ok := r.s.profilesByHandle[handle]; ok {
		return nil, result.Conflict("Handle already exists", map[string]any{"handle": input.Handle})
	}
	if _, ok := r.s.profilesByUser[input.UserID]; ok {
		return nil, result.Conflict("User already has a profile", map[string]any{"userId": input.UserID})
	}

	now := r.s.now()
	p := &entities.Profile{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Handle:      handle,
		DisplayName: input.DisplayName,
		Bio:         copyString(input.Bio),
		AvatarURL:   copyString(input.AvatarURL),
		IsPublic:    input.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.profiles[p.ID] = p
	r.s.profilesByHandle[handle] = p.ID
	r.s.profilesByUser[p.UserID] = p.ID
	return copyProfile(p), nil
}

func (r *profileRepository) Update(_ context.Context, id string, update repository.ProfileUpdate) (*entities.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.profiles[id]
	if !ok {
		return nil, profileNotFound(id)
	}

	next := copyProfile(existing)
	if update.Handle != nil {
		handle := strings.ToLower(*update.Handle)
		if handle != existing.Handle {
			if _, taken := r.s.profilesByHandle[handle]; taken {
				return nil, result.Conflict("Handle is already taken", map[string]any{"handle": *update.Handle})
			}
		}
		next.Handle = handle
	}
	if update.DisplayName != nil {
		next.DisplayName = *update.DisplayName
	}
	if update.Bio.IsSet() {
		next.Bio = update.Bio.Ptr()
	}
	if update.AvatarURL.IsSet() {
		next.AvatarURL = update.AvatarURL.Ptr()
	}
	if update.IsPublic != nil {
		next.IsPublic = *update.IsPublic
	}
	next.UpdatedAt = r.s.now()

	if next.Handle != existing.Handle {
		delete(r.s.profilesByHandle, existing.Handle)
		r.s.profilesByHandle[next.Handle] = id
	}
	r.s.profiles[id] = next
	return copyProfile(next), nil
}

// Delete removes the profile and cascades to its links.
func (r *profileRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.profiles[id]
	if !ok {
		return profileNotFound(id)
	}

	for linkID := range r.s.linksByProfile[id] {
		delete(r.s.links, linkID)
	}
	delete(r.s.linksByProfile, id)
	delete(r.s.profiles, id)
	delete(r.s.profilesByHandle, existing.Handle)
	delete(r.s.profilesByUser, existing.UserID)
	return nil
}

func (r *profileRepository) HandleExists(_ context.Context, handle string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.profilesByHandle[strings.ToLower(handle)]
	return ok, nil
}
