package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if id, ok := r.s.usersByEmail[strings.ToLower(email)]; ok {
		return copyUser(r.s.users[id]), nil
	}
	return nil, nil
}

func (r *userRepository) Create(_ context.Context, email, passwordHash string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(email)
	if _, ok := r.s.usersByEmail[email]; ok {
		return nil, result.Conflict("Email already exists", nil)
	}

	now := r.s.now()
	u := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u
	r.s.usersByEmail[email] = u.ID
	return copyUser(u), nil
}
