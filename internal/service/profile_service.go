package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aetherlink-be/internal/cache"
	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/logger"
	"aetherlink-be/internal/models"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

const profileCacheTTL = 5 * time.Minute

// ProfileService defines the interface for profile business logic
type ProfileService interface {
	CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*entities.Profile, error)
	GetProfileByHandle(ctx context.Context, handle string) (*entities.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*entities.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*entities.Profile, error)
	UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*entities.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	CheckHandleAvailability(ctx context.Context, handle string) (bool, error)
}

type profileService struct {
	repo  repository.ProfileRepository
	cache cache.Cache
}

// NewProfileService creates a new profile service. cacheClient may be nil.
func NewProfileService(repo repository.ProfileRepository, cacheClient cache.Cache) ProfileService {
	return &profileService{
		repo:  repo,
		cache: cacheClient,
	}
}

func handleCacheKey(handle string) string {
	return fmt.Sprintf("profile:handle:%s", strings.ToLower(handle))
}

func (s *profileService) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*entities.Profile, error) {
	if err := validateStruct("Invalid profile data", req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, result.Conflict("User already has a profile", nil)
	}

	taken, err := s.repo.HandleExists(ctx, req.Handle)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, result.Conflict("Handle is already taken", map[string]any{"handle": req.Handle})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	return s.repo.Create(ctx, repository.NewProfile{
		UserID:      req.UserID,
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		IsPublic:    isPublic,
	})
}

// GetProfileByHandle reads through the cache when one is configured. Only
// found profiles are cached.
func (s *profileService) GetProfileByHandle(ctx context.Context, handle string) (*entities.Profile, error) {
	key := handleCacheKey(handle)
	if s.cache != nil {
		var cached entities.Profile
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Debug().Err(err).Str("key", key).Msg("profile cache read failed")
		}
	}

	profile, err := s.repo.FindByHandle(ctx, handle)
	if err != nil || profile == nil {
		return profile, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, profile, profileCacheTTL); err != nil {
			logger.Debug().Err(err).Str("key", key).Msg("profile cache write failed")
		}
	}
	return profile, nil
}

func (s *profileService) GetProfileByID(ctx context.Context, id string) (*entities.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *profileService) GetProfileByUserID(ctx context.Context, userID string) (*entities.Profile, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*entities.Profile, error) {
	if err := validateStruct("Invalid update data", req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, result.NotFound("Profile not found")
	}

	if req.Handle != nil && !strings.EqualFold(*req.Handle, existing.Handle) {
		taken, err := s.repo.HandleExists(ctx, *req.Handle)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, result.Conflict("Handle is already taken", map[string]any{"handle": *req.Handle})
		}
	}

	updated, err := s.repo.Update(ctx, id, repository.ProfileUpdate{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, existing.Handle, updated.Handle)
	return updated, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return result.NotFound("Profile not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, existing.Handle)
	return nil
}

func (s *profileService) CheckHandleAvailability(ctx context.Context, handle string) (bool, error) {
	taken, err := s.repo.HandleExists(ctx, handle)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *profileService) invalidate(ctx context.Context, handles ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(handles))
	for _, h := range handles {
		keys = append(keys, handleCacheKey(h))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("profile cache invalidation failed")
	}
}
