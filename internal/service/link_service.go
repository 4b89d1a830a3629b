package service

import (
	"context"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/models"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

// LinkService defines the interface for link business logic
type LinkService interface {
	CreateLink(ctx context.Context, req *models.CreateLinkRequest) (*entities.Link, error)
	GetLinksByProfileID(ctx context.Context, profileID string) ([]*entities.Link, error)
	GetLinkByID(ctx context.Context, id string) (*entities.Link, error)
	UpdateLink(ctx context.Context, id string, req *models.UpdateLinkRequest) (*entities.Link, error)
	DeleteLink(ctx context.Context, id string) error
	ReorderLinks(ctx context.Context, req *models.ReorderLinksRequest) error
	TrackClick(ctx context.Context, id string) error
}

type linkService struct {
	links    repository.LinkRepository
	profiles repository.ProfileRepository
}

// NewLinkService creates a new link service
func NewLinkService(links repository.LinkRepository, profiles repository.ProfileRepository) LinkService {
	return &linkService{
		links:    links,
		profiles: profiles,
	}
}

func (s *linkService) CreateLink(ctx context.Context, req *models.CreateLinkRequest) (*entities.Link, error) {
	if err := validateStruct("Invalid link data", req); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, result.NotFound("Profile not found")
	}

	return s.links.Create(ctx, repository.NewLink{
		ProfileID: req.ProfileID,
		Title:     req.Title,
		URL:       req.URL,
		Icon:      req.Icon,
		Position:  req.Position,
	})
}

func (s *linkService) GetLinksByProfileID(ctx context.Context, profileID string) ([]*entities.Link, error) {
	return s.links.FindByProfileID(ctx, profileID)
}

func (s *linkService) GetLinkByID(ctx context.Context, id string) (*entities.Link, error) {
	return s.links.FindByID(ctx, id)
}

func (s *linkService) UpdateLink(ctx context.Context, id string, req *models.UpdateLinkRequest) (*entities.Link, error) {
	if err := validateStruct("Invalid update data", req); err != nil {
		return nil, err
	}

	existing, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, result.NotFound("Link not found")
	}

	return s.links.Update(ctx, id, repository.LinkUpdate{
		Title:    req.Title,
		URL:      req.URL,
		Icon:     req.Icon,
		IsActive: req.IsActive,
	})
}

func (s *linkService) DeleteLink(ctx context.Context, id string) error {
	existing, err := s.links.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return result.NotFound("Link not found")
	}
	return s.links.Delete(ctx, id)
}

// ReorderLinks checks membership up front so a foreign id is reported before
// the repository opens its transaction; the repository checks again under
// its lock.
func (s *linkService) ReorderLinks(ctx context.Context, req *models.ReorderLinksRequest) error {
	if err := validateStruct("Invalid reorder data", req); err != nil {
		return err
	}

	current, err := s.links.FindByProfileID(ctx, req.ProfileID)
	if err != nil {
		return err
	}
	members := make(map[string]struct{}, len(current))
	for _, l := range current {
		members[l.ID] = struct{}{}
	}
	for _, id := range req.LinkIDs {
		if _, ok := members[id]; !ok {
			return result.Validation("Link does not belong to profile", map[string]any{"linkId": id})
		}
	}

	return s.links.Reorder(ctx, req.ProfileID, req.LinkIDs)
}

func (s *linkService) TrackClick(ctx context.Context, id string) error {
	existing, err := s.links.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return result.NotFound("Link not found")
	}
	return s.links.IncrementClickCount(ctx, id)
}
