package repository

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/optional"
)

// Lookups return (nil, nil) when the row does not exist. Failures are
// *result.Error values.

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, email, passwordHash string) (*entities.User, error)
}

// ProfileRepository defines the interface for profile persistence
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*entities.Profile, error)
	FindByHandle(ctx context.Context, handle string) (*entities.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*entities.Profile, error)
	Create(ctx context.Context, input NewProfile) (*entities.Profile, error)
	Update(ctx context.Context, id string, update ProfileUpdate) (*entities.Profile, error)
	Delete(ctx context.Context, id string) error
	HandleExists(ctx context.Context, handle string) (bool, error)
}

// LinkRepository defines the interface for link persistence
type LinkRepository interface {
	FindByID(ctx context.Context, id string) (*entities.Link, error)
	FindByProfileID(ctx context.Context, profileID string) ([]*entities.Link, error)
	Create(ctx context.Context, input NewLink) (*entities.Link, error)
	Update(ctx context.Context, id string, update LinkUpdate) (*entities.Link, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, profileID string, linkIDs []string) error
	IncrementClickCount(ctx context.Context, id string) error
}

type NewProfile struct {
	UserID      string
	Handle      string
	DisplayName string
	Bio         *string
	AvatarURL   *string
	IsPublic    bool
}

// ProfileUpdate lists the columns to change. Nil pointers and unset fields
// leave the column untouched; a null optional field clears it.
type ProfileUpdate struct {
	Handle      *string
	DisplayName *string
	Bio         optional.Field[string]
	AvatarURL   optional.Field[string]
	IsPublic    *bool
}

type NewLink struct {
	ProfileID string
	Title     string
	URL       string
	Icon      *string
	Position  *int // nil appends after the profile's last link
}

// LinkUpdate follows the same rules as ProfileUpdate.
type LinkUpdate struct {
	Title    *string
	URL      *string
	Icon     optional.Field[string]
	IsActive *bool
}
