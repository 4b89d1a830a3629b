package models

import "aetherlink-be/internal/optional"

// CreateProfileRequest represents the request body for creating a profile.
// UserID is filled from the caller's token, never from the body.
type CreateProfileRequest struct {
	UserID      string  `json:"-" validate:"required"`
	Handle      string  `json:"handle" validate:"required,min=3,max=30,handle"`
	DisplayName string  `json:"displayName" validate:"required,min=1,max=100"`
	Bio         *string `json:"bio" validate:"omitnil,max=500"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitnil,url"`
	IsPublic    *bool   `json:"isPublic"` // defaults to true
}

// UpdateProfileRequest is a partial update. Bio and AvatarURL may be sent as
// null to clear them.
type UpdateProfileRequest struct {
	Handle      *string                `json:"handle" validate:"omitnil,min=3,max=30,handle"`
	DisplayName *string                `json:"displayName" validate:"omitnil,min=1,max=100"`
	Bio         optional.Field[string] `json:"bio" validate:"omitnil,max=500"`
	AvatarURL   optional.Field[string] `json:"avatarUrl" validate:"omitnil,url"`
	IsPublic    *bool                  `json:"isPublic"`
}
