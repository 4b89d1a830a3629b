package models

import "aetherlink-be/internal/optional"

// CreateLinkRequest represents the request body for adding a link
type CreateLinkRequest struct {
	ProfileID string  `json:"profileId" validate:"required,uuid"`
	Title     string  `json:"title" validate:"required,min=1,max=100"`
	URL       string  `json:"url" validate:"required,url"`
	Icon      *string `json:"icon" validate:"omitnil,max=50"`
	Position  *int    `json:"position" validate:"omitnil,min=0"` // omitted appends
}

// UpdateLinkRequest is a partial update; icon may be sent as null
type UpdateLinkRequest struct {
	Title    *string                `json:"title" validate:"omitnil,min=1,max=100"`
	URL      *string                `json:"url" validate:"omitnil,url"`
	Icon     optional.Field[string] `json:"icon" validate:"omitnil,max=50"`
	IsActive *bool                  `json:"isActive"`
}

// ReorderLinksRequest lists link ids in their new order. Links of the profile
// that are not listed keep their relative order after the listed ones.
type ReorderLinksRequest struct {
	ProfileID string   `json:"profileId" validate:"required,uuid"`
	LinkIDs   []string `json:"linkIds" validate:"required,min=1,unique,dive,uuid"`
}
