package entities

import "time"

// Profile is the public page owned by exactly one user.
type Profile struct {
	ID          string    `json:"id"` // UUID
	UserID      string    `json:"userId"`
	Handle      string    `json:"handle"` // stored lowercased
	DisplayName string    `json:"displayName"`
	Bio         *string   `json:"bio"`
	AvatarURL   *string   `json:"avatarUrl"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
