package entities

import "time"

// Link is one entry of a profile's ordered link list.
type Link struct {
	ID         string    `json:"id"` // UUID
	ProfileID  string    `json:"profileId"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Icon       *string   `json:"icon"`
	Position   int       `json:"position"` // dense, zero-based per profile
	IsActive   bool      `json:"isActive"`
	ClickCount int64     `json:"clickCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
