package models

import "aetherlink-be/internal/entities"

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  *entities.SafeUser `json:"user"`
	Token string             `json:"token"` // JWT token
}

// CredentialsResponse is the internal credential lookup payload. It is the
// only response that carries a password hash.
type CredentialsResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// HandleAvailabilityResponse answers GET /profiles/check-handle
type HandleAvailabilityResponse struct {
	Available bool `json:"available"`
}
