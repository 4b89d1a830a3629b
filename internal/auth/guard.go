// Package auth answers two questions for a request: who is calling, and may
// they touch this profile or link.
package auth

import (
	"net/http"
	"strings"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

// TokenVerifier resolves a bearer token to a user id. *jwt.JWTService
// satisfies it.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Identify returns the caller's user id, or false when the request carries no
// valid token.
func Identify(r *http.Request, verifier TokenVerifier) (string, bool) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", false
	}
	userID, err := verifier.VerifyToken(token)
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}

func RequireAuth(r *http.Request, verifier TokenVerifier) (string, error) {
	userID, ok := Identify(r, verifier)
	if !ok {
		return "", result.Unauthorized("Authentication required")
	}
	return userID, nil
}

func VerifyProfileOwnership(userID string, profile *entities.Profile) error {
	if profile == nil {
		return result.NotFound("Profile not found")
	}
	if profile.UserID != userID {
		return result.Forbidden("You do not have permission to access this profile")
	}
	return nil
}

// VerifyLinkOwnership checks the link through the profile it claims to belong
// to. A profile that is not the link's parent is refused outright.
func VerifyLinkOwnership(userID string, link *entities.Link, profile *entities.Profile) error {
	if link == nil {
		return result.NotFound("Link not found")
	}
	if profile == nil {
		return result.NotFound("Profile not found")
	}
	if profile.ID != link.ProfileID || profile.UserID != userID {
		return result.Forbidden("You do not have permission to access this link")
	}
	return nil
}
