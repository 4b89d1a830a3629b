package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc ", "abc", true},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	verifier := stubVerifier{"good": "user-1", "empty": ""}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	id, err := RequireAuth(req, verifier)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", id)

	for _, header := range []string{"", "Bearer bad", "Bearer empty", "Token good"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		_, err := RequireAuth(req, verifier)
		assert.Equal(t, result.CodeUnauthorized, result.CodeOf(err), header)
	}
}

func TestVerifyProfileOwnership(t *testing.T) {
	profile := &entities.Profile{ID: "p1", UserID: "u1"}

	assert.NoError(t, VerifyProfileOwnership("u1", profile))
	assert.Equal(t, result.CodeForbidden, result.CodeOf(VerifyProfileOwnership("u2", profile)))
	assert.Equal(t, result.CodeNotFound, result.CodeOf(VerifyProfileOwnership("u1", nil)))
}

func TestVerifyLinkOwnership(t *testing.T) {
	profile := &entities.Profile{ID: "p1", UserID: "u1"}
	link := &entities.Link{ID: "l1", ProfileID: "p1"}

	assert.NoError(t, VerifyLinkOwnership("u1", link, profile))

	err := VerifyLinkOwnership("u1", nil, profile)
	assert.EqualError(t, err, "NOT_FOUND: Link not found")

	err = VerifyLinkOwnership("u1", link, nil)
	assert.EqualError(t, err, "NOT_FOUND: Profile not found")

	assert.Equal(t, result.CodeForbidden, result.CodeOf(VerifyLinkOwnership("u2", link, profile)))

	other := &entities.Profile{ID: "p2", UserID: "u1"}
	assert.Equal(t, result.CodeForbidden, result.CodeOf(VerifyLinkOwnership("u1", link, other)))
}
