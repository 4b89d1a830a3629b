package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingID    = errors.New("token has no subject")
)

// Claims carries the user id under "id"; tokens issued elsewhere may only set
// the registered "sub" claim.
type Claims struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// UserID returns the id claim, falling back to sub.
func (c *Claims) UserID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.RegisteredClaims.Subject
}

// JWTService issues and verifies HS256 session tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateToken signs a token for the given user
func (s *JWTService) GenerateToken(userID, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature and expiry and returns the user id.
func (s *JWTService) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	id := claims.UserID()
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}
