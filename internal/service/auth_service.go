package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/models"
	"aetherlink-be/internal/repository"
	"aetherlink-be/internal/result"
)

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher hashes with the given cost
type BcryptHasher struct {
	Cost int
}

// DefaultPasswordCost is the bcrypt cost used in production
const DefaultPasswordCost = 12

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = DefaultPasswordCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// TokenIssuer signs session tokens. *jwt.JWTService satisfies it.
type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*entities.SafeUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.SafeUser, error)
	GetUserByID(ctx context.Context, id string) (*entities.SafeUser, error)
	// GetUserByEmailWithPassword is for trusted callers that verify
	// credentials themselves.
	GetUserByEmailWithPassword(ctx context.Context, email string) (*entities.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, hasher PasswordHasher) AuthService {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultPasswordCost)
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
	}
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*entities.SafeUser, error) {
	if err := validateStruct("Invalid registration data", req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, result.Conflict("Email already registered", nil)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, result.Wrap(err)
	}

	user, err := s.userRepo.Create(ctx, strings.ToLower(req.Email), hashed)
	if err != nil {
		return nil, err
	}
	return user.Safe(), nil
}

// Login authenticates a user and returns user info with JWT token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validateStruct("Invalid login data", req); err != nil {
		return nil, err
	}

	invalid := result.Unauthorized("Invalid email or password")

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, result.Wrap(fmt.Errorf("failed to verify password: %w", err))
	}

	if s.tokens == nil {
		return nil, result.Internal("token issuing is not configured")
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to generate token: %w", err))
	}

	return &models.AuthResponse{
		User:  user.Safe(),
		Token: token,
	}, nil
}

func (s *authService) GetUserByEmail(ctx context.Context, email string) (*entities.SafeUser, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Safe(), nil
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*entities.SafeUser, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Safe(), nil
}

func (s *authService) GetUserByEmailWithPassword(ctx context.Context, email string) (*entities.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}
