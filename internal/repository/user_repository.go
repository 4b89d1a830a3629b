package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

const userColumns = `id, email, password_hash, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQL-backed user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		timestamp{&user.CreatedAt},
		timestamp{&user.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, email, passwordHash string) (*entities.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	now := time.Now().UTC()
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), strings.ToLower(email), passwordHash, now, now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, result.Conflict("Email already exists", nil)
		}
		return nil, result.Wrap(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, strings.ToLower(email))
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*entities.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to find user: %w", err))
	}
	return user, nil
}
