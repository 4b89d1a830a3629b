package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aetherlink-be/internal/database"
	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

const profileColumns = `id, user_id, handle, display_name, bio, avatar_url, is_public, created_at, updated_at`

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new SQL-backed profile repository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func scanProfile(row rowScanner) (*entities.Profile, error) {
	var (
		p         entities.Profile
		bio       sql.NullString
		avatarURL sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Handle,
		&p.DisplayName,
		&bio,
		&avatarURL,
		&p.IsPublic,
		timestamp{&p.CreatedAt},
		timestamp{&p.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	return &p, nil
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*entities.Profile, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *profileRepository) FindByHandle(ctx context.Context, handle string) (*entities.Profile, error) {
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE handle = $1`, strings.ToLower(handle))
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID string) (*entities.Profile, error) {
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

func (r *profileRepository) findOne(ctx context.Context, query string, arg any) (*entities.Profile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to find profile: %w", err))
	}
	return profile, nil
}

// Create inserts a profile. The UNIQUE constraints on handle and user_id make
// the uniqueness check atomic.
func (r *profileRepository) Create(ctx context.Context, input NewProfile) (*entities.Profile, error) {
	query := `
		INSERT INTO profiles (id, user_id, handle, display_name, bio, avatar_url, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + profileColumns

	now := time.Now().UTC()
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		input.UserID,
		strings.ToLower(input.Handle),
		input.DisplayName,
		input.Bio,
		input.AvatarURL,
		input.IsPublic,
		now,
		now,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, result.Conflict("Handle or user already exists", nil)
		}
		return nil, result.Wrap(fmt.Errorf("failed to create profile: %w", err))
	}
	return profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, update ProfileUpdate) (*entities.Profile, error) {
	if !validID(id) {
		return nil, result.New(result.CodeNotFound, "Profile not found", map[string]any{"id": id})
	}

	var set setClause
	if update.Handle != nil {
		set.add("handle", strings.ToLower(*update.Handle))
	}
	if update.DisplayName != nil {
		set.add("display_name", *update.DisplayName)
	}
	if update.Bio.IsSet() {
		set.add("bio", update.Bio.Ptr())
	}
	if update.AvatarURL.IsSet() {
		set.add("avatar_url", update.AvatarURL.Ptr())
	}
	if update.IsPublic != nil {
		set.add("is_public", *update.IsPublic)
	}
	set.add("updated_at", time.Now().UTC())

	assignments, idIndex := set.build()
	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`, assignments, idIndex, profileColumns)

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, append(set.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, result.New(result.CodeNotFound, "Profile not found", map[string]any{"id": id})
	}
	if err != nil {
		if isUniqueViolation(err) && update.Handle != nil {
			return nil, result.Conflict("Handle is already taken", map[string]any{"handle": *update.Handle})
		}
		return nil, result.Wrap(fmt.Errorf("failed to update profile: %w", err))
	}
	return profile, nil
}

// Delete removes a profile together with its links.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return result.New(result.CodeNotFound, "Profile not found", map[string]any{"id": id})
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE profile_id = $1`, id); err != nil {
			return result.Wrap(fmt.Errorf("failed to delete profile links: %w", err))
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to delete profile: %w", err))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to delete profile: %w", err))
		}
		if affected == 0 {
			return result.New(result.CodeNotFound, "Profile not found", map[string]any{"id": id})
		}
		return nil
	})
}

func (r *profileRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE handle = $1)`,
		strings.ToLower(handle),
	).Scan(&exists)
	if err != nil {
		return false, result.Wrap(fmt.Errorf("failed to check handle: %w", err))
	}
	return exists, nil
}
