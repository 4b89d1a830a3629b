package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aetherlink-be/internal/database"
	"aetherlink-be/internal/entities"
	"aetherlink-be/internal/result"
)

const linkColumns = `id, profile_id, title, url, icon, position, is_active, click_count, created_at, updated_at`

type linkRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewLinkRepository creates a new SQL-backed link repository
func NewLinkRepository(db *sql.DB, dialect database.Dialect) LinkRepository {
	return &linkRepository{db: db, dialect: dialect}
}

func scanLink(row rowScanner) (*entities.Link, error) {
	var (
		l    entities.Link
		icon sql.NullString
	)
	err := row.Scan(
		&l.ID,
		&l.ProfileID,
		&l.Title,
		&l.URL,
		&icon,
		&l.Position,
		&l.IsActive,
		&l.ClickCount,
		timestamp{&l.CreatedAt},
		timestamp{&l.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	if icon.Valid {
		l.Icon = &icon.String
	}
	return &l, nil
}

func linkNotFound(id string) *result.Error {
	return result.New(result.CodeNotFound, "Link not found", map[string]any{"id": id})
}

// forUpdate appends a row lock where the dialect has one. SQLite serialises
// writers on its own.
func (r *linkRepository) forUpdate(query string) string {
	if r.dialect == database.DialectPostgres {
		return query + ` FOR UPDATE`
	}
	return query
}

func (r *linkRepository) FindByID(ctx context.Context, id string) (*entities.Link, error) {
	if !validID(id) {
		return nil, nil
	}
	link, err := scanLink(r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to find link: %w", err))
	}
	return link, nil
}

// FindByProfileID returns the profile's links ordered by position
func (r *linkRepository) FindByProfileID(ctx context.Context, profileID string) ([]*entities.Link, error) {
	links := []*entities.Link{}
	if !validID(profileID) {
		return links, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE profile_id = $1 ORDER BY position ASC, created_at ASC`,
		profileID,
	)
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to list links: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, result.Wrap(fmt.Errorf("failed to scan link: %w", err))
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to list links: %w", err))
	}
	return links, nil
}

// Create inserts a link. Without an explicit position the link goes after the
// profile's current links; the count and insert share one transaction.
func (r *linkRepository) Create(ctx context.Context, input NewLink) (*entities.Link, error) {
	if !validID(input.ProfileID) {
		return nil, result.NotFound("Profile not found")
	}

	var created *entities.Link
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var profileID string
		err := tx.QueryRowContext(ctx, r.forUpdate(`SELECT id FROM profiles WHERE id = $1`), input.ProfileID).Scan(&profileID)
		if errors.Is(err, sql.ErrNoRows) {
			return result.NotFound("Profile not found")
		}
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to lock profile: %w", err))
		}

		var position int
		if input.Position != nil {
			position = *input.Position
		} else if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM links WHERE profile_id = $1`, input.ProfileID,
		).Scan(&position); err != nil {
			return result.Wrap(fmt.Errorf("failed to count links: %w", err))
		}

		query := `
			INSERT INTO links (id, profile_id, title, url, icon, position, is_active, click_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING ` + linkColumns

		now := time.Now().UTC()
		created, err = scanLink(tx.QueryRowContext(ctx, query,
			uuid.NewString(),
			input.ProfileID,
			input.Title,
			input.URL,
			input.Icon,
			position,
			true,
			0,
			now,
			now,
		))
		if err != nil {
			if isForeignKeyViolation(err) {
				return result.NotFound("Profile not found")
			}
			return result.Wrap(fmt.Errorf("failed to create link: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *linkRepository) Update(ctx context.Context, id string, update LinkUpdate) (*entities.Link, error) {
	if !validID(id) {
		return nil, linkNotFound(id)
	}

	var set setClause
	if update.Title != nil {
		set.add("title", *update.Title)
	}
	if update.URL != nil {
		set.add("url", *update.URL)
	}
	if update.Icon.IsSet() {
		set.add("icon", update.Icon.Ptr())
	}
	if update.IsActive != nil {
		set.add("is_active", *update.IsActive)
	}
	set.add("updated_at", time.Now().UTC())

	assignments, idIndex := set.build()
	query := fmt.Sprintf(`UPDATE links SET %s WHERE id = $%d RETURNING %s`, assignments, idIndex, linkColumns)

	link, err := scanLink(r.db.QueryRowContext(ctx, query, append(set.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, linkNotFound(id)
	}
	if err != nil {
		return nil, result.Wrap(fmt.Errorf("failed to update link: %w", err))
	}
	return link, nil
}

// Delete removes a link and shifts the links after it up by one so positions
// stay dense.
func (r *linkRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return linkNotFound(id)
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			profileID string
			position  int
		)
		err := tx.QueryRowContext(ctx,
			`DELETE FROM links WHERE id = $1 RETURNING profile_id, position`, id,
		).Scan(&profileID, &position)
		if errors.Is(err, sql.ErrNoRows) {
			return linkNotFound(id)
		}
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to delete link: %w", err))
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE links SET position = position - 1 WHERE profile_id = $1 AND position > $2`,
			profileID, position,
		)
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to compact link positions: %w", err))
		}
		return nil
	})
}

// Reorder assigns position = index to each id in linkIDs inside a single
// transaction. Links of the profile that are not listed keep their relative
// order after the listed ones.
func (r *linkRepository) Reorder(ctx context.Context, profileID string, linkIDs []string) error {
	if len(linkIDs) == 0 {
		return result.Validation("Link IDs array cannot be empty", nil)
	}
	if hasDuplicates(linkIDs) {
		return result.Validation("Duplicate link IDs provided", nil)
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			r.forUpdate(`SELECT id FROM links WHERE profile_id = $1 ORDER BY position ASC, created_at ASC`),
			profileID,
		)
		if err != nil {
			return result.Wrap(fmt.Errorf("failed to load links: %w", err))
		}
		var current []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return result.Wrap(fmt.Errorf("failed to scan link id: %w", err))
			}
			current = append(current, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return result.Wrap(fmt.Errorf("failed to load links: %w", err))
		}

		order, err := mergeOrder(current, linkIDs)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for position, id := range order {
			_, err := tx.ExecContext(ctx,
				`UPDATE links SET position = $1, updated_at = $2 WHERE id = $3 AND profile_id = $4`,
				position, now, id, profileID,
			)
			if err != nil {
				return result.Wrap(fmt.Errorf("failed to reorder links: %w", err))
			}
		}
		return nil
	})
}

// IncrementClickCount bumps the counter in a single statement so concurrent
// clicks are never lost.
func (r *linkRepository) IncrementClickCount(ctx context.Context, id string) error {
	if !validID(id) {
		return linkNotFound(id)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = $1`, id)
	if err != nil {
		return result.Wrap(fmt.Errorf("failed to increment click count: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return result.Wrap(fmt.Errorf("failed to increment click count: %w", err))
	}
	if affected == 0 {
		return linkNotFound(id)
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// mergeOrder validates requested against the profile's current ids and returns
// the full new order: requested first, then the unlisted ones as they were.
func mergeOrder(current, requested []string) ([]string, error) {
	members := make(map[string]bool, len(current))
	for _, id := range current {
		members[id] = true
	}
	listed := make(map[string]bool, len(requested))
	for _, id := range requested {
		if !members[id] {
			return nil, result.Validation("Link does not belong to profile", map[string]any{"linkId": id})
		}
		listed[id] = true
	}

	order := append([]string(nil), requested...)
	for _, id := range current {
		if !listed[id] {
			order = append(order, id)
		}
	}
	return order, nil
}
