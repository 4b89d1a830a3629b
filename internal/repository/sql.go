package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Queries use $n placeholders in ascending order of first appearance, which
// lib/pq, modernc sqlite and libsql all bind positionally.

type rowScanner interface {
	Scan(dest ...any) error
}

// timestamp scans TIMESTAMP columns from drivers that hand back either
// time.Time or the textual SQLite representation.
type timestamp struct {
	t *time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case nil:
		*ts.t = time.Time{}
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*ts.t = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

// validID screens ids before they reach a UUID column; a malformed id can
// never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// setClause accumulates "column = $n" assignments for partial updates.
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

// build returns the SET list and the placeholder index to use for the id.
func (s *setClause) build() (string, int) {
	return strings.Join(s.parts, ", "), len(s.args) + 1
}
