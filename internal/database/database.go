package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso / remote libSQL driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"aetherlink-be/internal/logger"
	"aetherlink-be/migrations"
)

// Dialect names the SQL flavour behind a connection. The values double as
// goose dialect names.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
	DialectTurso    Dialect = "turso"
)

// DialectFor picks the dialect from a DATABASE_URL.
func DialectFor(databaseURL string) Dialect {
	switch {
	case strings.HasPrefix(databaseURL, "libsql://"),
		strings.HasPrefix(databaseURL, "wss://"),
		strings.HasPrefix(databaseURL, "ws://"):
		return DialectTurso
	case strings.HasPrefix(databaseURL, "file:"),
		strings.HasPrefix(databaseURL, "sqlite://"),
		strings.HasPrefix(databaseURL, ":memory:"),
		strings.HasSuffix(databaseURL, ".db"),
		strings.HasSuffix(databaseURL, ".sqlite"):
		return DialectSQLite
	default:
		return DialectPostgres
	}
}

func driverName(d Dialect) string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectTurso:
		return "libsql"
	default:
		return "postgres"
	}
}

// sqliteDSN strips the sqlite:// scheme and turns on foreign keys so that
// deleting a profile cascades to its links.
func sqliteDSN(databaseURL string) string {
	dsn := strings.TrimPrefix(databaseURL, "sqlite://")
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// NewConnection opens the database behind databaseURL and waits for it to
// answer, retrying with exponential backoff.
func NewConnection(ctx context.Context, databaseURL string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(databaseURL)
	dsn := databaseURL
	if dialect == DialectSQLite {
		dsn = sqliteDSN(databaseURL)
	}

	db, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// One writer at a time; shared in-memory databases also need a single
		// connection to stay visible across queries.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(20 * time.Second)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	backoff := retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn().Err(err).Str("dialect", string(dialect)).Msg("database not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("dialect", string(dialect)).Msg("Successfully connected to database")
	return db, dialect, nil
}

// RunMigrations applies the embedded goose migrations for dialect.
func RunMigrations(db *sql.DB, dialect Dialect) error {
	dir := "postgres"
	if dialect != DialectPostgres {
		dir = "sqlite"
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Str("dialect", string(dialect)).Msg("Database migrations completed")
	return nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// gooseLogger routes migration output through zerolog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
