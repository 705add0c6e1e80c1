// Package postgres implements the persistence gateway for extracted rows.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/lib/pq" // postgres driver

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// tableNameRe restricts table names to plain identifiers; the name is
// interpolated into DDL and cannot be a placeholder.
var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store writes extracted rows into a single table with conflict-free
// semantics: a row whose primary key already exists is silently discarded.
// It implements pipeline.RowStore.
type Store struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// New wraps an open database handle. The table name must be a plain
// identifier.
func New(db *sql.DB, table string, logger *slog.Logger) (*Store, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{db: db, table: table, logger: logger}, nil
}

// Open connects to postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureTable creates the observation table if it does not already exist.
// The five-column primary key is what makes reprocessing idempotent.
func (s *Store) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		valid_time_utc TIMESTAMPTZ      NOT NULL,
		run_time_utc   TIMESTAMPTZ      NOT NULL,
		latitude       DOUBLE PRECISION NOT NULL,
		longitude      DOUBLE PRECISION NOT NULL,
		variable       TEXT             NOT NULL,
		value          DOUBLE PRECISION NOT NULL,
		source_locator TEXT             NOT NULL,
		PRIMARY KEY (valid_time_utc, run_time_utc, latitude, longitude, variable)
	)`, s.table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	s.logger.Debug("storage table ready", "table", s.table)
	return nil
}

// InsertRows submits all rows in one statement with ON CONFLICT DO NOTHING
// and returns the number of rows attempted. Conflict outcomes are not
// individually observable from a bulk idempotent insert, so attempted is the
// metric reported, not rows that changed state.
func (s *Store) InsertRows(ctx context.Context, rows []domain.ExtractedRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	const cols = 7
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (valid_time_utc, run_time_utc, latitude, longitude, variable, value, source_locator) VALUES ", s.table)

	args := make([]any, 0, len(rows)*cols)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		base := i * cols
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, r.ValidTime, r.RunTime, r.Latitude, r.Longitude, r.Variable, r.Value, r.SourceLocator)
	}
	b.WriteString(" ON CONFLICT DO NOTHING")

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return 0, fmt.Errorf("insert %d rows into %s: %w", len(rows), s.table, err)
	}
	return len(rows), nil
}
