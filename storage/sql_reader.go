package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"bookshop-insights/models"
	"bookshop-insights/utils"
)

// Driver names registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// tableNameRegexp accepts plain or schema-qualified identifiers.
var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource loads the book table from a database table. Column names of the
// result set play the role of the CSV header.
type SQLSource struct {
	db     *sql.DB
	name   string
	query  string
	logger *utils.Logger
}

// NewSQLSource opens a connection with the given driver, pings it (retrying with
// back-off, databases are often still starting when the tool launches) and
// returns a ready-to-use SQLSource reading from table.
func NewSQLSource(ctx context.Context, driver, dsn, table string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLSource, error) {
	query, err := selectAll(table)
	if err != nil {
		return nil, &models.DataAccessError{Source: driver, Err: err}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &models.DataAccessError{Source: driver, Err: fmt.Errorf("open: %w", err)}
	}

	if err := retry.Do(ctx, driver+" ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, &models.DataAccessError{Source: driver, Err: err}
	}

	return &SQLSource{
		db:     db,
		name:   driver + ":" + table,
		query:  query,
		logger: logger,
	}, nil
}

// sqliteURIEscaper escapes the characters that would end the path part of a
// sqlite file: URI.
var sqliteURIEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// SQLiteReadOnlyDSN returns a DSN that opens path read-only. A missing file is
// an open error instead of a new empty database.
func SQLiteReadOnlyDSN(path string) string {
	return "file:" + sqliteURIEscaper.Replace(path) + "?mode=ro"
}

// selectAll builds the load query for a validated table name.
func selectAll(table string) (string, error) {
	if !tableNameRegexp.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return "SELECT * FROM " + quoteQualified(table), nil
}

func quoteQualified(table string) string {
	for i := 0; i < len(table); i++ {
		if table[i] == '.' {
			return pq.QuoteIdentifier(table[:i]) + "." + pq.QuoteIdentifier(table[i+1:])
		}
	}
	return pq.QuoteIdentifier(table)
}

// Load runs the select and materialises every row as nullable text.
func (s *SQLSource) Load(ctx context.Context) (*models.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, &models.DataAccessError{Source: s.name, Err: fmt.Errorf("query: %w", err)}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &models.DataAccessError{Source: s.name, Err: fmt.Errorf("columns: %w", err)}
	}

	var data [][]sql.NullString
	for rows.Next() {
		raw := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &models.DataAccessError{Source: s.name, Err: fmt.Errorf("scan row: %w", err)}
		}

		row := make([]sql.NullString, len(columns))
		for i, v := range raw {
			if v.Valid {
				row[i] = normaliseCell(v.String)
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.DataAccessError{Source: s.name, Err: err}
	}

	s.logger.Debug("[sql] Loaded %d rows x %d columns from %s", len(data), len(columns), s.name)
	return models.NewTable(columns, data), nil
}

// Close releases the connection pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
