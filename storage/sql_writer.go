package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"bookshop-insights/models"
	"bookshop-insights/utils"
)

const insertBatchSize = 50

// SQLWriter copies a table snapshot into a database table, so the dataset can
// later be analysed through SQLSource.
type SQLWriter struct {
	db     *sql.DB
	driver string
	table  string
	logger *utils.Logger
}

// NewSQLWriter opens a connection and pings it with retries.
func NewSQLWriter(ctx context.Context, driver, dsn, table string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLWriter, error) {
	if !tableNameRegexp.MatchString(table) {
		return nil, fmt.Errorf("%s: invalid table name %q", driver, table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}
	if err := retry.Do(ctx, driver+" ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLWriter{db: db, driver: driver, table: table, logger: logger}, nil
}

// Replace creates the table if needed, clears it and inserts every row of t
// in one transaction.
func (w *SQLWriter) Replace(ctx context.Context, t *models.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("%s: nothing to import, table has no columns", w.driver)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.driver, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, w.createStatement(t.Columns)); err != nil {
		return fmt.Errorf("%s: create table: %w", w.driver, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteQualified(w.table)); err != nil {
		return fmt.Errorf("%s: clear: %w", w.driver, err)
	}

	for i := 0; i < len(t.Rows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		if err := w.insertBatch(ctx, tx, t.Columns, t.Rows[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.driver, err)
	}
	w.logger.Info("[import] %d rows written to %s", t.Len(), w.table)
	return nil
}

func (w *SQLWriter) createStatement(columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pq.QuoteIdentifier(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteQualified(w.table), strings.Join(defs, ", "))
}

func (w *SQLWriter) insertBatch(ctx context.Context, tx *sql.Tx, columns []string, batch [][]models.Cell) error {
	width := len(columns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, row := range batch {
		marks := make([]string, width)
		for c := 0; c < width; c++ {
			marks[c] = w.placeholder(idx*width + c + 1)
			if c < len(row) {
				valueArgs = append(valueArgs, row[c])
			} else {
				valueArgs = append(valueArgs, sql.NullString{})
			}
		}
		valueStrings = append(valueStrings, "("+strings.Join(marks, ",")+")")
	}

	quoted := make([]string, width)
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteQualified(w.table), strings.Join(quoted, ", "), strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert batch: %w", w.driver, err)
	}
	return nil
}

func (w *SQLWriter) placeholder(n int) string {
	if w.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}
