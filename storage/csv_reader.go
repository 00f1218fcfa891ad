package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"bookshop-insights/models"
	"bookshop-insights/utils"
)

// CSVSource loads the book table from a delimited text file with a header row.
// Nothing is cached: each Load opens and parses the file again, so the tool
// always reflects the file as it is on disk.
type CSVSource struct {
	path      string
	delimiter rune
	logger    *utils.Logger
}

// NewCSVSource creates a CSVSource for path. A zero delimiter means comma.
func NewCSVSource(path string, delimiter rune, logger *utils.Logger) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{path: path, delimiter: delimiter, logger: logger}
}

// Load reads the whole file into a Table.
func (c *CSVSource) Load(ctx context.Context) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, &models.DataAccessError{Source: c.path, Err: err}
	}
	defer f.Close()

	table, err := c.parse(f)
	if err != nil {
		return nil, &models.DataAccessError{Source: c.path, Err: err}
	}

	c.logger.Debug("[csv] Loaded %d rows x %d columns from %s", table.Len(), len(table.Columns), c.path)
	return table, nil
}

func (c *CSVSource) parse(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = c.delimiter
	// Rows may be shorter than the header and unquoted fields may hold a
	// stray quote; only rows wider than the header are rejected.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = normaliseHeader(h)
	}

	var rows [][]sql.NullString
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number, keep it in the chain.
			return nil, fmt.Errorf("read row: %w", err)
		}

		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("read row: line %d: expected %d fields, saw %d", line, len(columns), len(record))
		}

		// Missing trailing cells stay null.
		row := make([]sql.NullString, len(columns))
		for i, v := range record {
			row[i] = normaliseCell(v)
		}
		rows = append(rows, row)
	}

	return models.NewTable(columns, rows), nil
}

// Close is a no-op; the file is only held open during Load.
func (c *CSVSource) Close() error { return nil }
