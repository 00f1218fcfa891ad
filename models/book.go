package models

import "database/sql"

// Fields maps each logical book attribute to the header name it is stored under.
// Header names are matched exactly, case included.
type Fields struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Year      string `yaml:"year"`
	Language  string `yaml:"language"`
	Publisher string `yaml:"publisher"`
	ISBN      string `yaml:"isbn"`
}

// DefaultFields returns the header names used by the shop's book export.
func DefaultFields() Fields {
	return Fields{
		Title:     "book",
		Author:    "author",
		Year:      "publication date",
		Language:  "language",
		Publisher: "book publisher",
		ISBN:      "ISBN",
	}
}

// Cell is a nullable text value. Missing values (empty or NA markers in a
// file, NULL in a database) have Valid == false.
type Cell = sql.NullString

// Table is an in-memory snapshot of the book dataset.
// Columns keep the header order of the source; every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Cell

	index map[string]int
}

// NewTable builds a Table and indexes its column names.
func NewTable(columns []string, rows [][]Cell) *Table {
	t := &Table{
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column or a *SchemaError.
func (t *Table) ColumnIndex(name string) (int, error) {
	if t == nil || t.index == nil {
		return 0, &SchemaError{Column: name}
	}
	i, ok := t.index[name]
	if !ok {
		return 0, &SchemaError{Column: name}
	}
	return i, nil
}
