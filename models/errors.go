package models

import "fmt"

// DataAccessError reports a source that is missing, unreadable or malformed.
type DataAccessError struct {
	Source string
	Err    error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access %s: %v", e.Source, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// SchemaError reports a column an analysis needs but the table lacks.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// EmptyDatasetError reports an analysis that needs at least one row.
type EmptyDatasetError struct {
	Recipe string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: dataset has no rows", e.Recipe)
}
