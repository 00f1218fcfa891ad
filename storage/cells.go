package storage

import (
	"database/sql"
	"strings"
	"unicode"
)

// naMarkers are the cell spellings treated as a missing value, the same set
// spreadsheet exports and dataframe tools emit for blanks.
var naMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// normaliseCell maps NA markers, padded or not, to null. Any other value is
// kept exactly as written, so " English" and "English" stay distinct keys.
func normaliseCell(raw string) sql.NullString {
	if _, na := naMarkers[strings.TrimFunc(raw, unicode.IsSpace)]; na {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

// normaliseHeader drops a UTF-8 byte order mark; the name is otherwise
// matched as written.
func normaliseHeader(h string) string {
	return strings.TrimPrefix(h, "\ufeff")
}
