package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"bookshop-insights/utils"
)

func TestSQLWriterRoundTrip(t *testing.T) {
	ctx := context.Background()
	csvPath := writeFile(t, "books.csv", sampleCSV)
	dbPath := filepath.Join(t.TempDir(), "books.db")

	table, err := NewCSVSource(csvPath, ',', utils.Discard()).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewSQLWriter(ctx, DriverSQLite, dbPath, "books", testRetry(), utils.Discard())
	if err != nil {
		t.Fatalf("NewSQLWriter: %v", err)
	}
	defer w.Close()

	// Twice: the second import must replace, not append.
	for i := 0; i < 2; i++ {
		if err := w.Replace(ctx, table); err != nil {
			t.Fatalf("Replace #%d: %v", i+1, err)
		}
	}

	src, err := NewSQLSource(ctx, DriverSQLite, dbPath, "books", testRetry(), utils.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	got, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != table.Len() {
		t.Fatalf("rows: got %d, want %d", got.Len(), table.Len())
	}
	if strings.Join(got.Columns, "|") != strings.Join(table.Columns, "|") {
		t.Errorf("columns: got %v, want %v", got.Columns, table.Columns)
	}

	isbn, _ := got.ColumnIndex("ISBN")
	for i := range table.Rows {
		if got.Rows[i][isbn] != table.Rows[i][isbn] {
			t.Errorf("row %d ISBN: got %+v, want %+v", i, got.Rows[i][isbn], table.Rows[i][isbn])
		}
	}
}

func TestSQLWriterBatches(t *testing.T) {
	ctx := context.Background()
	var b strings.Builder
	b.WriteString("book,author\n")
	for i := 0; i < insertBatchSize*2+7; i++ {
		fmt.Fprintf(&b, "Title %d,Author %d\n", i, i%9)
	}
	table, err := NewCSVSource(writeFile(t, "many.csv", b.String()), ',', utils.Discard()).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(t.TempDir(), "books.db")
	w, err := NewSQLWriter(ctx, DriverSQLite, dbPath, "books", testRetry(), utils.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Replace(ctx, table); err != nil {
		t.Fatal(err)
	}

	src, err := NewSQLSource(ctx, DriverSQLite, dbPath, "books", testRetry(), utils.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	got, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != insertBatchSize*2+7 {
		t.Errorf("rows: got %d, want %d", got.Len(), insertBatchSize*2+7)
	}
}

func TestSQLWriterPlaceholders(t *testing.T) {
	pg := &SQLWriter{driver: DriverPostgres}
	lite := &SQLWriter{driver: DriverSQLite}
	if pg.placeholder(3) != "$3" {
		t.Errorf("postgres placeholder: got %q", pg.placeholder(3))
	}
	if lite.placeholder(3) != "?" {
		t.Errorf("sqlite placeholder: got %q", lite.placeholder(3))
	}
}

func TestSQLWriterCreateStatement(t *testing.T) {
	w := &SQLWriter{table: "books"}
	got := w.createStatement([]string{"book", "publication date"})
	want := `CREATE TABLE IF NOT EXISTS "books" ("book" TEXT, "publication date" TEXT)`
	if got != want {
		t.Errorf("createStatement:\n got %s\nwant %s", got, want)
	}
}
