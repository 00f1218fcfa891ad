package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"bookshop-insights/models"
	"bookshop-insights/utils"
)

type stubBooks struct {
	table *models.Table
	err   error
	calls int
}

func (s *stubBooks) Snapshot(ctx context.Context) (*models.Table, error) {
	s.calls++
	return s.table, s.err
}

type recordingDisplay struct {
	shown []string
	err   error
}

func (d *recordingDisplay) Show(ctx context.Context, name string, spec *models.ChartSpec) error {
	d.shown = append(d.shown, name)
	return d.err
}

func v(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func sampleTable() *models.Table {
	cols := []string{"book", "author", "publication date", "language", "book publisher", "ISBN"}
	return models.NewTable(cols, [][]models.Cell{
		{v("X"), v("A"), v("2000"), v("English"), v("P"), v("1")},
		{v("Y"), v("B"), v("2000"), v("English"), v("Q"), {}},
		{v("Z"), v("A"), v("2001"), v("Polish"), v("P"), v("3")},
	})
}

func newTestMenu(books Snapshotter, display *recordingDisplay, input string) (*Menu, *bytes.Buffer) {
	var out bytes.Buffer
	m := NewMenu(books, models.DefaultFields(), display, strings.NewReader(input), &out, utils.Discard())
	return m, &out
}

func TestMenuExit(t *testing.T) {
	books := &stubBooks{table: sampleTable()}
	m, out := newTestMenu(books, &recordingDisplay{}, "7\n")

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.State() != Exited {
		t.Errorf("state: got %v, want exited", m.State())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("expected goodbye, got:\n%s", out.String())
	}
	if books.calls != 0 {
		t.Errorf("exit should not load data, got %d loads", books.calls)
	}
}

func TestMenuListsOptions(t *testing.T) {
	m, out := newTestMenu(&stubBooks{table: sampleTable()}, &recordingDisplay{}, "7\n")
	_ = m.Run(context.Background())

	for _, want := range []string{"1. Books per Year", "2. Top 5 Authors", "3. Books by Language",
		"4. Books by Publisher", "5. Missing ISBN Analysis", "6. Yearly Books by Language", "7. Exit"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("menu missing %q", want)
		}
	}
}

func TestMenuDispatchesEveryRecipe(t *testing.T) {
	books := &stubBooks{table: sampleTable()}
	display := &recordingDisplay{}
	m, out := newTestMenu(books, display, "1\n2\n3\n4\n5\n6\n7\n")

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if books.calls != 6 {
		t.Errorf("snapshots: got %d, want one per selection (6)", books.calls)
	}
	want := []string{"books-per-year", "top-authors", "languages", "publishers", "missing-isbn", "year-language"}
	if strings.Join(display.shown, ",") != strings.Join(want, ",") {
		t.Errorf("charts shown: got %v, want %v", display.shown, want)
	}
	if !strings.Contains(out.String(), "Percentage missing: 33.33%") {
		t.Errorf("missing ISBN summary not printed:\n%s", out.String())
	}
}

func TestMenuInvalidChoice(t *testing.T) {
	books := &stubBooks{table: sampleTable()}
	m, out := newTestMenu(books, &recordingDisplay{}, "2\n9\nabc\n02\n")

	ctx := context.Background()
	m.Step(ctx)
	before := m.LastSummary()
	if before == nil {
		t.Fatal("expected a summary after choice 2")
	}

	for i := 0; i < 3; i++ {
		m.Step(ctx)
		if m.State() != ShowingMenu {
			t.Errorf("step %d: state got %v, want showing menu", i, m.State())
		}
		if m.LastSummary() != before {
			t.Errorf("step %d: invalid input changed the last summary", i)
		}
	}
	if got := strings.Count(out.String(), "Invalid choice"); got != 3 {
		t.Errorf("invalid choice messages: got %d, want 3", got)
	}
	if books.calls != 1 {
		t.Errorf("invalid input should not load data, got %d loads", books.calls)
	}
}

func TestMenuOverlongLineIsInvalid(t *testing.T) {
	books := &stubBooks{table: sampleTable()}
	m, out := newTestMenu(books, &recordingDisplay{}, strings.Repeat("x", 70000)+"\n7\n")

	ctx := context.Background()
	m.Step(ctx)
	if m.State() != ShowingMenu {
		t.Fatalf("state after long line: got %v, want showing menu", m.State())
	}
	if !strings.Contains(out.String(), "Invalid choice") {
		t.Error("expected an invalid choice message for the long line")
	}

	m.Step(ctx)
	if m.State() != Exited {
		t.Errorf("state after 7: got %v, want exited", m.State())
	}
	if books.calls != 0 {
		t.Errorf("no analysis should run, got %d loads", books.calls)
	}
}

func TestMenuLastLineWithoutNewline(t *testing.T) {
	books := &stubBooks{table: sampleTable()}
	m, out := newTestMenu(books, &recordingDisplay{}, "3")
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if books.calls != 1 {
		t.Errorf("final unterminated choice should still run, got %d loads", books.calls)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("expected Goodbye! at end of input")
	}
}

func TestMenuEOFExits(t *testing.T) {
	m, _ := newTestMenu(&stubBooks{table: sampleTable()}, &recordingDisplay{}, "1\n")
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.State() != Exited {
		t.Errorf("state: got %v, want exited", m.State())
	}
}

func TestMenuReportsErrorsAndContinues(t *testing.T) {
	tests := []struct {
		name  string
		books *stubBooks
		want  string
	}{
		{
			"data access",
			&stubBooks{err: &models.DataAccessError{Source: "DatasetBooks.csv", Err: errors.New("no such file")}},
			"Could not read the book data (DatasetBooks.csv)",
		},
		{
			"schema",
			&stubBooks{table: models.NewTable([]string{"book"}, [][]models.Cell{{v("X")}})},
			`needs a "publication date" column`,
		},
		{
			"empty",
			&stubBooks{table: models.NewTable(sampleTable().Columns, nil)},
			"no data",
		},
	}

	for _, tt := range tests {
		m, out := newTestMenu(tt.books, &recordingDisplay{}, "1\n7\n")
		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("%s: Run returned %v", tt.name, err)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%s: output missing %q:\n%s", tt.name, tt.want, out.String())
		}
		if !strings.Contains(out.String(), "Goodbye!") {
			t.Errorf("%s: loop did not continue to exit", tt.name)
		}
	}
}

func TestMenuChartErrorIsReported(t *testing.T) {
	display := &recordingDisplay{err: errors.New("no browser")}
	m, out := newTestMenu(&stubBooks{table: sampleTable()}, display, "3\n7\n")
	_ = m.Run(context.Background())

	if !strings.Contains(out.String(), "no browser") {
		t.Errorf("chart error not reported:\n%s", out.String())
	}
	if m.LastSummary() == nil {
		t.Error("summary should still be kept when the chart fails")
	}
}

func TestMenuNoDataSkipsChart(t *testing.T) {
	display := &recordingDisplay{}
	books := &stubBooks{table: models.NewTable(sampleTable().Columns, nil)}
	m, out := newTestMenu(books, display, "5\n7\n")
	_ = m.Run(context.Background())

	if len(display.shown) != 0 {
		t.Errorf("no chart expected, got %v", display.shown)
	}
	if !strings.Contains(out.String(), "No data") {
		t.Errorf("expected no-data message:\n%s", out.String())
	}
}

func TestMenuStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, _ := newTestMenu(&stubBooks{table: sampleTable()}, &recordingDisplay{}, "1\n")
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
