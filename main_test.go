package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bookshop-insights/config"
	"bookshop-insights/render"
	"bookshop-insights/storage"
	"bookshop-insights/utils"
)

func TestOpenDisplay(t *testing.T) {
	logger := utils.Discard()

	if _, ok := openDisplay(&config.Config{ChartMode: config.ChartModeFile}, logger).(*render.FileDisplay); !ok {
		t.Error("file mode should give a FileDisplay")
	}
	if _, ok := openDisplay(&config.Config{ChartMode: config.ChartModeNone}, logger).(render.NoDisplay); !ok {
		t.Error("none mode should give NoDisplay")
	}
	if _, ok := openDisplay(&config.Config{ChartMode: config.ChartModeBrowser, ChromeBin: "/bin/true"}, logger).(*render.BrowserDisplay); !ok {
		t.Error("browser mode should give a BrowserDisplay")
	}
}

func TestOpenSourceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(path, []byte("book,author\nDune,Herbert\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Source: config.SourceCSV, CSVPath: path, CSVDelimiter: ","}
	src, err := openSource(context.Background(), cfg, utils.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, ok := src.(*storage.CSVSource); !ok {
		t.Errorf("expected *storage.CSVSource, got %T", src)
	}
	table, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Errorf("rows: got %d, want 1", table.Len())
	}
}

func TestRunFailsWithoutDataset(t *testing.T) {
	cfg := &config.Config{
		Source:       config.SourceCSV,
		CSVPath:      filepath.Join(t.TempDir(), "missing.csv"),
		CSVDelimiter: ",",
		ChartMode:    config.ChartModeNone,
	}
	if err := run(context.Background(), cfg); err == nil {
		t.Error("expected startup failure when the dataset is missing")
	}
}

func TestRunSQLiteMissingFileLeavesNothingBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.db")
	cfg := &config.Config{
		Source:       config.SourceSQLite,
		SQLitePath:   path,
		Table:        "books",
		CSVDelimiter: ",",
		DBMaxRetries: 1,
		ChartMode:    config.ChartModeNone,
	}
	if err := run(context.Background(), cfg); err == nil {
		t.Fatal("expected startup failure when the database file is missing")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed startup created %s (stat: %v)", path, err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{Source: "excel", CSVDelimiter: ",", ChartMode: config.ChartModeNone}
	if err := run(context.Background(), cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestImportThenAnalyseFromSQLite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")
	body := "book,author,publication date,language,book publisher,ISBN\n" +
		"Dune,Herbert,1965,English,Chilton,9780441013593\n" +
		"Solaris,Lem,1961,Polish,MON,\n"
	if err := os.WriteFile(csvPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Source:       config.SourceSQLite,
		CSVPath:      csvPath,
		CSVDelimiter: ",",
		Table:        "books",
		SQLitePath:   filepath.Join(dir, "books.db"),
		DBMaxRetries: 1,
		ChartMode:    config.ChartModeNone,
	}
	ctx := context.Background()
	if err := runImport(ctx, cfg, config.SourceSQLite); err != nil {
		t.Fatalf("runImport: %v", err)
	}

	src, err := openSource(ctx, cfg, utils.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	table, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("rows: got %d, want 2", table.Len())
	}
}

func TestImportUnknownTarget(t *testing.T) {
	cfg := &config.Config{Source: config.SourceCSV, CSVPath: "x.csv", CSVDelimiter: ",", ChartMode: config.ChartModeNone}
	if err := runImport(context.Background(), cfg, "excel"); err == nil {
		t.Error("expected error for unknown import target")
	}
}
