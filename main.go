package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bookshop-insights/cli"
	"bookshop-insights/config"
	"bookshop-insights/render"
	"bookshop-insights/services"
	"bookshop-insights/storage"
	"bookshop-insights/utils"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "bookshop",
		Short: "Interactive reports over the book shop dataset",
		Long: `bookshop loads the book dataset (CSV file or database table) and offers
a menu of analyses: books per year, top authors, languages, publishers,
missing ISBNs and books per year by language. Each analysis prints a
summary and renders a chart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&cfg.CSVPath, "file", "f", cfg.CSVPath, "CSV file to analyse or import")
	persistent.StringVar(&cfg.CSVDelimiter, "delimiter", cfg.CSVDelimiter, "CSV field delimiter")
	persistent.StringVar(&cfg.Table, "table", cfg.Table, "database table holding the books")
	persistent.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "sqlite database file")
	persistent.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose logging")

	flags := cmd.Flags()
	flags.StringVar(&cfg.Source, "source", cfg.Source, "dataset source (csv, postgres, sqlite)")
	flags.StringVar(&cfg.ColumnsFile, "columns", cfg.ColumnsFile, "YAML file overriding column names")
	flags.StringVar(&cfg.ChartMode, "chart-mode", cfg.ChartMode, "how charts are shown (file, browser, none)")
	flags.StringVar(&cfg.ChartDir, "chart-dir", cfg.ChartDir, "directory charts are written to")

	cmd.AddCommand(newImportCommand(cfg))
	return cmd
}

// newImportCommand copies the CSV file into the configured database table.
func newImportCommand(cfg *config.Config) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV dataset into a database table",
		Long: `import reads the CSV file and replaces the contents of the database table
with it, so the menu can then be run with --source postgres or --source sqlite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cfg, target)
		},
	}
	cmd.Flags().StringVar(&target, "to", config.SourceSQLite, "target database (postgres, sqlite)")
	return cmd
}

func runImport(ctx context.Context, cfg *config.Config, target string) error {
	logger := utils.NewLogger(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		return err
	}

	var driver, dsn string
	switch target {
	case config.SourcePostgres:
		driver, dsn = storage.DriverPostgres, cfg.DSN()
	case config.SourceSQLite:
		driver, dsn = storage.DriverSQLite, cfg.SQLitePath
	default:
		err := fmt.Errorf("import: unknown target %q (want postgres or sqlite)", target)
		logger.Error("%v", err)
		return err
	}

	table, err := storage.NewCSVSource(cfg.CSVPath, cfg.Delimiter(), logger).Load(ctx)
	if err != nil {
		logger.Error("Cannot load %s: %v", cfg.CSVPath, err)
		return err
	}

	writer, err := storage.NewSQLWriter(ctx, driver, dsn, cfg.Table, newRetry(cfg, logger), logger)
	if err != nil {
		logger.Error("Failed to connect to %s: %v", target, err)
		return err
	}
	defer writer.Close()

	if err := writer.Replace(ctx, table); err != nil {
		logger.Error("Import failed: %v", err)
		return err
	}
	return nil
}

func newRetry(cfg *config.Config, logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: cfg.DBMaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		return err
	}
	fields, err := cfg.Fields()
	if err != nil {
		logger.Error("%v", err)
		return err
	}

	source, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open %s source: %v", cfg.Source, err)
		return err
	}
	defer source.Close()

	books := services.NewBookService(source, logger)

	// Fail fast when the dataset is not there at launch; later read errors are
	// reported inside the menu.
	table, err := books.Snapshot(ctx)
	if err != nil {
		logger.Error("Cannot load the book dataset: %v", err)
		return err
	}
	logger.Info("Dataset ready: %d books, %d columns (source: %s)", table.Len(), len(table.Columns), cfg.Source)

	menu := cli.NewMenu(books, fields, openDisplay(cfg, logger), os.Stdin, os.Stdout, logger)
	if err := menu.Run(ctx); err != nil {
		fmt.Fprintln(os.Stdout)
		logger.Warn("Menu stopped: %v", err)
	}
	return nil
}

func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.BookSource, error) {
	retry := newRetry(cfg, logger)

	switch cfg.Source {
	case config.SourcePostgres:
		return storage.NewSQLSource(ctx, storage.DriverPostgres, cfg.DSN(), cfg.Table, retry, logger)
	case config.SourceSQLite:
		return storage.NewSQLSource(ctx, storage.DriverSQLite, storage.SQLiteReadOnlyDSN(cfg.SQLitePath), cfg.Table, retry, logger)
	default:
		return storage.NewCSVSource(cfg.CSVPath, cfg.Delimiter(), logger), nil
	}
}

func openDisplay(cfg *config.Config, logger *utils.Logger) render.Display {
	switch cfg.ChartMode {
	case config.ChartModeBrowser:
		return render.NewBrowserDisplay(cfg.ChartDir, cfg.ChromeBin, logger)
	case config.ChartModeNone:
		return render.NoDisplay{}
	default:
		return render.NewFileDisplay(cfg.ChartDir, logger)
	}
}
