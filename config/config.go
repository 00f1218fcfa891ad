package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bookshop-insights/models"
)

// Source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Chart display modes.
const (
	ChartModeFile    = "file"
	ChartModeBrowser = "browser"
	ChartModeNone    = "none"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Source       string
	CSVPath      string
	CSVDelimiter string
	Table        string
	SQLitePath   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DBMaxRetries     int

	ColumnsFile string

	ChartMode string
	ChartDir  string
	ChromeBin string

	Verbose bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	return &Config{
		Source:       getEnv("BOOKS_SOURCE", SourceCSV),
		CSVPath:      getEnv("BOOKS_CSV_PATH", "DatasetBooks.csv"),
		CSVDelimiter: getEnv("BOOKS_CSV_DELIMITER", ","),
		Table:        getEnv("BOOKS_TABLE", "books"),
		SQLitePath:   getEnv("SQLITE_PATH", "books.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "bookshop"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "bookshop"),
		PostgresDB:       getEnv("POSTGRES_DB", "bookshop"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DBMaxRetries:     getEnvInt("DB_MAX_RETRIES", 3),

		ColumnsFile: getEnv("COLUMNS_FILE", ""),

		ChartMode: getEnv("CHART_MODE", ChartModeFile),
		ChartDir:  getEnv("CHART_DIR", "./charts"),
		ChromeBin: getEnv("CHROME_BIN", ""),

		Verbose: getEnvBool("VERBOSE", false),
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV, SourcePostgres, SourceSQLite:
	default:
		return fmt.Errorf("config: unknown source %q (want csv, postgres or sqlite)", c.Source)
	}

	switch c.ChartMode {
	case ChartModeFile, ChartModeBrowser, ChartModeNone:
	default:
		return fmt.Errorf("config: unknown chart mode %q (want file, browser or none)", c.ChartMode)
	}

	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("config: delimiter must be a single character, got %q", c.CSVDelimiter)
	}
	if c.Source == SourceCSV && c.CSVPath == "" {
		return fmt.Errorf("config: csv source needs a file path")
	}
	if c.Source != SourceCSV && c.Table == "" {
		return fmt.Errorf("config: %s source needs a table name", c.Source)
	}
	return nil
}

// Delimiter returns the CSV field separator as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Fields returns the column mapping. Without a columns file this is the
// default header set; a file only needs to list the names it changes.
func (c *Config) Fields() (models.Fields, error) {
	fields := models.DefaultFields()
	if c.ColumnsFile == "" {
		return fields, nil
	}

	data, err := os.ReadFile(c.ColumnsFile)
	if err != nil {
		return fields, fmt.Errorf("config: read columns file: %w", err)
	}

	var override models.Fields
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fields, fmt.Errorf("config: parse columns file %q: %w", c.ColumnsFile, err)
	}

	merge(&fields.Title, override.Title)
	merge(&fields.Author, override.Author)
	merge(&fields.Year, override.Year)
	merge(&fields.Language, override.Language)
	merge(&fields.Publisher, override.Publisher)
	merge(&fields.ISBN, override.ISBN)
	return fields, nil
}

func merge(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
