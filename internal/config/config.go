package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"

	"github.com/rpps-dados/carteira/internal/cadprev"
	"github.com/rpps-dados/carteira/internal/domain"
)

// ErrMissing is wrapped by every "required variable not set" error from Validate.
var ErrMissing = errors.New("required configuration missing")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIURL         string
	CNPJ           string
	UF             string
	Year           int
	RequestTimeout time.Duration
	PeriodScheme   string
	RejectNegative bool
	OutputDir      string
	CSVFormat      string
	XLSXEnabled    bool
	LogFile        string
	LogLevel       string
	HTTPPort       string

	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string

	// yearInput is ANO_CONSULTA as written, kept so Validate can quote it.
	yearInput string
}

// Load reads a .env file if present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables with sensible defaults.
// The entity query (CNPJ, UF, year) has no defaults; see Validate.
func FromEnv() Config {
	yearInput := strings.TrimSpace(os.Getenv("ANO_CONSULTA"))
	year, _ := strconv.Atoi(yearInput)

	return Config{
		APIURL:                envOrDefault("CADPREV_URL", cadprev.DefaultURL),
		CNPJ:                  NormalizeCNPJ(os.Getenv("CNPJ_ENTIDADE")),
		UF:                    NormalizeUF(os.Getenv("UF_ENTIDADE")),
		Year:                  year,
		yearInput:             yearInput,
		RequestTimeout:        envOrDefaultDuration("REQUEST_TIMEOUT", cadprev.DefaultTimeout),
		PeriodScheme:          envOrDefault("PERIOD_SCHEME", string(domain.PeriodBimonthly)),
		RejectNegative:        envOrDefaultBool("REJECT_NEGATIVE", false),
		OutputDir:             envOrDefault("OUTPUT_DIR", "data/privado"),
		CSVFormat:             envOrDefault("CSV_FORMAT", "planilha"),
		XLSXEnabled:           envOrDefaultBool("XLSX_ENABLED", false),
		LogFile:               os.Getenv("LOG_FILE"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		HTTPPort:              envOrDefault("HTTP_PORT", "8050"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
	}
}

// SetYear overrides the query year, for example from a command-line flag.
func (c *Config) SetYear(year int) {
	c.Year = year
	c.yearInput = strconv.Itoa(year)
}

// Query returns the entity query described by the configuration.
func (c Config) Query() domain.Query {
	return domain.Query{CNPJ: c.CNPJ, UF: c.UF, Year: c.Year}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.CNPJ == "":
		errs = append(errs, fmt.Errorf("%w: CNPJ_ENTIDADE", ErrMissing))
	case len(c.CNPJ) != 14:
		errs = append(errs, fmt.Errorf("CNPJ_ENTIDADE: want 14 digits, got %q", c.CNPJ))
	}

	switch {
	case c.UF == "":
		errs = append(errs, fmt.Errorf("%w: UF_ENTIDADE", ErrMissing))
	case len(c.UF) != 2:
		errs = append(errs, fmt.Errorf("UF_ENTIDADE: want 2 letters, got %q", c.UF))
	}

	switch {
	case c.Year == 0 && c.yearInput == "":
		errs = append(errs, fmt.Errorf("%w: ANO_CONSULTA", ErrMissing))
	case c.Year < 1000 || c.Year > 9999:
		got := c.yearInput
		if got == "" {
			got = strconv.Itoa(c.Year)
		}
		errs = append(errs, fmt.Errorf("ANO_CONSULTA: want a 4-digit year, got %q", got))
	}

	if c.APIURL == "" {
		errs = append(errs, fmt.Errorf("%w: CADPREV_URL", ErrMissing))
	}
	if _, err := domain.ParsePeriodScheme(c.PeriodScheme); err != nil {
		errs = append(errs, fmt.Errorf("PERIOD_SCHEME: %w", err))
	}
	if c.CSVFormat != "planilha" && c.CSVFormat != "padrao" {
		errs = append(errs, fmt.Errorf("CSV_FORMAT: want planilha or padrao, got %q", c.CSVFormat))
	}
	if c.SheetsSpreadsheetID != "" && c.GoogleCredentialsJSON == "" {
		errs = append(errs, fmt.Errorf("%w: GOOGLE_CREDENTIALS_JSON (required with SHEETS_SPREADSHEET_ID)", ErrMissing))
	}

	return errors.Join(errs...)
}

// NormalizeCNPJ strips punctuation such as "29.131.075/0001-93".
func NormalizeCNPJ(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizeUF trims and upper-cases a region code.
func NormalizeUF(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
