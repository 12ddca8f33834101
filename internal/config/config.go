package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"marketroutes/internal/sheets"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port            int
	DBPath          string
	SourcesFile     string        // YAML file describing where tables come from
	SheetsBaseURL   string
	SheetsAPIKey    string
	RefreshInterval time.Duration // how often the poller checks for changes
	WindowWeeks     int           // how far ahead periodic routes are expanded
	TimeZone        string
	RefreshOnly     bool // CLI flag: load tables once, then exit
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:            envInt("MARKETROUTES_PORT", 8080),
		DBPath:          envStr("MARKETROUTES_DB_PATH", "./marketroutes.db"),
		SourcesFile:     envStr("MARKETROUTES_SOURCES", "./sources.yaml"),
		SheetsBaseURL:   envStr("MARKETROUTES_SHEETS_URL", sheets.DefaultBaseURL),
		SheetsAPIKey:    envStr("MARKETROUTES_SHEETS_API_KEY", ""),
		RefreshInterval: envDuration("MARKETROUTES_REFRESH_INTERVAL", 5*time.Minute),
		WindowWeeks:     envInt("MARKETROUTES_WINDOW_WEEKS", 8),
		TimeZone:        envStr("MARKETROUTES_TZ", "America/New_York"),
	}
}

// Location resolves TimeZone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Source kinds.
const (
	SourceSheets   = "sheets"
	SourceWorkbook = "workbook"
)

// Sources describes where the spreadsheet tables are read from.
type Sources struct {
	Kind          string             `yaml:"kind"`
	SpreadsheetID string             `yaml:"spreadsheet_id"`
	Workbook      string             `yaml:"workbook"`
	Tables        []sheets.TableSpec `yaml:"tables"`
}

// DefaultTables is used when the sources file lists no tables.
var DefaultTables = []sheets.TableSpec{
	{Name: sheets.TableSPFM},
	{Name: sheets.TableRecovery},
	{Name: sheets.TableDelivery},
	{Name: sheets.TableRoutes},
	{Name: sheets.TableInventory},
	{Name: sheets.TableContacts},
	{Name: sheets.TableWorkerIcons},
	{Name: sheets.TableVanIcons},
}

// LoadSources reads and validates the sources file.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing sources: %w", err)
	}
	if s.Kind == "" {
		s.Kind = SourceSheets
	}
	switch s.Kind {
	case SourceSheets:
		if s.SpreadsheetID == "" {
			return nil, fmt.Errorf("sources: spreadsheet_id is required for kind %q", s.Kind)
		}
	case SourceWorkbook:
		if s.Workbook == "" {
			return nil, fmt.Errorf("sources: workbook is required for kind %q", s.Kind)
		}
	default:
		return nil, fmt.Errorf("sources: unknown kind %q", s.Kind)
	}
	if len(s.Tables) == 0 {
		s.Tables = DefaultTables
	}
	for i, t := range s.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("sources: table %d has no name", i)
		}
	}
	return &s, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
