package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketroutes/internal/sheets"
)

func writeSources(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSources_Sheets(t *testing.T) {
	path := writeSources(t, `
spreadsheet_id: abc123
tables:
  - name: Routes
    range: "Routes!A1:Z"
  - name: Contacts
`)

	s, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if s.Kind != SourceSheets || s.SpreadsheetID != "abc123" {
		t.Errorf("sources = %+v", s)
	}
	if len(s.Tables) != 2 {
		t.Fatalf("tables = %+v", s.Tables)
	}
	if s.Tables[0].Ref() != "Routes!A1:Z" || s.Tables[1].Ref() != sheets.TableContacts {
		t.Errorf("refs = %q, %q", s.Tables[0].Ref(), s.Tables[1].Ref())
	}
}

func TestLoadSources_WorkbookDefaultsTables(t *testing.T) {
	path := writeSources(t, "kind: workbook\nworkbook: ./routes.xlsx\n")

	s, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if s.Workbook != "./routes.xlsx" || len(s.Tables) != len(DefaultTables) {
		t.Errorf("sources = %+v", s)
	}
}

func TestLoadSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing id", "kind: sheets\n", "spreadsheet_id"},
		{"missing workbook", "kind: workbook\n", "workbook is required"},
		{"unknown kind", "kind: csv\n", "unknown kind"},
		{"unnamed table", "spreadsheet_id: x\ntables:\n  - range: A1\n", "no name"},
		{"bad yaml", "tables: [", "parsing sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSources(writeSources(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadSources(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MARKETROUTES_PORT", "9090")
	t.Setenv("MARKETROUTES_REFRESH_INTERVAL", "90s")
	t.Setenv("MARKETROUTES_WINDOW_WEEKS", "not a number")
	t.Setenv("MARKETROUTES_TZ", "Nowhere/Special")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.RefreshInterval != 90*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.WindowWeeks != 8 {
		t.Errorf("WindowWeeks = %d, want default 8", cfg.WindowWeeks)
	}
	if cfg.Location() != time.Local {
		t.Errorf("Location = %v, want time.Local for an unknown zone", cfg.Location())
	}
}
