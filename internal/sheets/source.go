package sheets

import (
	"context"
	"time"
)

// TableSpec names a table and where it lives in the source. Range is a
// Sheets A1 range ("SPFM!A1:Z") for the API source and a sheet name for
// workbook files; an empty Range means the table name itself.
type TableSpec struct {
	Name  string `yaml:"name"`
	Range string `yaml:"range"`
}

// Ref returns the range or sheet to read for this table.
func (t TableSpec) Ref() string {
	if t.Range != "" {
		return t.Range
	}
	return t.Name
}

// FetchResult holds the outcome of a conditional table fetch.
type FetchResult struct {
	Rows        []Row
	ETag        string
	NotModified bool
}

// Source fetches one table at a time. An etag from a previous fetch may be
// passed so unchanged tables can be skipped.
type Source interface {
	Fetch(ctx context.Context, table TableSpec, etag string) (FetchResult, error)
}

// TableSnapshot is a persisted copy of one fetched table.
type TableSnapshot struct {
	Name      string
	ETag      string
	FetchedAt time.Time
	Rows      []Row
}
