package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Google Sheets v4 API root.
const DefaultBaseURL = "https://sheets.googleapis.com/v4"

// Client reads spreadsheet ranges from the Sheets values API using
// conditional requests.
type Client struct {
	baseURL       string
	spreadsheetID string
	apiKey        string
	client        *http.Client
	logger        *slog.Logger
}

// NewClient creates a Sheets API client for one spreadsheet.
func NewClient(baseURL, spreadsheetID, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}
}

// valueRange is the Sheets API response for a single range.
type valueRange struct {
	Range          string            `json:"range"`
	MajorDimension string            `json:"majorDimension"`
	Values         []json.RawMessage `json:"values"`
}

// Fetch reads one table. When etag matches the server's current version the
// result is NotModified and carries no rows.
func (c *Client) Fetch(ctx context.Context, table TableSpec, etag string) (FetchResult, error) {
	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(table.Ref()))
	q := url.Values{}
	q.Set("majorDimension", "ROWS")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u+"?"+q.Encode(), nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch %s: %w", table.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.logger.Debug("table not modified", "table", table.Name)
		return FetchResult{ETag: etag, NotModified: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("fetch %s: HTTP %d", table.Name, resp.StatusCode)
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return FetchResult{}, &InvalidInputError{What: "table " + table.Name, Reason: err.Error()}
	}
	values, err := decodeValues(vr.Values)
	if err != nil {
		return FetchResult{}, fmt.Errorf("decode %s: %w", table.Name, err)
	}

	rows := RowsFromValues(values)
	c.logger.Info("table fetched", "table", table.Name, "rows", len(rows))
	return FetchResult{Rows: rows, ETag: resp.Header.Get("ETag")}, nil
}
