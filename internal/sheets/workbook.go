package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Workbook reads tables from a local spreadsheet export, one sheet per
// table. Both .xlsx and legacy .xls files are supported.
type Workbook struct {
	path   string
	logger *slog.Logger
}

// NewWorkbook creates a Workbook source for the file at path.
func NewWorkbook(path string, logger *slog.Logger) *Workbook {
	return &Workbook{path: path, logger: logger}
}

// Fetch reads the sheet named by table.Ref(). The file's size and
// modification time stand in for an ETag.
func (w *Workbook) Fetch(ctx context.Context, table TableSpec, etag string) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return FetchResult{}, fmt.Errorf("stat workbook: %w", err)
	}
	tag := fmt.Sprintf(`"%x-%x"`, info.Size(), info.ModTime().UnixNano())
	if etag == tag {
		return FetchResult{ETag: tag, NotModified: true}, nil
	}

	var values [][]string
	switch strings.ToLower(filepath.Ext(w.path)) {
	case ".xls":
		values, err = readXLSSheet(w.path, table.Ref())
	default:
		values, err = readXLSXSheet(w.path, table.Ref())
	}
	if err != nil {
		return FetchResult{}, fmt.Errorf("read sheet %s: %w", table.Ref(), err)
	}

	rows := RowsFromValues(values)
	w.logger.Info("table read from workbook", "table", table.Name, "rows", len(rows))
	return FetchResult{Rows: rows, ETag: tag}, nil
}

func readXLSXSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		// A missing sheet is an empty table, not a failure.
		return nil, nil
	}
	return f.GetRows(sheet)
}

func readXLSSheet(path, sheet string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil || ws.Name != sheet {
			continue
		}
		var values [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				values = append(values, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			values = append(values, cells)
		}
		return values, nil
	}
	return nil, nil
}
