package sheets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput is matched by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a table or row that is structurally not a list
// of column/value mappings.
type InvalidInputError struct {
	What   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.What, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// RowsFromValues turns a header row plus body rows into Rows. A leading BOM
// is stripped from the first header cell and fully blank body rows are
// dropped.
func RowsFromValues(values [][]string) []Row {
	if len(values) == 0 {
		return nil
	}
	header := make([]string, len(values[0]))
	copy(header, values[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	var rows []Row
	for _, cells := range values[1:] {
		if blank(cells) {
			continue
		}
		rows = append(rows, NewRow(header, cells))
	}
	return rows
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DecodeRows decodes a JSON table. Two shapes are accepted: an array of
// objects (one per row), or an array of arrays where the first is the header.
func DecodeRows(data []byte) ([]Row, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidInputError{What: "table", Reason: "expected a JSON array"}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	switch firstByte(raw[0]) {
	case '{':
		rows := make([]Row, 0, len(raw))
		for i, item := range raw {
			row, err := decodeObjectRow(item)
			if err != nil {
				return nil, &InvalidInputError{What: fmt.Sprintf("row %d", i), Reason: err.Error()}
			}
			rows = append(rows, row)
		}
		return rows, nil
	case '[':
		values, err := decodeValues(raw)
		if err != nil {
			return nil, err
		}
		return RowsFromValues(values), nil
	default:
		return nil, &InvalidInputError{What: "table", Reason: "rows must be objects or arrays"}
	}
}

func decodeValues(raw []json.RawMessage) ([][]string, error) {
	values := make([][]string, 0, len(raw))
	for i, item := range raw {
		var cells []any
		if err := json.Unmarshal(item, &cells); err != nil {
			return nil, &InvalidInputError{What: fmt.Sprintf("row %d", i), Reason: "expected an array of cells"}
		}
		row := make([]string, len(cells))
		for j, c := range cells {
			s, err := cellString(c)
			if err != nil {
				return nil, &InvalidInputError{What: fmt.Sprintf("row %d cell %d", i, j), Reason: err.Error()}
			}
			row[j] = s
		}
		values = append(values, row)
	}
	return values, nil
}

func decodeObjectRow(item json.RawMessage) (Row, error) {
	if firstByte(item) != '{' {
		return Row{}, errors.New("expected an object")
	}
	// Decode through a token stream to keep the object's key order.
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return Row{}, err
	}
	var header, cells []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return Row{}, err
		}
		s, err := cellString(v)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %w", key, err)
		}
		header = append(header, key)
		cells = append(cells, s)
	}
	return NewRow(header, cells), nil
}

func cellString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", errors.New("cell must be a scalar")
	}
}

func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}
