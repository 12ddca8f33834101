package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"marketroutes/internal/sheets"
)

// encodeRows serializes rows as a protobuf ListValue (one inner list of
// alternating column/value strings per row, so column order survives) and
// xz-compresses the result.
func encodeRows(rows []sheets.Row) ([]byte, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(rows))}
	for _, row := range rows {
		cells := &structpb.ListValue{}
		for _, k := range row.Keys() {
			v, _ := row.Get(k)
			cells.Values = append(cells.Values, structpb.NewStringValue(k), structpb.NewStringValue(v))
		}
		list.Values = append(list.Values, structpb.NewListValue(cells))
	}

	raw, err := proto.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("compress rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress rows: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeRows reverses encodeRows.
func decodeRows(payload []byte) ([]sheets.Row, error) {
	r, err := xz.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open xz reader: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress rows: %w", err)
	}

	var list structpb.ListValue
	if err := proto.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("unmarshal rows: %w", err)
	}

	rows := make([]sheets.Row, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		cells := v.GetListValue().GetValues()
		if len(cells)%2 != 0 {
			return nil, fmt.Errorf("row %d: odd number of cells", i)
		}
		kv := make([]string, 0, len(cells))
		for _, c := range cells {
			kv = append(kv, c.GetStringValue())
		}
		rows = append(rows, sheets.RowOf(kv...))
	}
	return rows, nil
}
