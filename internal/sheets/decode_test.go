package sheets

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeRows_Objects(t *testing.T) {
	data := []byte(`[
		{"Route Type": "Recovery", "date": "2025-03-11", "Worker 1": "Ana", "count": 3},
		{"Route Type": "SPFM", "date": null, "done": true}
	]`)

	rows, err := DecodeRows(data)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got, want := rows[0].Keys(), []string{"Route Type", "date", "Worker 1", "count"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v (object order)", got, want)
	}
	if v, _ := rows[0].Get("count"); v != "3" {
		t.Errorf("count = %q, want %q", v, "3")
	}
	if v, ok := rows[1].Get("date"); !ok || v != "" {
		t.Errorf("null date = %q, %v; want present and empty", v, ok)
	}
	if v, _ := rows[1].Get("done"); v != "true" {
		t.Errorf("done = %q", v)
	}
}

func TestDecodeRows_Values(t *testing.T) {
	data := []byte(`[
		["\ufeffRoute Type", "date", "market"],
		["Recovery", "2025-03-11", "Downtown"],
		["", "", ""],
		["SPFM"]
	]`)

	rows, err := DecodeRows(data)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row dropped)", len(rows))
	}
	if v, _ := rows[0].Get("Route Type"); v != "Recovery" {
		t.Errorf("BOM not stripped from header: Route Type = %q", v)
	}
	if v, ok := rows[1].Get("market"); !ok || v != "" {
		t.Errorf("short row market = %q, %v; want present and empty", v, ok)
	}
}

func TestDecodeRows_Empty(t *testing.T) {
	rows, err := DecodeRows([]byte(`[]`))
	if err != nil || len(rows) != 0 {
		t.Errorf("DecodeRows([]) = %v, %v", rows, err)
	}
}

func TestDecodeRows_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not an array", `{"date": "2025-03-11"}`},
		{"not json", `date,market`},
		{"scalar rows", `["a", "b"]`},
		{"mixed rows", `[{"a": "1"}, "b"]`},
		{"nested cell", `[{"a": {"b": 1}}]`},
		{"nested value cell", `[["a"], [["x"]]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows([]byte(tt.data))
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			var ie *InvalidInputError
			if !errors.As(err, &ie) {
				t.Errorf("err %T is not *InvalidInputError", err)
			}
		})
	}
}
