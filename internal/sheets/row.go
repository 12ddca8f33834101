package sheets

import (
	"strings"
	"unicode"
)

// Row is one spreadsheet body row keyed by its header cells, in sheet order.
type Row struct {
	cols []string
	vals map[string]string
}

// NewRow builds a Row from a header and the matching cells. Missing cells
// are treated as empty; blank header cells are skipped.
func NewRow(header, cells []string) Row {
	r := Row{vals: make(map[string]string, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := r.vals[h]; dup {
			continue
		}
		v := ""
		if i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		r.cols = append(r.cols, h)
		r.vals[h] = v
	}
	return r
}

// RowOf builds a Row from alternating key/value pairs. Used mostly in tests
// and for synthesized rows.
func RowOf(kv ...string) Row {
	var header, cells []string
	for i := 0; i+1 < len(kv); i += 2 {
		header = append(header, kv[i])
		cells = append(cells, kv[i+1])
	}
	return NewRow(header, cells)
}

// Keys returns the row's column names in sheet order.
func (r Row) Keys() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Get returns the value stored under the exact key.
func (r Row) Get(key string) (string, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Lookup reports whether the row has a column matching key, first by exact
// name and then by normalized name. Empty values count as present.
func (r Row) Lookup(key string) (string, bool) {
	if v, ok := r.vals[key]; ok {
		return v, true
	}
	nk := NormalizeKey(key)
	if nk == "" {
		return "", false
	}
	for _, c := range r.cols {
		if NormalizeKey(c) == nk {
			return r.vals[c], true
		}
	}
	return "", false
}

// Resolve returns the first non-empty value among aliases. All aliases are
// tried as exact keys before any normalized comparison, so an exact match on
// a later alias beats a normalized match on an earlier one.
func (r Row) Resolve(aliases ...string) (string, bool) {
	for _, a := range aliases {
		if v, ok := r.vals[a]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	for _, a := range aliases {
		na := NormalizeKey(a)
		if na == "" {
			continue
		}
		for _, c := range r.cols {
			if NormalizeKey(c) != na {
				continue
			}
			if v := r.vals[c]; strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}
	return "", false
}

// With returns a copy of the row with key set to value. An existing column
// keeps its position; a new one is appended.
func (r Row) With(key, value string) Row {
	out := Row{
		cols: make([]string, len(r.cols), len(r.cols)+1),
		vals: make(map[string]string, len(r.vals)+1),
	}
	copy(out.cols, r.cols)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	if _, ok := out.vals[key]; !ok {
		out.cols = append(out.cols, key)
	}
	out.vals[key] = value
	return out
}

// Map returns the row as a plain map.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.vals))
	for k, v := range r.vals {
		out[k] = v
	}
	return out
}

// NormalizeKey lower-cases s and strips everything that is not a letter or
// digit, so "Route Type", "routeType" and "route_type" compare equal.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range strings.ToLower(s) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
