// Package contacts builds the address book from the Contacts sheet.
package contacts

import (
	"fmt"
	"sort"
	"strings"

	"marketroutes/internal/sheets"
)

// maxNumbered caps numbered-column scans (contact1, phone1, ...).
const maxNumbered = 20

// Person is one named contact at a location.
type Person struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Contact is an address book entry keyed by location name.
type Contact struct {
	Location string   `json:"location"`
	Address  string   `json:"address"`
	People   []Person `json:"people"`
	Notes    string   `json:"notes"`
	Type     string   `json:"type"`
}

// Directory is a read-only lookup of contacts by location.
type Directory struct {
	byKey map[string]*Contact
	all   []*Contact
}

// FromRows builds a Directory. Rows without a location are ignored; a
// repeated location keeps the first entry.
func FromRows(rows []sheets.Row) *Directory {
	d := &Directory{byKey: make(map[string]*Contact)}
	for _, row := range rows {
		loc, ok := row.Resolve("Location", "location", "Name", "Market")
		if !ok {
			continue
		}
		key := normalizeName(loc)
		if _, dup := d.byKey[key]; dup {
			continue
		}
		c := &Contact{
			Location: strings.TrimSpace(loc),
			Address:  field(row, "Address", "address"),
			People:   people(row),
			Notes:    field(row, "Notes", "notes"),
			Type:     field(row, "Type", "type"),
		}
		d.byKey[key] = c
		d.all = append(d.all, c)
	}
	sort.SliceStable(d.all, func(i, j int) bool {
		return strings.ToLower(d.all[i].Location) < strings.ToLower(d.all[j].Location)
	})
	return d
}

// Lookup returns the contact for a location name, or nil. Matching ignores
// case and surrounding whitespace.
func (d *Directory) Lookup(name string) *Contact {
	if d == nil {
		return nil
	}
	return d.byKey[normalizeName(name)]
}

// All returns every contact sorted by location.
func (d *Directory) All() []*Contact {
	if d == nil {
		return nil
	}
	out := make([]*Contact, len(d.all))
	copy(out, d.all)
	return out
}

// Len returns the number of contacts.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.all)
}

func people(row sheets.Row) []Person {
	var out []Person
	for i := 1; i <= maxNumbered; i++ {
		name, hasName := row.Lookup(fmt.Sprintf("contact%d", i))
		phone, hasPhone := row.Lookup(fmt.Sprintf("phone%d", i))
		if !hasName && !hasPhone {
			break
		}
		name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
		if name == "" && phone == "" {
			continue
		}
		out = append(out, Person{Name: name, Phone: phone})
	}
	if len(out) > 0 {
		return out
	}

	name := field(row, "Contact", "contact", "Contact Name")
	phone := field(row, "Phone", "phone", "Phone Number")
	if name != "" || phone != "" {
		out = append(out, Person{Name: name, Phone: phone})
	}
	return out
}

func field(row sheets.Row, aliases ...string) string {
	v, _ := row.Resolve(aliases...)
	return strings.TrimSpace(v)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
