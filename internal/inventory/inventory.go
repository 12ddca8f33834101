// Package inventory tracks box counts from the Inventory sheet plus counts
// entered locally since the sheet was last fetched.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"marketroutes/internal/sheets"
	"marketroutes/internal/storage"
)

var (
	ErrUnknownItem   = errors.New("unknown inventory item")
	ErrNegativeCount = errors.New("count must not be negative")
)

// Item is one inventory line.
type Item struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Count     int       `json:"count"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	UpdatedAt time.Time `json:"updatedAt"`
	Local     bool      `json:"local"` // count entered here, not yet in the sheet
}

// FromRows parses the Inventory sheet. Rows without a name are skipped and
// counts that aren't whole numbers read as zero.
func FromRows(rows []sheets.Row, fetchedAt time.Time) []Item {
	var items []Item
	for _, row := range rows {
		name := field(row, "Item", "Box", "Name")
		if name == "" {
			continue
		}
		items = append(items, Item{
			Name:      name,
			Location:  field(row, "Location", "Where"),
			Count:     parseCount(field(row, "Count", "Quantity", "Qty")),
			Status:    field(row, "Status"),
			Notes:     field(row, "Notes"),
			UpdatedAt: fetchedAt,
		})
	}
	return items
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func field(row sheets.Row, aliases ...string) string {
	v, _ := row.Resolve(aliases...)
	return strings.TrimSpace(v)
}

// Service merges sheet inventory with locally recorded counts.
type Service struct {
	store  *sheets.Store
	db     *storage.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates an inventory Service.
func NewService(store *sheets.Store, db *storage.DB, logger *slog.Logger) *Service {
	return &Service{store: store, db: db, now: time.Now, logger: logger}
}

// Items returns the current inventory. A local count wins over the sheet
// only if it was entered after the sheet was last fetched.
func (s *Service) Items(ctx context.Context) ([]Item, error) {
	snap := s.store.Snapshot()
	items := FromRows(snap.Table(sheets.TableInventory), snap.FetchedAt)

	counts, err := s.db.InventoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		c, ok := counts[key(items[i].Name)]
		if !ok || !c.UpdatedAt.After(snap.FetchedAt) {
			continue
		}
		items[i].Count = c.Count
		items[i].UpdatedAt = c.UpdatedAt
		items[i].Local = true
	}
	return items, nil
}

// SetCount records a new count for an item listed in the sheet.
func (s *Service) SetCount(ctx context.Context, name string, count int) (Item, error) {
	if count < 0 {
		return Item{}, ErrNegativeCount
	}
	items, err := s.Items(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if key(it.Name) != key(name) {
			continue
		}
		at := s.now()
		if err := s.db.SetInventoryCount(ctx, key(it.Name), count, at); err != nil {
			return Item{}, err
		}
		s.logger.Info("inventory count updated", "item", it.Name, "from", it.Count, "to", count)
		it.Count, it.UpdatedAt, it.Local = count, at, true
		return it, nil
	}
	return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, name)
}

func key(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
