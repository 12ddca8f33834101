package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"marketroutes/internal/sheets"
	"marketroutes/internal/storage"
)

func newTestService(t *testing.T, rows ...sheets.Row) (*Service, *sheets.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := storage.Open(filepath.Join(t.TempDir(), "inv.db"), logger)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := sheets.NewStore()
	store.Replace(map[string][]sheets.Row{sheets.TableInventory: rows},
		time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	return NewService(store, db, logger), store
}

func TestFromRows(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	items := FromRows([]sheets.Row{
		sheets.RowOf("Item", "Produce Boxes", "Count", "1,200", "Location", "Warehouse"),
		sheets.RowOf("Box", "Dairy", "Qty", "lots"),
		sheets.RowOf("Item", "", "Count", "5"),
		sheets.RowOf("Name", "Bags", "Quantity", "-3", "Status", "low"),
	}, at)

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	tests := []struct {
		name  string
		count int
	}{
		{"Produce Boxes", 1200},
		{"Dairy", 0},
		{"Bags", 0},
	}
	for i, tt := range tests {
		if items[i].Name != tt.name || items[i].Count != tt.count {
			t.Errorf("item %d = %q/%d, want %q/%d", i, items[i].Name, items[i].Count, tt.name, tt.count)
		}
		if !items[i].UpdatedAt.Equal(at) || items[i].Local {
			t.Errorf("item %d provenance = %v local=%v", i, items[i].UpdatedAt, items[i].Local)
		}
	}
}

func TestSetCount(t *testing.T) {
	svc, _ := newTestService(t,
		sheets.RowOf("Item", "Produce Boxes", "Count", "10"),
		sheets.RowOf("Item", "Dairy", "Count", "4"),
	)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	it, err := svc.SetCount(ctx, " produce  boxes", 7)
	if err != nil {
		t.Fatalf("SetCount: %v", err)
	}
	if it.Name != "Produce Boxes" || it.Count != 7 || !it.Local {
		t.Errorf("SetCount returned %+v", it)
	}

	items, err := svc.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if items[0].Count != 7 || !items[0].Local {
		t.Errorf("Produce Boxes = %+v, want local count 7", items[0])
	}
	if items[1].Count != 4 || items[1].Local {
		t.Errorf("Dairy = %+v, want sheet count 4", items[1])
	}
}

func TestItems_NewerSheetWins(t *testing.T) {
	svc, store := newTestService(t, sheets.RowOf("Item", "Dairy", "Count", "4"))
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if _, err := svc.SetCount(ctx, "Dairy", 2); err != nil {
		t.Fatal(err)
	}
	store.Replace(map[string][]sheets.Row{
		sheets.TableInventory: {sheets.RowOf("Item", "Dairy", "Count", "12")},
	}, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))

	items, err := svc.Items(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Count != 12 || items[0].Local {
		t.Errorf("Dairy = %+v, want the refetched sheet count", items[0])
	}
}

func TestSetCount_Errors(t *testing.T) {
	svc, _ := newTestService(t, sheets.RowOf("Item", "Dairy", "Count", "4"))
	ctx := context.Background()

	if _, err := svc.SetCount(ctx, "Dairy", -1); !errors.Is(err, ErrNegativeCount) {
		t.Errorf("negative count err = %v", err)
	}
	if _, err := svc.SetCount(ctx, "Bread", 3); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown item err = %v", err)
	}
}
