package sheets

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStore_MissingTableIsEmpty(t *testing.T) {
	s := NewStore()
	if rows := s.Table(TableRoutes); len(rows) != 0 {
		t.Errorf("Table(Routes) on empty store = %v, want empty", rows)
	}
	if s.Loaded() {
		t.Error("new store should not report Loaded")
	}
}

func TestStore_SignatureStableWithoutChanges(t *testing.T) {
	s := NewStore()
	s.now = fixedClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	s.Put(TableRoutes, []Row{RowOf("a", "1")})

	if a, b := s.Signature(), s.Signature(); a != b {
		t.Errorf("signature changed without an update: %q then %q", a, b)
	}
}

func TestStore_SignatureChangesOnRowCount(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s := NewStore()
	s.Replace(map[string][]Row{TableRoutes: {RowOf("a", "1")}}, at)
	before := s.Signature()

	s.Replace(map[string][]Row{TableRoutes: {RowOf("a", "1"), RowOf("a", "2")}}, at.Add(time.Minute))
	if s.Signature() == before {
		t.Error("signature should change when a table's row count changes")
	}
}

func TestStore_SignatureChangesOnFetchTime(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s := NewStore()
	rows := map[string][]Row{TableRoutes: {RowOf("a", "1")}}

	s.Replace(rows, at)
	before := s.Signature()
	// Same counts, same clock reading: the stamp still has to advance.
	s.Replace(rows, at)

	if s.Signature() == before {
		t.Error("signature should change on every replace")
	}
	if !s.FetchedAt().After(at) {
		t.Errorf("FetchedAt = %v, want strictly after %v", s.FetchedAt(), at)
	}
}

func TestStore_ReplaceKeepsOtherTables(t *testing.T) {
	s := NewStore()
	s.Put(TableContacts, []Row{RowOf("location", "Downtown")})
	s.Replace(map[string][]Row{TableRoutes: {RowOf("a", "1")}}, time.Now())

	if got := len(s.Table(TableContacts)); got != 1 {
		t.Errorf("Contacts rows = %d, want 1", got)
	}
}

func TestStore_SnapshotMatchesSignature(t *testing.T) {
	s := NewStore()
	s.Replace(map[string][]Row{
		TableRoutes:   {RowOf("a", "1"), RowOf("a", "2")},
		TableContacts: {RowOf("b", "1")},
	}, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	snap := s.Snapshot()
	if snap.Signature != s.Signature() {
		t.Errorf("snapshot signature %q != store signature %q", snap.Signature, s.Signature())
	}
	if len(snap.Table(TableRoutes)) != 2 {
		t.Errorf("snapshot Routes rows = %d, want 2", len(snap.Table(TableRoutes)))
	}
	want := "1741593600000000000|Contacts=1|Routes=2"
	if snap.Signature != want {
		t.Errorf("signature = %q, want %q", snap.Signature, want)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Put(TableRoutes, []Row{RowOf("a", "1")})
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.Table(TableRoutes)
		}()
	}
	wg.Wait()

	if !s.Loaded() {
		t.Error("store should be loaded after concurrent puts")
	}
}
