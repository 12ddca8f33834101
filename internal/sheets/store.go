package sheets

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Table names as they appear in the spreadsheet.
const (
	TableSPFM        = "SPFM"
	TableRecovery    = "Recovery"
	TableDelivery    = "Delivery"
	TableRoutes      = "Routes"
	TableInventory   = "Inventory"
	TableContacts    = "Contacts"
	TableWorkerIcons = "WorkerIcons"
	TableVanIcons    = "VanIcons"
)

// Snapshot is a consistent view of the store taken under a single lock.
type Snapshot struct {
	Signature string
	FetchedAt time.Time
	Tables    map[string][]Row
}

// Table returns the named table's rows, or nil.
func (s Snapshot) Table(name string) []Row {
	return s.Tables[name]
}

// Store holds the latest fetched rows per table in a thread-safe manner.
// Tables are only ever replaced wholesale.
type Store struct {
	mu        sync.RWMutex
	tables    map[string][]Row
	fetchedAt time.Time
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tables: make(map[string][]Row), now: time.Now}
}

// Put replaces one table and stamps the fetch time.
func (s *Store) Put(name string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = rows
	s.fetchedAt = s.stamp(s.now())
}

// Replace replaces every given table and sets the fetch time under one lock.
func (s *Store) Replace(tables map[string][]Row, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, rows := range tables {
		s.tables[name] = rows
	}
	s.fetchedAt = s.stamp(fetchedAt)
}

// stamp guarantees the fetch time moves forward even when two updates land
// within the clock's resolution. Caller must hold the lock.
func (s *Store) stamp(t time.Time) time.Time {
	if !t.After(s.fetchedAt) {
		return s.fetchedAt.Add(time.Nanosecond)
	}
	return t
}

// Table returns the latest rows for name. A table that was never loaded is
// indistinguishable from an empty one.
func (s *Store) Table(name string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[name]
}

// Loaded reports whether anything has been stored yet.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero()
}

// FetchedAt returns the time of the last update.
func (s *Store) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Signature returns an opaque token that changes whenever any table's row
// count or the last fetch time changes.
func (s *Store) Signature() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signatureLocked()
}

// Snapshot returns the signature together with the tables it describes.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tables := make(map[string][]Row, len(s.tables))
	for k, v := range s.tables {
		tables[k] = v
	}
	return Snapshot{
		Signature: s.signatureLocked(),
		FetchedAt: s.fetchedAt,
		Tables:    tables,
	}
}

func (s *Store) signatureLocked() string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%d", s.fetchedAt.UnixNano())
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%d", name, len(s.tables[name]))
	}
	return b.String()
}
