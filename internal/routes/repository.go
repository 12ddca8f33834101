package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"

	"marketroutes/internal/contacts"
	"marketroutes/internal/sheets"
)

// SnapshotStore persists fetched tables between restarts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap sheets.TableSnapshot) error
	LoadSnapshots(ctx context.Context) ([]sheets.TableSnapshot, error)
}

// Options configures a Repository.
type Options struct {
	Tables      []sheets.TableSpec
	WindowWeeks int           // periodic expansion window, DefaultWindowWeeks if 0
	MaxAge      time.Duration // unforced loads within this age are skipped
	Location    *time.Location
	Now         func() time.Time
	Snapshots   SnapshotStore // optional
}

// legacyTables are per-kind sheets normalized row by row.
var legacyTables = []struct {
	name string
	kind Kind
}{
	{sheets.TableSPFM, KindSPFM},
	{sheets.TableRecovery, KindRecovery},
	{sheets.TableDelivery, KindDelivery},
}

// derived is everything computed from one store signature.
type derived struct {
	routes      []Route
	byID        map[string]int
	directory   *contacts.Directory
	workerIcons map[string]string
	vanIcons    map[string]string
}

// Repository owns the raw table store and the routes derived from it.
type Repository struct {
	store    *sheets.Store
	source   sheets.Source
	opts     Options
	snapshot SnapshotStore
	logger   *slog.Logger

	group        singleflight.Group
	cache        gcache.Cache
	computations atomic.Int64

	mu        sync.Mutex
	etags     map[string]string
	lastCheck time.Time
}

// NewRepository creates a Repository reading through source into store.
func NewRepository(store *sheets.Store, source sheets.Source, opts Options, logger *slog.Logger) *Repository {
	if opts.WindowWeeks <= 0 {
		opts.WindowWeeks = DefaultWindowWeeks
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Repository{
		store:    store,
		source:   source,
		opts:     opts,
		snapshot: opts.Snapshots,
		logger:   logger,
		cache:    gcache.New(4).LRU().Build(),
		etags:    make(map[string]string),
	}
}

// Store returns the underlying raw table store.
func (r *Repository) Store() *sheets.Store { return r.store }

// Hydrate restores persisted tables so the service can answer before the
// first fetch completes. ETags are restored too, so the next load only
// downloads tables that changed.
func (r *Repository) Hydrate(ctx context.Context) error {
	if r.snapshot == nil {
		return nil
	}
	snaps, err := r.snapshot.LoadSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil
	}

	tables := make(map[string][]sheets.Row, len(snaps))
	var fetchedAt time.Time
	r.mu.Lock()
	for _, s := range snaps {
		tables[s.Name] = s.Rows
		r.etags[s.Name] = s.ETag
		if s.FetchedAt.After(fetchedAt) {
			fetchedAt = s.FetchedAt
		}
	}
	r.mu.Unlock()

	r.store.Replace(tables, fetchedAt)
	r.logger.Info("tables restored from snapshot", "tables", len(snaps), "fetched_at", fetchedAt.Format(time.RFC3339))
	return nil
}

// LoadRawTables fetches the configured tables into the store. Unless force
// is set, a load is skipped when the last check is younger than MaxAge.
// Concurrent callers share a single in-flight fetch.
func (r *Repository) LoadRawTables(ctx context.Context, force bool) error {
	if !force && r.fresh() {
		return nil
	}
	ch := r.group.DoChan("load", func() (any, error) {
		return nil, r.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Repository) fresh() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.lastCheck.IsZero() && r.opts.Now().Sub(r.lastCheck) < r.opts.MaxAge
}

func (r *Repository) load(ctx context.Context) error {
	start := time.Now()
	changed := make(map[string][]sheets.Row)
	tags := make(map[string]string)
	var errs []error

	for _, t := range r.opts.Tables {
		r.mu.Lock()
		etag := r.etags[t.Name]
		r.mu.Unlock()

		res, err := r.source.Fetch(ctx, t, etag)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", t.Name, err))
			continue
		}
		if res.NotModified {
			continue
		}
		changed[t.Name] = res.Rows
		tags[t.Name] = res.ETag
	}

	now := r.opts.Now()
	if len(changed) > 0 || (!r.store.Loaded() && len(errs) == 0) {
		r.store.Replace(changed, now)
	}

	r.mu.Lock()
	for name, tag := range tags {
		r.etags[name] = tag
	}
	if len(errs) == 0 {
		r.lastCheck = now
	}
	r.mu.Unlock()

	if r.snapshot != nil {
		fetchedAt := r.store.FetchedAt()
		for name, rows := range changed {
			snap := sheets.TableSnapshot{Name: name, ETag: tags[name], FetchedAt: fetchedAt, Rows: rows}
			if err := r.snapshot.SaveSnapshot(ctx, snap); err != nil {
				r.logger.Warn("persist table snapshot failed", "table", name, "error", err)
			}
		}
	}

	r.logger.Info("raw tables loaded",
		"changed", len(changed),
		"failed", len(errs),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return errors.Join(errs...)
}

// AllRoutes returns every normalized route: expanded templates first, then
// the per-kind sheets, de-duplicated by ID. Results are cached until the
// store signature or the calendar day changes. The returned slice is shared
// and must not be modified.
func (r *Repository) AllRoutes() []Route {
	return r.derived().routes
}

// Route returns the route with the given ID.
func (r *Repository) Route(id string) (Route, bool) {
	d := r.derived()
	i, ok := d.byID[id]
	if !ok {
		return Route{}, false
	}
	return d.routes[i], true
}

// Contacts returns the address book built from the Contacts table.
func (r *Repository) Contacts() *contacts.Directory {
	return r.derived().directory
}

// WorkerIcon returns the icon configured for a worker, if any.
func (r *Repository) WorkerIcon(name string) string {
	return r.derived().workerIcons[strings.ToLower(strings.TrimSpace(name))]
}

// VanIcon returns the icon configured for a van, if any.
func (r *Repository) VanIcon(name string) string {
	return r.derived().vanIcons[strings.ToLower(strings.TrimSpace(name))]
}

// Computations reports how many times routes were rebuilt.
func (r *Repository) Computations() int64 {
	return r.computations.Load()
}

func (r *Repository) derived() *derived {
	snap := r.store.Snapshot()
	today := midnight(r.opts.Now().In(r.opts.Location), r.opts.Location).Format(isoLayout)
	key := snap.Signature + "@" + today

	if v, err := r.cache.Get(key); err == nil {
		return v.(*derived)
	}
	v, _, _ := r.group.Do("derive:"+key, func() (any, error) {
		if v, err := r.cache.Get(key); err == nil {
			return v, nil
		}
		d := r.build(snap)
		if err := r.cache.Set(key, d); err != nil {
			r.logger.Warn("cache routes failed", "error", err)
		}
		return d, nil
	})
	return v.(*derived)
}

func (r *Repository) build(snap sheets.Snapshot) *derived {
	r.computations.Add(1)

	dir := contacts.FromRows(snap.Table(sheets.TableContacts))
	norm := NewNormalizer(dir, r.opts.Location)
	exp := NewExpander(norm, r.opts.Now, r.logger)

	all := exp.Expand(snap.Table(sheets.TableRoutes), r.opts.WindowWeeks)
	for _, t := range legacyTables {
		for _, row := range snap.Table(t.name) {
			all = append(all, norm.Normalize(row, t.kind))
		}
	}

	d := &derived{
		routes:      make([]Route, 0, len(all)),
		byID:        make(map[string]int, len(all)),
		directory:   dir,
		workerIcons: icons(snap.Table(sheets.TableWorkerIcons), "Worker", "Name"),
		vanIcons:    icons(snap.Table(sheets.TableVanIcons), "Van", "Vehicle", "Name"),
	}
	for _, rt := range all {
		if _, dup := d.byID[rt.ID]; dup {
			continue
		}
		d.byID[rt.ID] = len(d.routes)
		d.routes = append(d.routes, rt)
	}
	return d
}

// icons reads a two-column name/icon lookup sheet.
func icons(rows []sheets.Row, keyAliases ...string) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		name := resolve(row, keyAliases)
		icon := resolve(row, []string{"Icon", "icon", "Emoji"})
		if name == "" || icon == "" {
			continue
		}
		out[strings.ToLower(name)] = icon
	}
	return out
}
