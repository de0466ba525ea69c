// Package store decides, per table, whether the backing collection is
// provisioned and routes reads and writes accordingly.  Against a
// partially migrated database the engine stays demoable: reads of an
// unprovisioned table serve a small deterministic sample dataset and
// writes are accepted with a synthetic identifier instead of failing
// the caller.  This degraded mode is an explicit configuration choice
// (STORE_FALLBACK_ENABLED), never implicit control flow, and once a
// table exists behavior is fully consistent with no silent fallback.
//
// Probe results are cached with a short TTL — in Redis when a client
// is available, in process memory otherwise — so the schema is not
// re-probed on every call.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable signals genuine infrastructure failure: the
// database cannot be reached at all.  It is distinct from the
// deliberate not-yet-provisioned fallback, which is not an error, and
// is propagated unmodified so callers can retry with backoff.
var ErrStoreUnavailable = errors.New("store: backing store unavailable")

// Table names the adapter knows how to probe and fall back for.
const (
	TablePostings     = "job_postings"
	TableApplications = "applications"
	TableTemplates    = "workflow_templates"
	TableCandidates   = "candidates"
	TableStaff        = "staff_members"
	TableZones        = "zones"
	TableShifts       = "shifts"
	TableMetrics      = "performance_metrics"
)

// syntheticIDBase starts the synthetic identifier range well above any
// realistic auto-increment value so fallback writes can never be
// mistaken for durable rows.  The first sampleIDSpan identifiers are
// reserved for the fallback sample datasets; issued identifiers start
// above them, so a fallback write never collides with a sample record.
const (
	syntheticIDBase uint64 = 1 << 62
	sampleIDSpan    uint64 = 1 << 10
)

// Prober answers whether a table exists in the backing schema.
type Prober interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

// SQLProber probes MySQL's information_schema for the current
// database.  A query failure caused by lost connectivity is reported
// as ErrStoreUnavailable.
type SQLProber struct {
	db *sql.DB
}

// NewSQLProber returns a SQLProber bound to the given database.
func NewSQLProber(db *sql.DB) *SQLProber { return &SQLProber{db: db} }

// TableExists reports whether the table is present in the connected
// schema.
func (p *SQLProber) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	var n int
	if err := p.db.QueryRowContext(ctx, q, table).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: probing %s: %v", ErrStoreUnavailable, table, err)
	}
	return n > 0, nil
}

// Config controls the adapter's degraded-mode behavior.
type Config struct {
	// FallbackEnabled switches the not-yet-provisioned fallback on.
	// When false the adapter reports every table as provisioned and
	// missing tables surface as ordinary SQL errors.
	FallbackEnabled bool
	// ProbeTTL bounds how long a probe result is trusted before the
	// schema is checked again.
	ProbeTTL time.Duration
}

// cacheEntry is one in-process probe result.
type cacheEntry struct {
	exists  bool
	checked time.Time
}

// Adapter caches provisioning probes and hands out fallback data and
// synthetic identifiers for unprovisioned tables.
type Adapter struct {
	cfg    Config
	prober Prober
	rdb    *redis.Client // optional; in-process cache is used when nil

	mu    sync.Mutex
	cache map[string]cacheEntry

	nextSynthetic atomic.Uint64
}

// New constructs an Adapter.  rdb may be nil, in which case probe
// results are cached in process memory only.
func New(prober Prober, rdb *redis.Client, cfg Config) *Adapter {
	if cfg.ProbeTTL <= 0 {
		cfg.ProbeTTL = 30 * time.Second
	}
	a := &Adapter{
		cfg:    cfg,
		prober: prober,
		rdb:    rdb,
		cache:  make(map[string]cacheEntry),
	}
	a.nextSynthetic.Store(syntheticIDBase + sampleIDSpan)
	return a
}

// Provisioned reports whether reads and writes for the table should go
// to the real store.  With the fallback disabled it always returns
// true without probing.
func (a *Adapter) Provisioned(ctx context.Context, table string) (bool, error) {
	if !a.cfg.FallbackEnabled {
		return true, nil
	}

	if exists, ok := a.cachedResult(ctx, table); ok {
		return exists, nil
	}

	exists, err := a.prober.TableExists(ctx, table)
	if err != nil {
		return false, err
	}
	a.storeResult(ctx, table, exists)
	return exists, nil
}

// SyntheticID returns the next synthetic identifier for an accepted
// write against an unprovisioned table.  The sequence is monotonic and
// starts at a range no real auto-increment column reaches.
func (a *Adapter) SyntheticID() uint64 {
	return a.nextSynthetic.Add(1)
}

// IsSynthetic reports whether an identifier came from the fallback
// sequence rather than the database.
func IsSynthetic(id uint64) bool { return id > syntheticIDBase }

func redisProbeKey(table string) string { return "store:provisioned:" + table }

// cachedResult consults Redis first (when configured) and then the
// in-process map.  Cache misses and Redis failures both fall through
// to a fresh probe; a flaky cache must never take the adapter down.
func (a *Adapter) cachedResult(ctx context.Context, table string) (bool, bool) {
	if a.rdb != nil {
		v, err := a.rdb.Get(ctx, redisProbeKey(table)).Result()
		if err == nil {
			return v == "1", true
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.cache[table]
	if !ok || time.Since(entry.checked) > a.cfg.ProbeTTL {
		return false, false
	}
	return entry.exists, true
}

func (a *Adapter) storeResult(ctx context.Context, table string, exists bool) {
	if a.rdb != nil {
		v := "0"
		if exists {
			v = "1"
		}
		// Best effort: the in-process cache below is authoritative
		// when Redis is unavailable.
		_ = a.rdb.Set(ctx, redisProbeKey(table), v, a.cfg.ProbeTTL).Err()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache[table] = cacheEntry{exists: exists, checked: time.Now()}
}
