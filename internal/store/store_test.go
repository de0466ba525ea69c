package store

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProber counts probes so tests can assert the TTL cache works.
type fakeProber struct {
	exists map[string]bool
	err    error
	calls  atomic.Int64
}

func (p *fakeProber) TableExists(_ context.Context, table string) (bool, error) {
	p.calls.Add(1)
	if p.err != nil {
		return false, p.err
	}
	return p.exists[table], nil
}

func TestProvisionedDisabledFallbackNeverProbes(t *testing.T) {
	p := &fakeProber{}
	a := New(p, nil, Config{FallbackEnabled: false})

	ok, err := a.Provisioned(context.Background(), TablePostings)
	if err != nil || !ok {
		t.Fatalf("Provisioned = %v, %v; want true, nil", ok, err)
	}
	if p.calls.Load() != 0 {
		t.Errorf("probe ran %d times with fallback disabled, want 0", p.calls.Load())
	}
}

func TestProvisionedCachesWithinTTL(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{TableShifts: true}}
	a := New(p, nil, Config{FallbackEnabled: true, ProbeTTL: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := a.Provisioned(ctx, TableShifts)
		if err != nil || !ok {
			t.Fatalf("Provisioned = %v, %v", ok, err)
		}
	}
	if p.calls.Load() != 1 {
		t.Errorf("probe ran %d times within TTL, want 1", p.calls.Load())
	}
}

func TestProvisionedReprobesAfterTTL(t *testing.T) {
	p := &fakeProber{exists: map[string]bool{TableZones: false}}
	a := New(p, nil, Config{FallbackEnabled: true, ProbeTTL: time.Nanosecond})
	ctx := context.Background()

	if ok, _ := a.Provisioned(ctx, TableZones); ok {
		t.Fatal("zone table should be unprovisioned")
	}
	time.Sleep(time.Millisecond)

	// The table has been migrated since the last probe.
	p.exists[TableZones] = true
	if ok, _ := a.Provisioned(ctx, TableZones); !ok {
		t.Fatal("expired cache entry should trigger a re-probe")
	}
	if p.calls.Load() != 2 {
		t.Errorf("probe ran %d times, want 2", p.calls.Load())
	}
}

func TestProvisionedPropagatesStoreUnavailable(t *testing.T) {
	p := &fakeProber{err: ErrStoreUnavailable}
	a := New(p, nil, Config{FallbackEnabled: true})

	_, err := a.Provisioned(context.Background(), TableStaff)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestSyntheticIDsAreMonotonicAndRecognizable(t *testing.T) {
	a := New(&fakeProber{}, nil, Config{FallbackEnabled: true})

	prev := a.SyntheticID()
	for i := 0; i < 100; i++ {
		id := a.SyntheticID()
		if id <= prev {
			t.Fatalf("synthetic IDs not monotonic: %d after %d", id, prev)
		}
		if !IsSynthetic(id) {
			t.Fatalf("id %d not recognized as synthetic", id)
		}
		prev = id
	}
	if IsSynthetic(12345) {
		t.Error("ordinary auto-increment id flagged as synthetic")
	}
}

func TestSyntheticIDsNeverCollideWithSampleRecords(t *testing.T) {
	// Issued identifiers must stay clear of the sample datasets, or the
	// first fallback write would shadow a sample record.
	sample := map[uint64]bool{}
	for _, p := range FallbackPostings() {
		sample[p.ID] = true
	}
	for _, s := range FallbackStaff() {
		sample[s.ID] = true
	}
	for _, z := range FallbackZones() {
		sample[z.ID] = true
	}
	for _, m := range FallbackMetrics() {
		sample[m.ID] = true
	}

	a := New(&fakeProber{}, nil, Config{FallbackEnabled: true})
	for i := 0; i < 100; i++ {
		if id := a.SyntheticID(); sample[id] {
			t.Fatalf("issued synthetic id %d collides with a sample record", id)
		}
	}
}

func TestFallbackDatasetsAreDeterministic(t *testing.T) {
	if !reflect.DeepEqual(FallbackPostings(), FallbackPostings()) {
		t.Error("fallback postings are not stable between calls")
	}
	if !reflect.DeepEqual(FallbackZones(), FallbackZones()) {
		t.Error("fallback zones are not stable between calls")
	}
	for _, p := range FallbackPostings() {
		if !IsSynthetic(p.ID) {
			t.Errorf("fallback posting %d has a non-synthetic id", p.ID)
		}
	}
}

func TestFallbackDatasetsAreCopies(t *testing.T) {
	first := FallbackPostings()
	first[0].Title = "mutated"
	if FallbackPostings()[0].Title == "mutated" {
		t.Error("callers can corrupt the shared fallback dataset")
	}
}
