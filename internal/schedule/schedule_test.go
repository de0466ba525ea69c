package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

// memShiftStore is an in-memory ShiftStore.  Its methods are
// individually locked but deliberately do nothing to serialize a
// check-then-act sequence; that is the allocator's job.  Tests that
// need to force an interleaving install afterGet before spawning
// goroutines; it runs after every read with no store lock held.
type memShiftStore struct {
	mu       sync.Mutex
	nextID   uint64
	shifts   map[uint64]*model.Shift
	afterGet func(id uint64)
}

func newMemShiftStore() *memShiftStore {
	return &memShiftStore{shifts: map[uint64]*model.Shift{}}
}

func (s *memShiftStore) ActiveByStaff(_ context.Context, staffID uint64) ([]model.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Shift
	for _, sh := range s.shifts {
		if sh.StaffID == staffID && sh.Active() {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (s *memShiftStore) Create(_ context.Context, sh *model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sh.ID = s.nextID
	cp := *sh
	s.shifts[sh.ID] = &cp
	return nil
}

func (s *memShiftStore) Get(_ context.Context, id uint64) (*model.Shift, error) {
	s.mu.Lock()
	sh, ok := s.shifts[id]
	var cp model.Shift
	if ok {
		cp = *sh
	}
	s.mu.Unlock()
	if s.afterGet != nil {
		s.afterGet(id)
	}
	if !ok {
		return nil, errors.New("shift not found")
	}
	return &cp, nil
}

func (s *memShiftStore) UpdateStatus(_ context.Context, id uint64, from, to model.ShiftStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[id]
	if !ok {
		return errors.New("shift not found")
	}
	if sh.Status != from {
		return errors.New("shift status changed")
	}
	sh.Status = to
	return nil
}

type memZoneStore struct {
	mu     sync.Mutex
	nextID uint64
	zones  map[uint64]*model.Zone
}

func newMemZoneStore() *memZoneStore {
	return &memZoneStore{zones: map[uint64]*model.Zone{}}
}

func (s *memZoneStore) Create(_ context.Context, z *model.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	z.ID = s.nextID
	cp := *z
	s.zones[z.ID] = &cp
	return nil
}

func (s *memZoneStore) Get(_ context.Context, id uint64) (*model.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	if !ok {
		return nil, errors.New("zone not found")
	}
	cp := *z
	return &cp, nil
}

func (s *memZoneStore) AdjustAssigned(_ context.Context, id uint64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	if !ok {
		return errors.New("zone not found")
	}
	z.AssignedCount += delta
	return nil
}

func newTestAllocator() (*Allocator, *memShiftStore, *memZoneStore) {
	shifts := newMemShiftStore()
	zones := newMemZoneStore()
	return NewAllocator(shifts, zones), shifts, zones
}

func window(h, dur int) (time.Time, time.Time) {
	start := time.Date(2025, time.July, 4, h, 0, 0, 0, time.UTC)
	return start, start.Add(time.Duration(dur) * time.Hour)
}

func TestAssignShiftRejectsOverlap(t *testing.T) {
	a, _, _ := newTestAllocator()
	ctx := context.Background()

	start, end := window(18, 4)
	if _, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, Role: "gate", StartsAt: start, EndsAt: end}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		from, to int
		conflict bool
	}{
		{"inside", 19, 1, true},
		{"straddles start", 17, 2, true},
		{"straddles end", 21, 2, true},
		{"touching end is free", 22, 2, false},
		{"before", 15, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := time.Date(2025, time.July, 4, tc.from, 0, 0, 0, time.UTC)
			_, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, Role: "gate", StartsAt: s, EndsAt: s.Add(time.Duration(tc.to) * time.Hour)})
			if tc.conflict && !errors.Is(err, ErrShiftConflict) {
				t.Errorf("err = %v, want ErrShiftConflict", err)
			}
			if !tc.conflict && err != nil {
				t.Errorf("unexpected err = %v", err)
			}
		})
	}
}

func TestAssignShiftAllowsOverlapAcrossStaff(t *testing.T) {
	a, _, _ := newTestAllocator()
	ctx := context.Background()
	start, end := window(18, 4)

	if _, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, StartsAt: start, EndsAt: end}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AssignShift(ctx, AssignRequest{StaffID: 2, StartsAt: start, EndsAt: end}); err != nil {
		t.Errorf("different staff members may overlap: %v", err)
	}
}

func TestAssignShiftConcurrentOverlapRace(t *testing.T) {
	// Two goroutines race to book the same staff member on
	// overlapping windows; exactly one may win.
	a, shifts, _ := newTestAllocator()
	ctx := context.Background()
	start, end := window(18, 4)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.AssignShift(ctx, AssignRequest{StaffID: 9, StartsAt: start, EndsAt: end})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrShiftConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 of each", ok, conflict)
	}

	active, _ := shifts.ActiveByStaff(ctx, 9)
	if len(active) != 1 {
		t.Fatalf("store holds %d active shifts, want 1", len(active))
	}
}

func TestZoneCapacityEnforced(t *testing.T) {
	a, _, zones := newTestAllocator()
	ctx := context.Background()

	zone := &model.Zone{EventID: 1, Name: "Gate B", Capacity: 500, RequiredStaffCount: 2}
	if err := a.CreateZone(ctx, zone); err != nil {
		t.Fatal(err)
	}

	// Fill the zone with distinct staff on non-overlapping windows.
	for i := uint64(1); i <= 2; i++ {
		start, end := window(10+int(i)*4, 3)
		if _, err := a.AssignShift(ctx, AssignRequest{StaffID: i, ZoneID: &zone.ID, StartsAt: start, EndsAt: end}); err != nil {
			t.Fatalf("assignment %d: %v", i, err)
		}
	}

	start, end := window(8, 1)
	if _, err := a.AssignShift(ctx, AssignRequest{StaffID: 3, ZoneID: &zone.ID, StartsAt: start, EndsAt: end}); !errors.Is(err, ErrZoneCapacityExceeded) {
		t.Fatalf("err = %v, want ErrZoneCapacityExceeded", err)
	}

	z, _ := zones.Get(ctx, zone.ID)
	if z.AssignedCount != z.RequiredStaffCount {
		t.Errorf("assigned count %d exceeds required %d", z.AssignedCount, z.RequiredStaffCount)
	}
}

func TestZoneCapacityConcurrentRace(t *testing.T) {
	// A zone with one slot and many concurrent takers: exactly one
	// assignment may land.
	a, _, zones := newTestAllocator()
	ctx := context.Background()

	zone := &model.Zone{EventID: 1, Name: "Pit", RequiredStaffCount: 1}
	if err := a.CreateZone(ctx, zone); err != nil {
		t.Fatal(err)
	}

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start, end := window(10, 2)
			_, errs[i] = a.AssignShift(ctx, AssignRequest{StaffID: uint64(100 + i), ZoneID: &zone.ID, StartsAt: start, EndsAt: end})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrZoneCapacityExceeded) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d assignments landed in a one-slot zone", ok)
	}
	z, _ := zones.Get(ctx, zone.ID)
	if z.AssignedCount != 1 {
		t.Errorf("assigned count = %d, want 1", z.AssignedCount)
	}
}

func TestCancelShiftReleasesZoneAndWindow(t *testing.T) {
	a, _, zones := newTestAllocator()
	ctx := context.Background()

	zone := &model.Zone{EventID: 1, Name: "Bar", RequiredStaffCount: 1}
	if err := a.CreateZone(ctx, zone); err != nil {
		t.Fatal(err)
	}
	start, end := window(18, 4)
	shift, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, ZoneID: &zone.ID, StartsAt: start, EndsAt: end})
	if err != nil {
		t.Fatal(err)
	}

	cancelled, err := a.CancelShift(ctx, shift.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != model.ShiftCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	z, _ := zones.Get(ctx, zone.ID)
	if z.AssignedCount != 0 {
		t.Errorf("assigned count = %d, want 0 after cancel", z.AssignedCount)
	}

	// The window and the zone slot are free again.
	if _, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, ZoneID: &zone.ID, StartsAt: start, EndsAt: end}); err != nil {
		t.Errorf("rebooking after cancel: %v", err)
	}

	// Cancelling twice is a no-op and must not decrement again.
	if _, err := a.CancelShift(ctx, shift.ID); err != nil {
		t.Fatal(err)
	}
	z, _ = zones.Get(ctx, zone.ID)
	if z.AssignedCount != 1 {
		t.Errorf("assigned count = %d, want 1 after repeat cancel", z.AssignedCount)
	}
}

func TestShiftStatusTransitions(t *testing.T) {
	a, _, _ := newTestAllocator()
	ctx := context.Background()
	start, end := window(9, 8)
	shift, err := a.AssignShift(ctx, AssignRequest{StaffID: 1, StartsAt: start, EndsAt: end})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.CompleteShift(ctx, shift.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a scheduled shift: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := a.ConfirmShift(ctx, shift.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ConfirmShift(ctx, shift.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double confirm: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := a.CompleteShift(ctx, shift.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.CancelShift(ctx, shift.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelling a completed shift: err = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmRacingCancelCannotResurrectShift(t *testing.T) {
	// A confirm that read SCHEDULED before a concurrent cancel landed
	// must lose: the shift stays cancelled, and a replacement booked in
	// the freed window remains the staff member's only active shift.
	a, shifts, zones := newTestAllocator()
	ctx := context.Background()

	zone := &model.Zone{EventID: 1, Name: "Gate A", RequiredStaffCount: 1}
	if err := a.CreateZone(ctx, zone); err != nil {
		t.Fatal(err)
	}
	start, end := window(18, 4)
	shift, err := a.AssignShift(ctx, AssignRequest{StaffID: 7, ZoneID: &zone.ID, StartsAt: start, EndsAt: end})
	if err != nil {
		t.Fatal(err)
	}

	// Park the confirm between its initial read and the locked re-read.
	// The one-shot gate is an atomic CAS rather than sync.Once: Once
	// holds its own mutex while f blocks on <-release, which would
	// deadlock every later Get (the cancel's) on the same Once.
	confirmParked := make(chan struct{})
	release := make(chan struct{})
	var parked atomic.Bool
	shifts.afterGet = func(uint64) {
		if parked.CompareAndSwap(false, true) {
			close(confirmParked)
			<-release
		}
	}

	confirmErr := make(chan error, 1)
	go func() {
		_, err := a.ConfirmShift(ctx, shift.ID)
		confirmErr <- err
	}()
	<-confirmParked

	// While the confirm still holds its stale read, the cancel commits
	// and the freed window is rebooked.
	if _, err := a.CancelShift(ctx, shift.ID); err != nil {
		t.Fatal(err)
	}
	replacement, err := a.AssignShift(ctx, AssignRequest{StaffID: 7, ZoneID: &zone.ID, StartsAt: start, EndsAt: end})
	if err != nil {
		t.Fatal(err)
	}
	close(release)

	if err := <-confirmErr; !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stale confirm: err = %v, want ErrInvalidTransition", err)
	}
	got, _ := shifts.Get(ctx, shift.ID)
	if got.Status != model.ShiftCancelled {
		t.Errorf("cancelled shift status = %s, want CANCELLED", got.Status)
	}
	active, _ := shifts.ActiveByStaff(ctx, 7)
	if len(active) != 1 || active[0].ID != replacement.ID {
		t.Fatalf("staff 7 holds %d active shifts, want only the replacement", len(active))
	}
	z, _ := zones.Get(ctx, zone.ID)
	if z.AssignedCount != 1 {
		t.Errorf("zone assigned count = %d, want 1", z.AssignedCount)
	}
}

func TestAssignShiftRejectsEmptyWindow(t *testing.T) {
	a, _, _ := newTestAllocator()
	start, _ := window(10, 1)
	if _, err := a.AssignShift(context.Background(), AssignRequest{StaffID: 1, StartsAt: start, EndsAt: start}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestCreateZoneValidation(t *testing.T) {
	a, _, _ := newTestAllocator()
	err := a.CreateZone(context.Background(), &model.Zone{EventID: 1, Name: "Lot"})
	if !errors.Is(err, ErrInvalidZone) {
		t.Fatalf("err = %v, want ErrInvalidZone", err)
	}
}
