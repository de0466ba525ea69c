// Package schedule allocates staff members into time- and
// capacity-bounded shift assignments.  The core correctness property
// is that no staff member ever holds two overlapping non-cancelled
// shifts and no zone is ever assigned beyond its required staff count.
// Both checks are check-then-act sequences, so the allocator
// serializes them behind per-staff and per-zone locks; two concurrent
// assignments for the same staff member or zone cannot both pass their
// check before either commits.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

var (
	// ErrShiftConflict is returned when a requested window overlaps an
	// existing non-cancelled shift for the same staff member.
	ErrShiftConflict = errors.New("schedule: shift conflicts with an existing assignment")

	// ErrZoneCapacityExceeded is returned when a zone already has its
	// required staff count assigned.
	ErrZoneCapacityExceeded = errors.New("schedule: zone is fully staffed")

	// ErrInvalidWindow is returned for windows that do not end after
	// they start.
	ErrInvalidWindow = errors.New("schedule: shift must end after it starts")

	// ErrInvalidZone is returned when a zone is created without a
	// positive required staff count.
	ErrInvalidZone = errors.New("schedule: zone requires a positive staff count")

	// ErrInvalidTransition is returned for shift status changes outside
	// scheduled → confirmed → completed (plus cancellation of any
	// non-completed shift).
	ErrInvalidTransition = errors.New("schedule: invalid shift status transition")
)

// ShiftStore is the persistence surface the allocator needs for
// shifts.  The SQL repository implements it in production; tests use
// an in-memory fake.
type ShiftStore interface {
	// ActiveByStaff returns every non-cancelled shift of the staff member.
	ActiveByStaff(ctx context.Context, staffID uint64) ([]model.Shift, error)
	Create(ctx context.Context, s *model.Shift) error
	Get(ctx context.Context, id uint64) (*model.Shift, error)
	// UpdateStatus writes the new status only if the stored status still
	// matches from, so a stale transition cannot overwrite a newer one.
	UpdateStatus(ctx context.Context, id uint64, from, to model.ShiftStatus) error
}

// ZoneStore is the persistence surface the allocator needs for zones.
type ZoneStore interface {
	Create(ctx context.Context, z *model.Zone) error
	Get(ctx context.Context, id uint64) (*model.Zone, error)
	// AdjustAssigned adds delta (which may be negative) to the zone's
	// assigned count.
	AdjustAssigned(ctx context.Context, id uint64, delta int) error
}

// keyedMutex hands out one mutex per uint64 key.  Entries are retained
// for the process lifetime; the key space (staff and zone IDs in
// active use) is small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (k *keyedMutex) get(id uint64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[uint64]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	return m
}

// Allocator is the scheduling engine.  It owns the serialization
// boundaries for per-staff shift allocation and per-zone capacity
// counting.
type Allocator struct {
	shifts     ShiftStore
	zones      ZoneStore
	staffLocks keyedMutex
	zoneLocks  keyedMutex
}

// NewAllocator constructs an Allocator over the given stores.
func NewAllocator(shifts ShiftStore, zones ZoneStore) *Allocator {
	if shifts == nil || zones == nil {
		panic("nil store passed to NewAllocator")
	}
	return &Allocator{shifts: shifts, zones: zones}
}

// CreateZone validates and persists a new coverage zone.
func (a *Allocator) CreateZone(ctx context.Context, z *model.Zone) error {
	if z.RequiredStaffCount <= 0 {
		return ErrInvalidZone
	}
	z.AssignedCount = 0
	return a.zones.Create(ctx, z)
}

// AssignRequest describes one shift to allocate.
type AssignRequest struct {
	StaffID      uint64
	ZoneID       *uint64 // nil for unzoned shifts
	Role         string
	StartsAt     time.Time
	EndsAt       time.Time
	BreakMinutes int
}

// AssignShift allocates a shift, enforcing the non-overlap and zone
// capacity invariants atomically.  The staff lock is always taken
// before the zone lock so concurrent assignments cannot deadlock.
func (a *Allocator) AssignShift(ctx context.Context, req AssignRequest) (*model.Shift, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidWindow
	}

	staffMu := a.staffLocks.get(req.StaffID)
	staffMu.Lock()
	defer staffMu.Unlock()

	existing, err := a.shifts.ActiveByStaff(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Overlaps(req.StartsAt, req.EndsAt) {
			return nil, fmt.Errorf("%w: overlaps shift %d", ErrShiftConflict, existing[i].ID)
		}
	}

	if req.ZoneID != nil {
		zoneMu := a.zoneLocks.get(*req.ZoneID)
		zoneMu.Lock()
		defer zoneMu.Unlock()

		zone, err := a.zones.Get(ctx, *req.ZoneID)
		if err != nil {
			return nil, err
		}
		if zone.Full() {
			return nil, fmt.Errorf("%w: zone %d has %d of %d assigned",
				ErrZoneCapacityExceeded, zone.ID, zone.AssignedCount, zone.RequiredStaffCount)
		}
		if err := a.zones.AdjustAssigned(ctx, *req.ZoneID, 1); err != nil {
			return nil, err
		}
	}

	shift := &model.Shift{
		StaffID:      req.StaffID,
		ZoneID:       req.ZoneID,
		Role:         req.Role,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt.UTC(),
		BreakMinutes: req.BreakMinutes,
		Status:       model.ShiftScheduled,
	}
	if err := a.shifts.Create(ctx, shift); err != nil {
		// Roll the zone count back so a failed insert does not leak a
		// phantom assignment.
		if req.ZoneID != nil {
			_ = a.zones.AdjustAssigned(ctx, *req.ZoneID, -1)
		}
		return nil, err
	}
	return shift, nil
}

// ConfirmShift transitions a scheduled shift to confirmed.
func (a *Allocator) ConfirmShift(ctx context.Context, shiftID uint64) (*model.Shift, error) {
	return a.transition(ctx, shiftID, model.ShiftConfirmed, model.ShiftScheduled)
}

// CompleteShift transitions a confirmed shift to completed.
func (a *Allocator) CompleteShift(ctx context.Context, shiftID uint64) (*model.Shift, error) {
	return a.transition(ctx, shiftID, model.ShiftCompleted, model.ShiftConfirmed)
}

// CancelShift cancels a shift that has not completed and releases its
// zone slot.  Cancelling an already cancelled shift is a no-op so
// retries are safe.
func (a *Allocator) CancelShift(ctx context.Context, shiftID uint64) (*model.Shift, error) {
	// First read only locates the staff lock; the status decision is
	// made on a re-read under that lock.
	shift, err := a.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	staffMu := a.staffLocks.get(shift.StaffID)
	staffMu.Lock()
	defer staffMu.Unlock()

	shift, err = a.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status == model.ShiftCancelled {
		return shift, nil
	}
	if shift.Status == model.ShiftCompleted {
		return nil, fmt.Errorf("%w: completed shifts cannot be cancelled", ErrInvalidTransition)
	}

	if err := a.shifts.UpdateStatus(ctx, shiftID, shift.Status, model.ShiftCancelled); err != nil {
		return nil, err
	}
	shift.Status = model.ShiftCancelled

	if shift.ZoneID != nil {
		zoneMu := a.zoneLocks.get(*shift.ZoneID)
		zoneMu.Lock()
		defer zoneMu.Unlock()
		if err := a.zones.AdjustAssigned(ctx, *shift.ZoneID, -1); err != nil {
			return nil, err
		}
	}
	return shift, nil
}

// transition moves a shift from one status to another under the staff
// lock.  The status is re-read after the lock is held: a cancel that
// slipped in between the lookup and the lock must win, never be
// overwritten by a stale confirm or complete.
func (a *Allocator) transition(ctx context.Context, shiftID uint64, to model.ShiftStatus, from model.ShiftStatus) (*model.Shift, error) {
	shift, err := a.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	staffMu := a.staffLocks.get(shift.StaffID)
	staffMu.Lock()
	defer staffMu.Unlock()

	shift, err = a.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != from {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, shift.Status, to)
	}
	if err := a.shifts.UpdateStatus(ctx, shiftID, from, to); err != nil {
		return nil, err
	}
	shift.Status = to
	return shift, nil
}
