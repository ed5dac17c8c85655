// Package ledger implements the global, term-scoped booking ledger
// spec.md §4.4 describes: the only globally mutable state shared by
// independent faculty-scoped planning runs. It is grounded on
// original_source/ISBAT-TIMETABLE-BACKEND/app/services/resource_booking.py's
// ResourceBookingManager (per-key cache, invalidate_cache,
// is_room_available/is_lecturer_available, reserve, discard_faculty).
package ledger

import (
	"sync"

	"github.com/pkg/errors"

	"timetable-planner/internal/entity"
	"timetable-planner/internal/timeslot"
)

// ResourceKind distinguishes the two booked resource types.
type ResourceKind string

const (
	KindRoom     ResourceKind = "room"
	KindLecturer ResourceKind = "lecturer"
)

// Entry is one booking-ledger record, per spec.md §3.
type Entry struct {
	Kind          ResourceKind
	ResourceID    string
	Term          int
	AcademicYear  string
	Day           timeslot.Day
	Period        int
	Faculty       string
	GenerationID  string
}

// key is the uniqueness-invariant key: at most one entry may exist per
// (kind, id, term, year, day, period).
type key struct {
	Kind         ResourceKind
	ResourceID   string
	Term         int
	AcademicYear string
	Day          timeslot.Day
	Period       int
}

// ErrAlreadyBooked is the programming-error cause for a duplicate
// reservation attempt (spec.md §4.4: "an attempt to insert a duplicate
// is a programming error and aborts the run").
var ErrAlreadyBooked = errors.New("ledger: resource already booked for this (day, period)")

// ErrConcurrentModification is returned by CommitMany when any entry in
// the batch collides, so the orchestrator can surface the "concurrent
// modification" error from spec.md §7.
var ErrConcurrentModification = errors.New("ledger: concurrent modification detected at commit")

// Ledger is the booking-ledger contract the CSP engine and orchestrator
// depend on. MemoryLedger is the reference implementation; callers may
// substitute another backing store as long as it preserves the
// insert-if-absent semantics spec.md §5 requires.
type Ledger interface {
	IsAvailable(kind ResourceKind, resourceID string, day timeslot.Day, period int) bool
	Reserve(a entity.Assignment, faculty, generationID string) error
	CommitMany(assignments []entity.Assignment, faculty, generationID string) error
	DiscardFaculty(faculty string) []Entry
	SnapshotInto(consumer OccupancyConsumer, excludeFaculty string)
	Entries() []Entry
}

// OccupancyConsumer receives every non-excluded committed booking so a
// CSP constraint context can pre-mark those slots unavailable before
// search begins (spec.md §4.4's snapshot_into).
type OccupancyConsumer interface {
	MarkOccupied(kind ResourceKind, resourceID string, day timeslot.Day, period int)
}

// MemoryLedger is an in-memory, mutex-guarded Ledger scoped to one
// (term, academic_year). Reads during a CSP run are served from the
// same map the commit path writes, so there's a single source of truth
// rather than a separate cache that needs invalidating on every write —
// the Python original's invalidate_cache step becomes unnecessary once
// cache and store are the same structure.
type MemoryLedger struct {
	mu           sync.RWMutex
	term         int
	academicYear string
	entries      map[key]Entry
}

// NewMemoryLedger creates an empty ledger scoped to (term, academicYear).
func NewMemoryLedger(term int, academicYear string) *MemoryLedger {
	return &MemoryLedger{
		term:         term,
		academicYear: academicYear,
		entries:      make(map[key]Entry),
	}
}

func (l *MemoryLedger) keyFor(kind ResourceKind, resourceID string, day timeslot.Day, period int) key {
	return key{Kind: kind, ResourceID: resourceID, Term: l.term, AcademicYear: l.academicYear, Day: day, Period: period}
}

// IsAvailable reports whether (kind, id) is free at (day, period).
func (l *MemoryLedger) IsAvailable(kind ResourceKind, resourceID string, day timeslot.Day, period int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, booked := l.entries[l.keyFor(kind, resourceID, day, period)]
	return !booked
}

// Reserve atomically inserts the room and lecturer bookings for one
// assignment. It rejects if either already exists.
func (l *MemoryLedger) Reserve(a entity.Assignment, faculty, generationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserveLocked(a, faculty, generationID)
}

func (l *MemoryLedger) reserveLocked(a entity.Assignment, faculty, generationID string) error {
	roomKey := l.keyFor(KindRoom, a.RoomNumber, a.Slot.Day, a.Slot.Period.Index)
	lecturerKey := l.keyFor(KindLecturer, a.LecturerID, a.Slot.Day, a.Slot.Period.Index)

	if _, exists := l.entries[roomKey]; exists {
		return errors.Wrapf(ErrAlreadyBooked, "room %s at %s", a.RoomNumber, a.Slot)
	}
	if _, exists := l.entries[lecturerKey]; exists {
		return errors.Wrapf(ErrAlreadyBooked, "lecturer %s at %s", a.LecturerID, a.Slot)
	}

	l.entries[roomKey] = Entry{Kind: KindRoom, ResourceID: a.RoomNumber, Term: l.term, AcademicYear: l.academicYear, Day: a.Slot.Day, Period: a.Slot.Period.Index, Faculty: faculty, GenerationID: generationID}
	l.entries[lecturerKey] = Entry{Kind: KindLecturer, ResourceID: a.LecturerID, Term: l.term, AcademicYear: l.academicYear, Day: a.Slot.Day, Period: a.Slot.Period.Index, Faculty: faculty, GenerationID: generationID}
	return nil
}

// CommitMany inserts every assignment's bookings as a single batch.
// Partial failure is never observable to other readers: on any
// collision, every entry added during this call is rolled back before
// returning an error wrapping ErrConcurrentModification.
func (l *MemoryLedger) CommitMany(assignments []entity.Assignment, faculty, generationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	added := make([]key, 0, len(assignments)*2)
	for _, a := range assignments {
		roomKey := l.keyFor(KindRoom, a.RoomNumber, a.Slot.Day, a.Slot.Period.Index)
		lecturerKey := l.keyFor(KindLecturer, a.LecturerID, a.Slot.Day, a.Slot.Period.Index)

		if _, exists := l.entries[roomKey]; exists {
			l.rollback(added)
			return errors.Wrapf(ErrConcurrentModification, "room %s at %s already booked", a.RoomNumber, a.Slot)
		}
		if _, exists := l.entries[lecturerKey]; exists {
			l.rollback(added)
			return errors.Wrapf(ErrConcurrentModification, "lecturer %s at %s already booked", a.LecturerID, a.Slot)
		}

		l.entries[roomKey] = Entry{Kind: KindRoom, ResourceID: a.RoomNumber, Term: l.term, AcademicYear: l.academicYear, Day: a.Slot.Day, Period: a.Slot.Period.Index, Faculty: faculty, GenerationID: generationID}
		l.entries[lecturerKey] = Entry{Kind: KindLecturer, ResourceID: a.LecturerID, Term: l.term, AcademicYear: l.academicYear, Day: a.Slot.Day, Period: a.Slot.Period.Index, Faculty: faculty, GenerationID: generationID}
		added = append(added, roomKey, lecturerKey)
	}
	return nil
}

func (l *MemoryLedger) rollback(keys []key) {
	for _, k := range keys {
		delete(l.entries, k)
	}
}

// DiscardFaculty deletes all of a faculty's bookings for this
// (term, year) and returns what was removed, for regeneration.
func (l *MemoryLedger) DiscardFaculty(faculty string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []Entry
	for k, e := range l.entries {
		if e.Faculty == faculty {
			removed = append(removed, e)
			delete(l.entries, k)
		}
	}
	return removed
}

// SnapshotInto feeds every committed entry not belonging to
// excludeFaculty into consumer, so a fresh CSP run sees other
// faculties' commitments without a shared search.
func (l *MemoryLedger) SnapshotInto(consumer OccupancyConsumer, excludeFaculty string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Faculty == excludeFaculty {
			continue
		}
		consumer.MarkOccupied(e.Kind, e.ResourceID, e.Day, e.Period)
	}
}

// Entries returns every entry currently in the ledger, for diagnostics
// and tests.
func (l *MemoryLedger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	return out
}
