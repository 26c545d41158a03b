package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
)

// DefaultSelectionTTL is how long an untouched session selection is kept.
const DefaultSelectionTTL = 30 * time.Minute

// Store is the state container for appointment dates, their slots, and one
// selection per user session. All methods are safe for concurrent use and each
// one is applied in full before the next is observed.
type Store struct {
	mu    sync.RWMutex
	dates []*AppointmentDate
	ids   IDGenerator

	selections   map[string]*selection
	selectionTTL time.Duration
	now          func() time.Time
}

// selection is the mutable state behind a session's Selection.
type selection struct {
	date    *Date
	slotID  string
	touched time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithSelectionTTL sets how long a session selection survives without changes.
func WithSelectionTTL(ttl time.Duration) Option {
	return func(s *Store) { s.selectionTTL = ttl }
}

// WithClock replaces time.Now for selection expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ids:          UUIDGenerator{},
		selections:   make(map[string]*selection),
		selectionTTL: DefaultSelectionTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore replaces the collection with dates. Duplicate dates, duplicate slot
// ids and slots without an id are rejected. Every selection is cleared.
func (s *Store) Restore(dates []AppointmentDate) error {
	seenDates := make(map[Date]struct{}, len(dates))
	seenSlots := make(map[string]struct{})
	restored := make([]*AppointmentDate, 0, len(dates))
	for _, d := range dates {
		if _, dup := seenDates[d.Date]; dup {
			return domain.NewValidationError(fmt.Sprintf("duplicate date: %s", d.Date))
		}
		seenDates[d.Date] = struct{}{}
		for _, slot := range d.TimeSlots {
			if slot.ID == "" {
				return domain.NewValidationError(fmt.Sprintf("slot without id on %s", d.Date))
			}
			if _, dup := seenSlots[slot.ID]; dup {
				return domain.NewValidationError(fmt.Sprintf("duplicate slot id: %s", slot.ID))
			}
			seenSlots[slot.ID] = struct{}{}
		}
		c := d.clone()
		restored = append(restored, &c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates = restored
	s.selections = make(map[string]*selection)
	return nil
}

// --- Mutations ---

// AddAvailableDate appends date with no slots. Adding an existing date is a
// no-op; the return value reports whether the date was created.
func (s *Store) AddAvailableDate(date Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(date) != nil {
		return false
	}
	s.dates = append(s.dates, &AppointmentDate{Date: date, TimeSlots: []TimeSlot{}})
	return true
}

// AddTimeSlot appends an available slot to date, creating the date first when
// it does not exist. The second return value reports whether the date was created.
func (s *Store) AddTimeSlot(date Date, timeOfDay string) (TimeSlot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := TimeSlot{ID: s.newIDLocked(), Time: timeOfDay, IsAvailable: true}

	if existing := s.findLocked(date); existing != nil {
		existing.TimeSlots = append(existing.TimeSlots, slot)
		return slot, false
	}

	s.dates = append(s.dates, &AppointmentDate{Date: date, TimeSlots: []TimeSlot{slot}})
	return slot, true
}

// RemoveTimeSlot deletes the slot from date. A date left without slots is
// removed as well. Returns whether a slot was removed and whether its date went with it.
func (s *Store) RemoveTimeSlot(date Date, slotID string) (removed, dateRemoved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(date)
	if idx < 0 {
		return false, false
	}
	ad := s.dates[idx]
	kept := ad.TimeSlots[:0]
	for _, slot := range ad.TimeSlots {
		if slot.ID == slotID {
			removed = true
			continue
		}
		kept = append(kept, slot)
	}
	if !removed {
		return false, false
	}
	ad.TimeSlots = kept

	if len(ad.TimeSlots) == 0 {
		s.removeAtLocked(idx)
		s.dropSelectionsOnLocked(date)
		return true, true
	}
	for _, sel := range s.selections {
		if sel.slotID == slotID {
			sel.slotID = ""
		}
	}
	return true, false
}

// RemoveAvailableDate deletes date and all of its slots. Selections of the
// date are cleared.
func (s *Store) RemoveAvailableDate(date Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(date)
	if idx < 0 {
		return false
	}
	s.removeAtLocked(idx)
	s.dropSelectionsOnLocked(date)
	return true
}

// BookSlot marks the slot unavailable if, and only if, it exists under date and
// is still available. The check and the update happen under one lock, so of
// several concurrent callers exactly one succeeds.
func (s *Store) BookSlot(date Date, slotID string) (TimeSlot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad := s.findLocked(date)
	if ad == nil {
		return TimeSlot{}, false
	}
	for i := range ad.TimeSlots {
		slot := &ad.TimeSlots[i]
		if slot.ID != slotID {
			continue
		}
		if !slot.IsAvailable {
			return *slot, false
		}
		slot.IsAvailable = false
		return *slot, true
	}
	return TimeSlot{}, false
}

// --- Selection ---

// SetSelectedDate selects date for session, or clears the session's selection
// when date is nil. Selecting a different date always clears the selected slot.
func (s *Store) SetSelectedDate(session string, date *Date) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if date == nil {
		delete(s.selections, session)
		return
	}
	sel := s.selectionLocked(session)
	if sel.date == nil || *sel.date != *date {
		sel.slotID = ""
	}
	d := *date
	sel.date = &d
}

// SetSelectedTimeSlot selects a slot of the session's selected date, or clears
// the slot when slotID is empty. The slot must exist under the selected date and
// be available.
func (s *Store) SetSelectedTimeSlot(session, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	sel, ok := s.selections[session]
	if slotID == "" {
		if ok {
			sel.slotID = ""
			sel.touched = s.now()
		}
		return nil
	}
	if !ok || sel.date == nil {
		return domain.NewValidationError("select a date before selecting a time slot")
	}
	ad := s.findLocked(*sel.date)
	if ad == nil {
		return domain.NewNotFoundError("AppointmentDate", sel.date.String())
	}
	slot, found := ad.Slot(slotID)
	if !found {
		return domain.NewNotFoundError("TimeSlot", slotID)
	}
	if !slot.IsAvailable {
		return domain.NewConflictError(fmt.Sprintf("time slot %s is no longer available", slotID))
	}
	sel.slotID = slotID
	sel.touched = s.now()
	return nil
}

// ResetSelection clears the session's selected date and slot.
func (s *Store) ResetSelection(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, session)
}

// ResetSelectionsHolding clears every selection whose slot is slotID on date
// and returns how many were cleared. Booking a slot ends the sessions that were
// considering it.
func (s *Store) ResetSelectionsHolding(date Date, slotID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, sel := range s.selections {
		if sel.date != nil && *sel.date == date && sel.slotID == slotID {
			delete(s.selections, key)
			n++
		}
	}
	return n
}

// Selection returns a copy of the session's selection with the slot's current
// state. Unknown or expired sessions have an empty selection.
func (s *Store) Selection(session string) Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out Selection
	sel, ok := s.selections[session]
	if !ok || sel.date == nil || s.expired(sel) {
		return out
	}
	d := *sel.date
	out.Date = &d
	if sel.slotID == "" {
		return out
	}
	if ad := s.findLocked(d); ad != nil {
		if slot, found := ad.Slot(sel.slotID); found {
			out.TimeSlot = &slot
		}
	}
	return out
}

// ActiveSelections returns the number of sessions holding a selection.
func (s *Store) ActiveSelections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sel := range s.selections {
		if !s.expired(sel) {
			n++
		}
	}
	return n
}

// --- Queries ---

// Dates returns a deep copy of the collection in insertion order.
func (s *Store) Dates() []AppointmentDate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AppointmentDate, len(s.dates))
	for i, d := range s.dates {
		out[i] = d.clone()
	}
	return out
}

// Date returns a copy of one date.
func (s *Store) Date(date Date) (AppointmentDate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ad := s.findLocked(date)
	if ad == nil {
		return AppointmentDate{}, false
	}
	return ad.clone(), true
}

// IsBookable reports whether date exists, is not before today, and has an available slot.
func (s *Store) IsBookable(date, today Date) bool {
	ad, ok := s.Date(date)
	return ok && ad.IsBookable(today)
}

// AvailableSlots returns the available slots of date in insertion order.
func (s *Store) AvailableSlots(date Date) []TimeSlot {
	ad, ok := s.Date(date)
	if !ok {
		return []TimeSlot{}
	}
	return ad.AvailableSlots()
}

// BookableDates returns the dates a user may select on today.
func (s *Store) BookableDates(today Date) []AppointmentDate {
	all := s.Dates()
	out := make([]AppointmentDate, 0, len(all))
	for _, d := range all {
		if d.IsBookable(today) {
			out = append(out, d)
		}
	}
	return out
}

// --- Helpers ---

func (s *Store) findLocked(date Date) *AppointmentDate {
	if idx := s.indexLocked(date); idx >= 0 {
		return s.dates[idx]
	}
	return nil
}

func (s *Store) indexLocked(date Date) int {
	for i, d := range s.dates {
		if d.Date == date {
			return i
		}
	}
	return -1
}

func (s *Store) removeAtLocked(idx int) {
	s.dates = append(s.dates[:idx], s.dates[idx+1:]...)
}

func (s *Store) selectionLocked(session string) *selection {
	sel, ok := s.selections[session]
	if !ok {
		sel = &selection{}
		s.selections[session] = sel
	}
	sel.touched = s.now()
	return sel
}

func (s *Store) dropSelectionsOnLocked(date Date) {
	for key, sel := range s.selections {
		if sel.date != nil && *sel.date == date {
			delete(s.selections, key)
		}
	}
}

func (s *Store) expired(sel *selection) bool {
	return s.selectionTTL > 0 && s.now().Sub(sel.touched) > s.selectionTTL
}

// sweepLocked forgets sessions that have not changed their selection within the TTL.
func (s *Store) sweepLocked() {
	for key, sel := range s.selections {
		if s.expired(sel) {
			delete(s.selections, key)
		}
	}
}

// newIDLocked draws ids until one is unused, so restored or seeded ids can
// never collide with generated ones.
func (s *Store) newIDLocked() string {
	for {
		id := s.ids.NewID()
		if !s.slotIDInUseLocked(id) {
			return id
		}
	}
}

func (s *Store) slotIDInUseLocked(id string) bool {
	for _, d := range s.dates {
		for _, slot := range d.TimeSlots {
			if slot.ID == id {
				return true
			}
		}
	}
	return false
}
