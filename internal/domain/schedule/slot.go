package schedule

// TimeSlot is a bookable unit of time on a given date.
type TimeSlot struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
}

// AppointmentDate is a calendar date and its slots in display order.
type AppointmentDate struct {
	Date      Date       `json:"date"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// AvailableSlots returns the unbooked slots in insertion order.
func (a AppointmentDate) AvailableSlots() []TimeSlot {
	available := make([]TimeSlot, 0, len(a.TimeSlots))
	for _, slot := range a.TimeSlots {
		if slot.IsAvailable {
			available = append(available, slot)
		}
	}
	return available
}

// HasAvailableSlot reports whether at least one slot is unbooked.
func (a AppointmentDate) HasAvailableSlot() bool {
	for _, slot := range a.TimeSlots {
		if slot.IsAvailable {
			return true
		}
	}
	return false
}

// IsBookable reports whether the date can be selected: not before today and
// with at least one available slot.
func (a AppointmentDate) IsBookable(today Date) bool {
	return !a.Date.IsPast(today) && a.HasAvailableSlot()
}

// Slot returns the slot with the given id.
func (a AppointmentDate) Slot(slotID string) (TimeSlot, bool) {
	for _, slot := range a.TimeSlots {
		if slot.ID == slotID {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

func (a AppointmentDate) clone() AppointmentDate {
	slots := make([]TimeSlot, len(a.TimeSlots))
	copy(slots, a.TimeSlots)
	return AppointmentDate{Date: a.Date, TimeSlots: slots}
}

// Selection is the date and slot a user is currently considering.
// Slot is only ever set together with the Date it belongs to.
type Selection struct {
	Date     *Date     `json:"selected_date"`
	TimeSlot *TimeSlot `json:"selected_time_slot"`
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return s.Date == nil && s.TimeSlot == nil }
