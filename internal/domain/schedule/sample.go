package schedule

import "strconv"

// SampleDates returns the demo calendar loaded when sample seeding is enabled.
// Slot ids are "1" through "12"; pair it with NewSequenceGenerator(12) to keep
// generated ids in the same style.
func SampleDates() []AppointmentDate {
	slots := func(firstID int, times ...string) []TimeSlot {
		out := make([]TimeSlot, len(times))
		for i, t := range times {
			out[i] = TimeSlot{ID: strconv.Itoa(firstID + i), Time: t, IsAvailable: true}
		}
		return out
	}
	return []AppointmentDate{
		{Date: MustParseDate("2025-05-20"), TimeSlots: slots(1, "09:00 AM", "10:00 AM", "11:00 AM", "01:00 PM", "02:00 PM")},
		{Date: MustParseDate("2025-05-21"), TimeSlots: slots(6, "09:00 AM", "10:00 AM", "11:00 AM")},
		{Date: MustParseDate("2025-05-22"), TimeSlots: slots(9, "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM")},
	}
}
