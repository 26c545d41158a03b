package events

import "time"

// Topics.
const (
	TopicAppointmentEvents = "appointment.events"
	TopicScheduleCommands  = "schedule.commands"
)

// Event types published on TopicAppointmentEvents.
const (
	ScheduleDateAdded   = "schedule.date.added"
	ScheduleDateRemoved = "schedule.date.removed"
	ScheduleSlotAdded   = "schedule.slot.added"
	ScheduleSlotRemoved = "schedule.slot.removed"
	AppointmentBooked   = "appointment.booked"
	AppointmentsCleared = "appointment.cleared"
)

// Command types consumed from TopicScheduleCommands.
const (
	ScheduleSlotRequested = "schedule.slot.requested"
	ScheduleDateClosed    = "schedule.date.closed"
)

// DateAddedEvent is published when a date is added explicitly or implicitly.
type DateAddedEvent struct {
	Date       string    `json:"date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DateRemovedEvent is published when a date is removed, including cascade removal.
type DateRemovedEvent struct {
	Date       string    `json:"date"`
	Cascade    bool      `json:"cascade"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SlotAddedEvent is published for every new time slot.
type SlotAddedEvent struct {
	Date       string    `json:"date"`
	SlotID     string    `json:"slot_id"`
	Time       string    `json:"time"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SlotRemovedEvent is published when a slot is deleted.
type SlotRemovedEvent struct {
	Date       string    `json:"date"`
	SlotID     string    `json:"slot_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AppointmentBookedEvent is published after a slot is booked. StartsAt and
// EndsAt span one slot of the configured duration.
type AppointmentBookedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	Reference     string    `json:"reference"`
	Date          string    `json:"date"`
	SlotID        string    `json:"slot_id"`
	Time          string    `json:"time"`
	ClientName    string    `json:"client_name"`
	ClientEmail   string    `json:"client_email"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AppointmentsClearedEvent is published when the admin clears the ledger.
type AppointmentsClearedEvent struct {
	Removed    int64     `json:"removed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SlotRequestedCommand asks the service to open a slot.
type SlotRequestedCommand struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// DateClosedCommand asks the service to remove a date and its slots.
type DateClosedCommand struct {
	Date string `json:"date"`
}
