package application

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/google/uuid"
)

// BookSlotRequest holds the data a client submits to book a slot.
type BookSlotRequest struct {
	Date   string `json:"date" binding:"required"`
	SlotID string `json:"slot_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
}

// AppointmentDateDTO is the response representation of a date and its slots.
type AppointmentDateDTO struct {
	Date        schedule.Date       `json:"date"`
	DisplayDate string              `json:"display_date"`
	Weekday     string              `json:"weekday"`
	TimeSlots   []schedule.TimeSlot `json:"time_slots"`
}

// SelectionDTO is the current widget selection.
type SelectionDTO struct {
	Date     *schedule.Date     `json:"date"`
	TimeSlot *schedule.TimeSlot `json:"time_slot"`
}

// AppointmentDTO is the response representation of a booked appointment.
type AppointmentDTO struct {
	ID                 uuid.UUID     `json:"id"`
	Reference          string        `json:"reference"`
	Date               schedule.Date `json:"date"`
	DisplayDate        string        `json:"display_date"`
	SlotID             string        `json:"slot_id"`
	Time               string        `json:"time"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	NotificationStatus string        `json:"notification_status"`
	NotificationError  string        `json:"notification_error,omitempty"`
	Version            int64         `json:"version"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// StatsDTO aggregates schedule and ledger counts for the admin dashboard.
type StatsDTO struct {
	TotalDates           int              `json:"total_dates"`
	TotalSlots           int              `json:"total_slots"`
	AvailableSlots       int              `json:"available_slots"`
	BookedSlots          int              `json:"booked_slots"`
	TotalAppointments    int64            `json:"total_appointments"`
	ByNotificationStatus map[string]int64 `json:"by_notification_status"`
}

// PaginatedResult is a page of items with paging metadata.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult builds a PaginatedResult and derives TotalPages.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// --- Helpers ---

func toAppointmentDateDTO(d schedule.AppointmentDate) AppointmentDateDTO {
	slots := d.TimeSlots
	if slots == nil {
		slots = []schedule.TimeSlot{}
	}
	return AppointmentDateDTO{
		Date:        d.Date,
		DisplayDate: d.Date.Display(),
		Weekday:     d.Date.Weekday().String(),
		TimeSlots:   slots,
	}
}

func toAppointmentDTO(a *appointment.Appointment) AppointmentDTO {
	c := a.Contact()
	return AppointmentDTO{
		ID:                 a.ID(),
		Reference:          a.Reference(),
		Date:               a.Date(),
		DisplayDate:        a.Date().Display(),
		SlotID:             a.SlotID(),
		Time:               a.SlotTime(),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Notes:              c.Notes,
		NotificationStatus: a.NotificationStatus().String(),
		NotificationError:  a.NotificationError(),
		Version:            a.Version(),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
}
