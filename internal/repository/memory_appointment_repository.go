package repository

import (
	"context"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/google/uuid"
)

// MemoryAppointmentRepository keeps appointments in process memory. It is used
// when no database is configured.
type MemoryAppointmentRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*appointment.Appointment
	order []uuid.UUID
}

// NewMemoryAppointmentRepository creates an empty in-memory repository.
func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{byID: make(map[uuid.UUID]*appointment.Appointment)}
}

// FindByID retrieves an appointment by its unique identifier.
func (r *MemoryAppointmentRepository) FindByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Appointment", id.String())
	}
	return copyAppointment(a), nil
}

// ListAll returns appointments newest first with pagination.
func (r *MemoryAppointmentRepository) ListAll(_ context.Context, page, limit int) ([]*appointment.Appointment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := int64(len(r.order))
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	var out []*appointment.Appointment
	for i := len(r.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyAppointment(r.byID[r.order[i]]))
	}
	return out, total, nil
}

// CountByNotificationStatus returns appointment counts grouped by notification status.
func (r *MemoryAppointmentRepository) CountByNotificationStatus(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, a := range r.byID {
		counts[a.NotificationStatus().String()]++
	}
	return counts, nil
}

// Save persists a new appointment.
func (r *MemoryAppointmentRepository) Save(_ context.Context, appt *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[appt.ID()]; exists {
		return domain.NewConflictError("appointment already exists: " + appt.ID().String())
	}
	r.byID[appt.ID()] = copyAppointment(appt)
	r.order = append(r.order, appt.ID())
	return nil
}

// Update replaces a stored appointment if its version is the one the caller started from.
func (r *MemoryAppointmentRepository) Update(_ context.Context, appt *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[appt.ID()]
	if !ok {
		return domain.NewNotFoundError("Appointment", appt.ID().String())
	}
	if current.Version() != appt.Version()-1 {
		return domain.NewConflictError("appointment was modified by another transaction")
	}
	r.byID[appt.ID()] = copyAppointment(appt)
	return nil
}

// DeleteAll removes every appointment.
func (r *MemoryAppointmentRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.order))
	r.byID = make(map[uuid.UUID]*appointment.Appointment)
	r.order = nil
	return n, nil
}

func copyAppointment(a *appointment.Appointment) *appointment.Appointment {
	return appointment.Reconstruct(
		a.ID(), a.Reference(), a.Date(), a.SlotID(), a.SlotTime(), a.Contact(),
		a.NotificationStatus(), a.NotificationError(), a.Version(), a.CreatedAt(), a.UpdatedAt(),
	)
}
