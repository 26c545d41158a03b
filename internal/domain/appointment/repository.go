package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for appointments.
type Repository interface {
	// FindByID retrieves an appointment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListAll retrieves appointments newest first with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Appointment, int64, error)

	// CountByNotificationStatus returns appointment counts grouped by notification status.
	CountByNotificationStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new appointment.
	Save(ctx context.Context, appt *Appointment) error

	// Update persists changes with optimistic locking on version.
	Update(ctx context.Context, appt *Appointment) error

	// DeleteAll removes every appointment and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
