package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentModel is the GORM model for the appointments table.
type AppointmentModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reference          string    `gorm:"uniqueIndex;not null;size:16"`
	AppointmentDate    time.Time `gorm:"type:date;not null;index:idx_appointments_date_slot"`
	SlotID             string    `gorm:"not null;size:64;index:idx_appointments_date_slot"`
	SlotTime           string    `gorm:"not null;size:16"`
	ClientName         string    `gorm:"not null;size:255"`
	ClientEmail        string    `gorm:"not null;size:255"`
	ClientPhone        string    `gorm:"not null;size:64;default:''"`
	Notes              string    `gorm:"type:text;not null;default:''"`
	NotificationStatus string    `gorm:"not null;size:16;index;default:'pending'"`
	NotificationError  string    `gorm:"type:text;not null;default:''"`
	Version            int64     `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AppointmentModel) TableName() string {
	return "appointments"
}

// GormAppointmentRepository is the GORM-based implementation of appointment.Repository.
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository.
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID retrieves an appointment by its unique identifier.
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var model AppointmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Appointment", id.String())
		}
		return nil, fmt.Errorf("failed to find appointment by ID: %w", err)
	}
	return toDomainAppointment(&model)
}

// ListAll retrieves appointments newest first with pagination.
func (r *GormAppointmentRepository) ListAll(ctx context.Context, page, limit int) ([]*appointment.Appointment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AppointmentModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	var models []AppointmentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}

	appts := make([]*appointment.Appointment, len(models))
	for i := range models {
		a, err := toDomainAppointment(&models[i])
		if err != nil {
			return nil, 0, err
		}
		appts[i] = a
	}
	return appts, total, nil
}

// CountByNotificationStatus returns appointment counts grouped by notification status.
func (r *GormAppointmentRepository) CountByNotificationStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		NotificationStatus string
		Count              int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&AppointmentModel{}).
		Select("notification_status, count(*) as count").
		Group("notification_status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by notification status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.NotificationStatus] = sc.Count
	}
	return counts, nil
}

// Save persists a new appointment.
func (r *GormAppointmentRepository) Save(ctx context.Context, appt *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(toAppointmentModel(appt)).Error; err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

// Update persists the notification outcome with optimistic locking.
func (r *GormAppointmentRepository) Update(ctx context.Context, appt *appointment.Appointment) error {
	model := toAppointmentModel(appt)

	// The aggregate bumps its version on every transition.
	expectedVersion := appt.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&AppointmentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"notification_status": model.NotificationStatus,
			"notification_error":  model.NotificationError,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("appointment was modified by another transaction")
	}
	return nil
}

// DeleteAll removes every appointment.
func (r *GormAppointmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&AppointmentModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete appointments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func toAppointmentModel(a *appointment.Appointment) *AppointmentModel {
	c := a.Contact()
	return &AppointmentModel{
		ID:                 a.ID(),
		Reference:          a.Reference(),
		AppointmentDate:    a.Date().Time(),
		SlotID:             a.SlotID(),
		SlotTime:           a.SlotTime(),
		ClientName:         c.Name,
		ClientEmail:        c.Email,
		ClientPhone:        c.Phone,
		Notes:              c.Notes,
		NotificationStatus: a.NotificationStatus().String(),
		NotificationError:  a.NotificationError(),
		Version:            a.Version(),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
}

func toDomainAppointment(m *AppointmentModel) (*appointment.Appointment, error) {
	status, err := appointment.ParseNotificationStatus(m.NotificationStatus)
	if err != nil {
		return nil, err
	}
	return appointment.Reconstruct(
		m.ID,
		m.Reference,
		schedule.DateOf(m.AppointmentDate),
		m.SlotID,
		m.SlotTime,
		appointment.Contact{
			Name:  m.ClientName,
			Email: m.ClientEmail,
			Phone: m.ClientPhone,
			Notes: m.Notes,
		},
		status,
		m.NotificationError,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
