package appointment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Contact is the client's submitted contact details.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Validate checks the required fields. Name and email are mandatory and the
// email must be a bare address.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.NewValidationError("name is required")
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return domain.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.NewValidationError(fmt.Sprintf("invalid email address: %s", c.Email))
	}
	return nil
}

// Appointment records that a client booked a slot.
type Appointment struct {
	id                 uuid.UUID
	reference          string
	date               schedule.Date
	slotID             string
	slotTime           string
	contact            Contact
	notificationStatus NotificationStatus
	notificationError  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a reference in the format "AP-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate appointment reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "AP-" + string(result), nil
}

// NewAppointment creates an appointment for a booked slot with a pending notification.
func NewAppointment(date schedule.Date, slot schedule.TimeSlot, contact Contact) (*Appointment, error) {
	if date.IsZero() {
		return nil, domain.NewValidationError("date is required")
	}
	if slot.ID == "" {
		return nil, domain.NewValidationError("slot ID is required")
	}
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Phone = strings.TrimSpace(contact.Phone)
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Appointment{
		id:                 uuid.New(),
		reference:          reference,
		date:               date,
		slotID:             slot.ID,
		slotTime:           slot.Time,
		contact:            contact,
		notificationStatus: NotificationPending,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Reconstruct rebuilds an Appointment from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	date schedule.Date,
	slotID, slotTime string,
	contact Contact,
	notificationStatus NotificationStatus,
	notificationError string,
	version int64,
	createdAt, updatedAt time.Time,
) *Appointment {
	return &Appointment{
		id:                 id,
		reference:          reference,
		date:               date,
		slotID:             slotID,
		slotTime:           slotTime,
		contact:            contact,
		notificationStatus: notificationStatus,
		notificationError:  notificationError,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (a *Appointment) ID() uuid.UUID                          { return a.id }
func (a *Appointment) Reference() string                      { return a.reference }
func (a *Appointment) Date() schedule.Date                    { return a.date }
func (a *Appointment) SlotID() string                         { return a.slotID }
func (a *Appointment) SlotTime() string                       { return a.slotTime }
func (a *Appointment) Contact() Contact                       { return a.contact }
func (a *Appointment) NotificationStatus() NotificationStatus { return a.notificationStatus }
func (a *Appointment) NotificationError() string              { return a.notificationError }
func (a *Appointment) Version() int64                         { return a.version }
func (a *Appointment) CreatedAt() time.Time                   { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time                   { return a.updatedAt }

// --- Behavior ---

// MarkNotified records a delivered confirmation.
func (a *Appointment) MarkNotified() error {
	return a.transition(NotificationSent, "")
}

// MarkNotificationFailed records a failed confirmation. The booking itself stands.
func (a *Appointment) MarkNotificationFailed(reason string) error {
	return a.transition(NotificationFailed, reason)
}

func (a *Appointment) transition(target NotificationStatus, reason string) error {
	if !a.notificationStatus.CanTransitionTo(target) {
		return domain.NewConflictError(fmt.Sprintf("cannot transition notification from %s to %s", a.notificationStatus, target))
	}
	a.notificationStatus = target
	a.notificationError = reason
	a.version++
	a.updatedAt = time.Now().UTC()
	return nil
}
